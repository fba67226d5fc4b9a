package httpcore

import (
	"bufio"
	"context"
	"crypto/tls"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// RequestHandler processes one incoming request and returns the response
// to send back. Unlike the teacher's RequestHandler(ctx *RequestCtx), this
// takes an explicit context.Context and returns its response rather than
// mutating a shared
// ctx, which is what lets the driver run it on a separate goroutine from
// the one pumping a streaming body without synchronizing on anything but
// the handoff channel and the returned value. The HTTP/1.1 driver passes a
// context that is never cancelled: tearing the connection down mid-request
// does not cancel it.
type RequestHandler func(ctx context.Context, req *Request) (*Response, error)

// ServeHandler is the low-level per-connection entry point the worker pool
// dispatches accepted connections to. It is the same shape as fasthttp's
// own ServeHandler, kept because workerPool is adapted, not rewritten.
type ServeHandler func(c net.Conn) error

// ConnState represents the state of a connection for the Server's
// optional ConnState hook, mirroring net/http's ConnState enum.
type ConnState int

const (
	StateNew ConnState = iota
	StateActive
	StateIdle
	StateHijacked
	StateClosed
)

// DefaultConcurrency is the default upper bound on concurrently served
// connections.
const DefaultConcurrency = 256 * 1024

const (
	defaultReadBufferSize  = 4096
	defaultWriteBufferSize = 4096
)

// Server implements the HTTP/1.1 connection driver described by Conn,
// dispatching accepted connections through a FILO worker pool the way the
// teacher's own Server does.
type Server struct {
	// Handler processes every request read off a connection.
	Handler RequestHandler

	// Name is sent in the Server response header. defaultServerName is
	// used when empty.
	Name string

	// Concurrency bounds the number of connections served at once.
	// DefaultConcurrency is used when zero.
	Concurrency int

	ReadBufferSize  int
	WriteBufferSize int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	MaxConnsPerIP int

	// Logger receives operational log lines. A zap-backed default is used
	// when nil; see NewDefaultLogger.
	Logger Logger

	// Trace, when set, receives lifecycle callbacks for every connection
	// and request. Any field may be left nil.
	Trace *ServerTrace

	// ConnState, when set, is notified when a connection dispatched by
	// Serve is closed (StateClosed) or hijacked (StateHijacked). StateNew,
	// StateActive and StateIdle are not reported.
	ConnState func(net.Conn, ConnState)

	concurrency      uint32
	perIPConnCounter perIPConnCounter
	serverNameBytes  atomic.Value

	readerPool sync.Pool
	writerPool sync.Pool
}

func (s *Server) handler() RequestHandler {
	if s.Handler == nil {
		panic("BUG: httpcore.Server.Handler must be set before Serve is called")
	}
	return s.Handler
}

func (s *Server) readBufferSize() int {
	if s.ReadBufferSize > 0 {
		return s.ReadBufferSize
	}
	return defaultReadBufferSize
}

func (s *Server) writeBufferSize() int {
	if s.WriteBufferSize > 0 {
		return s.WriteBufferSize
	}
	return defaultWriteBufferSize
}

func (s *Server) serverName() []byte {
	v := s.serverNameBytes.Load()
	if v != nil {
		return v.([]byte)
	}
	name := []byte(s.Name)
	if len(name) == 0 {
		name = defaultServerName
	}
	s.serverNameBytes.Store(name)
	return name
}

func (s *Server) getConcurrency() int {
	if s.Concurrency > 0 {
		return s.Concurrency
	}
	return DefaultConcurrency
}

func (s *Server) logger() Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return defaultLogger
}

// acquireBufioReader and its Writer counterpart pool *bufio.Reader/Writer
// per Server, grounded on the teacher's acquireReader/acquireWriter which
// pool per-RequestCtx.s instead of per-Conn.
func (s *Server) acquireBufioReader(nc net.Conn) *bufio.Reader {
	v := s.readerPool.Get()
	if v == nil {
		return bufio.NewReaderSize(nc, s.readBufferSize())
	}
	r := v.(*bufio.Reader)
	r.Reset(nc)
	return r
}

func (s *Server) releaseBufioReader(r *bufio.Reader) {
	r.Reset(nil)
	s.readerPool.Put(r)
}

func (s *Server) acquireBufioWriter(nc net.Conn) *bufio.Writer {
	v := s.writerPool.Get()
	if v == nil {
		return bufio.NewWriterSize(nc, s.writeBufferSize())
	}
	w := v.(*bufio.Writer)
	w.Reset(nc)
	return w
}

func (s *Server) releaseBufioWriter(w *bufio.Writer) {
	w.Reset(nil)
	s.writerPool.Put(w)
}

// Serve accepts connections from ln until it returns a permanent error,
// dispatching each to a pooled worker goroutine.
func (s *Server) Serve(ln net.Listener) error {
	startServerDateUpdater()
	defer stopServerDateUpdater()

	var lastOverflowErrorTime time.Time
	var lastPerIPErrorTime time.Time

	maxWorkersCount := s.getConcurrency()
	wp := &workerPool{
		WorkerFunc:      s.serveConn,
		MaxWorkersCount: maxWorkersCount,
		Logger:          s.logger(),
		connState:       s.notifyConnState,
	}
	wp.Start()
	defer wp.Stop()

	for {
		c, err := acceptConn(s, ln, &lastPerIPErrorTime)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !wp.Serve(c) {
			c.Close()
			if time.Since(lastOverflowErrorTime) > time.Minute {
				s.logger().Printf("cannot serve connection: %d concurrent connections already served", maxWorkersCount)
				lastOverflowErrorTime = time.Now()
			}
		}
	}
}

func (s *Server) notifyConnState(c net.Conn, st ConnState) {
	if s.ConnState != nil {
		s.ConnState(c, st)
	}
}

func acceptConn(s *Server, ln net.Listener, lastPerIPErrorTime *time.Time) (net.Conn, error) {
	for {
		c, err := ln.Accept()
		if err != nil {
			var netErr net.Error
			if ne, ok := err.(net.Error); ok {
				netErr = ne
			}
			if netErr != nil && netErr.Timeout() {
				s.logger().Printf("temporary error when accepting new connections: %s", err)
				time.Sleep(time.Second)
				continue
			}
			if err != io.EOF && !strings.Contains(err.Error(), "use of closed network connection") {
				s.logger().Printf("permanent error when accepting new connections: %s", err)
				return nil, err
			}
			return nil, io.EOF
		}
		if c == nil {
			panic("BUG: net.Listener returned (nil, nil)")
		}
		if s.MaxConnsPerIP > 0 {
			pic := wrapPerIPConn(s, c)
			if pic == nil {
				c.Close()
				if time.Since(*lastPerIPErrorTime) > time.Minute {
					s.logger().Printf("number of connections from %s exceeds MaxConnsPerIP=%d", getConnIP4(c), s.MaxConnsPerIP)
					*lastPerIPErrorTime = time.Now()
				}
				continue
			}
			return pic, nil
		}
		return c, nil
	}
}

func wrapPerIPConn(s *Server, c net.Conn) net.Conn {
	ip := getUint32IP(c)
	if ip == 0 {
		return c
	}
	n := s.perIPConnCounter.Register(ip)
	if n > s.MaxConnsPerIP {
		s.perIPConnCounter.Unregister(ip)
		return nil
	}
	return acquirePerIPConn(c, ip, &s.perIPConnCounter)
}

// ServeConn serves HTTP requests from a single already-accepted
// connection, enforcing Server.Concurrency and Server.MaxConnsPerIP the
// same way Serve does for listener-sourced connections.
func (s *Server) ServeConn(c net.Conn) error {
	if s.MaxConnsPerIP > 0 {
		pic := wrapPerIPConn(s, c)
		if pic == nil {
			c.Close()
			return ErrPerIPConnLimit
		}
		c = pic
	}

	n := atomic.AddUint32(&s.concurrency, 1)
	if n > uint32(s.getConcurrency()) {
		atomic.AddUint32(&s.concurrency, ^uint32(0))
		c.Close()
		return ErrConcurrencyLimit
	}

	err := s.serveConn(c)
	atomic.AddUint32(&s.concurrency, ^uint32(0))

	err1 := c.Close()
	if err == nil {
		err = err1
	}
	return err
}

func (s *Server) serveConn(c net.Conn) error {
	conn := newConn(s, c)
	err := conn.serve()
	if trace := s.Trace; trace != nil && trace.ClosedConn != nil {
		trace.ClosedConn(c)
	}
	return err
}

// ListenAndServe listens on addr and serves HTTP requests, blocking until
// the listener returns a permanent error.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// ListenAndServeTLS is like ListenAndServe but terminates TLS using the
// given certificate and key files before handing connections to Serve.
func (s *Server) ListenAndServeTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return err
	}
	ln, err := tls.Listen("tcp", addr, &tls.Config{Certificates: []tls.Certificate{cert}})
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve is a package-level convenience wrapper over Server.Serve using
// default settings.
func Serve(ln net.Listener, handler RequestHandler) error {
	return (&Server{Handler: handler}).Serve(ln)
}

// ListenAndServe is a package-level convenience wrapper over
// Server.ListenAndServe using default settings.
func ListenAndServe(addr string, handler RequestHandler) error {
	return (&Server{Handler: handler}).ListenAndServe(addr)
}
