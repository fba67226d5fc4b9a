package httpcore

import (
	"bufio"
	"context"
	"io"
	"net"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
)

// connPhase names one step of the per-request state machine a Conn drives.
// Grounded in the original driver's Phase enum (Reqline/Header/Service/
// Drain/Flush/Cleanup), with "Flush" split into writing the response head
// and streaming the response body. The concurrent body pump runs inside
// phaseInvokeHandler rather than in a phase of its own.
type connPhase int

const (
	phaseReadRequestLine connPhase = iota
	phaseReadHeaders
	phaseInvokeHandler
	phaseDrainBody
	phaseWriteResponseHead
	phaseStreamResponseBody
	phaseReset
)

// maxSyncBodySize is the largest request body the driver will buffer
// up front and hand the RequestHandler synchronously, on the driver's own
// goroutine, the way fasthttp always does. Past this size the body is
// streamed through a handoff channel into a handler goroutine instead, so
// the driver can keep pumping bytes off the wire concurrently.
const maxSyncBodySize = MaxChunkSize

// Conn drives one HTTP/1.1 connection's request/response cycle through its
// six phases, reusing its read buffer, Request and Response across
// pipelined requests.
type Conn struct {
	nc     net.Conn
	server *Server
	br     *bufio.Reader
	bw     *bufio.Writer

	req  *Request
	resp *Response

	phase connPhase
}

func newConn(s *Server, nc net.Conn) *Conn {
	return &Conn{
		server: s,
		nc:     nc,
		req:    newRequest(),
		resp:   NewResponse(),
	}
}

// serve runs the phase machine until the peer closes the connection, a
// protocol error occurs, or a response demands connection close.
func (c *Conn) serve() error {
	c.br = c.server.acquireBufioReader(c.nc)
	c.bw = c.server.acquireBufioWriter(c.nc)
	defer c.server.releaseBufioReader(c.br)
	defer c.server.releaseBufioWriter(c.bw)

	trace := c.server.Trace
	if trace != nil && trace.GotConn != nil {
		trace.GotConn(c.nc)
	}

	for {
		if c.server.ReadTimeout > 0 {
			if err := c.nc.SetReadDeadline(time.Now().Add(c.server.ReadTimeout)); err != nil {
				return err
			}
		}

		c.phase = phaseReadRequestLine
		rl, err := c.readRequestLine()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return wrapConnErr(c.req.ID.String(), err)
		}

		if trace != nil && trace.ActivatedConn != nil {
			trace.ActivatedConn(c.nc)
		}

		c.phase = phaseReadHeaders
		if err := c.readHeaders(); err != nil {
			return wrapConnErr(c.req.ID.String(), err)
		}

		c.req.ID = uuid.New()
		c.req.Method = rl.method
		c.req.Target = rl.target
		c.req.Version = rl.version
		c.req.RemoteAddr = c.nc.RemoteAddr()
		c.req.LocalAddr = c.nc.LocalAddr()

		if trace != nil && trace.GotRequest != nil {
			trace.GotRequest(c.req)
		}

		c.phase = phaseInvokeHandler
		resp, handlerErr := c.invokeHandler()

		c.phase = phaseDrainBody
		// invokeHandler has already fully drained the body via the
		// concurrent pump or the synchronous buffered read; nothing left
		// to do here besides naming the step for observability.

		if handlerErr != nil {
			c.server.logger().Printf("httpcore: handler error for conn %s: %v", c.req.ID, handlerErr)
			resp = errorResponse(StatusInternalServerError, "")
		}
		c.resp = resp

		if c.server.WriteTimeout > 0 {
			if err := c.nc.SetWriteDeadline(time.Now().Add(c.server.WriteTimeout)); err != nil {
				return err
			}
		}

		connClose := c.req.ConnectionClose() || c.resp.connectionClose

		c.phase = phaseWriteResponseHead
		c.phase = phaseStreamResponseBody
		writeErr := c.writeResponse(connClose)
		if trace != nil && trace.WroteResponse != nil {
			trace.WroteResponse(c.req, c.resp, writeErr)
		}
		if writeErr != nil {
			return wrapConnErr(c.req.ID.String(), writeErr)
		}

		if trace != nil && trace.IdledConn != nil {
			trace.IdledConn(c.nc)
		}

		if connClose {
			return nil
		}

		c.phase = phaseReset
		c.req.reset()
	}
}

func (c *Conn) readRequestLine() (reqLine, error) {
	for {
		buf, _ := c.br.Peek(c.br.Buffered())
		if len(buf) == 0 {
			if _, err := c.br.Peek(1); err != nil {
				return reqLine{}, io.EOF
			}
			continue
		}
		rl, n, status, err := parseRequestLine(buf)
		switch status {
		case parseOK:
			if _, derr := c.br.Discard(n); derr != nil {
				return reqLine{}, derr
			}
			method := append([]byte(nil), rl.method...)
			target := append([]byte(nil), rl.target...)
			version := append([]byte(nil), rl.version...)
			return reqLine{method: method, target: target, version: version}, nil
		case parsePending:
			if err := c.fillMore(); err != nil {
				return reqLine{}, err
			}
		default:
			return reqLine{}, err
		}
	}
}

func (c *Conn) readHeaders() error {
	for {
		buf, _ := c.br.Peek(c.br.Buffered())
		name, value, n, status, err := parseHeaderField(buf)
		switch status {
		case parseOK:
			if _, derr := c.br.Discard(n); derr != nil {
				return derr
			}
			if len(name) == 0 {
				return nil
			}
			if c.req.Header.Len() >= MaxHeaders {
				return ErrTooManyHeaders
			}
			if err := c.req.Header.TryAppend(name, value); err != nil {
				return err
			}
		case parsePending:
			if err := c.fillMore(); err != nil {
				return err
			}
		default:
			return err
		}
	}
}

// fillMore grows the bufio.Reader's view by reading at least one more byte
// from the wire, used when a parser returns parsePending.
func (c *Conn) fillMore() error {
	_, err := c.br.Peek(c.br.Buffered() + 1)
	if err != nil {
		if err == bufio.ErrBufferFull {
			return ErrHeadersTooLarge
		}
		return err
	}
	return nil
}

type handlerResult struct {
	resp *Response
	err  error
}

// invokeHandler runs phase 3: select the body's wire coding, then either
// buffer it and call the handler synchronously (the common case, no
// goroutine spawned) or hand it to the handler on its own goroutine while
// this goroutine concurrently pumps the body off the wire through a
// handoff channel.
func (c *Conn) invokeHandler() (*Response, error) {
	coding, length, err := selectBodyCoding(c.req.Header)
	if err != nil {
		// A coding-selection failure is a protocol error (conflicting or
		// malformed framing headers), not a handler failure: respond and
		// close without ever invoking the handler, per the ProtoError row
		// of the error handling table.
		resp := errorResponse(StatusBadRequest, "")
		resp.SetConnectionClose()
		return resp, nil
	}

	ctx := context.Background()

	switch coding {
	case codingEmpty:
		c.req.Body = EmptyBody()
		return c.server.handler()(ctx, c.req)

	case codingContentLength:
		if length <= maxSyncBodySize {
			buf := make([]byte, length)
			if _, err := ioReadFull(c.br, buf); err != nil {
				return nil, err
			}
			c.req.Body = BytesBody(buf)
			return c.server.handler()(ctx, c.req)
		}
		return c.invokeHandlerStreaming(ctx, func(send *SendHandle) error {
			return pumpContentLength(send, c.br, length)
		})

	case codingChunked:
		return c.invokeHandlerStreaming(ctx, func(send *SendHandle) error {
			return pumpChunked(send, c.br)
		})

	default:
		c.req.Body = EmptyBody()
		return c.server.handler()(ctx, c.req)
	}
}

func (c *Conn) invokeHandlerStreaming(ctx context.Context, pump func(*SendHandle) error) (*Response, error) {
	send, recv := NewBodyHandoff()
	c.req.Body = HandoffBody(recv)

	done := make(chan handlerResult, 1)
	go func() {
		resp, err := c.server.handler()(ctx, c.req)
		recv.Detach()
		done <- handlerResult{resp: resp, err: err}
	}()

	pumpErr := pump(send)
	send.Close(pumpErr)

	result := <-done

	if result.err != nil {
		return nil, result.err
	}
	return result.resp, nil
}

// pumpContentLength copies exactly length bytes from br into send, one
// bounded chunk at a time. If the consumer detaches early (the handler
// returned without reading the whole body), it switches to discarding the
// remaining bytes directly so wire framing stays correct for the next
// pipelined request.
func pumpContentLength(send *SendHandle, br *bufio.Reader, length int) error {
	remain := length
	bb := AcquireByteBuffer()
	defer ReleaseByteBuffer(bb)
	if cap(bb.B) < maxSyncBodySize {
		bb.B = make([]byte, maxSyncBodySize)
	} else {
		bb.B = bb.B[:maxSyncBodySize]
	}
	buf := bb.B
	detached := false
	for remain > 0 {
		toRead := len(buf)
		if toRead > remain {
			toRead = remain
		}
		n, err := br.Read(buf[:toRead])
		remain -= n
		if n > 0 && !detached {
			if serr := send.Send(buf[:n]); serr != nil {
				detached = true
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// pumpChunked decodes a chunked body and forwards each decoded chunk to
// send, following the same detach-then-drain fallback as
// pumpContentLength.
func pumpChunked(send *SendHandle, br *bufio.Reader) error {
	cr := newChunkedBodyReader(br)
	bb := AcquireByteBuffer()
	defer ReleaseByteBuffer(bb)
	if cap(bb.B) < maxSyncBodySize {
		bb.B = make([]byte, maxSyncBodySize)
	} else {
		bb.B = bb.B[:maxSyncBodySize]
	}
	buf := bb.B
	detached := false
	for {
		n, err := cr.Read(buf)
		if n > 0 && !detached {
			if serr := send.Send(buf[:n]); serr != nil {
				detached = true
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func errorResponse(statusCode int, msg string) *Response {
	resp := NewResponse()
	resp.StatusCode = statusCode
	resp.Header.Insert(strContentType, defaultContentType)
	resp.Body = BytesBody([]byte(msg))
	return resp
}

// writeResponse serializes the response head and body to the connection's
// write buffer and flushes it. A stream-kind body has no known length up
// front, so it is framed as Transfer-Encoding: chunked and copied through
// writeChunk as it is read, instead of being buffered to compute a
// Content-Length.
func (c *Conn) writeResponse(connClose bool) error {
	if connClose {
		c.resp.SetConnectionClose()
	}
	if c.resp.Body.IsStream() {
		return c.writeChunkedResponse()
	}

	body, err := c.resp.Body.Bytes()
	if err != nil {
		return pkgerrors.Wrap(err, "reading response body")
	}
	if err := writeResponseHead(c.bw, c.resp, c.server.serverName(), len(body), false); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := c.bw.Write(body); err != nil {
			return err
		}
	}
	return c.bw.Flush()
}

// writeChunkedResponse streams a stream-kind Body out as a chunked message,
// one read-sized chunk at a time, terminated by the zero-length chunk.
func (c *Conn) writeChunkedResponse() error {
	r, err := c.resp.Body.Reader()
	if err != nil {
		return pkgerrors.Wrap(err, "reading response body")
	}
	if err := writeResponseHead(c.bw, c.resp, c.server.serverName(), 0, true); err != nil {
		return err
	}

	bb := AcquireByteBuffer()
	defer ReleaseByteBuffer(bb)
	if cap(bb.B) < maxSyncBodySize {
		bb.B = make([]byte, maxSyncBodySize)
	} else {
		bb.B = bb.B[:maxSyncBodySize]
	}
	buf := bb.B

	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			if werr := writeChunk(c.bw, buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return pkgerrors.Wrap(rerr, "reading response body")
		}
	}

	if err := writeChunkedTrailer(c.bw); err != nil {
		return err
	}
	return c.bw.Flush()
}
