package httpcore

import (
	"io"
	"sync"
	"sync/atomic"
)

// Body handoff flag bits, mirroring the WANT/SHARED/DATA three-bit word
// from the original body/handle/shared.rs. The Go port drops the manual
// two-party reference count the Rust Drop impls maintain: the cell is an
// ordinary heap object, and it stays alive for as long as either endpoint
// holds a pointer to it, which the garbage collector already guarantees.
const (
	handoffWant   uint32 = 1 << 0 // consumer is parked waiting for data
	handoffShared uint32 = 1 << 1 // both endpoints are still attached
	handoffData   uint32 = 1 << 2 // producer has published a chunk
)

// handoffCell is the shared state a SendHandle/RecvHandle pair communicate
// through. A closed notify channel is this port's stand-in for the Rust
// Waker: closing it (rather than sending on it) lets multiple waiters
// observe the same wakeup without a race on who drains the value.
type handoffCell struct {
	flag atomic.Uint32

	mu     sync.Mutex
	chunk  []byte
	err    error
	notify chan struct{}
}

func newHandoffCell() *handoffCell {
	c := &handoffCell{notify: make(chan struct{})}
	c.flag.Store(handoffShared)
	return c
}

func (c *handoffCell) wake() {
	c.mu.Lock()
	close(c.notify)
	c.notify = make(chan struct{})
	c.mu.Unlock()
}

// SendHandle is the connection driver's end of a body handoff: it pumps
// bytes read off the wire into the cell for the handler goroutine to
// consume.
type SendHandle struct {
	cell *handoffCell
}

// RecvHandle is the handler's end of a body handoff, exposed to user code
// as an io.Reader via Read.
type RecvHandle struct {
	cell *handoffCell
}

// NewBodyHandoff creates a connected SendHandle/RecvHandle pair for
// streaming a request body from the driver goroutine into the handler
// goroutine without buffering the whole body up front.
func NewBodyHandoff() (*SendHandle, *RecvHandle) {
	cell := newHandoffCell()
	return &SendHandle{cell: cell}, &RecvHandle{cell: cell}
}

// Send publishes chunk to the consumer and blocks until it has been
// retrieved by a Read call, or the consumer detaches. chunk is not copied;
// the caller must not reuse it until Send returns.
func (s *SendHandle) Send(chunk []byte) error {
	c := s.cell
	c.mu.Lock()
	if c.flag.Load()&handoffShared == 0 {
		c.mu.Unlock()
		return ErrBodyHandoffClosed
	}
	c.chunk = chunk
	c.flag.Or(handoffData)
	c.mu.Unlock()
	c.wake()

	for {
		c.mu.Lock()
		done := c.flag.Load()&handoffData == 0 || c.flag.Load()&handoffShared == 0
		ch := c.notify
		c.mu.Unlock()
		if done {
			break
		}
		<-ch
	}

	if c.flag.Load()&handoffShared == 0 {
		return ErrBodyHandoffClosed
	}
	return nil
}

// Close signals the consumer that no more chunks are coming (the body is
// fully drained or the connection is being torn down). It is the Go
// analogue of the Rust SendHandle Drop impl.
func (s *SendHandle) Close(err error) {
	c := s.cell
	c.mu.Lock()
	c.err = err
	c.flag.And(^handoffShared)
	c.mu.Unlock()
	c.wake()
}

// Read implements io.Reader, blocking until the driver goroutine has
// published a chunk, the body is closed, or the send side aborts the
// connection (ConnectionAborted semantics from the original drop protocol).
func (r *RecvHandle) Read(p []byte) (int, error) {
	c := r.cell
	for {
		c.mu.Lock()
		if c.flag.Load()&handoffData != 0 {
			n := copy(p, c.chunk)
			c.chunk = c.chunk[n:]
			if len(c.chunk) == 0 {
				c.flag.And(^handoffData)
			}
			c.mu.Unlock()
			if n > 0 {
				c.wake()
				return n, nil
			}
			continue
		}
		if c.flag.Load()&handoffShared == 0 {
			err := c.err
			c.mu.Unlock()
			if err == nil {
				err = errBodyHandoffEOF
			}
			return 0, err
		}
		c.flag.Or(handoffWant)
		ch := c.notify
		c.mu.Unlock()
		<-ch
	}
}

// Detach tells the producer the consumer is gone, so a Send in progress on
// the other end unblocks with ErrBodyHandoffClosed instead of hanging
// forever. This is what a cancelled request context must call.
func (r *RecvHandle) Detach() {
	c := r.cell
	c.mu.Lock()
	c.flag.And(^handoffShared)
	c.mu.Unlock()
	c.wake()
}

var errBodyHandoffEOF = io.EOF
