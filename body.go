package httpcore

import "io"

type bodyKind int

const (
	bodyKindEmpty bodyKind = iota
	bodyKindBytes
	bodyKindHandoff
	bodyKindStream
)

// Body is a tagged union over the three ways a message body can reach a
// handler: fully buffered bytes (short requests, and every response the
// handler builds in memory), a handoff-channel RecvHandle (a request body
// the driver is still pumping off the wire), or an arbitrary io.Reader (a
// handler-supplied streaming response body). Grounded in body.rs's
// Body{repr: Repr} enum.
type Body struct {
	kind     bodyKind
	bytes    []byte
	handoff  *RecvHandle
	stream   io.Reader
	consumed bool
}

// EmptyBody returns a Body with no content.
func EmptyBody() Body { return Body{kind: bodyKindEmpty} }

// BytesBody wraps an already-fully-read body.
func BytesBody(b []byte) Body { return Body{kind: bodyKindBytes, bytes: b} }

// HandoffBody wraps the consumer end of a streaming body handoff.
func HandoffBody(r *RecvHandle) Body { return Body{kind: bodyKindHandoff, handoff: r} }

// StreamBody wraps an arbitrary reader as a response body, e.g. for
// handler-driven chunked output.
func StreamBody(r io.Reader) Body { return Body{kind: bodyKindStream, stream: r} }

// IsEmpty reports whether the body carries no content at all.
func (b *Body) IsEmpty() bool { return b.kind == bodyKindEmpty }

// IsStream reports whether the body's length is unknown up front, meaning a
// writer must frame it as chunked rather than buffering it to compute a
// Content-Length.
func (b *Body) IsStream() bool { return b.kind == bodyKindStream }

// Reader returns an io.Reader over the body's content. It may only be
// called once; a second call returns ErrBodyAlreadyConsumed, matching the
// original's move-only Body semantics translated into a Go runtime check.
func (b *Body) Reader() (io.Reader, error) {
	if b.consumed {
		return nil, ErrBodyAlreadyConsumed
	}
	b.consumed = true
	switch b.kind {
	case bodyKindEmpty:
		return io.NopCloser(noBody{}), nil
	case bodyKindBytes:
		return noBodyReader(b.bytes), nil
	case bodyKindHandoff:
		return b.handoff, nil
	case bodyKindStream:
		return b.stream, nil
	default:
		return nil, ErrBodyAlreadyConsumed
	}
}

// Bytes returns the body's content, reading it fully into memory first if
// it is a stream or handoff body. It may only be called once, same as
// Reader.
func (b *Body) Bytes() ([]byte, error) {
	if b.kind == bodyKindBytes && !b.consumed {
		b.consumed = true
		return b.bytes, nil
	}
	r, err := b.Reader()
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

type noBody struct{}

func (noBody) Read([]byte) (int, error) { return 0, io.EOF }

func noBodyReader(b []byte) io.Reader {
	return &byteSliceReader{b: b}
}

type byteSliceReader struct {
	b []byte
}

func (r *byteSliceReader) Read(p []byte) (int, error) {
	if len(r.b) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.b)
	r.b = r.b[n:]
	return n, nil
}
