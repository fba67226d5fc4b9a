package httpcore

import (
	"bytes"
	"net"

	"github.com/google/uuid"
)

// Request is an incoming HTTP/1.1 or HTTP/2 request as handed to a
// RequestHandler. Header names in Header are case-insensitive, matching
// HTTP semantics; HeaderMap normalizes comparisons via toLowerTable.
type Request struct {
	ID      uuid.UUID
	Method  []byte
	Target  []byte
	Version []byte
	Header  *HeaderMap
	Body    Body

	RemoteAddr net.Addr
	LocalAddr  net.Addr
}

// IsGet reports whether the request method is GET.
func (r *Request) IsGet() bool { return bytes.Equal(r.Method, strGet) }

// IsHead reports whether the request method is HEAD.
func (r *Request) IsHead() bool { return bytes.Equal(r.Method, strHead) }

// IsPost reports whether the request method is POST.
func (r *Request) IsPost() bool { return bytes.Equal(r.Method, strPost) }

// ConnectionClose reports whether the request asked for the connection to
// be closed after this response (explicit "Connection: close", or an
// HTTP/1.0 request without "Connection: keep-alive").
func (r *Request) ConnectionClose() bool {
	v := r.Header.Get(strConnection)
	if v != nil && headerNameEqual(v, strClose) {
		return true
	}
	if bytes.Equal(r.Version, strHTTP10) {
		return v == nil || !headerNameEqual(v, []byte("keep-alive"))
	}
	return false
}

func newRequest() *Request {
	return &Request{
		Header: NewHeaderMap(16),
	}
}

// reset clears the request for reuse on the next pipelined message.
func (r *Request) reset() {
	r.Method = nil
	r.Target = nil
	r.Version = nil
	r.Header.Clear()
	r.Body = EmptyBody()
}
