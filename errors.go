package httpcore

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// Sentinel errors returned by the wire parser, body codec and connection
// driver. Callers should compare with errors.Is, since the driver wraps
// some of these with connection context via pkgerrors.Wrap.
var (
	// errNeedMore is not returned by the incremental parsers, which report
	// an incomplete token with parsePending instead. It never escapes to a
	// RequestHandler.
	errNeedMore = errors.New("need more data")

	ErrNothingRead = errors.New("httpcore: client closed the connection before sending anything")

	ErrBadRequestLine  = errors.New("httpcore: malformed request line")
	ErrBadHeaderField  = errors.New("httpcore: malformed header field")
	ErrHeadersTooLarge = errors.New("httpcore: request head exceeds ReadBufferSize")
	ErrTooManyHeaders  = errors.New("httpcore: request has more than MaxHeaders fields")

	ErrBrokenChunk       = errors.New("httpcore: malformed chunked transfer-encoding")
	ErrChunkTooLarge     = errors.New("httpcore: chunk size exceeds MaxChunkSize")
	ErrBadTrailer        = errors.New("httpcore: malformed chunked trailer")
	ErrContentLengthSkew = errors.New("httpcore: malformed Content-Length value")

	// ErrInvalidCodings is returned by selectBodyCoding when a message
	// carries both Content-Length and Transfer-Encoding, lists more than
	// four transfer codings, or its last listed coding isn't chunked.
	ErrInvalidCodings = errors.New("httpcore: invalid combination of Content-Length and Transfer-Encoding")

	// ErrUnknownCodings is returned by selectBodyCoding when a
	// Transfer-Encoding list names a coding other than chunked in a
	// non-final position; this core only understands chunked framing.
	ErrUnknownCodings = errors.New("httpcore: unsupported transfer coding")

	ErrBodyAlreadyConsumed = errors.New("httpcore: request body was already consumed")
	ErrBodyHandoffClosed   = errors.New("httpcore: body handoff was closed by the peer")

	// ErrPerIPConnLimit is returned from Server.ServeConn when the number
	// of connections from the peer's IP exceeds Server.MaxConnsPerIP.
	ErrPerIPConnLimit = errors.New("httpcore: too many connections per ip")

	// ErrConcurrencyLimit is returned from Server.ServeConn when accepting
	// the connection would exceed Server.Concurrency concurrently served
	// connections.
	ErrConcurrencyLimit = errors.New("httpcore: concurrency limit exceeded")

	errHijacked = errors.New("httpcore: connection hijacked")
)

// wrapConnErr attaches connection-identifying context to err without
// breaking errors.Is/errors.As chains. Grounded in the teacher's plain
// fmt.Errorf("%w", ...) style, upgraded to the pkg/errors wrapper the
// rest of the pack (packetd) uses so the driver can still recover the
// root cause with pkgerrors.Cause when logging.
func wrapConnErr(id string, err error) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrapf(err, "conn %s", id)
}
