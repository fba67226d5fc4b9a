package httpcore

import (
	"bufio"
)

// Response is an outgoing HTTP/1.1 response built by a RequestHandler.
type Response struct {
	StatusCode int
	Header     *HeaderMap
	Body       Body

	// connectionClose, when set by the handler or inferred from the
	// request, tells the driver to close the connection after writing
	// this response instead of looping for another pipelined request.
	connectionClose bool
}

// NewResponse returns a 200 OK response with an empty body and an empty
// header set, ready for a handler to populate.
func NewResponse() *Response {
	return &Response{
		StatusCode: StatusOK,
		Header:     NewHeaderMap(8),
		Body:       EmptyBody(),
	}
}

// SetConnectionClose marks the response so the driver closes the
// connection after writing it.
func (r *Response) SetConnectionClose() { r.connectionClose = true }

func (r *Response) reset() {
	r.StatusCode = StatusOK
	r.Header.Clear()
	r.Body = EmptyBody()
	r.connectionClose = false
}

// writeResponseHead serializes the status line, a Date header (unless the
// handler already set one), Content-Length (when the body is fully
// buffered) or Transfer-Encoding: chunked (when it is not), any
// handler-set headers, and the terminating CRLFCRLF. Grounded in
// h1/spec/state.rs's write_response: status line, Date, Content-Length,
// headers, blank line, in that order.
func writeResponseHead(w *bufio.Writer, resp *Response, serverName []byte, bodyLen int, chunked bool) error {
	if _, err := w.Write(strHTTP11); err != nil {
		return err
	}
	if err := w.WriteByte(' '); err != nil {
		return err
	}
	if _, err := w.Write(AppendUint(nil, resp.StatusCode)); err != nil {
		return err
	}
	if err := w.WriteByte(' '); err != nil {
		return err
	}
	if _, err := w.WriteString(StatusMessage(resp.StatusCode)); err != nil {
		return err
	}
	if _, err := w.Write(strCRLF); err != nil {
		return err
	}

	if resp.Header.Get(strDate) == nil {
		if err := writeHeaderLine(w, strDate, getServerDate()); err != nil {
			return err
		}
	}
	if resp.Header.Get(strServer) == nil && len(serverName) > 0 {
		if err := writeHeaderLine(w, strServer, serverName); err != nil {
			return err
		}
	}
	if chunked {
		if err := writeHeaderLine(w, strTransferEncoding, strChunked); err != nil {
			return err
		}
	} else if resp.Header.Get(strContentLength) == nil {
		if err := writeHeaderLine(w, strContentLength, AppendUint(nil, bodyLen)); err != nil {
			return err
		}
	}
	if resp.connectionClose && resp.Header.Get(strConnection) == nil {
		if err := writeHeaderLine(w, strConnection, strClose); err != nil {
			return err
		}
	}

	var headerErr error
	resp.Header.Each(func(name, value []byte) {
		if headerErr != nil {
			return
		}
		headerErr = writeHeaderLine(w, name, value)
	})
	if headerErr != nil {
		return headerErr
	}

	_, err := w.Write(strCRLF)
	return err
}

func writeHeaderLine(w *bufio.Writer, name, value []byte) error {
	if _, err := w.Write(name); err != nil {
		return err
	}
	if _, err := w.Write(strColonSpace); err != nil {
		return err
	}
	if _, err := w.Write(value); err != nil {
		return err
	}
	_, err := w.Write(strCRLF)
	return err
}
