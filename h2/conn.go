package h2

import (
	"bufio"
	"context"
	"net"

	"github.com/student/httpcore"
	"github.com/student/httpcore/hpack"
)

// RequestHandler is the HTTP/2 counterpart of httpcore.RequestHandler,
// reusing the same Request/Response types so one handler function can
// serve both protocol versions.
type RequestHandler func(ctx context.Context, req *httpcore.Request) (*httpcore.Response, error)

// Conn drives one HTTP/2 connection: preface, SETTINGS exchange, then a
// frame loop dispatching HEADERS/DATA into per-stream buffers and
// replying with HEADERS/DATA. A GOAWAY from the peer ends the loop; the
// connection never sends GOAWAY itself. It does not implement flow control,
// stream priority, or server push; see DESIGN.md.
type Conn struct {
	nc      net.Conn
	br      *bufio.Reader
	bw      *bufio.Writer
	handler RequestHandler

	dec *hpack.Decoder
	enc *hpack.Encoder

	streams  *streamTable
	settings Settings
}

// NewConn wraps an already-accepted connection whose client preface has
// not yet been read.
func NewConn(nc net.Conn, handler RequestHandler) *Conn {
	return &Conn{
		nc:       nc,
		br:       bufio.NewReaderSize(nc, maxFrameSize),
		bw:       bufio.NewWriterSize(nc, maxFrameSize),
		handler:  handler,
		dec:      hpack.NewDecoder(),
		enc:      hpack.NewEncoder(),
		streams:  newStreamTable(),
		settings: DefaultSettings(),
	}
}

// Serve performs the preface/SETTINGS handshake and then services frames
// until the connection closes or a connection-level error occurs.
func (c *Conn) Serve(ctx context.Context) error {
	if err := ReadPreface(c.br); err != nil {
		return err
	}
	if err := WriteFrame(c.bw, FrameSettings, 0, 0, AppendSettingsFrame(nil, DefaultSettings())); err != nil {
		return err
	}
	if err := c.bw.Flush(); err != nil {
		return err
	}

	for {
		f, err := ReadFrame(c.br)
		if err != nil {
			return err
		}
		if err := c.handleFrame(ctx, f); err != nil {
			return err
		}
	}
}

func (c *Conn) handleFrame(ctx context.Context, f *FrameHeader) error {
	switch f.Type {
	case FrameSettings:
		return c.handleSettings(f)
	case FramePing:
		return c.handlePing(f)
	case FrameHeaders:
		return c.handleHeaders(ctx, f)
	case FrameData:
		return c.handleData(ctx, f)
	case FrameWindowUpdate, FramePriority, FrameRSTStream:
		return nil // accepted and ignored; no flow control or priority tree.
	case FrameGoAway:
		return errPeerGoingAway
	default:
		return nil
	}
}

func (c *Conn) handleSettings(f *FrameHeader) error {
	if f.Flags&FlagAck != 0 {
		if len(f.Payload) != 0 {
			return errUnexpectedAck
		}
		return nil
	}
	if err := ParseSettingsFrame(&c.settings, f.Payload); err != nil {
		return err
	}
	if err := WriteFrame(c.bw, FrameSettings, FlagAck, 0, nil); err != nil {
		return err
	}
	return c.bw.Flush()
}

func (c *Conn) handlePing(f *FrameHeader) error {
	if f.Flags&FlagAck != 0 {
		return nil
	}
	if err := WriteFrame(c.bw, FramePing, FlagAck, 0, f.Payload); err != nil {
		return err
	}
	return c.bw.Flush()
}

func (c *Conn) handleHeaders(ctx context.Context, f *FrameHeader) error {
	st := c.streams.getOrCreate(f.StreamID)

	fields, err := c.dec.DecodeBlock(stripPadding(f), nil)
	if err != nil {
		return err
	}

	st.fields = fields
	if f.Flags&FlagEndStream != 0 {
		st.state = streamHalfClosedRemote
	}
	// CONTINUATION frames are not supported: a HEADERS frame without
	// END_HEADERS is treated as carrying the complete header block.

	if st.state == streamHalfClosedRemote {
		req := fieldsToRequest(st.fields)
		req.Body = httpcore.BytesBody(st.body)
		return c.respond(ctx, f.StreamID, req)
	}
	return nil
}

func (c *Conn) handleData(ctx context.Context, f *FrameHeader) error {
	st := c.streams.get(f.StreamID)
	if st == nil {
		return nil
	}
	st.body = append(st.body, stripPadding(f)...)
	if f.Flags&FlagEndStream != 0 {
		st.state = streamHalfClosedRemote
		req := fieldsToRequest(st.fields)
		req.Body = httpcore.BytesBody(st.body)
		return c.respond(ctx, f.StreamID, req)
	}
	return nil
}

func (c *Conn) respond(ctx context.Context, streamID uint32, req *httpcore.Request) error {
	resp, err := c.handler(ctx, req)
	if err != nil {
		resp = httpcore.NewResponse()
		resp.StatusCode = httpcore.StatusInternalServerError
	}

	body, err := resp.Body.Bytes()
	if err != nil {
		body = nil
	}

	statusValue := string(httpcore.AppendUint(nil, resp.StatusCode))
	headerBlock := c.enc.EncodeField(nil, hpack.HeaderField{Name: ":status", Value: statusValue})
	resp.Header.Each(func(name, value []byte) {
		headerBlock = c.enc.EncodeField(headerBlock, hpack.HeaderField{Name: string(name), Value: string(value)})
	})

	endStream := uint8(0)
	if len(body) == 0 {
		endStream = FlagEndStream
	}
	if err := WriteFrame(c.bw, FrameHeaders, FlagEndHeaders|endStream, streamID, headerBlock); err != nil {
		return err
	}
	if len(body) > 0 {
		if err := WriteFrame(c.bw, FrameData, FlagEndStream, streamID, body); err != nil {
			return err
		}
	}
	c.streams.remove(streamID)
	return c.bw.Flush()
}

func stripPadding(f *FrameHeader) []byte {
	if f.Flags&FlagPadded == 0 || len(f.Payload) == 0 {
		return f.Payload
	}
	padLen := int(f.Payload[0])
	payload := f.Payload[1:]
	if padLen >= len(payload) {
		return nil
	}
	return payload[:len(payload)-padLen]
}

func fieldsToRequest(fields []hpack.HeaderField) *httpcore.Request {
	req := &httpcore.Request{Header: httpcore.NewHeaderMap(16)}
	for _, f := range fields {
		switch f.Name {
		case ":method":
			req.Method = []byte(f.Value)
		case ":path":
			req.Target = []byte(f.Value)
		case ":authority":
			req.Header.Insert([]byte("Host"), []byte(f.Value))
		case ":scheme":
			// Scheme is carried out of band of httpcore.Request; nothing
			// to attach it to in the shared type, so it is dropped here.
		default:
			req.Header.Append([]byte(f.Name), []byte(f.Value))
		}
	}
	req.Version = []byte("HTTP/2.0")
	return req
}
