package h2

import "github.com/student/httpcore/hpack"

// streamState tracks the half-closed/open lifecycle RFC 7540 §5.1 defines,
// trimmed to the subset a server needs to decide when a request is
// complete and when a stream can be reaped.
type streamState int

const (
	streamOpen streamState = iota
	streamHalfClosedRemote
	streamClosed
)

// stream is one HTTP/2 request/response exchange multiplexed over a
// connection. fields holds the decoded HPACK header list from the HEADERS
// frame until any DATA frames carrying the body complete it; body
// accumulates DATA frames until FlagEndStream.
type stream struct {
	id     uint32
	state  streamState
	fields []hpack.HeaderField
	body   []byte
}

// streamTable is the stub multiplexing layer a Conn keeps per connection,
// grounded in the spec's requirement for a stream table component without
// implementing RFC 7540's full priority tree.
type streamTable struct {
	streams map[uint32]*stream
}

func newStreamTable() *streamTable {
	return &streamTable{streams: make(map[uint32]*stream)}
}

func (t *streamTable) get(id uint32) *stream {
	return t.streams[id]
}

func (t *streamTable) getOrCreate(id uint32) *stream {
	s := t.streams[id]
	if s == nil {
		s = &stream{id: id, state: streamOpen}
		t.streams[id] = s
	}
	return s
}

func (t *streamTable) remove(id uint32) {
	delete(t.streams, id)
}
