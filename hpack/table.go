package hpack

// Table is the combined static/dynamic HPACK table one HTTP/2 connection
// direction (encoder or decoder) keeps across header blocks. Grounded in
// original_source/src/h2/hpack/table.rs's Table: a deque of dynamic
// entries, a running size, and a max size used for eviction, translated
// into a Go slice with front insertion and tail eviction (index 0 is
// the most recently inserted entry, matching HPACK's "newest entry has the
// lowest dynamic index").
type Table struct {
	dynamic []HeaderField
	size    int
	maxSize int
}

const defaultMaxSize = 4096

// NewTable returns a Table with the RFC 7541 default max dynamic table
// size of 4096 octets.
func NewTable() *Table {
	return &Table{maxSize: defaultMaxSize}
}

// SetMaxSize applies a dynamic table size update, evicting entries from
// the tail until the table fits.
func (t *Table) SetMaxSize(n int) {
	t.maxSize = n
	for t.size > t.maxSize {
		t.evictOne()
	}
}

// Insert adds field as the newest dynamic entry, evicting older entries
// from the tail as needed to stay within maxSize. A field larger than
// maxSize by itself empties the table instead of being inserted, per
// RFC 7541 §4.4.
func (t *Table) Insert(f HeaderField) {
	sz := f.size()
	if sz > t.maxSize {
		t.dynamic = t.dynamic[:0]
		t.size = 0
		return
	}
	for t.size+sz > t.maxSize {
		t.evictOne()
	}
	t.dynamic = append([]HeaderField{f}, t.dynamic...)
	t.size += sz
}

func (t *Table) evictOne() {
	n := len(t.dynamic)
	if n == 0 {
		t.size = 0
		return
	}
	evicted := t.dynamic[n-1]
	t.dynamic = t.dynamic[:n-1]
	t.size -= evicted.size()
}

// At resolves a 1-based HPACK index into a header field: 1..61 address the
// static table, 62.. address the dynamic table (62 is the newest entry).
// ok is false when index is out of range.
func (t *Table) At(index int) (HeaderField, bool) {
	if index < 1 {
		return HeaderField{}, false
	}
	i := index - 1
	if i < staticTableLen {
		return staticTable[i], true
	}
	i -= staticTableLen
	if i < 0 || i >= len(t.dynamic) {
		return HeaderField{}, false
	}
	return t.dynamic[i], true
}

// DynamicLen returns the number of entries currently in the dynamic table.
func (t *Table) DynamicLen() int { return len(t.dynamic) }

// Size returns the dynamic table's current accounted size in octets.
func (t *Table) Size() int { return t.size }
