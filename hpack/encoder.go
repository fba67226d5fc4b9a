package hpack

// Encoder serializes HeaderFields into HPACK header blocks against one
// Table, which must be reused across blocks the same way a Decoder's
// table is, so index references stay valid for the peer.
type Encoder struct {
	table *Table
	// Indexing controls whether EncodeField inserts fields it writes as
	// literals into the dynamic table (Literal With Incremental Indexing)
	// or leaves the table untouched (Literal Without Indexing). Defaults
	// to true, matching the teacher's own "index everything that fits"
	// fasthttp caching posture.
	Indexing bool
}

// NewEncoder returns an Encoder backed by a fresh dynamic table.
func NewEncoder() *Encoder {
	return &Encoder{table: NewTable(), Indexing: true}
}

// SetMaxSize applies a local dynamic table size bound and appends the
// corresponding size-update representation to dst, returning the extended
// slice. Callers encoding a full block should call this before the first
// EncodeField in that block.
func (e *Encoder) SetMaxSize(dst []byte, n int) []byte {
	e.table.SetMaxSize(n)
	return appendInt(dst, valueSizeUpdate, 5, n)
}

// EncodeField appends f's HPACK representation to dst. It indexes into
// the static table first, then the encoder's own dynamic table (tracking
// exactly what a Decoder fed the matching bytes would hold), falling back
// to a literal representation otherwise.
func (e *Encoder) EncodeField(dst []byte, f HeaderField) []byte {
	if idx, full := e.findIndex(f); full {
		return appendInt(dst, maskIndexed, 7, idx)
	} else if idx > 0 {
		flags := byte(0)
		if e.Indexing {
			flags = maskLiteralIndex
		}
		dst = appendInt(dst, flags, prefixBitsFor(e.Indexing), idx)
		dst = appendString(dst, f.Value)
		if e.Indexing {
			e.table.Insert(f)
		}
		return dst
	}

	flags := byte(0)
	if e.Indexing {
		flags = maskLiteralIndex
	}
	dst = appendInt(dst, flags, prefixBitsFor(e.Indexing), 0)
	dst = appendString(dst, f.Name)
	dst = appendString(dst, f.Value)
	if e.Indexing {
		e.table.Insert(f)
	}
	return dst
}

func prefixBitsFor(indexing bool) uint {
	if indexing {
		return 6
	}
	return 4
}

// findIndex looks for f in the static table (checking name+value for a
// full match), then the dynamic table. Returns (index, true) for a full
// name+value match usable with the Indexed representation, or
// (index, false) for a name-only match usable with a literal's indexed
// name field, or (0, false) when neither matches.
func (e *Encoder) findIndex(f HeaderField) (int, bool) {
	nameOnly := 0
	for i, sf := range staticTable {
		if sf.Name != f.Name {
			continue
		}
		if sf.Value == f.Value {
			return i + 1, true
		}
		if nameOnly == 0 {
			nameOnly = i + 1
		}
	}
	for i, df := range e.table.dynamic {
		idx := staticTableLen + i + 1
		if df.Name != f.Name {
			continue
		}
		if df.Value == f.Value {
			return idx, true
		}
		if nameOnly == 0 {
			nameOnly = idx
		}
	}
	return nameOnly, false
}
