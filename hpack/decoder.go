package hpack

// Representation prefix bit patterns, grounded in table.rs's decode().
const (
	maskIndexed       = 0b1000_0000
	maskLiteralIndex  = 0b0100_0000
	maskSizeUpdate    = 0b1110_0000
	valueSizeUpdate   = 0b0010_0000
	maskLiteralNoIdx  = 0b1111_0000
	valueLiteralNever = 0b0001_0000
)

// Decoder turns a sequence of header blocks into HeaderFields against one
// Table, which must be reused across blocks on the same HTTP/2 connection
// direction so dynamic-table state tracks what the peer's encoder assumed.
type Decoder struct {
	table *Table
}

// NewDecoder returns a Decoder backed by a fresh dynamic table.
func NewDecoder() *Decoder {
	return &Decoder{table: NewTable()}
}

// DecodeBlock decodes every representation in block, appending the
// resulting fields to dst. Grounded in table.rs's decode_block: a leading
// dynamic table size update is only legal at the start of a block.
func (d *Decoder) DecodeBlock(block []byte, dst []HeaderField) ([]HeaderField, error) {
	if len(block) > 0 && block[0]&maskSizeUpdate == valueSizeUpdate {
		n, consumed, err := decodeInt(block, 5)
		if err != nil {
			return dst, err
		}
		d.table.SetMaxSize(n)
		block = block[consumed:]
	}
	for len(block) > 0 {
		if block[0]&maskSizeUpdate == valueSizeUpdate {
			return dst, ErrInvalidSizeUpdate
		}
		f, consumed, err := d.decodeOne(block)
		if err != nil {
			return dst, err
		}
		dst = append(dst, f)
		block = block[consumed:]
	}
	return dst, nil
}

func (d *Decoder) decodeOne(buf []byte) (HeaderField, int, error) {
	prefix := buf[0]

	switch {
	case prefix&maskIndexed == maskIndexed:
		idx, n, err := decodeInt(buf, 7)
		if err != nil {
			return HeaderField{}, 0, err
		}
		if idx == 0 {
			return HeaderField{}, 0, ErrZeroIndex
		}
		f, ok := d.table.At(idx)
		if !ok {
			return HeaderField{}, 0, ErrIndexNotFound
		}
		return f, n, nil

	case prefix&maskLiteralIndex == maskLiteralIndex:
		return d.decodeLiteral(buf, 6, true)

	case prefix&maskLiteralNoIdx == valueLiteralNever:
		return d.decodeLiteral(buf, 4, false)

	default:
		// Literal without indexing: top nibble 0000.
		return d.decodeLiteral(buf, 4, false)
	}
}

func (d *Decoder) decodeLiteral(buf []byte, prefixBits uint, index bool) (HeaderField, int, error) {
	idx, n, err := decodeInt(buf, prefixBits)
	if err != nil {
		return HeaderField{}, 0, err
	}
	buf = buf[n:]
	consumed := n

	var name string
	if idx == 0 {
		s, sn, err := decodeString(buf)
		if err != nil {
			return HeaderField{}, 0, err
		}
		name = s
		buf = buf[sn:]
		consumed += sn
	} else {
		f, ok := d.table.At(idx)
		if !ok {
			return HeaderField{}, 0, ErrIndexNotFound
		}
		name = f.Name
	}

	value, vn, err := decodeString(buf)
	if err != nil {
		return HeaderField{}, 0, err
	}
	consumed += vn

	field := HeaderField{Name: name, Value: value}
	if index {
		d.table.Insert(field)
	}
	return field, consumed, nil
}
