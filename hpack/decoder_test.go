package hpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 7541 Appendix C.2.1: literal header field with incremental
// indexing, new name.
func TestDecodeAppendixC2_1(t *testing.T) {
	block := []byte{
		0x40, 0x0a, 0x63, 0x75, 0x73, 0x74, 0x6f, 0x6d,
		0x2d, 0x6b, 0x65, 0x79, 0x0d, 0x63, 0x75, 0x73,
		0x74, 0x6f, 0x6d, 0x2d, 0x68, 0x65, 0x61, 0x64,
		0x65, 0x72,
	}
	d := NewDecoder()
	fields, err := d.DecodeBlock(block, nil)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, HeaderField{Name: "custom-key", Value: "custom-header"}, fields[0])
	assert.Equal(t, 55, d.table.Size())
	assert.Equal(t, 1, d.table.DynamicLen())
}

// RFC 7541 Appendix C.2.2: literal header field without indexing.
func TestDecodeAppendixC2_2(t *testing.T) {
	block := []byte{
		0x04, 0x0c, 0x2f, 0x73, 0x61, 0x6d, 0x70, 0x6c,
		0x65, 0x2f, 0x70, 0x61, 0x74, 0x68,
	}
	d := NewDecoder()
	fields, err := d.DecodeBlock(block, nil)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, HeaderField{Name: ":path", Value: "/sample/path"}, fields[0])
	assert.Equal(t, 0, d.table.DynamicLen())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	fields := []HeaderField{
		{Name: ":method", Value: "GET"},
		{Name: ":path", Value: "/sample/path"},
		{Name: "custom-key", Value: "custom-header"},
	}

	enc := NewEncoder()
	var block []byte
	for _, f := range fields {
		block = enc.EncodeField(block, f)
	}

	dec := NewDecoder()
	got, err := dec.DecodeBlock(block, nil)
	require.NoError(t, err)
	assert.Equal(t, fields, got)
}

func TestIndexedStaticTable(t *testing.T) {
	// Index 2 is ":method: GET" in the static table.
	block := []byte{0x82}
	d := NewDecoder()
	fields, err := d.DecodeBlock(block, nil)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, HeaderField{Name: ":method", Value: "GET"}, fields[0])
}

func TestDynamicTableEviction(t *testing.T) {
	tbl := NewTable()
	tbl.SetMaxSize(60)
	tbl.Insert(HeaderField{Name: "a", Value: "b"}) // size 34
	assert.Equal(t, 1, tbl.DynamicLen())
	tbl.Insert(HeaderField{Name: "c", Value: "d"}) // pushes size to 68, evicts the first
	assert.Equal(t, 1, tbl.DynamicLen())
	f, ok := tbl.At(staticTableLen + 1)
	require.True(t, ok)
	assert.Equal(t, HeaderField{Name: "c", Value: "d"}, f)
}
