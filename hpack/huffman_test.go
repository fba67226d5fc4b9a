package hpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 7541 Appendix C.4.1: three indexed fields followed by a literal
// header field with incremental indexing whose Huffman-coded value decodes
// to "www.example.com".
func TestDecodeHuffmanAppendixC4_1(t *testing.T) {
	block := []byte{
		0x82, 0x86, 0x84, 0x41, 0x8c, 0xf1, 0xe3, 0xc2,
		0xe5, 0xf2, 0x3a, 0x6b, 0xa0, 0xab, 0x90, 0xf4,
		0xff,
	}
	d := NewDecoder()
	fields, err := d.DecodeBlock(block, nil)
	require.NoError(t, err)
	require.Len(t, fields, 4)
	assert.Equal(t, HeaderField{Name: ":method", Value: "GET"}, fields[0])
	assert.Equal(t, HeaderField{Name: ":scheme", Value: "http"}, fields[1])
	assert.Equal(t, HeaderField{Name: ":path", Value: "/"}, fields[2])
	assert.Equal(t, HeaderField{Name: ":authority", Value: "www.example.com"}, fields[3])
}

func TestDecodeHuffmanAuthority(t *testing.T) {
	// The 0x41-prefixed literal from the block above, standalone: an
	// indexed-name (authority, index 1) literal with a Huffman value.
	block := []byte{
		0x41, 0x8c, 0xf1, 0xe3, 0xc2, 0xe5, 0xf2, 0x3a,
		0x6b, 0xa0, 0xab, 0x90, 0xf4, 0xff,
	}
	d := NewDecoder()
	fields, err := d.DecodeBlock(block, nil)
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, HeaderField{Name: ":authority", Value: "www.example.com"}, fields[0])
}

func TestHuffmanEncodeDecodeRoundTrip(t *testing.T) {
	want := "www.example.com"
	var buf []byte
	buf = appendHuffmanString(buf, want)
	got, err := decodeHuffmanString(buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestHuffmanPicksShorterEncoding(t *testing.T) {
	var dst []byte
	dst = appendString(dst, "www.example.com")
	// H bit set: the Huffman-coded form is shorter than the 15 raw bytes.
	assert.NotEqual(t, byte(0), dst[0]&0x80)

	s, n, err := decodeString(dst)
	require.NoError(t, err)
	assert.Equal(t, len(dst), n)
	assert.Equal(t, "www.example.com", s)
}

func TestHuffmanRejectsBadPadding(t *testing.T) {
	// A single zero byte can never be a valid Huffman encoding: its
	// shortest codes are 5 bits, so the only legal trailing fragment is
	// all-ones padding.
	_, err := decodeHuffmanString([]byte{0x00})
	assert.ErrorIs(t, err, ErrBadHuffmanCode)
}
