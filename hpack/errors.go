package hpack

import "errors"

// Sentinel errors returned by Decoder.DecodeBlock. Grounded in
// original_source/src/h2/hpack/error.rs's DecodeError variants.
var (
	ErrIncomplete         = errors.New("hpack: incomplete header block")
	ErrZeroIndex          = errors.New("hpack: zero index in indexed representation")
	ErrIndexNotFound      = errors.New("hpack: index not found in static or dynamic table")
	ErrInvalidSizeUpdate  = errors.New("hpack: dynamic table size update seen mid-block")
	ErrIntegerOverflow = errors.New("hpack: encoded integer overflows")
	ErrBadHuffmanCode  = errors.New("hpack: invalid huffman-coded string literal")
)
