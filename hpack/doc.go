// Package hpack implements the HPACK header compression format (RFC 7541)
// used by the h2 package to encode and decode HTTP/2 header blocks. It
// covers the static and dynamic tables, N-bit prefix integer coding,
// Huffman-coded string literals, and the four header-field
// representations.
package hpack
