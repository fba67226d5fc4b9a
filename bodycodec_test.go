package httpcore

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestSelectBodyCodingBothPresentIsInvalid(t *testing.T) {
	h := NewHeaderMap(4)
	h.Append(strTransferEncoding, []byte("chunked"))
	h.Append(strContentLength, []byte("10"))

	if _, _, err := selectBodyCoding(h); err != ErrInvalidCodings {
		t.Fatalf("selectBodyCoding err = %v, want ErrInvalidCodings", err)
	}
}

func TestSelectBodyCodingRepeatedChunkedIsValid(t *testing.T) {
	h := NewHeaderMap(4)
	h.Append(strTransferEncoding, []byte("chunked, chunked"))

	coding, _, err := selectBodyCoding(h)
	if err != nil {
		t.Fatalf("selectBodyCoding: %v", err)
	}
	if coding != codingChunked {
		t.Fatalf("coding = %v, want codingChunked", coding)
	}
}

func TestSelectBodyCodingUnknownLeadingCodingIsRejected(t *testing.T) {
	h := NewHeaderMap(4)
	h.Append(strTransferEncoding, []byte("gzip, chunked"))

	if _, _, err := selectBodyCoding(h); err != ErrUnknownCodings {
		t.Fatalf("selectBodyCoding err = %v, want ErrUnknownCodings", err)
	}
}

func TestSelectBodyCodingNonChunkedFinalCodingIsInvalid(t *testing.T) {
	h := NewHeaderMap(4)
	h.Append(strTransferEncoding, []byte("chunked, gzip"))

	if _, _, err := selectBodyCoding(h); err != ErrInvalidCodings {
		t.Fatalf("selectBodyCoding err = %v, want ErrInvalidCodings", err)
	}
}

func TestSelectBodyCodingTooManyCodingsIsInvalid(t *testing.T) {
	h := NewHeaderMap(4)
	h.Append(strTransferEncoding, []byte("chunked, chunked, chunked, chunked, chunked"))

	if _, _, err := selectBodyCoding(h); err != ErrInvalidCodings {
		t.Fatalf("selectBodyCoding err = %v, want ErrInvalidCodings", err)
	}
}

func TestSelectBodyCodingContentLength(t *testing.T) {
	h := NewHeaderMap(4)
	h.Append(strContentLength, []byte("42"))

	coding, length, err := selectBodyCoding(h)
	if err != nil {
		t.Fatalf("selectBodyCoding: %v", err)
	}
	if coding != codingContentLength || length != 42 {
		t.Fatalf("coding=%v length=%d, want codingContentLength/42", coding, length)
	}
}

func TestSelectBodyCodingZeroContentLengthIsEmpty(t *testing.T) {
	h := NewHeaderMap(4)
	h.Append(strContentLength, []byte("0"))

	coding, _, err := selectBodyCoding(h)
	if err != nil {
		t.Fatalf("selectBodyCoding: %v", err)
	}
	if coding != codingEmpty {
		t.Fatalf("coding = %v, want codingEmpty", coding)
	}
}

func TestSelectBodyCodingNoFramingHeaders(t *testing.T) {
	h := NewHeaderMap(4)
	coding, _, err := selectBodyCoding(h)
	if err != nil {
		t.Fatalf("selectBodyCoding: %v", err)
	}
	if coding != codingEmpty {
		t.Fatalf("coding = %v, want codingEmpty", coding)
	}
}

func TestSelectBodyCodingBadContentLength(t *testing.T) {
	h := NewHeaderMap(4)
	h.Append(strContentLength, []byte("not-a-number"))

	if _, _, err := selectBodyCoding(h); err != ErrContentLengthSkew {
		t.Fatalf("selectBodyCoding err = %v, want ErrContentLengthSkew", err)
	}
}

func TestChunkedBodyReaderDecodesMultipleChunks(t *testing.T) {
	raw := "4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"
	br := bufio.NewReader(strings.NewReader(raw))
	r := newChunkedBodyReader(br)

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "Wikipedia" {
		t.Fatalf("decoded body = %q, want Wikipedia", got)
	}
}

func TestChunkedBodyReaderSkipsExtensions(t *testing.T) {
	raw := "4;ext=1\r\nWiki\r\n0\r\n\r\n"
	br := bufio.NewReader(strings.NewReader(raw))
	r := newChunkedBodyReader(br)

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "Wiki" {
		t.Fatalf("decoded body = %q, want Wiki", got)
	}
}

func TestChunkedBodyReaderRejectsOversizedChunk(t *testing.T) {
	raw := "ffffffff\r\n"
	br := bufio.NewReader(strings.NewReader(raw))
	r := newChunkedBodyReader(br)

	_, err := r.Read(make([]byte, 16))
	if err != ErrChunkTooLarge {
		t.Fatalf("err = %v, want ErrChunkTooLarge", err)
	}
}

func TestChunkedBodyReaderParsesTrailers(t *testing.T) {
	raw := "4\r\nWiki\r\n0\r\nX-Trailer: value\r\n\r\n"
	br := bufio.NewReader(strings.NewReader(raw))
	r := newChunkedBodyReader(br)

	if _, err := io.ReadAll(r); err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if r.trailers == nil || r.trailers.Len() != 1 {
		t.Fatalf("trailers = %v, want one field", r.trailers)
	}
	if got := string(r.trailers.Get([]byte("X-Trailer"))); got != "value" {
		t.Fatalf("trailer value = %q, want value", got)
	}
}

func TestWriteChunkRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := writeChunk(w, []byte("hello")); err != nil {
		t.Fatalf("writeChunk: %v", err)
	}
	if err := writeChunkedTrailer(w); err != nil {
		t.Fatalf("writeChunkedTrailer: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	br := bufio.NewReader(&buf)
	r := newChunkedBodyReader(br)
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("round trip = %q, want hello", got)
	}
}
