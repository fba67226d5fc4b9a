package httpcore

import (
	"bufio"
	"bytes"
	"io"
)

// MaxChunkSize bounds a single chunk's declared size, mirroring
// MAX_CHUNKED_SIZE from the original body/chunked.rs (64 KiB). A chunk
// declaring more than this is rejected rather than streamed, so a
// malicious peer cannot force an unbounded single read.
const MaxChunkSize = 64 * 1024

// bodyCoding selects which wire framing a message body uses, grounded in
// body/decoder.rs's Coding enum and its selection rule: a message with both
// Transfer-Encoding and Content-Length is rejected (ErrInvalidCodings), and
// a message with neither has no body.
type bodyCoding int

const (
	codingEmpty bodyCoding = iota
	codingContentLength
	codingChunked
)

// maxTransferCodings bounds the number of comma-separated codings
// Transfer-Encoding may list, mirroring body/decoder.rs's selection rule.
const maxTransferCodings = 4

// selectBodyCoding inspects the already-parsed headers and decides how the
// body is framed, per RFC 7230 §3.3.3 as narrowed by this core: a message
// carrying both Content-Length and Transfer-Encoding is rejected outright
// (this core does not attempt the "ignore Content-Length" recovery real
// browsers use, since that ambiguity is exactly what request smuggling
// exploits), Transfer-Encoding must be a comma-separated list where every
// coding is chunked, and a request with neither has no body at all.
func selectBodyCoding(headers *HeaderMap) (coding bodyCoding, contentLength int, err error) {
	te := headers.Get(strTransferEncoding)
	cl := headers.Get(strContentLength)

	if te != nil && cl != nil {
		return codingEmpty, 0, ErrInvalidCodings
	}

	if te != nil {
		return selectChunkedCoding(te)
	}

	if cl != nil {
		n, perr := ParseUint(bytes.TrimSpace(cl))
		if perr != nil {
			return codingEmpty, 0, ErrContentLengthSkew
		}
		if n == 0 {
			return codingEmpty, 0, nil
		}
		return codingContentLength, n, nil
	}

	return codingEmpty, 0, nil
}

// selectChunkedCoding parses a Transfer-Encoding value as a comma-separated,
// case-insensitive, trimmed list of codings. Every listed coding must be
// chunked; a coding this core doesn't recognize anywhere but the last
// position is UnknownCodings, one in the last position (or too many listed)
// is InvalidCodings, since the final coding determines the wire framing.
func selectChunkedCoding(te []byte) (bodyCoding, int, error) {
	parts := bytes.Split(te, strComma)
	if len(parts) > maxTransferCodings {
		return codingEmpty, 0, ErrInvalidCodings
	}
	for i, p := range parts {
		coding := bytes.TrimSpace(p)
		if bytes.EqualFold(coding, strChunked) {
			continue
		}
		if i == len(parts)-1 {
			return codingEmpty, 0, ErrInvalidCodings
		}
		return codingEmpty, 0, ErrUnknownCodings
	}
	return codingChunked, -1, nil
}

// chunkPhase tracks where a chunkedBodyReader is within the wire grammar,
// mirroring Phase::Header/Phase::Chunk(NonZeroU64) from chunked.rs.
type chunkPhase int

const (
	chunkPhaseHeader chunkPhase = iota
	chunkPhaseData
	chunkPhaseTrailer
	chunkPhaseDone
)

// chunkedBodyReader decodes an RFC 7230 §4.1 chunked body incrementally
// from a *bufio.Reader, one decoded chunk at a time.
type chunkedBodyReader struct {
	br       *bufio.Reader
	phase    chunkPhase
	remain   int
	trailers *HeaderMap
}

func newChunkedBodyReader(br *bufio.Reader) *chunkedBodyReader {
	return &chunkedBodyReader{br: br, phase: chunkPhaseHeader}
}

// Read implements io.Reader over the decoded (unchunked) byte stream.
func (c *chunkedBodyReader) Read(p []byte) (int, error) {
	for {
		switch c.phase {
		case chunkPhaseDone:
			return 0, io.EOF
		case chunkPhaseHeader:
			size, err := c.readChunkHeader()
			if err != nil {
				return 0, err
			}
			if size == 0 {
				c.phase = chunkPhaseTrailer
				continue
			}
			c.remain = size
			c.phase = chunkPhaseData
		case chunkPhaseData:
			if len(p) == 0 {
				return 0, nil
			}
			toRead := len(p)
			if toRead > c.remain {
				toRead = c.remain
			}
			n, err := c.br.Read(p[:toRead])
			c.remain -= n
			if c.remain == 0 && n > 0 {
				if derr := c.consumeChunkCRLF(); derr != nil && err == nil {
					err = derr
				} else {
					c.phase = chunkPhaseHeader
				}
			}
			if n > 0 {
				return n, err
			}
			if err != nil {
				return 0, err
			}
		case chunkPhaseTrailer:
			if err := c.readTrailers(); err != nil {
				return 0, err
			}
			c.phase = chunkPhaseDone
		}
	}
}

// readChunkHeader reads "<hex-size>[;ext...]\r\n", skipping chunk
// extensions the way the original decode_chunk does.
func (c *chunkedBodyReader) readChunkHeader() (int, error) {
	size, err := readHexInt(c.br)
	if err != nil {
		return 0, ErrBrokenChunk
	}
	if size < 0 || size > MaxChunkSize {
		return 0, ErrChunkTooLarge
	}
	// Skip a trailing chunk-extension, if present, up to CRLF.
	for {
		b, err := c.br.ReadByte()
		if err != nil {
			return 0, ErrBrokenChunk
		}
		if b == '\r' {
			b2, err := c.br.ReadByte()
			if err != nil || b2 != '\n' {
				return 0, ErrBrokenChunk
			}
			break
		}
	}
	return size, nil
}

func (c *chunkedBodyReader) consumeChunkCRLF() error {
	var buf [2]byte
	if _, err := ioReadFull(c.br, buf[:]); err != nil {
		return ErrBrokenChunk
	}
	if buf[0] != '\r' || buf[1] != '\n' {
		return ErrBrokenChunk
	}
	return nil
}

// readTrailers parses the trailer section into c.trailers. spec.md's open
// question about exposing trailing headers to the handler is resolved in
// DESIGN.md: they are parsed (so the wire grammar is fully consumed and
// framing stays correct for pipelined requests) but not merged into the
// request's HeaderMap, matching the declared Non-goal against trailer
// exposure.
func (c *chunkedBodyReader) readTrailers() error {
	c.trailers = NewHeaderMap(4)
	for {
		line, err := readCRLFLine(c.br)
		if err != nil {
			return ErrBadTrailer
		}
		if len(line) == 0 {
			return nil
		}
		name, value, ok := bytes.Cut(line, strColon)
		if !ok || !isValidHeaderKey(bytes.TrimSpace(name)) {
			return ErrBadTrailer
		}
		_ = c.trailers.TryAppend(bytes.TrimSpace(name), bytes.TrimSpace(value))
	}
}

func readCRLFLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadSlice('\n')
	if err != nil {
		return nil, err
	}
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	return line, nil
}

func ioReadFull(br *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := br.Read(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// writeChunk writes one chunk of a chunked-encoded response body, mirroring
// the teacher's deleted http.go writeChunk: hex size, CRLF, body, CRLF.
func writeChunk(w *bufio.Writer, chunk []byte) error {
	if err := writeHexInt(w, len(chunk)); err != nil {
		return err
	}
	if _, err := w.Write(strCRLF); err != nil {
		return err
	}
	if len(chunk) > 0 {
		if _, err := w.Write(chunk); err != nil {
			return err
		}
		if _, err := w.Write(strCRLF); err != nil {
			return err
		}
	}
	return nil
}

// writeChunkedTrailer writes the terminating zero-length chunk and the
// final CRLF that ends a chunked body.
func writeChunkedTrailer(w *bufio.Writer) error {
	if _, err := w.Write(strZeroCRLFCRLF); err != nil {
		return err
	}
	return nil
}

var strZeroCRLFCRLF = []byte("0\r\n\r\n")
