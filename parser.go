package httpcore

import "bytes"

// parseStatus is the three-way result of an incremental wire parse step,
// grounded in the original parser's ParseResult::{Ok,Pending,Err}. Pending
// means the buffer holds a prefix of a valid token and the caller must read
// more bytes and retry from the beginning of the same buffer; parsers never
// retain a reference into buf across a Pending return, since the driver is
// free to grow or compact the buffer between calls.
type parseStatus int

const (
	parseOK parseStatus = iota
	parsePending
	parseErr
)

// reqLine is a parsed HTTP/1.1 request line. method, target and version are
// subslices of the buffer passed to parseRequestLine; callers must copy
// them out before the buffer is reused.
type reqLine struct {
	method  []byte
	target  []byte
	version []byte
}

// parseRequestLine parses "<method> <target> <version>\r\n" from the head
// of buf. Grounded in h1/parser/request.rs's exact token/space/CRLF
// grammar: single-space separated, bare LF tolerated in place of CRLF for
// the terminator (a long-standing real-world leniency, not just this
// codebase's), no leading whitespace permitted.
func parseRequestLine(buf []byte) (reqLine, int, parseStatus, error) {
	nl := bytes.IndexByte(buf, '\n')
	if nl < 0 {
		if len(buf) > maxRequestLineSize {
			return reqLine{}, 0, parseErr, ErrBadRequestLine
		}
		return reqLine{}, 0, parsePending, nil
	}
	line := buf[:nl]
	consumed := nl + 1
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}

	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return reqLine{}, 0, parseErr, ErrBadRequestLine
	}
	method := line[:sp1]
	if !isValidMethod(method) {
		return reqLine{}, 0, parseErr, ErrBadRequestLine
	}
	rest := line[sp1+1:]
	sp2 := bytes.LastIndexByte(rest, ' ')
	if sp2 <= 0 {
		return reqLine{}, 0, parseErr, ErrBadRequestLine
	}
	target := rest[:sp2]
	version := rest[sp2+1:]
	if len(target) == 0 || !isValidVersion(version) {
		return reqLine{}, 0, parseErr, ErrBadRequestLine
	}

	return reqLine{method: method, target: target, version: version}, consumed, parseOK, nil
}

const maxRequestLineSize = 8 * 1024

func isValidVersion(v []byte) bool {
	return bytes.Equal(v, strHTTP11) || bytes.Equal(v, strHTTP10)
}

// parseHeaderField parses a single "Name: value\r\n" field (with obs-fold
// continuation lines joined in, per RFC 7230 §3.2.4) from the head of buf,
// or recognizes the blank line that terminates the header block.
//
// On parseOK with a zero-length name, the header block is finished and
// consumed is the length of the terminating blank line.
func parseHeaderField(buf []byte) (name, value []byte, consumed int, status parseStatus, err error) {
	if bytes.HasPrefix(buf, strCRLF) {
		return nil, nil, 2, parseOK, nil
	}
	if len(buf) > 0 && buf[0] == '\n' {
		return nil, nil, 1, parseOK, nil
	}

	nl := bytes.IndexByte(buf, '\n')
	if nl < 0 {
		if len(buf) > maxHeaderLineSize {
			return nil, nil, 0, parseErr, ErrBadHeaderField
		}
		return nil, nil, 0, parsePending, nil
	}

	// Look ahead for obs-fold continuation lines: a following line that
	// starts with space or tab belongs to the current field's value.
	end := nl + 1
	for end < len(buf) && (buf[end] == ' ' || buf[end] == '\t') {
		next := bytes.IndexByte(buf[end:], '\n')
		if next < 0 {
			if len(buf) > maxHeaderLineSize {
				return nil, nil, 0, parseErr, ErrBadHeaderField
			}
			return nil, nil, 0, parsePending, nil
		}
		end += next + 1
	}

	raw := trimCRLF(buf[:end])
	colon := bytes.IndexByte(raw, ':')
	if colon <= 0 {
		return nil, nil, 0, parseErr, ErrBadHeaderField
	}
	fieldName := raw[:colon]
	if !isValidHeaderKey(fieldName) {
		return nil, nil, 0, parseErr, ErrBadHeaderField
	}

	fieldValue := unfoldContinuations(raw[colon+1:])
	fieldValue = bytes.Trim(fieldValue, " \t")
	if !isValidHeaderValue(fieldValue) {
		return nil, nil, 0, parseErr, ErrBadHeaderField
	}

	return fieldName, fieldValue, end, parseOK, nil
}

const maxHeaderLineSize = 8 * 1024

func trimCRLF(line []byte) []byte {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}

// unfoldContinuations joins obs-fold continuation lines with a single
// space, dropping the intermediate CRLF and leading whitespace.
func unfoldContinuations(raw []byte) []byte {
	if bytes.IndexByte(raw, '\n') < 0 {
		return raw
	}
	lines := bytes.Split(raw, []byte("\n"))
	out := make([]byte, 0, len(raw))
	for i, l := range lines {
		l = trimCRLF(l)
		l = bytes.Trim(l, " \t")
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, l...)
	}
	return out
}
