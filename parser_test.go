package httpcore

import "testing"

func TestParseRequestLineOK(t *testing.T) {
	buf := []byte("GET /index.html HTTP/1.1\r\nHost: example.com\r\n\r\n")
	line, consumed, status, err := parseRequestLine(buf)
	if err != nil || status != parseOK {
		t.Fatalf("parseRequestLine: status=%v err=%v", status, err)
	}
	if string(line.method) != "GET" || string(line.target) != "/index.html" || string(line.version) != "HTTP/1.1" {
		t.Fatalf("parsed line = %+v", line)
	}
	want := len("GET /index.html HTTP/1.1\r\n")
	if consumed != want {
		t.Fatalf("consumed = %d, want %d", consumed, want)
	}
}

func TestParseRequestLineBareLF(t *testing.T) {
	buf := []byte("POST /submit HTTP/1.0\n")
	line, _, status, err := parseRequestLine(buf)
	if err != nil || status != parseOK {
		t.Fatalf("parseRequestLine: status=%v err=%v", status, err)
	}
	if string(line.method) != "POST" || string(line.version) != "HTTP/1.0" {
		t.Fatalf("parsed line = %+v", line)
	}
}

func TestParseRequestLinePendingOnPartialBuffer(t *testing.T) {
	buf := []byte("GET /index.html HTTP/1.1")
	_, _, status, err := parseRequestLine(buf)
	if err != nil || status != parsePending {
		t.Fatalf("status=%v err=%v, want parsePending", status, err)
	}
}

func TestParseRequestLineRejectsMissingTarget(t *testing.T) {
	buf := []byte("GET HTTP/1.1\r\n")
	_, _, status, err := parseRequestLine(buf)
	if status != parseErr || err != ErrBadRequestLine {
		t.Fatalf("status=%v err=%v, want parseErr/ErrBadRequestLine", status, err)
	}
}

func TestParseRequestLineRejectsBadVersion(t *testing.T) {
	buf := []byte("GET / HTTP/9.9\r\n")
	_, _, status, err := parseRequestLine(buf)
	if status != parseErr || err != ErrBadRequestLine {
		t.Fatalf("status=%v err=%v, want parseErr/ErrBadRequestLine", status, err)
	}
}

func TestParseHeaderFieldOK(t *testing.T) {
	buf := []byte("Host: example.com\r\nX-Next: 1\r\n")
	name, value, consumed, status, err := parseHeaderField(buf)
	if err != nil || status != parseOK {
		t.Fatalf("status=%v err=%v", status, err)
	}
	if string(name) != "Host" || string(value) != "example.com" {
		t.Fatalf("name=%q value=%q", name, value)
	}
	if consumed != len("Host: example.com\r\n") {
		t.Fatalf("consumed = %d, want %d", consumed, len("Host: example.com\r\n"))
	}
}

func TestParseHeaderFieldBlankLineEndsBlock(t *testing.T) {
	buf := []byte("\r\nBODY")
	name, value, consumed, status, err := parseHeaderField(buf)
	if err != nil || status != parseOK {
		t.Fatalf("status=%v err=%v", status, err)
	}
	if name != nil || value != nil || consumed != 2 {
		t.Fatalf("name=%q value=%q consumed=%d, want empty/2", name, value, consumed)
	}
}

func TestParseHeaderFieldObsFoldContinuation(t *testing.T) {
	buf := []byte("X-Long: first\r\n second\r\n")
	name, value, _, status, err := parseHeaderField(buf)
	if err != nil || status != parseOK {
		t.Fatalf("status=%v err=%v", status, err)
	}
	if string(name) != "X-Long" || string(value) != "first second" {
		t.Fatalf("name=%q value=%q", name, value)
	}
}

func TestParseHeaderFieldPendingOnPartialLine(t *testing.T) {
	buf := []byte("Host: exam")
	_, _, _, status, err := parseHeaderField(buf)
	if err != nil || status != parsePending {
		t.Fatalf("status=%v err=%v, want parsePending", status, err)
	}
}

func TestParseHeaderFieldRejectsMissingColon(t *testing.T) {
	buf := []byte("not-a-header\r\n")
	_, _, _, status, err := parseHeaderField(buf)
	if status != parseErr || err != ErrBadHeaderField {
		t.Fatalf("status=%v err=%v, want parseErr/ErrBadHeaderField", status, err)
	}
}
