// Package h2 implements a minimal HTTP/2 server connection: the preface
// and SETTINGS handshake, and a frame loop handling HEADERS, DATA, PING,
// SETTINGS, and GOAWAY frames against the hpack package. It has no flow
// control, stream priority, or server push, and reuses httpcore's Request
// and Response types so a single RequestHandler can serve both protocol
// versions.
package h2
