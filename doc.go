/*
Package httpcore implements the wire-level plumbing shared by an HTTP/1.1
and HTTP/2 server: the HTTP/1.1 connection driver, an incremental request
parser, the chunked/Content-Length body codec, a single-producer/single-
consumer body handoff channel for streaming request bodies into a handler
goroutine, and an open-addressed header multimap that holds request
headers on both the HTTP/1.1 path and the h2 subpackage's HTTP/2 path.

It deliberately stops short of URI parsing, routing, TLS configuration and
content-encoding: those live one layer up, the way net/http keeps its
transport and its ServeMux separate.
*/
package httpcore
