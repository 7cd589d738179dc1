// Package http implements the HTTP/1.1 message syntax a client needs:
// request serialization and status line / header block parsing.
//
// Body framing lives in package transfer.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
