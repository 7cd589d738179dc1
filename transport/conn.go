package transport

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrConnClosed       = errors.New("connection is closed")
	ErrDeadLineExceeded = errors.New("deadline exceeded")
)

// Conn is a reliable, ordered, bidirectional byte stream.
// It is usually already secured (e.g. TLS) by the time it reaches here.
//
// Read returns [ErrConnClosed] once either side has closed the stream,
// and [ErrDeadLineExceeded] when the read deadline has passed.
type Conn interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error

	LocalAddr() Addr
	RemoteAddr() Addr

	SetReadDeadLine(t time.Time)
	SetWriteDeadLine(t time.Time)
}

type ConnDialer interface {
	Dial(ctx context.Context, addr Addr) (Conn, error)
}

// IsEndOfStream reports whether err means the peer will send no more bytes.
func IsEndOfStream(err error) bool {
	return errors.Is(err, ErrConnClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
