package iolib

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// UntilReader reads delimited units (lines) from r.
// Bytes read past a delimiter are kept and served by the next call,
// so it never consumes more of the stream than it hands out.
type UntilReader struct {
	r io.Reader

	buf *bytes.Buffer
}

var _ io.Reader = (*UntilReader)(nil)

func NewUntilReader(r io.Reader) *UntilReader {
	return &UntilReader{r: r, buf: bytes.NewBuffer(nil)}
}

func (ur *UntilReader) Read(p []byte) (n int, err error) {
	if ur.buf.Len() > 0 {
		n, err = ur.buf.Read(p)
		if err == io.EOF {
			err = nil
		}
		return n, err
	}

	return ur.r.Read(p)
}

// Buffered returns the number of bytes read from the underlying reader but not yet consumed.
func (ur *UntilReader) Buffered() int { return ur.buf.Len() }

var (
	ErrZeroLenDelim  = errors.New("delim has zero length")
	ErrLimitExceeded = errors.New("delimited unit exceeds limit")
)

// ReadUntil reads until delim. The output will include delim.
// If the underlying reader fails before delim, the bytes read so far are returned with the error.
func (ur *UntilReader) ReadUntil(delim []byte) ([]byte, error) {
	return ur.ReadUntilLimit(delim, 0)
}

// ReadUntilLimit is [UntilReader.ReadUntil] which fails with [ErrLimitExceeded]
// once more than limit bytes are seen without delim. Zero limit means no limit.
func (ur *UntilReader) ReadUntilLimit(delim []byte, limit uint) ([]byte, error) {
	if len(delim) == 0 {
		return nil, ErrZeroLenDelim
	}

	temp := make([]byte, 1024)
	scanned := 0

	var readErr error
	for {
		if idx := bytes.Index(ur.buf.Bytes()[scanned:], delim); idx >= 0 {
			end := scanned + idx + len(delim)
			if limit > 0 && uint(end) > limit {
				return nil, ErrLimitExceeded
			}

			found := bytes.Clone(ur.buf.Next(end))
			return found, nil
		}

		if limit > 0 && uint(ur.buf.Len()) > limit {
			return nil, ErrLimitExceeded
		}

		if readErr != nil {
			// Underlying reader returned error before delim.
			b := bytes.Clone(ur.buf.Bytes())
			ur.buf.Reset()
			return b, readErr
		}

		// Delim could be split between the old and new bytes.
		scanned = max(0, ur.buf.Len()-len(delim)+1)

		var n int
		n, readErr = ur.r.Read(temp)
		ur.buf.Write(temp[:n])
	}
}

// ReadLine reads a line terminated by LF. The terminator is stripped,
// and crlf reports whether it was preceded by CR (which is stripped too).
func (ur *UntilReader) ReadLine(limit uint) (line []byte, crlf bool, err error) {
	line, err = ur.ReadUntilLimit([]byte{'\n'}, limit)
	if err != nil {
		return line, false, err
	}

	line = line[:len(line)-1] // Remove LF.
	if len(line) > 0 && line[len(line)-1] == '\r' {
		return line[:len(line)-1], true, nil
	}

	return line, false, nil
}

// ReadFull reads exactly n bytes. If the stream ends early,
// the bytes read so far are returned with [io.ErrUnexpectedEOF].
// Other errors from the underlying reader are returned as is.
func (ur *UntilReader) ReadFull(n uint64) ([]byte, error) {
	out := bytes.NewBuffer(make([]byte, 0, min(n, 64*1024)))

	_, err := io.CopyN(out, ur, int64(n))
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return out.Bytes(), err
	}

	return out.Bytes(), nil
}
