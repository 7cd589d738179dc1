package transfer

import (
	"bytes"
	"io"

	"http1-client/application/http"
	iolib "http1-client/lib/io"

	"github.com/pkg/errors"
)

type ReadOptions struct {
	// MaxBodySize limits the decoded body. Zero means no limit.
	MaxBodySize uint64

	// MaxChunkLineLength limits a chunk-size line. Zero means no limit.
	MaxChunkLineLength uint
}

var DefaultReadOptions = ReadOptions{
	MaxBodySize:        0,
	MaxChunkLineLength: 4 << 10,
}

var (
	ErrUnexpectedEOF = errors.New("stream ended before the body was complete")
	ErrBodyTooLarge  = errors.New("body size exceeds limit")
)

type Body struct {
	Data []byte

	// Trailers is only set by chunked framing.
	Trailers http.Headers
}

// ReadBody consumes exactly the body that f describes from dec.
//
// The underlying reader must report the end of stream with [io.EOF].
// Close-delimited bodies end there; other framings fail with
// [ErrUnexpectedEOF] or [ErrMalformedChunkFraming].
func ReadBody(dec *http.MessageDecoder, f Framing, opts ReadOptions) (Body, error) {
	switch f.Kind {
	case KindNoBody:
		return Body{}, nil

	case KindFixedLength:
		if opts.MaxBodySize > 0 && f.Length > opts.MaxBodySize {
			return Body{}, errors.Wrapf(ErrBodyTooLarge, "content-length %d", f.Length)
		}

		data, err := dec.Source().ReadFull(f.Length)
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return Body{}, errors.Wrapf(ErrUnexpectedEOF, "got %d of %d bytes", len(data), f.Length)
			}
			return Body{}, errors.Wrap(err, "reading fixed-length body")
		}
		return Body{Data: data}, nil

	case KindChunked:
		cr := NewChunkedReader(dec, opts.MaxChunkLineLength)
		data, err := readAll(cr, opts.MaxBodySize)
		if err != nil {
			return Body{}, errors.Wrap(err, "reading chunked body")
		}
		return Body{Data: data, Trailers: cr.Trailers()}, nil

	case KindCloseDelimited:
		data, err := readAll(dec, opts.MaxBodySize)
		if err != nil {
			return Body{}, errors.Wrap(err, "reading close-delimited body")
		}
		return Body{Data: data}, nil
	}

	return Body{}, errors.Errorf("unknown framing: %s", f.Kind)
}

// readAll reads r until [io.EOF], failing once more than max bytes arrive.
func readAll(r io.Reader, max uint64) ([]byte, error) {
	if max > 0 {
		r = iolib.LimitReader(r, uint(max)+1)
	}

	buf := bytes.NewBuffer(nil)
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}

	if max > 0 && uint64(buf.Len()) > max {
		return nil, ErrBodyTooLarge
	}

	return buf.Bytes(), nil
}
