package transfer

import (
	"bytes"
	"io"
	"math/big"

	"http1-client/application/http"
	"http1-client/application/util/rule"

	"github.com/pkg/errors"
)

var ErrMalformedChunkFraming = errors.New("chunk framing is malformed")

type Chunk struct {
	Size       uint64
	Extensions [][2]string
}

// ChunkedReader converts a chunked body into the byte stream it carries.
// It reads lines through the message decoder, so line rules and limits match the header block.
//
// Read returns [io.EOF] after the last chunk and the trailer section were consumed.
// A body which ends early, or whose framing doesn't parse, yields [ErrMalformedChunkFraming].
// Other errors from the underlying reader are returned as is.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-7.1
type ChunkedReader struct {
	dec          *http.MessageDecoder
	maxChunkLine uint

	chunk *Chunk
	read  uint64 // reset for each chunk
	done  bool

	trailers http.Headers
}

var _ io.Reader = (*ChunkedReader)(nil)

// NewChunkedReader reads chunks from dec.
// maxChunkLine limits the chunk-size line, extensions included. Zero means no limit.
func NewChunkedReader(dec *http.MessageDecoder, maxChunkLine uint) *ChunkedReader {
	return &ChunkedReader{dec: dec, maxChunkLine: maxChunkLine}
}

// LastChunk returns the chunk being read, or nil between chunks.
func (cr *ChunkedReader) LastChunk() *Chunk { return cr.chunk }

// Trailers returns the trailer section. It's only filled after Read returned [io.EOF].
func (cr *ChunkedReader) Trailers() http.Headers { return cr.trailers }

func (cr *ChunkedReader) Read(b []byte) (int, error) {
	if cr.done {
		return 0, io.EOF
	}

	if cr.chunk == nil {
		if err := cr.decodeChunk(); err != nil {
			return 0, err
		}

		if cr.chunk.Size == 0 {
			// Last chunk.
			if err := cr.decodeTrailers(); err != nil {
				return 0, err
			}
			cr.chunk = nil
			cr.done = true
			return 0, io.EOF
		}
	}

	if len(b) == 0 {
		return 0, nil
	}

	remain := cr.chunk.Size - cr.read
	if uint64(len(b)) > remain {
		b = b[:remain]
	}

	n, err := cr.dec.Read(b)
	cr.read += uint64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			if cr.read < cr.chunk.Size {
				return n, errors.Wrap(ErrMalformedChunkFraming, "stream ended inside chunk data")
			}
		} else {
			return n, errors.Wrap(err, "reading chunk data")
		}
	}

	if cr.read == cr.chunk.Size {
		if err := cr.decodeDelimiter(); err != nil {
			return n, err
		}

		cr.chunk = nil
		cr.read = 0
	}

	return n, nil
}

func (cr *ChunkedReader) decodeChunk() error {
	line, err := cr.dec.ReadLine(cr.maxChunkLine)
	if err != nil {
		return cr.framingError(err, "reading chunk size")
	}

	parts := bytes.Split(line, []byte{';'})

	sizeRaw := bytes.TrimFunc(parts[0], rule.IsWhitespace)
	chunkSize, err := decodeChunkSize(sizeRaw)
	if err != nil {
		return errors.Wrap(ErrMalformedChunkFraming, err.Error())
	}

	// Extensions are kept but never interpreted.
	extensions := make([][2]string, 0, len(parts)-1)
	for _, part := range parts[1:] {
		k, v, _ := bytes.Cut(part, []byte{'='})
		// Trim BWS.
		k = bytes.TrimFunc(k, rule.IsWhitespace)
		v = bytes.TrimFunc(v, rule.IsWhitespace)

		extensions = append(extensions, [2]string{string(k), string(v)})
	}

	cr.chunk = &Chunk{Size: chunkSize, Extensions: extensions}

	return nil
}

func decodeChunkSize(b []byte) (uint64, error) {
	if len(b) == 0 {
		return 0, errors.New("chunk size is empty")
	}

	// big.Int accepts signs and underscores which aren't HEXDIG.
	for _, c := range b {
		if !isHexDigit(c) {
			return 0, errors.Errorf("failed to decode hex: %q", string(b))
		}
	}

	n, ok := new(big.Int).SetString(string(b), 16)
	if !ok {
		return 0, errors.Errorf("failed to decode hex: %q", string(b))
	}

	if n.BitLen() > 63 {
		return 0, errors.Errorf("chunk size larger than 63bit: %dbits", n.BitLen())
	}

	return n.Uint64(), nil
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// decodeDelimiter consumes the line break after chunk data.
func (cr *ChunkedReader) decodeDelimiter() error {
	line, err := cr.dec.ReadLine(uint(len(rule.CRLF)))
	if err != nil {
		return cr.framingError(err, "reading chunk delimiter")
	}

	if len(line) != 0 {
		return errors.Wrap(ErrMalformedChunkFraming, "CRLF delimiter not found")
	}

	return nil
}

func (cr *ChunkedReader) decodeTrailers() error {
	trailers, err := cr.dec.DecodeHeaders()
	if err != nil {
		return cr.framingError(err, "decoding trailers")
	}

	if len(trailers) > 0 {
		cr.trailers = trailers
	}

	return nil
}

// framingError keeps underlying I/O errors and turns everything else into [ErrMalformedChunkFraming].
func (cr *ChunkedReader) framingError(err error, msg string) error {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return errors.Wrapf(ErrMalformedChunkFraming, "%s: stream ended before last chunk", msg)
	case isDecodeError(err):
		return errors.Wrapf(ErrMalformedChunkFraming, "%s: %s", msg, err)
	default:
		return errors.Wrap(err, msg)
	}
}

func isDecodeError(err error) bool {
	for _, target := range []error{
		http.ErrMissingCRBeforeLF,
		http.ErrLineTooLong,
		http.ErrFieldLineTooLong,
		http.ErrTooManyFields,
		http.ErrMalformedHeaderLine,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
