package transfer

import (
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"http1-client/application/http"
	iolib "http1-client/lib/io"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/suite"
)

func newDecoder(r io.Reader) *http.MessageDecoder {
	return http.NewMessageDecoder(iolib.NewUntilReader(r), http.DefaultDecodeOptions)
}

type ChunkedReaderTestSuite struct {
	suite.Suite
}

func TestChunkedReaderTestSuite(t *testing.T) {
	suite.Run(t, new(ChunkedReaderTestSuite))
}

func (s *ChunkedReaderTestSuite) TestRead() {
	input := "" +
		"5;ext=foo\r\n" +
		"ABCDE\r\n" +
		"a\r\n" +
		"FGHIJKLNMO\r\n" +
		"0\r\n" + // last chunk
		"Hello: World\r\n" + // trailer
		"\r\n" // empty trailer (last trailer)

	cr := NewChunkedReader(newDecoder(strings.NewReader(input)), 0)

	buf := make([]byte, 2)
	// First read reads only AB
	n, err := cr.Read(buf)
	s.Require().NoError(err)
	s.Equal(len(buf), n)
	s.Equal([]byte("AB"), buf)
	s.Equal(&Chunk{Size: 5, Extensions: [][2]string{{"ext", "foo"}}}, cr.LastChunk())

	buf = make([]byte, 10)
	// Second read reads all the data in first chunk.
	n, err = cr.Read(buf)
	s.Require().NoError(err)
	s.Equal(3, n)
	s.Equal([]byte("CDE"), buf[:n])

	// Third read reads all the data in second chunk.
	n, err = cr.Read(buf)
	s.Require().NoError(err)
	s.Equal(len(buf), n)
	s.Equal([]byte("FGHIJKLNMO"), buf)

	// Fourth read reads last chunk.
	n, err = cr.Read(buf)
	s.Require().ErrorIs(err, io.EOF)
	s.Equal(0, n)

	s.Equal(http.Headers{{Name: "Hello", Value: "World"}}, cr.Trailers())

	// Stays at EOF.
	_, err = cr.Read(buf)
	s.ErrorIs(err, io.EOF)
}

func (s *ChunkedReaderTestSuite) TestReadOneByte() {
	input := "4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\nNEXT"
	dec := newDecoder(iotest.OneByteReader(strings.NewReader(input)))

	b, err := io.ReadAll(NewChunkedReader(dec, 0))
	s.Require().NoError(err)
	s.Equal("Wikipedia", string(b))

	// Bytes after the body are left for the next message.
	rest, err := io.ReadAll(dec)
	s.NoError(err)
	s.Equal("NEXT", string(rest))
}

func (s *ChunkedReaderTestSuite) TestMalformed() {
	testcases := []struct {
		desc  string
		input string
	}{
		{desc: "not hex", input: "zz\r\n"},
		{desc: "empty size", input: "\r\nabc\r\n0\r\n\r\n"},
		{desc: "signed size", input: "+4\r\nWiki\r\n0\r\n\r\n"},
		{desc: "size overflow", input: "fffffffffffffffff\r\n"},
		{desc: "missing delimiter", input: "4\r\nWikiX\r\n0\r\n\r\n"},
		{desc: "data longer than size", input: "2\r\nWiki\r\n0\r\n\r\n"},
		{desc: "ends inside data", input: "4\r\nWi"},
		{desc: "ends before delimiter", input: "4\r\nWiki"},
		{desc: "ends before last chunk", input: "4\r\nWiki\r\n"},
		{desc: "ends inside trailers", input: "0\r\nExpires: never\r\n"},
		{desc: "malformed trailer", input: "0\r\nno colon\r\n\r\n"},
		{desc: "size line too long", input: "4;" + strings.Repeat("x", 5000) + "\r\nWiki\r\n0\r\n\r\n"},
	}
	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			cr := NewChunkedReader(newDecoder(strings.NewReader(tc.input)), 4<<10)

			_, err := io.ReadAll(cr)
			s.ErrorIs(err, ErrMalformedChunkFraming)
		})
	}
}

func (s *ChunkedReaderTestSuite) TestTransportErrorPassesThrough() {
	errReset := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("4\r\nWi"), iotest.ErrReader(errReset))

	_, err := io.ReadAll(NewChunkedReader(newDecoder(r), 0))
	s.ErrorIs(err, errReset)
	s.NotErrorIs(err, ErrMalformedChunkFraming)
}

func (s *ChunkedReaderTestSuite) TestDecodeChunkSize() {
	testcases := []struct {
		input    string
		expected uint64
		wantErr  bool
	}{
		{input: "0", expected: 0},
		{input: "a", expected: 10},
		{input: "FF", expected: 255},
		{input: "00000010", expected: 16},
		{input: "7fffffffffffffff", expected: 1<<63 - 1},
		{input: "8000000000000000", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "1_0", wantErr: true},
		{input: "0x10", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tc := range testcases {
		s.Run(tc.input, func() {
			n, err := decodeChunkSize([]byte(tc.input))
			if tc.wantErr {
				s.Error(err)
				return
			}

			s.NoError(err)
			s.Equal(tc.expected, n)
		})
	}
}
