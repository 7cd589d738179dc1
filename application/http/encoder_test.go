package http

import (
	"bytes"
	"strings"
	"testing"

	iolib "http1-client/lib/io"

	"github.com/stretchr/testify/suite"
)

type RequestEncoderTestSuite struct {
	suite.Suite
}

func TestRequestEncoderTestSuite(t *testing.T) {
	suite.Run(t, new(RequestEncoderTestSuite))
}

func (s *RequestEncoderTestSuite) TestMarshal() {
	testcases := []struct {
		desc     string
		input    Request
		opts     EncodeOptions
		expected string
		wantErr  error
	}{
		{
			desc: "GET without body",
			input: Request{
				RequestLine: RequestLine{Method: "GET", Target: "/", Version: Version11},
				Headers:     Headers{{"Host", "example.com"}},
			},
			expected: "" +
				"GET / HTTP/1.1\r\n" +
				"Host: example.com\r\n" +
				"\r\n",
		},
		{
			desc: "zero version defaults to 1.1",
			input: Request{
				RequestLine: RequestLine{Method: "GET", Target: "/a?b=c"},
			},
			expected: "GET /a?b=c HTTP/1.1\r\n\r\n",
		},
		{
			desc: "body sets content-length",
			input: Request{
				RequestLine: RequestLine{Method: "POST", Target: "/submit"},
				Headers:     Headers{{"Host", "example.com"}},
				Body:        []byte("Hello"),
			},
			expected: "" +
				"POST /submit HTTP/1.1\r\n" +
				"Host: example.com\r\n" +
				"Content-Length: 5\r\n" +
				"\r\n" +
				"Hello",
		},
		{
			desc: "caller content-length overwritten once",
			input: Request{
				RequestLine: RequestLine{Method: "PUT", Target: "/"},
				Headers: Headers{
					{"content-length", "100"},
					{"Host", "example.com"},
					{"Content-Length", "7"},
				},
				Body: []byte("abc"),
			},
			expected: "" +
				"PUT / HTTP/1.1\r\n" +
				"content-length: 3\r\n" +
				"Host: example.com\r\n" +
				"\r\n" +
				"abc",
		},
		{
			desc: "supplied content-length with empty body",
			input: Request{
				RequestLine: RequestLine{Method: "POST", Target: "/"},
				Headers:     Headers{{"Content-Length", "9"}},
			},
			expected: "" +
				"POST / HTTP/1.1\r\n" +
				"Content-Length: 0\r\n" +
				"\r\n",
		},
		{
			desc: "duplicate non-length headers kept",
			input: Request{
				RequestLine: RequestLine{Method: "GET", Target: "/"},
				Headers:     Headers{{"Accept", "a"}, {"Accept", "b"}},
			},
			expected: "" +
				"GET / HTTP/1.1\r\n" +
				"Accept: a\r\n" +
				"Accept: b\r\n" +
				"\r\n",
		},
		{
			desc: "sole LF",
			opts: EncodeOptions{UseSoleLF: true},
			input: Request{
				RequestLine: RequestLine{Method: "GET", Target: "/"},
				Headers:     Headers{{"Host", "example.com"}},
			},
			expected: "GET / HTTP/1.1\nHost: example.com\n\n",
		},
		{
			desc: "invalid method",
			input: Request{
				RequestLine: RequestLine{Method: "G T", Target: "/"},
			},
			wantErr: ErrInvalidRequestLine,
		},
		{
			desc: "target with whitespace",
			input: Request{
				RequestLine: RequestLine{Method: "GET", Target: "/a b"},
			},
			wantErr: ErrInvalidRequestLine,
		},
		{
			desc: "header injection rejected",
			opts: EncodeOptions{ValidateFields: true},
			input: Request{
				RequestLine: RequestLine{Method: "GET", Target: "/"},
				Headers:     Headers{{"X-Evil", "a\r\nInjected: 1"}},
			},
			wantErr: ErrInvalidField,
		},
		{
			desc: "invalid field name rejected",
			opts: EncodeOptions{ValidateFields: true},
			input: Request{
				RequestLine: RequestLine{Method: "GET", Target: "/"},
				Headers:     Headers{{"Bad Name", "v"}},
			},
			wantErr: ErrInvalidField,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			b, err := MarshalRequest(tc.input, tc.opts)
			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
				return
			}

			s.NoError(err)
			s.Equal(tc.expected, string(b))
		})
	}
}

func (s *RequestEncoderTestSuite) TestMarshalDoesNotModifyHeaders() {
	headers := Headers{{"Content-Length", "100"}}
	req := Request{
		RequestLine: RequestLine{Method: "POST", Target: "/"},
		Headers:     headers,
		Body:        []byte("x"),
	}

	_, err := MarshalRequest(req, DefaultEncodeOptions)
	s.Require().NoError(err)

	s.Equal(Headers{{"Content-Length", "100"}}, headers)
}

func (s *RequestEncoderTestSuite) TestEncodeRoundTrip() {
	req := Request{
		RequestLine: RequestLine{Method: "POST", Target: "/upload?name=a", Version: Version11},
		Headers: Headers{
			{"Host", "example.com"},
			{"Content-Type", "text/plain"},
		},
		Body: []byte(strings.Repeat("data", 100)),
	}

	var buf bytes.Buffer
	s.Require().NoError(NewRequestEncoder(&buf, DefaultEncodeOptions).Encode(req))

	var decoded Request
	rd := NewRequestDecoder(iolib.NewUntilReader(&buf), DefaultDecodeOptions)
	s.Require().NoError(rd.Decode(&decoded))

	s.Equal(req.RequestLine, decoded.RequestLine)
	s.Equal(req.Body, decoded.Body)

	cl, ok := decoded.Headers.Get("Content-Length")
	s.True(ok)
	s.Equal("400", cl)
	s.Len(decoded.Headers.Values("Content-Length"), 1)
	s.Equal(0, buf.Len())
}
