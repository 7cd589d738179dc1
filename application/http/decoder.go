package http

import (
	"bytes"
	"io"
	"strconv"

	"http1-client/application/util/rule"
	iolib "http1-client/lib/io"

	"github.com/pkg/errors"
)

type DecodeOptions struct {
	// AllowSoleLF specifies wheter a single LF character should be recognized as a valid line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	AllowSoleLF bool

	// MaxFieldLineLength sets the limit of field line length on headers.
	// It's not on the RFC but I think it's better to have it.
	MaxFieldLineLength uint

	// MaxFields sets the limit of field lines in a single header block.
	MaxFields uint

	// MaxRequestLineLength sets the limit of request line length.
	// Recommended: >= 8000
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3-5
	MaxRequestLineLength uint

	// MaxStatusLineLength sets the limit of status line length.
	MaxStatusLineLength uint
}

// Zero values for limits mean unlimited.
var DefaultDecodeOptions = DecodeOptions{
	AllowSoleLF:          true,
	MaxFieldLineLength:   16 << 10,
	MaxFields:            256,
	MaxRequestLineLength: 8 << 10,
	MaxStatusLineLength:  8 << 10,
}

var (
	ErrLineTooLong       = errors.New("line length exceeds limit")
	ErrMissingCRBeforeLF = errors.New("missing CR before LF")
)

// MessageDecoder reads the line-oriented parts of a message.
// It also serves as the reader of the bytes that follow them.
type MessageDecoder struct {
	r    *iolib.UntilReader
	opts DecodeOptions
}

var _ io.Reader = (*MessageDecoder)(nil)

func NewMessageDecoder(r *iolib.UntilReader, opts DecodeOptions) *MessageDecoder {
	return &MessageDecoder{r: r, opts: opts}
}

func (md *MessageDecoder) Read(p []byte) (int, error) { return md.r.Read(p) }

// Source returns the reader that still holds the bytes past the last decoded line.
func (md *MessageDecoder) Source() *iolib.UntilReader { return md.r }

// ReadLine reads a line and strips its terminator.
func (md *MessageDecoder) ReadLine(limit uint) ([]byte, error) {
	b, crlf, err := md.r.ReadLine(limit)
	if err != nil {
		if errors.Is(err, iolib.ErrLimitExceeded) {
			return nil, ErrLineTooLong
		}
		return nil, err
	}

	if !crlf && !md.opts.AllowSoleLF {
		return nil, ErrMissingCRBeforeLF
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-4
	b = bytes.ReplaceAll(b, []byte{rule.CR}, []byte{rule.SP})

	return b, nil
}

var (
	ErrFieldLineTooLong    = errors.New("field line length exceeds limit")
	ErrTooManyFields       = errors.New("too many field lines")
	ErrMalformedHeaderLine = errors.New("header line is malformed")
)

// DecodeHeaders reads field lines up to the empty line that ends the block.
func (md *MessageDecoder) DecodeHeaders() (Headers, error) {
	headers := make(Headers, 0)
	for {
		fieldLine, err := md.ReadLine(md.opts.MaxFieldLineLength)
		if err != nil {
			if errors.Is(err, ErrLineTooLong) {
				return nil, ErrFieldLineTooLong
			}
			return nil, errors.Wrap(err, "reading line")
		}

		if len(fieldLine) == 0 {
			// An empty line. This means that there are no more headers.
			break
		}

		if md.opts.MaxFields > 0 && uint(len(headers)) >= md.opts.MaxFields {
			return nil, ErrTooManyFields
		}

		field, err := ParseField(fieldLine)
		if err != nil {
			return nil, errors.Wrap(ErrMalformedHeaderLine, err.Error())
		}

		headers = append(headers, field)
	}

	return headers, nil
}

// readStartLine skips empty lines preceding a start line.
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-6
func (md *MessageDecoder) readStartLine(limit uint) ([]byte, error) {
	for {
		b, err := md.ReadLine(limit)
		if err != nil {
			return nil, err
		}

		if len(b) > 0 {
			return b, nil
		}
	}
}

var (
	ErrRequestLineTooLong   = errors.New("request line length exceeds limit")
	ErrMalformedRequestLine = errors.New("request line is malformed")
	ErrUnsupportedBody      = errors.New("request body framing is unsupported")
)

// RequestDecoder reads requests the way a server would.
// Only Content-Length delimited bodies are supported.
type RequestDecoder struct{ MessageDecoder }

func NewRequestDecoder(r *iolib.UntilReader, opts DecodeOptions) *RequestDecoder {
	return &RequestDecoder{MessageDecoder{r: r, opts: opts}}
}

// r MUST be a non-nil pointer
func (rd *RequestDecoder) Decode(r *Request) error {
	line, err := rd.readStartLine(rd.opts.MaxRequestLineLength)
	if err != nil {
		if errors.Is(err, ErrLineTooLong) {
			return ErrRequestLineTooLong
		}
		return errors.Wrap(err, "reading request line")
	}

	reqLine, err := parseRequestLine(line)
	if err != nil {
		return errors.Wrap(ErrMalformedRequestLine, err.Error())
	}

	headers, err := rd.DecodeHeaders()
	if err != nil {
		return errors.Wrap(err, "parsing headers")
	}

	if headers.Has("Transfer-Encoding") {
		return ErrUnsupportedBody
	}

	var body []byte
	if v, ok := headers.Get("Content-Length"); ok {
		n, err := strconv.ParseUint(v, 10, 63)
		if err != nil {
			return errors.Wrapf(ErrMalformedHeaderLine, "content-length: %q", v)
		}

		body, err = rd.r.ReadFull(n)
		if err != nil {
			return errors.Wrap(err, "reading body")
		}
	}

	*r = Request{RequestLine: reqLine, Headers: headers, Body: body}

	return nil
}

func parseRequestLine(line []byte) (RequestLine, error) {
	parts := bytes.Split(line, []byte{rule.SP})
	if len(parts) != 3 {
		return RequestLine{}, errors.New("request line is malformed")
	}

	method := string(parts[0])
	if !rule.IsValidToken(method) {
		return RequestLine{}, errors.New("method is not a valid token")
	}

	target := string(parts[1])
	if len(target) == 0 {
		return RequestLine{}, errors.New("request target should not be empty")
	}

	ver, err := ParseVersion(parts[2])
	if err != nil {
		return RequestLine{}, errors.Wrap(err, "parsing version")
	}

	return RequestLine{Method: method, Target: target, Version: ver}, nil
}

var (
	ErrStatusLineTooLong   = errors.New("status line length exceeds limit")
	ErrMalformedStatusLine = errors.New("status line is malformed")
)

type ResponseDecoder struct{ MessageDecoder }

func NewResponseDecoder(r *iolib.UntilReader, opts DecodeOptions) *ResponseDecoder {
	return &ResponseDecoder{MessageDecoder{r: r, opts: opts}}
}

// Decode reads the status line and the header block.
// The body is left on the stream for package transfer to frame.
//
// r MUST be a non-nil pointer
func (rd *ResponseDecoder) Decode(r *Response) error {
	statLine, err := rd.DecodeStatusLine()
	if err != nil {
		return errors.Wrap(err, "parsing status line")
	}

	headers, err := rd.DecodeHeaders()
	if err != nil {
		return errors.Wrap(err, "parsing headers")
	}

	*r = Response{StatusLine: statLine, Headers: headers}

	return nil
}

func (rd *ResponseDecoder) DecodeStatusLine() (StatusLine, error) {
	line, err := rd.readStartLine(rd.opts.MaxStatusLineLength)
	if err != nil {
		if errors.Is(err, ErrLineTooLong) {
			return StatusLine{}, ErrStatusLineTooLong
		}
		return StatusLine{}, errors.Wrap(err, "reading line")
	}

	return ParseStatusLine(line)
}

// ParseStatusLine parses "HTTP-version SP status-code [SP reason-phrase]".
// Tokens are split on whitespace, and a missing reason phrase is tolerated.
func ParseStatusLine(line []byte) (StatusLine, error) {
	versionRaw, rest := cutToken(line)
	if len(versionRaw) == 0 {
		return StatusLine{}, errors.Wrap(ErrMalformedStatusLine, "protocol version is missing")
	}

	ver, err := ParseVersion(versionRaw)
	if err != nil {
		return StatusLine{}, errors.Wrap(ErrMalformedStatusLine, err.Error())
	}

	codeRaw, rest := cutToken(rest)
	if len(codeRaw) == 0 {
		return StatusLine{}, errors.Wrap(ErrMalformedStatusLine, "status code is missing")
	}

	code, err := parseStatusCode(codeRaw)
	if err != nil {
		return StatusLine{}, errors.Wrap(ErrMalformedStatusLine, err.Error())
	}

	reason := string(bytes.TrimFunc(rest, rule.IsWhitespace))

	return StatusLine{Version: ver, StatusCode: code, ReasonPhrase: reason}, nil
}

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-15-3
func parseStatusCode(b []byte) (uint, error) {
	if len(b) != 3 {
		return 0, errors.Errorf("status code is not 3 digits: %q", b)
	}

	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, errors.Errorf("status code is not a number: %q", b)
		}
	}

	code, _ := strconv.ParseUint(string(b), 10, 16)
	if code < 100 || code > 599 {
		return 0, errors.Errorf("status code out of range: %d", code)
	}

	return uint(code), nil
}

// cutToken skips leading whitespace and cuts the next whitespace-delimited token.
func cutToken(b []byte) (token, rest []byte) {
	b = bytes.TrimLeftFunc(b, rule.IsWhitespace)
	idx := bytes.IndexFunc(b, rule.IsWhitespace)
	if idx < 0 {
		return b, nil
	}
	return b[:idx], b[idx:]
}
