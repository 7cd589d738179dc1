package http

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	"http1-client/application/util/rule"
	iolib "http1-client/lib/io"

	"github.com/pkg/errors"
	"golang.org/x/net/http/httpguts"
)

type EncodeOptions struct {
	// UseSoleLF specifies wheter a single LF character should be used as a line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	UseSoleLF bool

	// ValidateFields rejects field names that are not tokens
	// and field values containing CR, LF or NUL.
	// Without it, fields are written verbatim.
	ValidateFields bool
}

var DefaultEncodeOptions = EncodeOptions{
	UseSoleLF:      false,
	ValidateFields: false,
}

var (
	ErrInvalidRequestLine = errors.New("request line is invalid")
	ErrInvalidField       = errors.New("field is invalid")
)

// MarshalRequest serializes request into its wire form.
//
// Content-Length is always derived from the body: it is set (once) when the body
// is non-empty or when the caller already supplied one. Other fields are kept as given.
func MarshalRequest(request Request, opts EncodeOptions) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 256+len(request.Body)))

	if err := encodeRequestLine(buf, request.RequestLine, opts); err != nil {
		return nil, errors.Wrap(err, "encoding request line")
	}

	headers := withContentLength(request.Headers, len(request.Body))
	if err := encodeHeaders(buf, headers, opts); err != nil {
		return nil, errors.Wrap(err, "encoding headers")
	}

	buf.Write(request.Body)

	return buf.Bytes(), nil
}

func withContentLength(headers Headers, bodyLen int) Headers {
	if bodyLen == 0 && !headers.Has("Content-Length") {
		return headers
	}

	clone := headers.Clone()
	clone.Set("Content-Length", strconv.Itoa(bodyLen))
	return clone
}

func writeLine(buf *bytes.Buffer, line []byte, opts EncodeOptions) {
	buf.Write(line)

	term := rule.CRLF
	if opts.UseSoleLF {
		term = term[1:]
	}
	buf.Write(term)
}

func encodeRequestLine(buf *bytes.Buffer, reqLine RequestLine, opts EncodeOptions) error {
	if !rule.IsValidToken(reqLine.Method) {
		return errors.Wrapf(ErrInvalidRequestLine, "method is not a valid token: %q", reqLine.Method)
	}

	if reqLine.Target == "" || strings.ContainsAny(reqLine.Target, " \t\r\n") {
		return errors.Wrapf(ErrInvalidRequestLine, "target is empty or contains whitespace: %q", reqLine.Target)
	}

	ver := reqLine.Version
	if ver == (Version{}) {
		ver = Version11
	}

	line := bytes.NewBuffer(nil)
	line.WriteString(reqLine.Method)
	line.WriteByte(rule.SP)
	line.WriteString(reqLine.Target)
	line.WriteByte(rule.SP)
	line.Write(ver.Text())

	writeLine(buf, line.Bytes(), opts)

	return nil
}

func encodeHeaders(buf *bytes.Buffer, headers Headers, opts EncodeOptions) error {
	for _, field := range headers {
		if opts.ValidateFields {
			if !httpguts.ValidHeaderFieldName(field.Name) {
				return errors.Wrapf(ErrInvalidField, "name %q", field.Name)
			}
			if !httpguts.ValidHeaderFieldValue(field.Value) {
				return errors.Wrapf(ErrInvalidField, "value of %q", field.Name)
			}
		}

		writeLine(buf, field.Text(), opts)
	}

	// Write a empty line as all the headers are written.
	writeLine(buf, nil, opts)

	return nil
}

type RequestEncoder struct {
	w    io.Writer
	opts EncodeOptions
}

func NewRequestEncoder(w io.Writer, opts EncodeOptions) *RequestEncoder {
	return &RequestEncoder{w: w, opts: opts}
}

// Encode writes the whole request with as few writes as w allows.
// Nothing is buffered across calls.
func (re *RequestEncoder) Encode(request Request) error {
	b, err := MarshalRequest(request, re.opts)
	if err != nil {
		return err
	}

	if _, err := iolib.WriteFull(re.w, b); err != nil {
		return errors.Wrap(err, "writing request")
	}

	return nil
}
