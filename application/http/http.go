package http

import (
	"bytes"
	"strconv"

	"http1-client/application/util/rule"

	"github.com/pkg/errors"
)

type RequestLine struct {
	Method  string
	Target  string
	Version Version
}

type Request struct {
	RequestLine
	Headers Headers

	Body []byte
}

type StatusLine struct {
	Version      Version
	StatusCode   uint
	ReasonPhrase string
}

type Response struct {
	StatusLine
	Headers Headers

	Body []byte
}

// [Major, Minor]
type Version [2]uint

var Version11 = Version{1, 1}

// ParseVersion parses http version text(e.g. "HTTP/1.1") into [Version].
func ParseVersion(b []byte) (Version, error) {
	prefix := []byte("HTTP/")
	if !bytes.HasPrefix(b, prefix) {
		return Version{}, errors.Errorf("http version prefix not found: %s", b)
	}

	// Get major and minor version.
	first, second, found := bytes.Cut(b[len(prefix):], []byte{'.'})
	if !found {
		return Version{}, errors.Errorf("dot seperator not found on version: %s", b)
	}

	major, err1 := strconv.ParseUint(string(first), 10, 64)
	minor, err2 := strconv.ParseUint(string(second), 10, 64)
	if err1 != nil || err2 != nil {
		return Version{}, errors.Errorf("http version is not convertable to int: %s", b)
	}

	return Version{uint(major), uint(minor)}, nil
}

func (ver Version) Text() []byte {
	buf := bytes.NewBuffer(nil)
	buf.Write([]byte("HTTP/"))
	buf.Write([]byte(strconv.FormatUint(uint64(ver[0]), 10)))
	buf.Write([]byte{'.'})
	buf.Write([]byte(strconv.FormatUint(uint64(ver[1]), 10)))
	return buf.Bytes()
}

func (ver Version) String() string { return string(ver.Text()) }

// Before reports whether ver is older than other.
func (ver Version) Before(other Version) bool {
	if ver[0] != other[0] {
		return ver[0] < other[0]
	}
	return ver[1] < other[1]
}

type Field struct{ Name, Value string }

// ParseField splits a field line on the first colon.
// Surrounding whitespace is trimmed from both name and value.
func ParseField(fieldLine []byte) (Field, error) {
	name, value, found := bytes.Cut(fieldLine, []byte{':'})
	if !found {
		return Field{}, errors.Errorf("colon seperator not found on header: %q", string(fieldLine))
	}

	name = bytes.TrimFunc(name, rule.IsWhitespace)
	if len(name) == 0 {
		return Field{}, errors.Errorf("field name is empty: %q", string(fieldLine))
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1-3
	value = bytes.TrimFunc(value, rule.IsOWS)

	return Field{Name: string(name), Value: string(value)}, nil
}

func (f Field) Text() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, len(f.Name)+len(f.Value)+2))
	buf.WriteString(f.Name)
	buf.Write([]byte(": "))
	buf.WriteString(f.Value)
	return buf.Bytes()
}
