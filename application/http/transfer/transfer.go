package transfer

import (
	"strconv"
	"strings"

	"http1-client/application/http"
	"http1-client/application/http/semantic"
	"http1-client/application/http/semantic/status"
	"http1-client/application/util/rule"

	"github.com/pkg/errors"
)

type Coding string

const (
	CodingChunked Coding = "chunked"
)

// Kind is how the end of a response body is found.
type Kind uint8

const (
	KindNoBody Kind = iota
	KindChunked
	KindFixedLength
	KindCloseDelimited
)

func (k Kind) String() string {
	switch k {
	case KindNoBody:
		return "no-body"
	case KindChunked:
		return "chunked"
	case KindFixedLength:
		return "fixed-length"
	case KindCloseDelimited:
		return "close-delimited"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Framing is the body discipline of a single response.
// Length is only meaningful for [KindFixedLength].
type Framing struct {
	Kind   Kind
	Length uint64
}

var (
	ErrInvalidContentLength     = errors.New("content-length is invalid")
	ErrMissingLengthInformation = errors.New("neither content-length nor chunked transfer-encoding is present")
)

// Select decides the framing of a response to a request with method.
// Exactly one framing is returned; rules are tried in order:
//
//  1. No body: HEAD, 1xx, 204 and 304.
//  2. Chunked: the final transfer coding is chunked.
//  3. Fixed length: content-length.
//  4. Close delimited: anything else.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3
func Select(method semantic.Method, code uint, h http.Headers) (Framing, error) {
	if method == semantic.MethodHead || status.IsBodyless(code) {
		return Framing{Kind: KindNoBody}, nil
	}

	if te, ok := h.Get("Transfer-Encoding"); ok {
		// Transfer-Encoding overrides Content-Length.
		// If chunked is not the final coding, only closing the connection ends the body.
		// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3-2.4
		if coding, ok := rule.LastListElement(te); ok && Coding(coding) == CodingChunked {
			return Framing{Kind: KindChunked}, nil
		}
		return Framing{Kind: KindCloseDelimited}, nil
	}

	if cl, ok := h.Get("Content-Length"); ok {
		n, err := parseContentLength(cl)
		if err != nil {
			return Framing{}, err
		}
		return Framing{Kind: KindFixedLength, Length: n}, nil
	}

	return Framing{Kind: KindCloseDelimited}, nil
}

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-8.6
func parseContentLength(v string) (uint64, error) {
	v = strings.TrimFunc(v, rule.IsOWS)
	if v == "" {
		return 0, errors.Wrap(ErrInvalidContentLength, "empty value")
	}

	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return 0, errors.Wrapf(ErrInvalidContentLength, "%q", v)
		}
	}

	n, err := strconv.ParseUint(v, 10, 63)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidContentLength, "%q: %s", v, err)
	}

	return n, nil
}
