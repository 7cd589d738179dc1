package semantic

import (
	"http1-client/application/http"
	"http1-client/application/util/uri"

	"github.com/pkg/errors"
)

// Request is what a client sends: the target comes from URI,
// and Headers are written in order as given.
type Request struct {
	Method  Method
	URI     uri.URI
	Headers http.Headers
	Body    []byte
}

// NewRequest parses rawURL and sets the Host field from its authority.
// Callers may add or override fields before sending.
func NewRequest(method Method, rawURL string, body []byte) (*Request, error) {
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}

	u, err := uri.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing uri")
	}

	host, err := u.HostHeader()
	if err != nil {
		return nil, errors.Wrap(err, "building host")
	}

	request := &Request{
		Method: method,
		URI:    u,
		Body:   body,
	}
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2-5
	request.Headers.Set("Host", host)

	return request, nil
}

func Get(rawURL string) (*Request, error)     { return NewRequest(MethodGet, rawURL, nil) }
func Head(rawURL string) (*Request, error)    { return NewRequest(MethodHead, rawURL, nil) }
func Options(rawURL string) (*Request, error) { return NewRequest(MethodOptions, rawURL, nil) }
func Delete(rawURL string) (*Request, error)  { return NewRequest(MethodDelete, rawURL, nil) }

func Post(rawURL string, body []byte) (*Request, error) {
	return NewRequest(MethodPost, rawURL, body)
}

func Put(rawURL string, body []byte) (*Request, error) {
	return NewRequest(MethodPut, rawURL, body)
}

func Patch(rawURL string, body []byte) (*Request, error) {
	return NewRequest(MethodPatch, rawURL, body)
}

// Target returns the origin-form request target.
func (r *Request) Target() string { return r.URI.RequestTarget() }

// RawRequest lowers r into the wire codec's representation.
// The request line is always HTTP/1.1.
func (r *Request) RawRequest() http.Request {
	return http.Request{
		RequestLine: http.RequestLine{
			Method:  string(r.Method),
			Target:  r.Target(),
			Version: http.Version11,
		},
		Headers: r.Headers.Clone(),
		Body:    r.Body,
	}
}
