package semantic

import (
	"time"

	"http1-client/application/http"
	"http1-client/application/http/semantic/status"
)

type Response struct {
	Version http.Version
	Status  status.Status
	Headers http.Headers
	Body    []byte

	// Trailers holds the trailer section of a chunked body.
	Trailers http.Headers

	// Date is zero when the field is absent or unparsable.
	Date time.Time
}

// ResponseFrom builds a response from its decoded parts.
// An empty reason phrase is filled from the status table.
func ResponseFrom(raw *http.Response, trailers http.Headers) *Response {
	st := status.Status{Code: raw.StatusCode, ReasonPhrase: raw.ReasonPhrase}
	if st.ReasonPhrase == "" {
		if known, ok := status.FromCode(st.Code); ok {
			st.ReasonPhrase = known.ReasonPhrase
		}
	}

	response := &Response{
		Version:  raw.Version,
		Status:   st,
		Headers:  raw.Headers,
		Body:     raw.Body,
		Trailers: trailers,
	}

	if v, ok := raw.Headers.Get("Date"); ok {
		// Recipients may ignore an invalid date.
		// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-6.6.1-6
		response.Date, _ = ParseDate(v)
	}

	return response
}

// RawResponse lowers r into the wire codec's representation.
func (r *Response) RawResponse() http.Response {
	return http.Response{
		StatusLine: http.StatusLine{
			Version:      r.Version,
			StatusCode:   r.Status.Code,
			ReasonPhrase: r.Status.ReasonPhrase,
		},
		Headers: r.Headers,
		Body:    r.Body,
	}
}
