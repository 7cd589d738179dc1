package semantic

import (
	"time"

	"github.com/pkg/errors"
)

type Method string

const (
	MethodGet     Method = "GET"
	MethodHead    Method = "HEAD"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodOptions Method = "OPTIONS"
)

var ErrUnsupportedMethod = errors.New("unsupported method")

// ParseMethod accepts only the methods this client sends.
// Method tokens are case-sensitive.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-9.1-5
func ParseMethod(raw string) (Method, error) {
	switch m := Method(raw); m {
	case MethodGet, MethodHead, MethodPost, MethodPut,
		MethodPatch, MethodDelete, MethodOptions:
		return m, nil
	}

	return "", errors.Wrapf(ErrUnsupportedMethod, "%q", raw)
}

func (m Method) String() string { return string(m) }

const (
	// Preferred format: IMF-fixdate
	imfFixDateFormat = time.RFC1123
	// Obsolete RFC 850 format
	rfc850DateFormat = time.RFC850
	// Obsolete asctime format
	asctimeDateFormat = time.ANSIC
)

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.7
func ParseDate(raw string) (time.Time, error) {
	layouts := []string{imfFixDateFormat, rfc850DateFormat, asctimeDateFormat}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Errorf("invalid time format: %q", raw)
}
