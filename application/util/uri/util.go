package uri

import (
	"net/netip"
	"strings"

	"github.com/pkg/errors"
)

func containsCTL(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b < ' ' || b == 0x7f {
			return true
		}
	}
	return false
}

func isAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.1
func assertValidScheme(scheme string) error {
	if len(scheme) == 0 {
		return errors.New("scheme is empty")
	}

	if !isAlpha(scheme[0]) {
		return errors.New("scheme doesn't start with ALPHA")
	}

	for idx := 1; idx < len(scheme); idx++ {
		c := scheme[idx]
		switch {
		case isAlpha(c) || isDigit(c):
		case c == '+' || c == '-' || c == '.':
		default:
			return errors.New("scheme contains invalid byte")
		}
	}

	return nil
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.2
func assertValidHost(host string) error {
	if len(host) > 255 {
		return errors.Errorf("host length exceeds limit(255): %d", len(host))
	}

	if strings.HasPrefix(host, "[") {
		if !strings.HasSuffix(host, "]") {
			return errors.New("missing ']' in IP Literal")
		}
		if _, err := netip.ParseAddr(host[1 : len(host)-1]); err != nil {
			return errors.Wrap(err, "host is expected to be IP Literal, but was malformed")
		}
		return nil
	}

	if strings.ContainsAny(host, " /?#@[]") {
		return errors.Errorf("host contains invalid character: %q", host)
	}

	return nil
}
