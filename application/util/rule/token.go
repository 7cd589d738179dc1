package rule

import (
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.2-2
func IsValidToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if !httpguts.IsTokenRune(c) {
			return false
		}
	}

	return true
}

// LastListElement returns the last non-empty element of a comma-separated list,
// trimmed and lowercased. ok is false when the list has no elements.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.1
func LastListElement(list string) (elem string, ok bool) {
	parts := strings.Split(list, ",")
	for idx := len(parts) - 1; idx >= 0; idx-- {
		elem = strings.TrimFunc(parts[idx], IsOWS)
		if elem != "" {
			return strings.ToLower(elem), true
		}
	}
	return "", false
}
