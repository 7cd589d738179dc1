package uri

import (
	"net/netip"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/net/idna"
)

// URI holds raw components. Query and Fragment are nil when the
// delimiter ('?' / '#') was absent.
type URI struct {
	Scheme    string
	Authority *Authority
	Path      string
	Query     *string
	Fragment  *string
}

type Authority struct {
	UserInfo string
	Host     string

	// NOTE: Port can be digits of any length. But practically it is in range of 0 ~ 65535.
	// Reference: datatracker.ietf.org/doc/html/rfc3986#section-3.2.3
	Port *uint16
}

// DefaultPort returns the well-known port of http and https.
func DefaultPort(scheme string) uint16 {
	switch scheme {
	case "http":
		return 80
	case "https":
		return 443
	}
	return 0
}

// RequestTarget returns the origin-form of the URI: path, followed by
// "?query" only when the query is non-empty. An empty path becomes "/".
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2.1
func (u *URI) RequestTarget() string {
	path := u.Path
	if path == "" {
		path = "/"
	}

	if u.Query == nil || *u.Query == "" {
		return path
	}

	return path + "?" + *u.Query
}

// HostHeader returns the value for a Host field: the host converted to
// its ASCII form, plus the port when it differs from the scheme's default.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-7.2
func (u *URI) HostHeader() (string, error) {
	if u.Authority == nil || u.Authority.Host == "" {
		return "", errors.New("uri has no host")
	}

	host := u.Authority.Host
	if !strings.HasPrefix(host, "[") {
		if _, err := netip.ParseAddr(host); err != nil {
			ascii, err := idna.Punycode.ToASCII(host)
			if err != nil {
				return "", errors.Wrapf(err, "converting host %q to ascii", host)
			}
			host = ascii
		}
	}

	if p := u.Authority.Port; p != nil && *p != DefaultPort(u.Scheme) {
		host += ":" + strconv.FormatUint(uint64(*p), 10)
	}

	return host, nil
}

func Parse(rawURL string) (URI, error) {
	if containsCTL(rawURL) {
		return URI{}, errors.New("URI should not contain CTL bytes")
	}

	var uri URI

	scheme, rest, err := cutScheme(rawURL)
	if err != nil {
		return URI{}, errors.Wrap(err, "getting scheme")
	}
	// Scheme is recommended to be lowercase.
	uri.Scheme = strings.ToLower(scheme)

	if strings.HasPrefix(rest, "//") {
		var authorityRaw string
		authorityRaw, rest = rest[2:], ""
		if i := strings.IndexAny(authorityRaw, "/?#"); i >= 0 {
			authorityRaw, rest = authorityRaw[:i], authorityRaw[i:]
		}

		authority, err := parseAuthority(authorityRaw)
		if err != nil {
			return URI{}, errors.Wrap(err, "parsing authority")
		}

		uri.Authority = &authority
	}

	path, query, frag := splitPathQueryFrag(rest)
	uri.Path = path

	if len(query) > 0 {
		// Strip '?' from query.
		query = query[1:]
		uri.Query = &query
	}

	if len(frag) > 0 {
		// Strip '#' from fragment.
		frag = frag[1:]
		uri.Fragment = &frag
	}

	return uri, nil
}

// cutScheme cuts scheme from rawURL. If scheme is not valid, it returns an error.
func cutScheme(rawURL string) (scheme, rest string, err error) {
	before, after, found := strings.Cut(rawURL, ":")
	if !found || strings.ContainsAny(before, "/?#") {
		// If seperator is not found before any path delimiter, scheme doesn't exist.
		return "", rawURL, nil
	}

	scheme, rest = before, after
	if err := assertValidScheme(scheme); err != nil {
		return "", "", err
	}

	return scheme, rest, nil
}

func parseAuthority(raw string) (authority Authority, err error) {
	host := raw
	if i := strings.LastIndex(raw, "@"); i >= 0 {
		authority.UserInfo, host = raw[:i], raw[i+1:]
	}

	host, portPart, err := getHostPort(host)
	if err != nil {
		return Authority{}, errors.Wrap(err, "parsing host")
	}

	port, hasPort, err := parsePort(portPart)
	if err != nil {
		return Authority{}, errors.Wrap(err, "parsing port")
	}

	if hasPort {
		authority.Port = &port
	}

	authority.Host = strings.ToLower(host)

	return authority, nil
}

func getHostPort(raw string) (host string, portPart string, err error) {
	if strings.HasPrefix(raw, "[") {
		// This is IP Literal.
		idx := strings.LastIndex(raw, "]")
		if idx < 0 {
			return "", "", errors.New("missing ']' in IP Literal")
		}

		host = raw[:idx+1]
		portPart = raw[idx+1:]
	} else {
		// ipv4 or reg-name.
		host = raw
		if idx := strings.LastIndex(raw, ":"); idx >= 0 {
			host = raw[:idx]
			portPart = raw[idx:]
		}
	}

	if err := assertValidHost(host); err != nil {
		return "", "", errors.Wrap(err, "host is not valid")
	}

	return host, portPart, nil
}

// An empty port after the colon is treated as absent.
// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.3
func parsePort(s string) (port uint16, hasPort bool, err error) {
	if s == "" || s == ":" {
		return 0, false, nil
	}

	if s[0] != ':' {
		return 0, false, errors.New("colon delimiter not found on port")
	}

	n, err := strconv.ParseUint(s[1:], 10, 16)
	if err != nil {
		return 0, false, errors.Wrap(err, "failed to parse uint")
	}

	return uint16(n), true, nil
}

func splitPathQueryFrag(raw string) (path, query, frag string) {
	if idx := strings.IndexByte(raw, '#'); idx >= 0 {
		frag = raw[idx:]
		raw = raw[:idx]
	}

	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		query = raw[idx:]
		raw = raw[:idx]
	}

	path = raw
	return
}
