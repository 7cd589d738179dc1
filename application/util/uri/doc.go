// Package uri splits Uniform Resource Identifier (URI) references into
// the components an HTTP client needs: scheme, authority, path and query.
//
// Components are kept in their raw (still percent-encoded) form so that a
// request target can be reproduced byte for byte.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc3986
package uri
