package rule

const (
	CR   byte = '\r'
	LF   byte = '\n'
	SP   byte = ' '
	HTAB byte = '\t'
	VT   byte = 0x0B
	FF   byte = 0x0C
)

var (
	OWS         = []byte{SP, HTAB}
	CRLF        = []byte{CR, LF}
	Whitespaces = []byte{SP, HTAB, VT, FF, CR}
)

func IsWhitespace(r rune) bool {
	for _, ws := range Whitespaces {
		if r == rune(ws) {
			return true
		}
	}
	return false
}

// IsOWS reports whether r is optional whitespace (SP / HTAB).
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.3
func IsOWS(r rune) bool { return r == rune(SP) || r == rune(HTAB) }
