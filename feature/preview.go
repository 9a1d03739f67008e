package feature

import (
	"bytes"
	"strings"
)

const hexDigits = "0123456789abcdef"

// Preview returns the contents of a byte string literal representing b, without the
// surrounding quotes. Printable ASCII is kept as-is, everything else is escaped.
//
// The literal is double-quoted when b contains a single quote and no double quote,
// in which case single quotes are not escaped.
func Preview(b []byte) string {
	quote := byte('\'')
	if bytes.IndexByte(b, '\'') >= 0 && bytes.IndexByte(b, '"') < 0 {
		quote = '"'
	}

	var sb strings.Builder

	for _, c := range b {
		switch {
		case c == quote || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c == '\t':
			sb.WriteString(`\t`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c < ' ' || c >= 0x7f: //nolint:mnd
			sb.WriteString(`\x`)
			sb.WriteByte(hexDigits[c>>4])
			sb.WriteByte(hexDigits[c&0xf])
		default:
			sb.WriteByte(c)
		}
	}

	return sb.String()
}
