package internal

import "strings"

// ParseQuotedString strips the surrounding DQUOTEs from s, if present, and
// unescapes any quoted-pair sequences ("\c" -> "c") per the quoted-string
// grammar of RFC 9110 §5.6.4. If s is not a quoted string, it is returned
// unchanged.
func ParseQuotedString(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	inner := s[1 : len(s)-1]
	if !strings.Contains(inner, `\`) {
		return inner
	}
	var b strings.Builder
	b.Grow(len(inner))
	escape := false
	for i := range len(inner) {
		c := inner[i]
		if escape {
			b.WriteByte(c)
			escape = false
			continue
		}
		if c == '\\' {
			escape = true
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
