package options

import "strings"

// Tokenize splits an option string into tokens using shell-like word
// splitting: whitespace separates tokens, single quotes preserve everything
// up to the closing quote, double quotes allow backslash escapes of '"' and
// '\', and a backslash outside quotes escapes the next character.
func Tokenize(s string) []string {
	var (
		tokens  []string
		current strings.Builder
		have    bool
	)
	flush := func() {
		if have {
			tokens = append(tokens, current.String())
			current.Reset()
			have = false
		}
	}
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()
			i++
		case c == '\'':
			have = true
			i++
			for i < len(s) && s[i] != '\'' {
				current.WriteByte(s[i])
				i++
			}
			if i < len(s) {
				i++ // closing quote
			}
		case c == '"':
			have = true
			i++
			for i < len(s) && s[i] != '"' {
				if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '"' || s[i+1] == '\\') {
					i++
				}
				current.WriteByte(s[i])
				i++
			}
			if i < len(s) {
				i++
			}
		case c == '\\' && i+1 < len(s):
			have = true
			current.WriteByte(s[i+1])
			i += 2
		default:
			have = true
			current.WriteByte(c)
			i++
		}
	}
	flush()
	return tokens
}
