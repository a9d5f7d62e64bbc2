package template

import "strings"

// mdPunct is the CommonMark set of backslash-escapable characters.
const mdPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// escapeMarkdown makes a context value render as literal text. Every
// escapable byte gets a backslash, so neither markup, links nor raw HTML
// survive goldmark. Line breaks become spaces to keep the value inline.
func escapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/4)
	for _, r := range s {
		switch {
		case r == '\r' || r == '\n':
			b.WriteByte(' ')
		case strings.ContainsRune(mdPunct, r):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
