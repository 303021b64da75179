package ics

import (
	"strings"
	"unicode/utf8"
)

const maxLineOctets = 75

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

// escapeText escapes a TEXT property value.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// fold splits a content line longer than 75 octets. Continuation lines
// start with a single space, and multi-byte characters are never split.
func fold(line string) string {
	if len(line) <= maxLineOctets {
		return line
	}
	var b strings.Builder
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString(crlf)
		b.WriteByte(' ')
		line = line[cut:]
		// the leading space counts towards the limit
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	return b.String()
}
