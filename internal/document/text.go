package document

import "strings"

var punctuation = strings.NewReplacer(
	"\u2018", "'", "\u2019", "'",
	"\u201c", `"`, "\u201d", `"`,
	"\u2013", "-", "\u2014", "-",
	"\u2026", "...", "\u00a0", " ",
	"\t", "    ",
)

// latin1 maps text onto the 7-bit range the core PDF fonts measure reliably.
func latin1(s string) string {
	s = punctuation.Replace(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r < 0x20:
			return -1
		case r > 0x7e:
			return '?'
		}
		return r
	}, s)
}
