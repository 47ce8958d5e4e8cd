package glubblog

import (
	"strings"
	"unicode"
)

var umlauts = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss")

func delspace(r rune) rune {
	if unicode.In(r, unicode.Latin, unicode.Digit) {
		return r
	}
	return '-'
}

// URLSegment derives a URL segment from a title.
func URLSegment(title string) string {
	s := strings.Map(delspace, umlauts.Replace(strings.ToLower(title)))
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}
