package grading

import "strings"

var punctReplacer = strings.NewReplacer(
	".", "", ",", "", "!", "", "?", "", ";", "", ":", "",
	"'", "", `"`, "", "(", "", ")", "",
)

// NormalizeText lowercases, strips punctuation and collapses whitespace.
// It is applied identically everywhere typed answers are compared
// (fill_typing, sentence_correction, composite blanks). Accents are not
// folded.
func NormalizeText(s string) string {
	s = punctReplacer.Replace(strings.ToLower(s))
	return strings.Join(strings.Fields(s), " ")
}
