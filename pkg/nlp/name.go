package nlp

import (
	"regexp"
	"strings"
)

const DefaultName = "Teman"

// namePatterns are tried in order. Explicit self-naming phrases come first,
// the trailing-word catch-all last.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`namaku\s+([a-zA-Z]+)`),
	regexp.MustCompile(`nama\s+saya\s+([a-zA-Z]+)`),
	regexp.MustCompile(`nama\s+aku\s+([a-zA-Z]+)`),
	regexp.MustCompile(`my\s+name\s+is\s+([a-zA-Z]+)`),
	regexp.MustCompile(`call\s+me\s+([a-zA-Z]+)`),
	regexp.MustCompile(`saya\s+([a-zA-Z]+)`),
	regexp.MustCompile(`aku\s+([a-zA-Z]+)`),
	regexp.MustCompile(`panggil\s+aku\s+([a-zA-Z]+)`),
	regexp.MustCompile(`\bi\s+am\s+([a-zA-Z]+)`),
	regexp.MustCompile(`\bi'm\s+([a-zA-Z]+)`),
	regexp.MustCompile(`([a-zA-Z]+)$`),
}

// ExtractName returns the self-reported name in text, capitalized, or
// DefaultName when nothing matches.
func ExtractName(text string) string {
	text = strings.ToLower(text)

	for _, pattern := range namePatterns {
		match := pattern.FindStringSubmatch(text)
		if len(match) > 1 && match[1] != "" {
			return Capitalize(match[1])
		}
	}

	return DefaultName
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(word string) string {
	if word == "" {
		return word
	}
	runes := []rune(strings.ToLower(word))
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
