package nlp

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fillerWords are Indonesian discourse particles that carry no intent.
var fillerWords = map[string]bool{
	"nih": true, "deh": true, "dong": true, "tuh": true, "loh": true, "ya": true,
	"kok": true, "sih": true, "ah": true, "eh": true, "kan": true,
}

// Fold trims and lowercases text. Commands are matched on this form.
func Fold(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Normalize prepares an utterance for classification: NFKC, Fold, then drop
// filler tokens and rejoin with single spaces. Compatibility forms such as
// "㎒" expand to uppercase letters, so case folding has to follow NFKC for
// Normalize to be idempotent.
func Normalize(text string) string {
	folded := Fold(norm.NFKC.String(text))

	words := strings.Fields(folded)
	kept := words[:0]
	for _, word := range words {
		if fillerWords[word] {
			continue
		}
		kept = append(kept, word)
	}

	return strings.Join(kept, " ")
}

// IsFiller reports whether word is removed by Normalize.
func IsFiller(word string) bool {
	return fillerWords[word]
}
