package nlp

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// KeywordClassifier scores every tag by exact phrase hits and fuzzy token hits
// against its keyword list. It needs no model and is used for local runs and
// tests; production deployments point at the inference server instead.
type KeywordClassifier struct {
	keywords map[string][]string
	tags     []string
}

func NewKeywordClassifier(keywords map[string][]string) *KeywordClassifier {
	cleaned := make(map[string][]string, len(keywords))
	tags := make([]string, 0, len(keywords))

	for tag, words := range keywords {
		for _, w := range words {
			if c := cleanText(w); c != "" {
				cleaned[tag] = append(cleaned[tag], c)
			}
		}
		if len(cleaned[tag]) > 0 {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)

	return &KeywordClassifier{
		keywords: cleaned,
		tags:     tags,
	}
}

// Classify returns the best scoring tag. Confidence is the tag's share of the
// total score, capped by its own score so a single weak fuzzy hit stays weak.
// No hit at all yields an empty tag with zero confidence.
func (k *KeywordClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleaned := cleanText(text)
	tokens := strings.Fields(cleaned)

	bestTag := ""
	bestScore := 0.0
	total := 0.0

	for _, tag := range k.tags {
		score := k.score(tokens, cleaned, k.keywords[tag])
		total += score
		if score > bestScore {
			bestScore = score
			bestTag = tag
		}
	}

	if bestScore == 0 {
		return &Classification{}, nil
	}

	confidence := (bestScore / total) * math.Min(bestScore, 1.0)

	return &Classification{
		Tag:        bestTag,
		Confidence: ClampConfidence(confidence),
	}, nil
}

func (k *KeywordClassifier) score(tokens []string, fullText string, keywords []string) float64 {
	padded := " " + fullText + " "
	total := 0.0

	for _, keyword := range keywords {
		if strings.Contains(padded, " "+keyword+" ") {
			total += 1.0
			continue
		}

		if strings.Contains(keyword, " ") {
			continue
		}

		best := 0.0
		for _, token := range tokens {
			if s := similarity(token, keyword); s > best {
				best = s
			}
		}
		if best >= 0.75 {
			total += best * 0.7
		}
	}

	return total
}

func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	distance := levenshteinDistance(a, b)
	maxLen := math.Max(float64(len([]rune(a))), float64(len([]rune(b))))
	if maxLen == 0 {
		return 0.0
	}

	return math.Max(0, 1.0-(float64(distance)/maxLen))
}

func levenshteinDistance(a, b string) int {
	s1, s2 := []rune(a), []rune(b)
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}

// cleanText lowercases, strips diacritics and punctuation, and collapses
// whitespace.
func cleanText(text string) string {
	text = strings.ToLower(text)

	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	result, _, _ := transform.String(t, text)

	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		return ' '
	}, result)

	return strings.Join(strings.Fields(result), " ")
}

func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
