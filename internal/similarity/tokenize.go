package similarity

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// minTokenLength is the shortest token kept; shorter ones carry no topic signal
const minTokenLength = 3

var defaultStopWords = []string{
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had", "her", "was", "one",
	"our", "out", "has", "have", "him", "his", "how", "its", "may", "new", "now", "old", "see", "two",
	"who", "did", "get", "let", "say", "she", "too", "use", "that", "this", "with", "from", "they",
	"been", "were", "which", "their", "there", "what", "when", "where", "will", "would", "could",
	"should", "than", "then", "them", "these", "those", "into", "onto", "upon", "also", "about",
	"over", "under", "such", "some", "only", "very", "just", "because", "while", "being", "does",
	"each", "other", "more", "most",
}

// Tokenize folds diacritics, lowercases, splits on non-word runs and drops
// stop words and tokens of two characters or fewer. Results are memoized per
// raw text for the engine's token TTL; the returned slice must not be modified.
func (e *Engine) Tokenize(text string) []string {
	if cached, found := e.tokens.Get(text); found {
		return cached.([]string)
	}

	folded := strings.ToLower(foldDiacritics(text))
	parts := nonWordPattern.Split(folded, -1)

	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if utf8.RuneCountInString(part) < minTokenLength {
			continue
		}
		if _, stop := e.stopWords[part]; stop {
			continue
		}
		tokens = append(tokens, part)
	}

	e.tokens.SetDefault(text, tokens)
	return tokens
}

// foldDiacritics strips combining marks (é -> e, ñ -> n)
func foldDiacritics(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}
