package memory

import (
	"math"
	"regexp"
	"strings"

	"github.com/ppiankov/veritas/internal/model"
)

const (
	// chunkBonus rewards a verbatim shared sentence fragment of 3+ words
	chunkBonus = 0.2
	// maxTextScore keeps token overlap below an exact match
	maxTextScore = 0.95
	// minChunkWords is the shortest fragment that counts as shared wording
	minChunkWords = 3
)

var (
	wordSplitPattern  = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	chunkSplitPattern = regexp.MustCompile(`[.!?;:\n]+`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// textSearchLocked is the fallback lookup used without a similarity scorer:
// exact text first, then token overlap at the given threshold
func (s *Store) textSearchLocked(text string, live []*model.VerificationEntry, threshold float64) *model.Match {
	for _, e := range live {
		if sameText(e.Text, text) {
			return toMatch(e, 1.0)
		}
	}

	var best *model.VerificationEntry
	bestScore := 0.0
	for _, e := range live {
		score := s.textScore(text, e.Text)
		if score > bestScore {
			best, bestScore = e, score
		}
	}

	if best != nil && bestScore >= threshold {
		return toMatch(best, bestScore)
	}
	return nil
}

// textScore is memoized in the compare cache; the auxiliary sweep resets it
func (s *Store) textScore(a, b string) float64 {
	key := a + "\x00" + b
	if cached, found := s.compare.Get(key); found {
		return cached.(float64)
	}
	score := TextSimilarity(a, b)
	s.compare.SetDefault(key, score)
	return score
}

// TextSimilarity scores two texts without corpus statistics: Jaccard overlap
// of words longer than three characters, plus a flat bonus when a sentence
// fragment of at least three words appears verbatim in both. Capped at 0.95.
func TextSimilarity(a, b string) float64 {
	tokensA := significantWords(a)
	tokensB := significantWords(b)

	score := 0.0
	if len(tokensA) > 0 || len(tokensB) > 0 {
		shared := 0
		for tok := range tokensA {
			if _, ok := tokensB[tok]; ok {
				shared++
			}
		}
		union := len(tokensA) + len(tokensB) - shared
		if union > 0 {
			score = float64(shared) / float64(union)
		}
	}

	if sharesChunk(a, b) {
		score += chunkBonus
	}
	return math.Min(score, maxTextScore)
}

func significantWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range wordSplitPattern.Split(strings.ToLower(text), -1) {
		if len([]rune(w)) > 3 {
			words[w] = struct{}{}
		}
	}
	return words
}

func sharesChunk(a, b string) bool {
	chunksB := make(map[string]struct{})
	for _, c := range chunks(b) {
		chunksB[c] = struct{}{}
	}
	for _, c := range chunks(a) {
		if _, ok := chunksB[c]; ok {
			return true
		}
	}
	return false
}

// chunks splits text into normalized sentence fragments of 3+ words
func chunks(text string) []string {
	var out []string
	for _, part := range chunkSplitPattern.Split(strings.ToLower(text), -1) {
		part = strings.TrimSpace(spacePattern.ReplaceAllString(part, " "))
		part = strings.Trim(part, ",")
		if len(strings.Fields(part)) >= minChunkWords {
			out = append(out, part)
		}
	}
	return out
}
