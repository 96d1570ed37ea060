// Package similarity compares short texts with corpus-relative TF-IDF vectors.
package similarity

import (
	"math"
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// TermVector maps a token to its weight. Missing tokens weigh 0.
// Weights are only comparable with vectors built from the same corpus.
type TermVector map[string]float64

// Scored is a candidate text with its similarity to a reference
type Scored struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Engine builds TF-IDF vectors over a per-call corpus and compares them
type Engine struct {
	stopWords map[string]struct{}
	tokens    *gocache.Cache
	tokenTTL  time.Duration
	logger    *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithTokenCacheTTL sets how long tokenization results are memoized
func WithTokenCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.tokenTTL = ttl
		}
	}
}

// WithStopWords replaces the default stop-word list
func WithStopWords(words []string) Option {
	return func(e *Engine) {
		e.stopWords = make(map[string]struct{}, len(words))
		for _, w := range words {
			e.stopWords[w] = struct{}{}
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates a similarity engine
func New(opts ...Option) *Engine {
	e := &Engine{
		tokenTTL: 5 * time.Minute,
		logger:   zap.NewNop(),
	}
	WithStopWords(defaultStopWords)(e)

	for _, opt := range opts {
		opt(e)
	}

	e.tokens = gocache.New(e.tokenTTL, 2*e.tokenTTL)
	return e
}

// FindSimilarTexts ranks candidates by similarity to reference, keeping only
// scores >= threshold. limit <= 0 means no limit. An empty candidate list
// yields an empty result.
func (e *Engine) FindSimilarTexts(reference string, candidates []string, limit int, threshold float64) []Scored {
	if len(candidates) == 0 {
		return []Scored{}
	}

	scores := e.ScoreAll(reference, candidates)

	results := make([]Scored, 0, len(candidates))
	for i, score := range scores {
		if score >= threshold {
			results = append(results, Scored{Text: candidates[i], Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// ScoreAll returns the similarity of reference to each candidate, in
// candidate order. All texts form one corpus for IDF weighting.
func (e *Engine) ScoreAll(reference string, candidates []string) []float64 {
	if len(candidates) == 0 {
		return []float64{}
	}

	docs := make([]string, 0, len(candidates)+1)
	docs = append(docs, reference)
	docs = append(docs, candidates...)

	vectors := e.Vectorize(docs)

	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = CosineSimilarity(vectors[0], vectors[i+1])
	}
	return scores
}

// Similarity compares two texts using a two-document corpus
func (e *Engine) Similarity(a, b string) float64 {
	vectors := e.Vectorize([]string{a, b})
	return CosineSimilarity(vectors[0], vectors[1])
}

// Vectorize builds one TF-IDF vector per document. IDF is smoothed and
// computed over exactly the documents passed in:
//
//	idf(t) = ln((N+1)/(df(t)+1)) + 1
func (e *Engine) Vectorize(docs []string) []TermVector {
	tokenized := make([][]string, len(docs))
	docFreq := make(map[string]int)

	for i, doc := range docs {
		tokens := e.Tokenize(doc)
		tokenized[i] = tokens

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
		}
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(docFreq))
	for tok, df := range docFreq {
		idf[tok] = math.Log((n+1)/(float64(df)+1)) + 1
	}

	vectors := make([]TermVector, len(docs))
	for i, tokens := range tokenized {
		vectors[i] = weigh(tokens, idf)
	}
	return vectors
}

// weigh computes tf*idf for one document, dropping zero weights
func weigh(tokens []string, idf map[string]float64) TermVector {
	vec := make(TermVector)
	if len(tokens) == 0 {
		return vec
	}

	counts := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		counts[tok]++
	}

	length := float64(len(tokens))
	for tok, count := range counts {
		w := (float64(count) / length) * idf[tok]
		if w > 0 {
			vec[tok] = w
		}
	}
	return vec
}

// CosineSimilarity returns the cosine of two vectors clamped to [0,1].
// A vector without non-zero terms scores 0 against anything.
func CosineSimilarity(a, b TermVector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for tok, wa := range a {
		normA += wa * wa
		if wb, ok := b[tok]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		normB += wb * wb
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
