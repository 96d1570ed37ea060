// Package score rates claim wording: how much verification a claim needs and
// how confident its phrasing is on its own.
package score

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/veritas/internal/classify"
	"github.com/ppiankov/veritas/internal/model"
)

const maxRecommended = 5

var (
	numberPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	yearPattern   = regexp.MustCompile(`\b(1[0-9]{3}|20[0-9]{2})\b`)
	hedgePattern  = regexp.MustCompile(`(?i)\b(may|might|could|possibly|approximately|about|around|roughly|reportedly|allegedly|likely|some|often|usually)\b`)
)

// Scorer rates claims by their wording
type Scorer struct {
	classifier *classify.Classifier
}

// NewScorer creates a new scorer; nil uses the default classifier
func NewScorer(classifier *classify.Classifier) *Scorer {
	if classifier == nil {
		classifier = classify.Default()
	}
	return &Scorer{classifier: classifier}
}

// DetermineVerificationRequirements recommends how many independent checks a claim deserves
func (s *Scorer) DetermineVerificationRequirements(content string) model.VerificationRequirements {
	count := 1
	var reasons []string

	cats := s.classifier.Classify(content)

	if n := len(numberPattern.FindAllString(content, -1)); n >= 2 {
		count++
		reasons = append(reasons, fmt.Sprintf("contains %d numeric values", n))
	}
	if cats.Has(classify.CategoryStatistic) {
		count++
		reasons = append(reasons, "statistical claim")
	}
	if cats.Has(classify.CategoryReference) {
		count++
		reasons = append(reasons, "cites an external reference")
	}
	if words := len(strings.Fields(content)); words > 25 {
		count++
		reasons = append(reasons, fmt.Sprintf("long claim (%d words)", words))
	}
	if hedges := hedgePattern.FindAllString(content, -1); len(hedges) > 0 {
		count++
		reasons = append(reasons, fmt.Sprintf("hedged wording: %s", strings.ToLower(strings.Join(hedges, ", "))))
	}

	if count > maxRecommended {
		count = maxRecommended
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "simple claim")
	}

	return model.VerificationRequirements{
		RequiresMultipleVerifications: count > 1,
		RecommendedVerificationsCount: count,
		Reasons:                       reasons,
	}
}

// Assess calculates the intrinsic confidence of a claim and its diagnostic signals
func (s *Scorer) Assess(content string) model.Assessment {
	var signals []model.Signal
	cats := s.classifier.Classify(content)

	// 1. Specificity (0-40 points)
	specificityScore, specificitySignal := s.calculateSpecificity(content)
	signals = append(signals, specificitySignal)

	// 2. Hedging (0-30 points)
	hedgingScore, hedgingSignal := s.calculateHedging(content)
	signals = append(signals, hedgingSignal)

	// 3. Sourcing (0-20 points)
	sourcingScore, sourcingSignal := s.calculateSourcing(cats)
	signals = append(signals, sourcingSignal)

	// 4. Length (0-10 points)
	lengthScore, lengthSignal := s.calculateLength(content)
	signals = append(signals, lengthSignal)

	total := specificityScore + hedgingScore + sourcingScore + lengthScore

	// 5. Opinion (penalty)
	if cats.Has(classify.CategoryOpinion) {
		total -= 15
		if total < 0 {
			total = 0
		}
		signals = append(signals, model.Signal{
			Type:        model.SignalOpinion,
			Severity:    model.SeverityWarning,
			Description: "Subjective wording detected",
			Data:        map[string]interface{}{"penalty": 15},
		})
	}

	return model.Assessment{
		Confidence: float64(total) / 100,
		Relevance:  relevance(content),
		Quality:    float64(sourcingScore+lengthScore) / 30,
		Points:     total,
		Level:      determineLevel(total),
		Signals:    signals,
	}
}

// calculateSpecificity rewards concrete detail (0-40 points)
func (s *Scorer) calculateSpecificity(content string) (int, model.Signal) {
	numbers := len(numberPattern.FindAllString(content, -1))
	years := len(yearPattern.FindAllString(content, -1))
	names := countProperNouns(content)

	specifics := numbers + years + names
	score := int(math.Min(float64(specifics*10), 40))

	severity := model.SeverityInfo
	if specifics == 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalSpecificity,
		Severity:    severity,
		Description: fmt.Sprintf("Specific details: %d", specifics),
		Data: map[string]interface{}{
			"numbers":      numbers,
			"years":        years,
			"proper_nouns": names,
			"score":        score,
			"formula":      "min((numbers + years + proper_nouns) * 10, 40)",
		},
	}
}

// calculateHedging penalizes qualifiers (0-30 points)
func (s *Scorer) calculateHedging(content string) (int, model.Signal) {
	hedges := len(hedgePattern.FindAllString(content, -1))
	score := 30 - hedges*10
	if score < 0 {
		score = 0
	}

	severity := model.SeverityInfo
	if hedges >= 3 {
		severity = model.SeverityCritical
	} else if hedges > 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalHedging,
		Severity:    severity,
		Description: fmt.Sprintf("Hedging qualifiers: %d", hedges),
		Data: map[string]interface{}{
			"hedges":  hedges,
			"score":   score,
			"formula": "30 - min(hedges * 10, 30)",
		},
	}
}

// calculateSourcing rewards cited references (0-20 points)
func (s *Scorer) calculateSourcing(cats classify.Categories) (int, model.Signal) {
	if cats.Has(classify.CategoryReference) {
		return 20, model.Signal{
			Type:        model.SignalSourcing,
			Severity:    model.SeverityInfo,
			Description: "Claim cites a source",
			Data:        map[string]interface{}{"score": 20},
		}
	}
	return 5, model.Signal{
		Type:        model.SignalSourcing,
		Severity:    model.SeverityWarning,
		Description: "No source cited",
		Data:        map[string]interface{}{"score": 5},
	}
}

// calculateLength prefers sentence-sized claims (0-10 points)
func (s *Scorer) calculateLength(content string) (int, model.Signal) {
	words := len(strings.Fields(content))

	score, severity := 10, model.SeverityInfo
	switch {
	case words < 3:
		score, severity = 0, model.SeverityCritical
	case words > 40:
		score, severity = 5, model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalLength,
		Severity:    severity,
		Description: fmt.Sprintf("Claim length: %d words", words),
		Data: map[string]interface{}{
			"words": words,
			"score": score,
		},
	}
}

// countProperNouns counts capitalized words that do not start a sentence
func countProperNouns(content string) int {
	count := 0
	sentenceStart := true
	for _, word := range strings.Fields(content) {
		trimmed := strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if trimmed != "" && !sentenceStart {
			if r := []rune(trimmed)[0]; unicode.IsUpper(r) {
				count++
			}
		}
		sentenceStart = strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?")
	}
	return count
}

func relevance(content string) float64 {
	words := strings.Fields(content)
	if len(words) == 0 {
		return 0
	}
	bearing := 0
	for _, w := range words {
		if len([]rune(strings.Trim(w, ".,;:!?\"'()"))) > 3 {
			bearing++
		}
	}
	return float64(bearing) / float64(len(words))
}

// determineLevel maps points to a confidence level
func determineLevel(points int) string {
	if points >= 70 {
		return "high"
	} else if points >= 45 {
		return "medium"
	}
	return "low"
}
