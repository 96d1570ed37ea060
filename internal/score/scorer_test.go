package score

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/veritas/internal/model"
)

func TestScorer_Requirements_SimpleClaim(t *testing.T) {
	scorer := NewScorer(nil)

	req := scorer.DetermineVerificationRequirements("Paris is the capital of France")

	want := model.VerificationRequirements{
		RequiresMultipleVerifications: false,
		RecommendedVerificationsCount: 1,
		Reasons:                       []string{"simple claim"},
	}
	if diff := cmp.Diff(want, req); diff != "" {
		t.Errorf("requirements mismatch (-want +got):\n%s", diff)
	}
}

func TestScorer_Requirements_ComplexClaim(t *testing.T) {
	scorer := NewScorer(nil)

	req := scorer.DetermineVerificationRequirements(
		"According to a 2019 study, approximately 45% of adults in 12 countries drink coffee daily")

	if !req.RequiresMultipleVerifications {
		t.Error("Expected multiple verifications for a sourced statistic")
	}
	if req.RecommendedVerificationsCount != maxRecommended {
		t.Errorf("Expected %d recommended verifications, got %d", maxRecommended, req.RecommendedVerificationsCount)
	}
	if len(req.Reasons) != 4 {
		t.Errorf("Expected 4 reasons, got %d: %v", len(req.Reasons), req.Reasons)
	}
}

func TestScorer_Assess_HighQuality(t *testing.T) {
	scorer := NewScorer(nil)

	result := scorer.Assess("Marie Curie won the Nobel Prize in Physics in 1903 according to https://nobelprize.org")

	if result.Points != 100 {
		t.Errorf("Expected 100 points, got %d", result.Points)
	}
	if result.Level != "high" {
		t.Errorf("Expected high level, got %s", result.Level)
	}
	if result.Confidence != 1.0 {
		t.Errorf("Expected confidence 1.0, got %f", result.Confidence)
	}
}

func TestScorer_Assess_HedgedOpinion(t *testing.T) {
	scorer := NewScorer(nil)

	result := scorer.Assess("I think it might possibly be better")

	if result.Level != "low" {
		t.Errorf("Expected low level, got %s", result.Level)
	}
	if result.Points != 10 {
		t.Errorf("Expected 10 points, got %d", result.Points)
	}

	hasOpinion := false
	for _, signal := range result.Signals {
		if signal.Type == model.SignalOpinion {
			hasOpinion = true
		}
		if signal.Type == model.SignalHedging && signal.Severity != model.SeverityWarning {
			t.Errorf("Expected hedging warning, got %s", signal.Severity)
		}
	}
	if !hasOpinion {
		t.Error("Expected opinion signal")
	}
}

func TestScorer_Assess_Empty(t *testing.T) {
	scorer := NewScorer(nil)

	result := scorer.Assess("")

	// Should not panic and should return valid result
	if result.Confidence < 0 || result.Confidence > 1 {
		t.Errorf("Expected confidence between 0 and 1, got %f", result.Confidence)
	}
	if result.Relevance != 0 {
		t.Errorf("Expected relevance 0 for empty claim, got %f", result.Relevance)
	}
	if len(result.Signals) == 0 {
		t.Error("Expected signals even for empty input")
	}
}

func TestScorer_Assess_Bounds(t *testing.T) {
	scorer := NewScorer(nil)

	claims := []string{
		"2 + 2 = 4",
		"The Eiffel Tower is about 330 metres tall and was completed in 1889 in Paris, France.",
		"maybe maybe maybe might could possibly",
		"In my opinion the best pizza is from Naples, Italy according to a 2020 survey of 1,000 people.",
	}

	for _, c := range claims {
		result := scorer.Assess(c)
		if result.Points < 0 || result.Points > 100 {
			t.Errorf("Assess(%q): expected points in [0,100], got %d", c, result.Points)
		}
		if result.Quality < 0 || result.Quality > 1 || result.Relevance < 0 || result.Relevance > 1 {
			t.Errorf("Assess(%q): expected quality and relevance in [0,1], got %f %f", c, result.Quality, result.Relevance)
		}
	}
}

func TestCountProperNouns(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Paris is in France", 1},
		{"The Nile flows north. Egypt depends on it.", 1},
		{"nothing here", 0},
	}
	for _, tt := range tests {
		if got := countProperNouns(tt.text); got != tt.want {
			t.Errorf("countProperNouns(%q): expected %d, got %d", tt.text, tt.want, got)
		}
	}
}
