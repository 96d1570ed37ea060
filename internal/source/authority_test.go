package source

import (
	"testing"

	"github.com/ppiankov/veritas/internal/model"
)

func TestAuthorityClassifier_Classify(t *testing.T) {
	classifier, err := NewAuthorityClassifier(&model.AuthorityConfig{
		PrimaryDomains:   []string{"legislation.gov.uk", "doi.org"},
		SecondaryDomains: []string{"wikipedia.org"},
		PathPatterns: []model.PathPattern{
			{Pattern: `(?i)/blog/`, Tier: "tertiary"},
			{Pattern: `(?i)/statutes?/`, Tier: "primary"},
		},
		DomainMap: map[string]string{"en.wikipedia.org": "primary"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	tests := []struct {
		url      string
		expected model.AuthorityTier
		desc     string
	}{
		{"https://legislation.gov.uk/ukpga/1998/42", model.TierPrimary, "primary exact"},
		{"https://www.legislation.gov.uk/statute", model.TierPrimary, "primary with www"},
		{"https://doi.org:443/10.1234/x", model.TierPrimary, "port stripped"},
		{"https://de.wikipedia.org/wiki/Paris", model.TierSecondary, "secondary subdomain"},
		{"https://en.wikipedia.org/wiki/Paris", model.TierPrimary, "domain map override"},
		{"https://example.com/statutes/1", model.TierPrimary, "path pattern"},
		{"https://example.com/blog/post", model.TierTertiary, "tertiary path"},
		{"https://nasa.gov/mission", model.TierPrimary, ".gov"},
		{"https://ox.ac.uk/research", model.TierPrimary, ".ac.uk"},
		{"https://notwikipedia.org/x", model.TierTertiary, "suffix without dot"},
		{"not a url", model.TierUnknown, "unparseable"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if got := classifier.Classify(tt.url); got != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, got)
			}
		})
	}
}

func TestNewAuthorityClassifier_InvalidPattern(t *testing.T) {
	_, err := NewAuthorityClassifier(&model.AuthorityConfig{
		PathPatterns: []model.PathPattern{{Pattern: "(", Tier: "primary"}},
	})
	if err == nil {
		t.Error("Expected error for invalid path pattern")
	}
}

func TestNewAuthorityClassifier_Defaults(t *testing.T) {
	classifier, err := NewAuthorityClassifier(nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := classifier.Classify("https://arxiv.org/abs/1234"); got != model.TierPrimary {
		t.Errorf("Expected primary for arxiv, got %v", got)
	}
}
