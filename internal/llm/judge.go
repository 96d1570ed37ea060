package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/veritas/internal/model"
)

// Verdict labels a Judge may return
const (
	VerdictSupported    = "supported"
	VerdictRefuted      = "refuted"
	VerdictPartial      = "partially_supported"
	VerdictInsufficient = "insufficient_information"
	VerdictUnclear      = "unclear"
)

const (
	defaultMaxTokens = 400
	systemPrompt     = "You are a careful fact-checker. You answer only with a single JSON object and never add prose around it."
)

// Judge asks a language model whether a claim holds
type Judge interface {
	Name() string
	Judge(ctx context.Context, claim string) (*Verdict, error)
}

// Verdict is a model's structured opinion about a claim
type Verdict struct {
	Verdict     string   `json:"verdict"`
	Confidence  float64  `json:"confidence"`
	Explanation string   `json:"explanation"`
	Sources     []string `json:"sources,omitempty"`
	Model       string   `json:"-"`
}

// Validity maps the verdict label onto a tool validity
func (v *Verdict) Validity() model.Validity {
	switch v.Verdict {
	case VerdictSupported:
		return model.ValidityValid
	case VerdictRefuted:
		return model.ValidityInvalid
	case VerdictPartial:
		return model.ValidityPartial
	case VerdictInsufficient:
		return model.ValidityAbsent
	default:
		return model.ValidityUnknown
	}
}

// BuildPrompt renders the judging instructions for claim
func BuildPrompt(claim string) string {
	return fmt.Sprintf(`Assess whether the following claim is factually correct.

Claim: %q

Rules:
1. Answer "%s" only if the claim is correct as stated.
2. Answer "%s" if it is wrong, "%s" if only part of it holds.
3. Answer "%s" if you do not have enough knowledge to decide.
4. Never guess. Confidence is a number between 0 and 1.
5. List sources only if you are certain they exist.

Respond with JSON only:
{"verdict": "...", "confidence": 0.0, "explanation": "...", "sources": []}`,
		claim, VerdictSupported, VerdictRefuted, VerdictPartial, VerdictInsufficient)
}

// ParseVerdict extracts the first JSON object from a model reply.
// Code fences and surrounding prose are tolerated.
func ParseVerdict(reply string) (*Verdict, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var v Verdict
	if err := json.Unmarshal([]byte(reply[start:end+1]), &v); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}

	v.Verdict = strings.ToLower(strings.TrimSpace(v.Verdict))
	switch v.Verdict {
	case VerdictSupported, VerdictRefuted, VerdictPartial, VerdictInsufficient:
	default:
		v.Verdict = VerdictUnclear
	}
	if v.Confidence < 0 {
		v.Confidence = 0
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}
	return &v, nil
}

func maxTokens(cfg model.LLMConfig) int {
	if cfg.MaxTokens > 0 {
		return cfg.MaxTokens
	}
	return defaultMaxTokens
}
