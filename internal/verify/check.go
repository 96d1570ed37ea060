package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ppiankov/veritas/internal/classify"
	"github.com/ppiankov/veritas/internal/model"
)

// Assessor rates the wording of a claim
type Assessor interface {
	Assess(content string) model.Assessment
}

// WithAssessor sets the source of intrinsic confidence for CheckClaim
func WithAssessor(a Assessor) Option {
	return func(s *Service) { s.assessor = a }
}

// CheckRequest is the input of CheckClaim
type CheckRequest struct {
	Claim     string
	SessionID string
	Force     bool
	// Confidence overrides the assessed intrinsic confidence when set
	Confidence *float64
}

// CheckClaim runs the preliminary calculation pass and deep verification for
// a free-standing claim and collects both into a report
func (s *Service) CheckClaim(ctx context.Context, req CheckRequest) (*model.ClaimReport, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	claim := strings.TrimSpace(req.Claim)
	if claim == "" {
		return nil, fmt.Errorf("check claim: claim is empty")
	}

	thought := &model.Thought{ID: uuid.NewString(), Content: claim}
	report := &model.ClaimReport{
		Claim:     claim,
		SessionID: req.SessionID,
		ThoughtID: thought.ID,
		CheckedAt: s.now().UTC(),
	}

	if s.assessor != nil {
		a := s.assessor.Assess(claim)
		report.Assessment = &a
		thought.Confidence = a.Confidence
	}
	if req.Confidence != nil {
		thought.Confidence = *req.Confidence
	}

	prelim, err := s.PerformPreliminaryVerification(ctx, claim, false)
	if err != nil {
		return nil, fmt.Errorf("preliminary verification: %w", err)
	}
	report.Preliminary = prelim

	result, err := s.DeepVerify(ctx, DeepVerifyRequest{
		Thought:              thought,
		ContainsCalculations: classify.ContainsCalculation(claim),
		ForceVerification:    req.Force,
		SessionID:            req.SessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("deep verification: %w", err)
	}
	report.Result = result
	report.Metadata = thought.Metadata
	return report, nil
}
