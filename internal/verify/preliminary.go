package verify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/veritas/internal/classify"
	"github.com/ppiankov/veritas/internal/model"
)

// PerformPreliminaryVerification runs a quick calculation check over content.
// It runs when calculations are detected or when explicitlyRequested is set:
// the best calculation-capable tool is tried first, then the evaluator.
// The returned thought carries inline markers for every calculation.
func (s *Service) PerformPreliminaryVerification(ctx context.Context, content string, explicitlyRequested bool) (model.PreliminaryResult, error) {
	if err := s.ready(); err != nil {
		return model.PreliminaryResult{}, err
	}

	detected := classify.ContainsCalculation(content)
	if !detected && !explicitlyRequested {
		return model.PreliminaryResult{
			VerifiedCalculations: []model.VerifiedCalculation{},
			PreverifiedThought:   content,
		}, nil
	}

	calcs := s.calculationsFromTool(ctx, content)
	if len(calcs) == 0 {
		calcs = s.calculationsFromEvaluator(ctx, content)
	}

	if len(calcs) == 0 {
		return model.PreliminaryResult{
			VerifiedCalculations:   []model.VerifiedCalculation{},
			InitialVerification:    false,
			VerificationInProgress: true,
			PreverifiedThought:     AnnotateThoughtWithVerifications(content, nil),
		}, nil
	}

	return model.PreliminaryResult{
		VerifiedCalculations:   calcs,
		InitialVerification:    true,
		VerificationInProgress: false,
		PreverifiedThought:     AnnotateThoughtWithVerifications(content, calcs),
	}, nil
}

// calculationsFromTool asks the top calculation-capable tool
func (s *Service) calculationsFromTool(ctx context.Context, content string) []model.VerifiedCalculation {
	if s.tools == nil {
		return nil
	}

	suggestions, err := s.tools.SuggestVerificationTools(ctx, content)
	if err != nil {
		s.logger.Warn("tool suggestion failed", zap.Error(err))
		return nil
	}

	for _, sug := range suggestions {
		if !isCalculationTool(sug.Name) {
			continue
		}

		result, err := s.execute(ctx, sug.Name, content)
		if err != nil {
			s.logger.Warn("calculation tool failed", zap.String("tool", sug.Name), zap.Error(err))
			return nil
		}
		if !result.Usable() || len(result.VerifiedCalculations) == 0 {
			s.logger.Debug("calculation tool returned nothing", zap.String("tool", sug.Name))
			return nil
		}
		return result.VerifiedCalculations
	}
	return nil
}

// calculationsFromEvaluator falls back to the calculation evaluator
func (s *Service) calculationsFromEvaluator(ctx context.Context, content string) []model.VerifiedCalculation {
	if s.calc == nil {
		return nil
	}

	results, err := s.calc.DetectAndEvaluate(ctx, content)
	if err != nil {
		s.logger.Warn("calculation evaluation failed", zap.Error(err))
		if len(results) == 0 {
			return nil
		}
	}
	if len(results) == 0 {
		return nil
	}
	return s.calc.ConvertToVerificationResults(results)
}

func isCalculationTool(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "calc") || strings.Contains(lower, "math")
}
