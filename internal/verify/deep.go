package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/telemetry"
)

// Pipeline stage names, recorded in thought metadata
const (
	StageCacheCheck     = "cache_check"
	StageClassification = "classification"
	StageToolSizing     = "tool_sizing"
	StagePrimary        = "primary_verification"
	StageCalculation    = "calculation_verification"
	StageComplementary  = "complementary_verification"
	StageAggregation    = "aggregation"
)

// Verification sources stamped into thought metadata
const (
	SourceCache = "cache"
	SourceDeep  = "deep_verification"
)

// DeepVerifyRequest is the input of DeepVerify
type DeepVerifyRequest struct {
	Thought              *model.Thought
	ContainsCalculations bool
	ForceVerification    bool
	SessionID            string
}

// DeepVerify runs the full verification pipeline for a thought and writes the
// outcome back to memory. Tool and evaluator failures never fail the call;
// they only reduce the evidence available to aggregation. Tools receive ctx
// as is: bounding slow tools is up to the caller.
func (s *Service) DeepVerify(ctx context.Context, req DeepVerifyRequest) (model.VerificationResult, error) {
	if err := s.ready(); err != nil {
		return model.VerificationResult{}, err
	}
	if req.Thought == nil {
		return model.VerificationResult{}, fmt.Errorf("deep verify: thought is nil")
	}

	start := time.Now()
	defer func() {
		telemetry.DeepVerifyDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, span := s.tracer.Start(ctx, "verify.DeepVerify",
		trace.WithAttributes(
			attribute.String("verify.session", req.SessionID),
			attribute.Bool("verify.force", req.ForceVerification),
		),
	)
	defer span.End()

	content := req.Thought.Content
	var stages []string

	// 1. Cache short-circuit
	if !req.ForceVerification {
		stages = append(stages, StageCacheCheck)
		prev, found, err := s.CheckPreviousVerification(content, req.SessionID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return model.VerificationResult{}, err
		}
		// unverified hits are reused as well; only ForceVerification re-runs the tools
		if found && (prev.Confidence >= s.cfg.ReuseConfidence || prev.Status == model.StatusUnverified) {
			prev.VerificationSteps = append(prev.VerificationSteps, "Reused previous verification")
			s.stamp(req.Thought, SourceCache, req.SessionID, 0, stages, prev)
			s.finish(span, prev)
			return prev, nil
		}
	}

	result := model.VerificationResult{
		Sources:           []string{},
		VerificationSteps: []string{},
	}

	// 2. Classification
	stages = append(stages, StageClassification)
	categories := s.classifier.Classify(content)
	result.VerificationSteps = append(result.VerificationSteps,
		fmt.Sprintf("Classified claim as: %s", describeCategories(categories.Strings())))

	// 3. Tool sizing
	stages = append(stages, StageToolSizing)
	requirements := s.requirements(content)
	suggestions := s.suggest(ctx, content)
	count := sizeTools(requirements.RecommendedVerificationsCount, len(categories), len(suggestions))
	result.VerificationSteps = append(result.VerificationSteps,
		fmt.Sprintf("Selected %d of %d available tool(s)", count, len(suggestions)))

	// 4. Primary verification
	stages = append(stages, StagePrimary)
	primary := s.runTools(ctx, suggestions[:count], content)
	for _, o := range primary {
		result.VerificationSteps = append(result.VerificationSteps,
			fmt.Sprintf("%s: %s", o.Name, o.Result.IsValid))
	}
	if len(primary) < count {
		result.VerificationSteps = append(result.VerificationSteps,
			fmt.Sprintf("%d tool(s) returned no usable result", count-len(primary)))
	}

	// 5. Calculation verification
	var calcs []model.VerifiedCalculation
	if req.ContainsCalculations {
		stages = append(stages, StageCalculation)
		calcs = s.verifyCalculations(ctx, content, primary)
		result.VerifiedCalculations = calcs
		result.VerificationSteps = append(result.VerificationSteps,
			fmt.Sprintf("Checked %d calculation(s)", len(calcs)))
	}

	// 6. Complementary pass
	outcomes := primary
	toolsUsed := count
	if len(primary) < 2 && requirements.RequiresMultipleVerifications && count < len(suggestions) {
		stages = append(stages, StageComplementary)
		extra := s.runTools(ctx, suggestions[count:count+1], content)
		toolsUsed++
		outcomes = append(outcomes, extra...)
		result.VerificationSteps = append(result.VerificationSteps,
			fmt.Sprintf("Complementary check with %s", suggestions[count].Name))
	}

	// 7. Aggregation
	stages = append(stages, StageAggregation)
	agg := s.aggregate(outcomes, calcs, req.Thought.Confidence, content)
	result.Status = agg.status
	result.Confidence = agg.confidence
	result.Contradictions = agg.contradictions
	result.Notes = strings.Join(agg.notes, "; ")
	result.Sources = sourcesOf(outcomes)

	if _, err := s.memory.AddVerification(content, result.Status, result.Confidence, result.Sources, req.SessionID, s.ttl); err != nil {
		s.logger.Warn("failed to store verification", zap.Error(err))
	}

	s.stamp(req.Thought, SourceDeep, req.SessionID, toolsUsed, stages, result)
	s.finish(span, result)

	s.logger.Debug("deep verification complete",
		zap.String("session", req.SessionID),
		zap.String("status", string(result.Status)),
		zap.Float64("confidence", result.Confidence),
		zap.Int("tools", toolsUsed),
		zap.Int("usable", len(outcomes)))
	return result, nil
}

func (s *Service) requirements(content string) model.VerificationRequirements {
	if s.metrics == nil {
		return model.VerificationRequirements{RecommendedVerificationsCount: 1, Reasons: []string{"no metrics available"}}
	}
	return s.metrics.DetermineVerificationRequirements(content)
}

func (s *Service) suggest(ctx context.Context, content string) []model.ToolSuggestion {
	if s.tools == nil {
		return nil
	}
	suggestions, err := s.tools.SuggestVerificationTools(ctx, content)
	if err != nil {
		s.logger.Warn("tool suggestion failed", zap.Error(err))
		return nil
	}
	return suggestions
}

// sizeTools clamps the recommended count to [1, available] and adds one for
// claims spanning more than two categories
func sizeTools(recommended, categories, available int) int {
	if available == 0 {
		return 0
	}
	count := recommended
	if count < 1 {
		count = 1
	}
	if count > available {
		count = available
	}
	if categories > 2 {
		count++
	}
	if count > available {
		count = available
	}
	return count
}

// runTools executes tools concurrently and keeps the usable results in
// suggestion order. Failures are logged and dropped.
func (s *Service) runTools(ctx context.Context, suggestions []model.ToolSuggestion, content string) []ToolOutcome {
	if len(suggestions) == 0 {
		return nil
	}

	results := make([]*model.ToolResult, len(suggestions))

	g, gCtx := errgroup.WithContext(ctx)
	for i, sug := range suggestions {
		i, sug := i, sug
		g.Go(func() error {
			res, err := s.execute(gCtx, sug.Name, content)
			if err != nil {
				s.logger.Warn("verification tool failed", zap.String("tool", sug.Name), zap.Error(err))
				return nil
			}
			if !res.Usable() {
				s.logger.Debug("verification tool returned no usable result", zap.String("tool", sug.Name))
				return nil
			}
			results[i] = res
			return nil // tool failures are not pipeline failures
		})
	}
	_ = g.Wait()

	var outcomes []ToolOutcome
	for i, res := range results {
		if res == nil {
			continue
		}
		conf := suggestions[i].Confidence
		if conf <= 0 {
			conf = defaultToolConfidence
		}
		outcomes = append(outcomes, ToolOutcome{Name: suggestions[i].Name, Confidence: conf, Result: res})
	}
	return outcomes
}

// execute runs one tool, turning a panic into an error
func (s *Service) execute(ctx context.Context, name, content string) (res *model.ToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("tool %s panicked: %v", name, r)
		}
	}()
	return s.tools.ExecuteVerificationTool(ctx, name, content)
}

// verifyCalculations reuses calculations embedded in primary results, else asks the evaluator
func (s *Service) verifyCalculations(ctx context.Context, content string, primary []ToolOutcome) []model.VerifiedCalculation {
	for _, o := range primary {
		if len(o.Result.VerifiedCalculations) > 0 {
			return o.Result.VerifiedCalculations
		}
	}
	return s.calculationsFromEvaluator(ctx, content)
}

// stamp writes verification provenance into the thought metadata
func (s *Service) stamp(t *model.Thought, source, sessionID string, tools int, stages []string, result model.VerificationResult) {
	t.SetMeta(model.MetaVerifiedAt, s.now().UTC().Format(time.RFC3339))
	t.SetMeta(model.MetaVerificationSource, source)
	t.SetMeta(model.MetaSessionID, sessionID)
	t.SetMeta(model.MetaToolsUsed, tools)
	t.SetMeta(model.MetaStages, append([]string(nil), stages...))
	t.SetMeta(model.MetaStatus, string(result.Status))
	t.SetMeta(model.MetaConfidence, result.Confidence)
}

func (s *Service) finish(span trace.Span, result model.VerificationResult) {
	telemetry.Verifications.WithLabelValues(string(result.Status)).Inc()
	span.SetAttributes(
		attribute.String("verify.status", string(result.Status)),
		attribute.Float64("verify.confidence", result.Confidence),
	)
	span.SetStatus(codes.Ok, "")
}

func sourcesOf(outcomes []ToolOutcome) []string {
	seen := make(map[string]bool)
	sources := []string{}
	for _, o := range outcomes {
		src := o.Result.Source
		if src == "" {
			src = o.Name
		}
		if !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	return sources
}

func describeCategories(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
