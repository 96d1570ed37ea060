// Package verify orchestrates claim verification: cached lookups, a light
// calculation pass and the multi-stage deep verification pipeline.
package verify

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ppiankov/veritas/internal/classify"
	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/telemetry"
)

// ErrMemoryNotConfigured is returned when a Service has no verification memory
var ErrMemoryNotConfigured = errors.New("verification memory not configured")

// ToolIntegrator suggests and runs verification tools.
// A nil result or an error means "no usable result".
type ToolIntegrator interface {
	SuggestVerificationTools(ctx context.Context, content string) ([]model.ToolSuggestion, error)
	ExecuteVerificationTool(ctx context.Context, name, content string) (*model.ToolResult, error)
}

// MetricsCalculator sizes the verification effort for a claim
type MetricsCalculator interface {
	DetermineVerificationRequirements(content string) model.VerificationRequirements
}

// CalculationEvaluator checks arithmetic in claim text
type CalculationEvaluator interface {
	DetectAndEvaluate(ctx context.Context, text string) ([]model.CalculationResult, error)
	ConvertToVerificationResults(results []model.CalculationResult) []model.VerifiedCalculation
}

// Memory stores and recalls verification outcomes per session
type Memory interface {
	AddVerification(text string, status model.Status, confidence float64, sources []string, sessionID string, ttl time.Duration) (string, error)
	FindVerification(text, sessionID string, threshold float64) *model.Match
}

// Service verifies claims
type Service struct {
	memory     Memory
	tools      ToolIntegrator
	metrics    MetricsCalculator
	calc       CalculationEvaluator
	assessor   Assessor
	classifier *classify.Classifier
	cfg        model.VerificationConfig
	ttl        time.Duration
	logger     *zap.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithTools sets the tool integrator
func WithTools(tools ToolIntegrator) Option {
	return func(s *Service) { s.tools = tools }
}

// WithMetrics sets the metrics calculator
func WithMetrics(metrics MetricsCalculator) Option {
	return func(s *Service) { s.metrics = metrics }
}

// WithEvaluator sets the calculation evaluator
func WithEvaluator(calc CalculationEvaluator) Option {
	return func(s *Service) { s.calc = calc }
}

// WithClassifier replaces the default claim classifier
func WithClassifier(c *classify.Classifier) Option {
	return func(s *Service) {
		if c != nil {
			s.classifier = c
		}
	}
}

// WithConfig sets the pipeline thresholds
func WithConfig(cfg model.VerificationConfig) Option {
	return func(s *Service) { s.cfg = cfg }
}

// WithTTL sets how long written-back verifications live; zero uses the memory default
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for metadata stamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service backed by memory. Tools, metrics and evaluator are optional.
func New(memory Memory, opts ...Option) (*Service, error) {
	if isNil(memory) {
		return nil, ErrMemoryNotConfigured
	}

	s := &Service{
		memory:     memory,
		classifier: classify.Default(),
		cfg:        model.DefaultConfig().Verification,
		logger:     zap.NewNop(),
		tracer:     otel.Tracer(telemetry.TracerName),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = s.logger.Named("verify")
	if s.cfg.ConfidenceCap <= 0 {
		s.cfg.ConfidenceCap = model.DefaultConfig().Verification.ConfidenceCap
	}
	return s, nil
}

func (s *Service) ready() error {
	if s == nil || isNil(s.memory) {
		return ErrMemoryNotConfigured
	}
	return nil
}

// isNil also catches an interface holding a nil pointer, e.g. (*memory.Store)(nil)
func isNil(memory Memory) bool {
	if memory == nil {
		return true
	}
	v := reflect.ValueOf(memory)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// CheckPreviousVerification looks up an earlier verification of an equivalent
// claim in the session. A hit reports min(stored confidence, match similarity).
// On a miss found is false and the result is a default unverified one.
func (s *Service) CheckPreviousVerification(content, sessionID string) (result model.VerificationResult, found bool, err error) {
	if err := s.ready(); err != nil {
		return model.VerificationResult{}, false, err
	}

	match := s.memory.FindVerification(content, sessionID, s.cfg.MatchThreshold)
	if match == nil {
		telemetry.CacheLookups.WithLabelValues(telemetry.LookupMiss).Inc()
		return model.VerificationResult{
			Status:            model.StatusUnverified,
			Confidence:        0,
			Sources:           []string{},
			VerificationSteps: []string{"No previous verification found"},
			Notes:             "No previous verification found for this claim",
		}, false, nil
	}

	telemetry.CacheLookups.WithLabelValues(telemetry.LookupHit).Inc()

	confidence := match.Confidence
	if match.Similarity < confidence {
		confidence = match.Similarity
	}

	s.logger.Debug("previous verification found",
		zap.String("id", match.ID),
		zap.String("session", sessionID),
		zap.Float64("similarity", match.Similarity))

	return model.VerificationResult{
		Status:     match.Status,
		Confidence: confidence,
		Sources:    match.Sources,
		VerificationSteps: []string{
			fmt.Sprintf("Found previous verification with similarity %.2f", match.Similarity),
		},
		Notes: fmt.Sprintf("Previously verified as %s: %q (verified %s)",
			match.Status, match.Text, match.Timestamp.Format(time.RFC3339)),
	}, true, nil
}
