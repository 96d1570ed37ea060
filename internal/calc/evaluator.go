// Package calc detects arithmetic claims in text and checks them.
package calc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"

	"github.com/ppiankov/veritas/internal/classify"
	"github.com/ppiankov/veritas/internal/model"
)

// ErrNotNumeric is returned when an expression does not produce a finite number
var ErrNotNumeric = errors.New("expression did not evaluate to a finite number")

const (
	checkedConfidence = 0.95
	failedConfidence  = 0.1
	relTolerance      = 1e-9
	contextRadius     = 40
)

// Evaluator checks arithmetic equalities found in claim text
type Evaluator struct {
	logger *zap.Logger
}

// New creates an Evaluator
func New(logger *zap.Logger) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{logger: logger.Named("calc")}
}

// DetectAndEvaluate finds calculation-like substrings of text and checks
// each one. Chained equalities are checked pairwise. An expression that cannot
// be evaluated yields a failed low-confidence entry instead of an error; the
// returned error is only set when ctx ends.
func (e *Evaluator) DetectAndEvaluate(ctx context.Context, text string) ([]model.CalculationResult, error) {
	spans := classify.FindCalculations(text)
	if len(spans) == 0 {
		return []model.CalculationResult{}, nil
	}

	i, err := newInterpreter()
	if err != nil {
		return nil, err
	}

	results := make([]model.CalculationResult, 0, len(spans))
	for _, span := range spans {
		if span.FunctionNotation {
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		sides := classify.SplitChain(span.Text)
		for k := 0; k+1 < len(sides); k++ {
			results = append(results, e.check(ctx, i, span, text, sides[k], sides[k+1]))
		}
	}
	return results, nil
}

// Evaluate computes a single arithmetic expression
func (e *Evaluator) Evaluate(ctx context.Context, expression string) (float64, error) {
	i, err := newInterpreter()
	if err != nil {
		return 0, err
	}
	return evaluate(ctx, i, expression)
}

func (e *Evaluator) check(ctx context.Context, i *interp.Interpreter, span classify.Span, text, left, right string) model.CalculationResult {
	res := model.CalculationResult{
		Original:       span.Text,
		ExpressionText: left,
		Context:        surrounding(text, span.Start, span.End),
	}

	actual, err := evaluate(ctx, i, left)
	if err == nil {
		res.Result = actual
		res.ClaimedResult, err = evaluate(ctx, i, right)
	}
	if err != nil {
		e.logger.Debug("calculation could not be evaluated",
			zap.String("expression", span.Text), zap.Error(err))
		res.IsCorrect = false
		res.Confidence = failedConfidence
		res.Error = err.Error()
		return res
	}

	res.IsCorrect = approxEqual(res.Result, res.ClaimedResult)
	res.Confidence = checkedConfidence
	return res
}

// ConvertToVerificationResults turns raw evaluations into annotatable verifications.
// Failed evaluations keep an empty Verified text.
func (e *Evaluator) ConvertToVerificationResults(results []model.CalculationResult) []model.VerifiedCalculation {
	out := make([]model.VerifiedCalculation, 0, len(results))
	for _, r := range results {
		v := model.VerifiedCalculation{
			Original:   r.Original,
			IsCorrect:  r.IsCorrect,
			Confidence: r.Confidence,
		}
		if r.Error == "" {
			v.Verified = r.ExpressionText + " = " + FormatNumber(r.Result)
		}
		out = append(out, v)
	}
	return out
}

// FormatNumber prints a result without float noise: 0.1+0.2 prints as 0.3
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

func newInterpreter() (*interp.Interpreter, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("load stdlib symbols: %w", err)
	}
	if _, err := i.Eval(`import "math"`); err != nil {
		return nil, fmt.Errorf("import math: %w", err)
	}
	return i, nil
}

func evaluate(ctx context.Context, i *interp.Interpreter, expression string) (float64, error) {
	src, err := toGo(expression)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", expression, err)
	}

	v, err := i.EvalWithContext(ctx, src)
	if err != nil {
		return 0, fmt.Errorf("evaluate %q: %w", expression, err)
	}

	var f float64
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		f = v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(v.Int())
	default:
		return 0, fmt.Errorf("evaluate %q: %w", expression, ErrNotNumeric)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("evaluate %q: %w", expression, ErrNotNumeric)
	}
	return f, nil
}

func approxEqual(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= relTolerance*scale
}

func surrounding(text string, start, end int) string {
	from := start - contextRadius
	if from < 0 {
		from = 0
	}
	to := end + contextRadius
	if to > len(text) {
		to = len(text)
	}
	// keep byte offsets on rune boundaries
	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to++
	}
	return strings.TrimSpace(text[from:to])
}
