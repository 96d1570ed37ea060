package tools

import (
	"context"
	"fmt"

	"github.com/ppiankov/veritas/internal/calc"
	"github.com/ppiankov/veritas/internal/model"
)

// CalculatorName is the registry name of the arithmetic checker
const CalculatorName = "calculator"

// Calculator checks arithmetic equalities stated in a claim
type Calculator struct {
	eval *calc.Evaluator
}

// NewCalculator wraps eval; nil builds a default evaluator
func NewCalculator(eval *calc.Evaluator) *Calculator {
	if eval == nil {
		eval = calc.New(nil)
	}
	return &Calculator{eval: eval}
}

func (c *Calculator) Name() string { return CalculatorName }

func (c *Calculator) Describe() Capability {
	return Capability{
		Reason: "Claim states arithmetic that can be recomputed",
		Keywords: []string{
			`\d\s*\)?\s*(?:\*\*|[-+*/^×÷])\s*\(?\s*-?\d[^=]*=\s*-?\d`,
			`(?i)\b(sum|product|total|equals|squared|cubed)\b`,
		},
		Priority:   10,
		Confidence: 0.9,
	}
}

// Verify recomputes every calculation. All correct is valid, any wrong one
// with a known correction is invalid, anything else is inconclusive.
func (c *Calculator) Verify(ctx context.Context, content string) (*model.ToolResult, error) {
	results, err := c.eval.DetectAndEvaluate(ctx, content)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	verified := c.eval.ConvertToVerificationResults(results)
	correct, wrong, failed := 0, 0, 0
	for _, v := range verified {
		switch {
		case v.IsCorrect:
			correct++
		case v.Verified != "":
			wrong++
		default:
			failed++
		}
	}

	validity := model.ValidityUnknown
	switch {
	case wrong > 0:
		validity = model.ValidityInvalid
	case correct > 0 && failed == 0:
		validity = model.ValidityValid
	case correct > 0:
		validity = model.ValidityPartial
	}

	return &model.ToolResult{
		IsValid:              validity,
		Source:               CalculatorName,
		Details:              fmt.Sprintf("%d correct, %d incorrect, %d unevaluable calculation(s)", correct, wrong, failed),
		VerifiedCalculations: verified,
	}, nil
}
