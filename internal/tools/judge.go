package tools

import (
	"context"
	"fmt"

	"github.com/ppiankov/veritas/internal/llm"
	"github.com/ppiankov/veritas/internal/model"
)

// JudgeName is the registry name of the language model judge
const JudgeName = "llm-judge"

// Judge asks a language model for a verdict. It applies to every claim
// but ranks last.
type Judge struct {
	judge llm.Judge
}

func NewJudge(judge llm.Judge) *Judge {
	return &Judge{judge: judge}
}

func (j *Judge) Name() string { return JudgeName }

func (j *Judge) Describe() Capability {
	return Capability{
		Reason:     "General knowledge check by a language model",
		Priority:   1,
		Confidence: 0.6,
		Always:     true,
	}
}

func (j *Judge) Verify(ctx context.Context, content string) (*model.ToolResult, error) {
	if j.judge == nil {
		return nil, fmt.Errorf("no language model configured")
	}

	v, err := j.judge.Judge(ctx, content)
	if err != nil {
		return nil, err
	}

	source := j.judge.Name()
	if v.Model != "" {
		source += ":" + v.Model
	}
	return &model.ToolResult{
		IsValid: v.Validity(),
		Source:  source,
		Details: v.Explanation,
	}, nil
}
