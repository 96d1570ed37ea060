package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/veritas/internal/model"
)

// OpenAIJudge judges claims with an OpenAI-compatible chat completions API
type OpenAIJudge struct {
	client *openai.Client
	cfg    model.LLMConfig
}

// NewOpenAIJudge creates a judge. cfg.BaseURL points it at a compatible server.
func NewOpenAIJudge(cfg model.LLMConfig, httpClient *http.Client) (*OpenAIJudge, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}

	return &OpenAIJudge{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}, nil
}

func (j *OpenAIJudge) Name() string {
	return "openai"
}

// Judge asks the model for a JSON verdict about claim
func (j *OpenAIJudge) Judge(ctx context.Context, claim string) (*Verdict, error) {
	modelName := j.cfg.Model
	if modelName == "" {
		modelName = openai.GPT4oMini
	}

	resp, err := j.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(claim)},
		},
		MaxTokens:      maxTokens(j.cfg),
		Temperature:    0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	verdict, err := ParseVerdict(strings.TrimSpace(resp.Choices[0].Message.Content))
	if err != nil {
		return nil, err
	}
	verdict.Model = resp.Model
	return verdict, nil
}
