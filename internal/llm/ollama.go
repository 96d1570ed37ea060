package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ppiankov/veritas/internal/model"
)

// OllamaJudge judges claims with a local Ollama server
type OllamaJudge struct {
	baseURL    string
	httpClient *http.Client
	cfg        model.LLMConfig
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	System  string        `json:"system,omitempty"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type ollamaError struct {
	Error string `json:"error"`
}

// NewOllamaJudge creates a judge; the model must be named explicitly
func NewOllamaJudge(cfg model.LLMConfig, httpClient *http.Client) (*OllamaJudge, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama model must be specified (e.g., llama3.1:8b, mistral)")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout(cfg)}
	}
	return &OllamaJudge{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		cfg:        cfg,
	}, nil
}

func (j *OllamaJudge) Name() string {
	return "ollama"
}

func (j *OllamaJudge) Judge(ctx context.Context, claim string) (*Verdict, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:   j.cfg.Model,
		Prompt:  BuildPrompt(claim),
		System:  systemPrompt,
		Stream:  false,
		Format:  "json",
		Options: ollamaOptions{Temperature: 0, NumPredict: maxTokens(j.cfg)},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama API error: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr ollamaError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var out ollamaResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	verdict, err := ParseVerdict(out.Response)
	if err != nil {
		return nil, err
	}
	verdict.Model = out.Model
	return verdict, nil
}
