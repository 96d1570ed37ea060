package llm

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/veritas/internal/model"
)

// NewJudge builds the judge named by cfg.Provider. An empty provider disables
// judging and returns nil. client may be nil.
func NewJudge(cfg model.LLMConfig, client *http.Client) (Judge, error) {
	c := &http.Client{}
	if client != nil {
		copied := *client
		c = &copied
	}
	if c.Timeout == 0 {
		c.Timeout = timeout(cfg)
	}

	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIJudge(cfg, c)
	case "anthropic", "claude":
		return NewAnthropicJudge(cfg, c)
	case "ollama":
		return NewOllamaJudge(cfg, c)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", cfg.Provider)
	}
}

func timeout(cfg model.LLMConfig) time.Duration {
	if cfg.Timeout > 0 {
		return time.Duration(cfg.Timeout) * time.Second
	}
	return 30 * time.Second
}
