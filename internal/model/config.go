package model

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the complete veritas configuration
type Config struct {
	Memory       MemoryConfig       `yaml:"memory" mapstructure:"memory"`
	Similarity   SimilarityConfig   `yaml:"similarity" mapstructure:"similarity"`
	Verification VerificationConfig `yaml:"verification" mapstructure:"verification"`
	Tools        ToolsConfig        `yaml:"tools" mapstructure:"tools"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Authority    AuthorityConfig    `yaml:"authority" mapstructure:"authority"`
	RateLimiting RateLimitConfig    `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
}

// MemoryConfig controls the verification memory store
type MemoryConfig struct {
	// CacheExpiration drives both sweeps: expiry every CacheExpiration/2,
	// compare-cache reset every CacheExpiration
	CacheExpiration time.Duration `yaml:"cache_expiration" mapstructure:"cache_expiration" validate:"gt=0"`
	// DefaultTTL applies when a caller stores a verification without a TTL
	DefaultTTL time.Duration `yaml:"default_ttl" mapstructure:"default_ttl" validate:"gt=0"`
	// MediumSimilarity is the duplicate threshold used by AddVerification
	MediumSimilarity float64 `yaml:"medium_similarity" mapstructure:"medium_similarity" validate:"gte=0,lte=1"`
	// TextMatchFactor reduces the threshold for the token-overlap fallback search
	TextMatchFactor float64 `yaml:"text_match_factor" mapstructure:"text_match_factor" validate:"gt=0,lte=1"`
}

// SimilarityConfig controls the TF-IDF similarity engine
type SimilarityConfig struct {
	HighThreshold   float64       `yaml:"high_threshold" mapstructure:"high_threshold" validate:"gte=0,lte=1"`
	MediumThreshold float64       `yaml:"medium_threshold" mapstructure:"medium_threshold" validate:"gte=0,lte=1"`
	LowThreshold    float64       `yaml:"low_threshold" mapstructure:"low_threshold" validate:"gte=0,lte=1"`
	TokenCacheTTL   time.Duration `yaml:"token_cache_ttl" mapstructure:"token_cache_ttl" validate:"gt=0"`
}

// VerificationConfig holds the thresholds of the verification pipeline
type VerificationConfig struct {
	MatchThreshold        float64 `yaml:"match_threshold" mapstructure:"match_threshold" validate:"gte=0,lte=1"`
	ReuseConfidence       float64 `yaml:"reuse_confidence" mapstructure:"reuse_confidence" validate:"gte=0,lte=1"`
	RequiredThreshold     float64 `yaml:"required_threshold" mapstructure:"required_threshold" validate:"gte=0,lte=1"`
	VerifiedFloor         float64 `yaml:"verified_floor" mapstructure:"verified_floor" validate:"gte=0,lte=1"`
	PartialFloor          float64 `yaml:"partial_floor" mapstructure:"partial_floor" validate:"gte=0,lte=1"`
	ConfidenceCap         float64 `yaml:"confidence_cap" mapstructure:"confidence_cap" validate:"gt=0,lte=1"`
	CorroborationBonus    float64 `yaml:"corroboration_bonus" mapstructure:"corroboration_bonus" validate:"gte=0,lte=1"`
	PromoteWithMarkers    float64 `yaml:"promote_with_markers" mapstructure:"promote_with_markers" validate:"gte=0,lte=1"`
	PromoteIntrinsicAlone float64 `yaml:"promote_intrinsic_alone" mapstructure:"promote_intrinsic_alone" validate:"gte=0,lte=1"`
}

// ToolsConfig selects the built-in verification tools
type ToolsConfig struct {
	Calculator    bool `yaml:"calculator" mapstructure:"calculator"`
	Reference     bool `yaml:"reference" mapstructure:"reference"`
	LLMJudge      bool `yaml:"llm_judge" mapstructure:"llm_judge"`
	MaxReferences int  `yaml:"max_references" mapstructure:"max_references" validate:"gte=0"`
}

// HTTPConfig controls reference fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"gt=0"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls the fetched-page cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl" validate:"gt=0"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl" validate:"gt=0"`
}

// LLMConfig configures the optional llm-judge tool
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
}

// RateLimitConfig throttles tool executions and reference fetches
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size" validate:"gt=0"`
}

// ConcurrencyConfig controls batch verification
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gt=0"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Memory: MemoryConfig{
			CacheExpiration:  10 * time.Minute,
			DefaultTTL:       time.Hour,
			MediumSimilarity: 0.7,
			TextMatchFactor:  0.8,
		},
		Similarity: SimilarityConfig{
			HighThreshold:   0.85,
			MediumThreshold: 0.7,
			LowThreshold:    0.5,
			TokenCacheTTL:   5 * time.Minute,
		},
		Verification: VerificationConfig{
			MatchThreshold:        0.7,
			ReuseConfidence:       0.7,
			RequiredThreshold:     0.3,
			VerifiedFloor:         0.6,
			PartialFloor:          0.4,
			ConfidenceCap:         0.95,
			CorroborationBonus:    0.05,
			PromoteWithMarkers:    0.8,
			PromoteIntrinsicAlone: 0.95,
		},
		Tools: ToolsConfig{
			Calculator:    true,
			Reference:     true,
			LLMJudge:      false,
			MaxReferences: 3,
		},
		HTTP: HTTPConfig{
			Timeout:       15 * time.Second,
			UserAgent:     "Veritas/0.1 (+https://github.com/ppiankov/veritas)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".veritas-cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxTokens: 400,
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"doi.org", "arxiv.org", "pubmed.ncbi.nlm.nih.gov", "legislation.gov.uk",
				"eur-lex.europa.eu", "who.int", "un.org", "census.gov",
			},
			SecondaryDomains: []string{
				"wikipedia.org", "britannica.com", "reuters.com", "apnews.com", "bbc.co.uk", "nature.com",
			},
			PathPatterns: []PathPattern{
				{Pattern: `(?i)/(statute|legislation|act)s?/`, Tier: "primary"},
				{Pattern: `(?i)/(blog|forum|comments)/`, Tier: "tertiary"},
			},
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
	}
}

var configValidator = validator.New()

// Validate checks ranges and required fields of the configuration
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Similarity.LowThreshold > c.Similarity.MediumThreshold || c.Similarity.MediumThreshold > c.Similarity.HighThreshold {
		return fmt.Errorf("invalid config: similarity thresholds must satisfy low <= medium <= high")
	}
	return nil
}
