package cli

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ppiankov/veritas/internal/cache"
	"github.com/ppiankov/veritas/internal/calc"
	"github.com/ppiankov/veritas/internal/classify"
	"github.com/ppiankov/veritas/internal/llm"
	"github.com/ppiankov/veritas/internal/memory"
	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/score"
	"github.com/ppiankov/veritas/internal/similarity"
	"github.com/ppiankov/veritas/internal/source"
	"github.com/ppiankov/veritas/internal/tools"
	"github.com/ppiankov/veritas/internal/verify"
	"github.com/ppiankov/veritas/internal/worker"
)

// app holds the wired verification stack for one CLI run
type app struct {
	cfg      *model.Config
	store    *memory.Store
	registry *tools.Registry
	service  *verify.Service
	cancel   context.CancelFunc
}

// newApp wires memory, tools and the verification service from cfg.
// Close must be called to stop the memory sweeps.
func newApp(cfg *model.Config, logger *zap.Logger) (*app, error) {
	engine := similarity.New(
		similarity.WithTokenCacheTTL(cfg.Similarity.TokenCacheTTL),
		similarity.WithLogger(logger.Named("similarity")),
	)
	store := memory.New(cfg.Memory,
		memory.WithSimilarity(engine),
		memory.WithLogger(logger.Named("memory")),
	)

	classifier := classify.Default()
	evaluator := calc.New(logger)
	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	registry, err := newRegistry(cfg, logger, evaluator, engine, limiter)
	if err != nil {
		return nil, err
	}

	scorer := score.NewScorer(classifier)
	service, err := verify.New(store,
		verify.WithTools(registry),
		verify.WithMetrics(scorer),
		verify.WithEvaluator(evaluator),
		verify.WithAssessor(scorer),
		verify.WithClassifier(classifier),
		verify.WithConfig(cfg.Verification),
		verify.WithTTL(cfg.Memory.DefaultTTL),
		verify.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("create verification service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	store.Start(ctx)

	return &app{cfg: cfg, store: store, registry: registry, service: service, cancel: cancel}, nil
}

// newRegistry registers the tools enabled in cfg
func newRegistry(cfg *model.Config, logger *zap.Logger, evaluator *calc.Evaluator, tokenizer tools.Tokenizer, limiter *worker.Limiter) (*tools.Registry, error) {
	registry := tools.NewRegistry(tools.WithLimiter(limiter), tools.WithLogger(logger))

	if cfg.Tools.Calculator {
		if err := registry.Register(tools.NewCalculator(evaluator)); err != nil {
			return nil, err
		}
	}

	if cfg.Tools.Reference {
		ref, err := newReferenceTool(cfg, logger, tokenizer, limiter)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(ref); err != nil {
			return nil, err
		}
	}

	if cfg.Tools.LLMJudge {
		judge, err := llm.NewJudge(cfg.LLM, &http.Client{})
		if err != nil {
			return nil, fmt.Errorf("create LLM judge: %w", err)
		}
		if judge == nil {
			logger.Warn("llm judge enabled without a provider; skipping")
		} else if err := registry.Register(tools.NewJudge(judge)); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func newReferenceTool(cfg *model.Config, logger *zap.Logger, tokenizer tools.Tokenizer, limiter *worker.Limiter) (*tools.Reference, error) {
	authority, err := source.NewAuthorityClassifier(&cfg.Authority)
	if err != nil {
		return nil, err
	}

	h := cfg.HTTP
	rc := tools.ReferenceConfig{
		Fetcher:   source.NewFetcher(h.Timeout, h.UserAgent, h.MaxBodyBytes, h.InsecureTLS, h.HTTPProxy, h.HTTPSProxy, h.NoProxy),
		Authority: authority,
		Limiter:   limiter,
		Tokenizer: tokenizer,
		MaxRefs:   cfg.Tools.MaxReferences,
		Logger:    logger,
	}
	if h.RespectRobots {
		rc.Robots = source.NewRobotsChecker(h.UserAgent, h.Timeout, cfg.Cache.MemoryTTL)
	}
	if cfg.Cache.Enabled {
		rc.Pages = cache.NewPages(cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL), 0)
	}
	return tools.NewReference(rc)
}

// Close stops background sweeps
func (a *app) Close() {
	a.cancel()
	a.store.Stop()
}
