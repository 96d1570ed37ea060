package tools

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/telemetry"
	"github.com/ppiankov/veritas/internal/worker"
)

const defaultToolConfidence = 0.5

type entry struct {
	tool     Tool
	cap      Capability
	keywords []*regexp.Regexp
}

// Registry holds the available verification tools
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]*entry
	limiter *worker.Limiter
	logger  *zap.Logger
	tracer  trace.Tracer
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithLimiter throttles executions per tool name
func WithLimiter(l *worker.Limiter) RegistryOption {
	return func(r *Registry) { r.limiter = l }
}

// WithLogger sets the registry logger
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		tools:  make(map[string]*entry),
		logger: zap.NewNop(),
		tracer: otel.Tracer(telemetry.TracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("tools")
	return r
}

// Register adds a tool. Names must be unique and keywords must compile.
func (r *Registry) Register(t Tool) error {
	capability := t.Describe()
	e := &entry{tool: t, cap: capability}
	for _, kw := range capability.Keywords {
		re, err := regexp.Compile(kw)
		if err != nil {
			return fmt.Errorf("compile keyword %q for %s: %w", kw, t.Name(), err)
		}
		e.keywords = append(e.keywords, re)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool %s already registered", t.Name())
	}
	r.tools[t.Name()] = e
	return nil
}

// Names returns the registered tool names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SuggestVerificationTools ranks the tools applicable to content by keyword
// hits, then priority, then name
func (r *Registry) SuggestVerificationTools(ctx context.Context, content string) ([]model.ToolSuggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	type ranked struct {
		suggestion model.ToolSuggestion
		hits       int
	}
	var candidates []ranked
	for name, e := range r.tools {
		hits := 0
		for _, re := range e.keywords {
			hits += len(re.FindAllStringIndex(content, -1))
		}
		if hits == 0 && !e.cap.Always {
			continue
		}

		conf := e.cap.Confidence
		if conf <= 0 {
			conf = defaultToolConfidence
		}
		candidates = append(candidates, ranked{
			suggestion: model.ToolSuggestion{
				Name:       name,
				Confidence: conf,
				Reason:     e.cap.Reason,
				Priority:   e.cap.Priority,
			},
			hits: hits,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.hits != b.hits {
			return a.hits > b.hits
		}
		if a.suggestion.Priority != b.suggestion.Priority {
			return a.suggestion.Priority > b.suggestion.Priority
		}
		return a.suggestion.Name < b.suggestion.Name
	})

	out := make([]model.ToolSuggestion, len(candidates))
	for i, c := range candidates {
		out[i] = c.suggestion
	}
	return out, nil
}

// ExecuteVerificationTool runs the named tool against content
func (r *Registry) ExecuteVerificationTool(ctx context.Context, name, content string) (*model.ToolResult, error) {
	r.mu.RLock()
	e, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	ctx, span := r.tracer.Start(ctx, "tools.Execute", trace.WithAttributes(attribute.String("tool.name", name)))
	defer span.End()

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx, "tool:"+name); err != nil {
			return nil, r.fail(span, name, fmt.Errorf("wait for %s: %w", name, err))
		}
	}

	result, err := e.tool.Verify(ctx, content)
	if err != nil {
		return nil, r.fail(span, name, fmt.Errorf("run %s: %w", name, err))
	}

	if !result.Usable() {
		telemetry.ToolCalls.WithLabelValues(name, telemetry.ToolNoResult).Inc()
		span.SetStatus(codes.Ok, "no result")
		r.logger.Debug("tool returned no result", zap.String("tool", name))
		return result, nil
	}

	telemetry.ToolCalls.WithLabelValues(name, telemetry.ToolOK).Inc()
	span.SetAttributes(attribute.String("tool.validity", result.IsValid.String()))
	span.SetStatus(codes.Ok, "")
	r.logger.Debug("tool finished",
		zap.String("tool", name),
		zap.Stringer("validity", result.IsValid),
		zap.String("source", result.Source))
	return result, nil
}

func (r *Registry) fail(span trace.Span, name string, err error) error {
	telemetry.ToolCalls.WithLabelValues(name, telemetry.ToolError).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
