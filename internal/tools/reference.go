package tools

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/veritas/internal/cache"
	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/source"
	"github.com/ppiankov/veritas/internal/worker"
)

// ReferenceName is the registry name of the cited-source checker
const ReferenceName = "reference-check"

const (
	supportedScore = 0.55
	partialScore   = 0.3
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"'\])]+`)

// PageFetcher retrieves a reference page
type PageFetcher interface {
	FetchWithRetry(ctx context.Context, rawURL string) (*model.SourcePage, error)
}

// RobotsPolicy decides whether a page may be fetched
type RobotsPolicy interface {
	CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error)
}

// Tokenizer reduces text to comparable terms
type Tokenizer interface {
	Tokenize(text string) []string
}

// Reference fetches the URLs a claim cites and checks whether the pages
// mention the claim's terms. Authority of the source scales the score.
type Reference struct {
	fetcher   PageFetcher
	robots    RobotsPolicy
	pages     *cache.Pages
	authority *source.AuthorityClassifier
	limiter   *worker.Limiter
	tokenizer Tokenizer
	maxRefs   int
	logger    *zap.Logger
}

// ReferenceConfig wires the collaborators of a Reference tool.
// Robots, Pages and Limiter are optional.
type ReferenceConfig struct {
	Fetcher   PageFetcher
	Robots    RobotsPolicy
	Pages     *cache.Pages
	Authority *source.AuthorityClassifier
	Limiter   *worker.Limiter
	Tokenizer Tokenizer
	MaxRefs   int
	Logger    *zap.Logger
}

func NewReference(cfg ReferenceConfig) (*Reference, error) {
	if cfg.Fetcher == nil {
		return nil, fmt.Errorf("reference check requires a fetcher")
	}
	if cfg.Tokenizer == nil {
		return nil, fmt.Errorf("reference check requires a tokenizer")
	}
	if cfg.Authority == nil {
		a, err := source.NewAuthorityClassifier(nil)
		if err != nil {
			return nil, err
		}
		cfg.Authority = a
	}
	if cfg.MaxRefs <= 0 {
		cfg.MaxRefs = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Reference{
		fetcher:   cfg.Fetcher,
		robots:    cfg.Robots,
		pages:     cfg.Pages,
		authority: cfg.Authority,
		limiter:   cfg.Limiter,
		tokenizer: cfg.Tokenizer,
		maxRefs:   cfg.MaxRefs,
		logger:    cfg.Logger.Named("reference"),
	}, nil
}

func (r *Reference) Name() string { return ReferenceName }

func (r *Reference) Describe() Capability {
	return Capability{
		Reason:     "Claim cites a source that can be fetched and read",
		Keywords:   []string{urlPattern.String()},
		Priority:   8,
		Confidence: 0.8,
	}
}

type pageSupport struct {
	url   string
	tier  model.AuthorityTier
	score float64
	quote string
}

// Verify checks up to maxRefs cited URLs and reports the best supported one
func (r *Reference) Verify(ctx context.Context, content string) (*model.ToolResult, error) {
	urls := ExtractURLs(content)
	if len(urls) == 0 {
		return nil, nil
	}
	if len(urls) > r.maxRefs {
		urls = urls[:r.maxRefs]
	}

	terms := r.claimTerms(content)
	if len(terms) == 0 {
		return nil, nil
	}

	var best *pageSupport
	var errs []error
	for _, u := range urls {
		page, err := r.page(ctx, u)
		if err != nil {
			r.logger.Debug("reference unavailable", zap.String("url", u), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		support := r.support(terms, page)
		if best == nil || support.score > best.score {
			best = support
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no cited source could be read: %w", errors.Join(errs...))
	}

	result := &model.ToolResult{
		Source:  best.url,
		Details: fmt.Sprintf("%s source, %.0f%% support", best.tier, best.score*100),
	}
	switch {
	case best.score >= supportedScore:
		result.IsValid = model.ValidityValid
	case best.score >= partialScore:
		result.IsValid = model.ValidityPartial
	default:
		result.IsValid = model.ValidityAbsent
	}
	if best.quote != "" {
		result.Details += ": " + best.quote
	}
	return result, nil
}

// page returns the cached page or fetches it, honoring robots.txt and rate limits
func (r *Reference) page(ctx context.Context, rawURL string) (*model.SourcePage, error) {
	if page, ok := r.pages.Get(rawURL); ok {
		return page, nil
	}

	var delay time.Duration
	if r.robots != nil {
		allowed, crawlDelay, err := r.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("check robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("disallowed by robots.txt: %s", rawURL)
		}
		delay = crawlDelay
	}
	if r.limiter != nil {
		if err := r.limiter.WaitWithDelay(ctx, "host:"+hostOf(rawURL), delay); err != nil {
			return nil, err
		}
	}

	page, err := r.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	page.Authority = r.authority.Classify(page.FinalURL)
	if err := r.pages.Put(rawURL, page); err != nil {
		r.logger.Warn("failed to cache page", zap.String("url", rawURL), zap.Error(err))
	}
	return page, nil
}

// support scores a page by the share of claim terms it contains, weighted by authority
func (r *Reference) support(terms map[string]struct{}, page *model.SourcePage) *pageSupport {
	pageTerms := make(map[string]struct{})
	for _, t := range r.tokenizer.Tokenize(page.Text) {
		pageTerms[t] = struct{}{}
	}

	found := 0
	for t := range terms {
		if _, ok := pageTerms[t]; ok {
			found++
		}
	}
	coverage := float64(found) / float64(len(terms))

	tier := page.Authority
	if tier == model.TierUnknown {
		tier = r.authority.Classify(page.FinalURL)
	}

	return &pageSupport{
		url:   page.URL,
		tier:  tier,
		score: coverage * tier.Weight(),
		quote: r.bestSentence(terms, page.Text),
	}
}

// bestSentence picks the page sentence sharing the most terms with the claim
func (r *Reference) bestSentence(terms map[string]struct{}, text string) string {
	best, bestHits := "", 0
	for _, s := range source.Sentences(text) {
		hits := 0
		for _, t := range r.tokenizer.Tokenize(s) {
			if _, ok := terms[t]; ok {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = s, hits
		}
	}
	return best
}

func (r *Reference) claimTerms(content string) map[string]struct{} {
	stripped := urlPattern.ReplaceAllString(content, " ")
	terms := make(map[string]struct{})
	for _, t := range r.tokenizer.Tokenize(stripped) {
		terms[t] = struct{}{}
	}
	return terms
}

// ExtractURLs returns the distinct http(s) URLs in text, trailing punctuation trimmed
func ExtractURLs(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, u := range urlPattern.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;:!?")
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

func hostOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return u.Host
	}
	return rawURL
}
