package verify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/ppiankov/veritas/internal/calc"
	"github.com/ppiankov/veritas/internal/memory"
	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/similarity"
)

type fakeTools struct {
	suggestions []model.ToolSuggestion
	results     map[string]*model.ToolResult
	errs        map[string]error
	panics      map[string]bool

	mu    sync.Mutex
	calls []string
}

func (f *fakeTools) SuggestVerificationTools(ctx context.Context, content string) ([]model.ToolSuggestion, error) {
	return f.suggestions, nil
}

func (f *fakeTools) ExecuteVerificationTool(ctx context.Context, name, content string) (*model.ToolResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()

	if f.panics[name] {
		panic("tool exploded")
	}
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return f.results[name], nil
}

func (f *fakeTools) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeMetrics struct {
	req model.VerificationRequirements
}

func (f fakeMetrics) DetermineVerificationRequirements(string) model.VerificationRequirements {
	return f.req
}

type fakeMemory struct {
	match *model.Match
}

func (f *fakeMemory) AddVerification(string, model.Status, float64, []string, string, time.Duration) (string, error) {
	return "id", nil
}

func (f *fakeMemory) FindVerification(string, string, float64) *model.Match {
	return f.match
}

func suggestions(names ...string) []model.ToolSuggestion {
	var out []model.ToolSuggestion
	for _, n := range names {
		out = append(out, model.ToolSuggestion{Name: n, Confidence: 0.8, Reason: "test"})
	}
	return out
}

func newStore() *memory.Store {
	return memory.New(model.DefaultConfig().Memory, memory.WithSimilarity(similarity.New()))
}

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newService(t *testing.T, store Memory, tools ToolIntegrator, recommended int) *Service {
	t.Helper()
	svc, err := New(store,
		WithTools(tools),
		WithMetrics(fakeMetrics{req: model.VerificationRequirements{
			RequiresMultipleVerifications: recommended > 1,
			RecommendedVerificationsCount: recommended,
		}}),
		WithEvaluator(calc.New(nil)),
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return fixedNow }),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return svc
}

func TestNew_RequiresMemory(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrMemoryNotConfigured) {
		t.Errorf("expected ErrMemoryNotConfigured, got %v", err)
	}

	var store *memory.Store
	if _, err := New(store); !errors.Is(err, ErrMemoryNotConfigured) {
		t.Errorf("expected ErrMemoryNotConfigured for nil *memory.Store, got %v", err)
	}
	if _, err := (&Service{memory: store}).PerformPreliminaryVerification(context.Background(), "1 + 1 = 2", false); !errors.Is(err, ErrMemoryNotConfigured) {
		t.Errorf("expected ErrMemoryNotConfigured for service holding nil store, got %v", err)
	}

	var zero Service
	if _, err := zero.DeepVerify(context.Background(), DeepVerifyRequest{Thought: &model.Thought{Content: "x"}}); !errors.Is(err, ErrMemoryNotConfigured) {
		t.Errorf("expected ErrMemoryNotConfigured from zero service, got %v", err)
	}
	if _, _, err := zero.CheckPreviousVerification("x", "s1"); !errors.Is(err, ErrMemoryNotConfigured) {
		t.Errorf("expected ErrMemoryNotConfigured, got %v", err)
	}

	var nilSvc *Service
	if _, err := nilSvc.PerformPreliminaryVerification(context.Background(), "1 + 1 = 2", false); !errors.Is(err, ErrMemoryNotConfigured) {
		t.Errorf("expected ErrMemoryNotConfigured from nil service, got %v", err)
	}
}

func TestDeepVerify_NilThought(t *testing.T) {
	svc := newService(t, newStore(), nil, 1)
	if _, err := svc.DeepVerify(context.Background(), DeepVerifyRequest{}); err == nil {
		t.Error("expected error for nil thought")
	}
}

func TestDeepVerify_AllToolsFail(t *testing.T) {
	store := newStore()
	tools := &fakeTools{
		suggestions: suggestions("broken", "silent", "panicky"),
		errs:        map[string]error{"broken": errors.New("connection refused")},
		results:     map[string]*model.ToolResult{"silent": nil},
		panics:      map[string]bool{"panicky": true},
	}
	svc := newService(t, store, tools, 3)

	thought := &model.Thought{Content: "The Great Wall of China is visible from space"}
	result, err := svc.DeepVerify(context.Background(), DeepVerifyRequest{Thought: thought, SessionID: "s1"})
	if err != nil {
		t.Fatalf("DeepVerify failed: %v", err)
	}

	if result.Status != model.StatusUnverified {
		t.Errorf("expected unverified, got %s", result.Status)
	}
	if result.Confidence > model.DefaultConfig().Verification.RequiredThreshold {
		t.Errorf("expected confidence at or below required threshold, got %f", result.Confidence)
	}
	if tools.callCount() != 3 {
		t.Errorf("expected all 3 tools to be tried, got %d", tools.callCount())
	}

	// unverified outcomes are remembered too
	if m := store.FindVerification(thought.Content, "s1", 0.9); m == nil || m.Status != model.StatusUnverified {
		t.Errorf("expected unverified entry in memory, got %+v", m)
	}
}

func TestDeepVerify_Contradictory(t *testing.T) {
	tools := &fakeTools{
		suggestions: suggestions("encyclopedia", "almanac"),
		results: map[string]*model.ToolResult{
			"encyclopedia": {IsValid: model.ValidityValid, Source: "encyclopedia"},
			"almanac":      {IsValid: model.ValidityInvalid, Source: "almanac"},
		},
	}
	svc := newService(t, newStore(), tools, 2)

	result, err := svc.DeepVerify(context.Background(), DeepVerifyRequest{
		Thought:   &model.Thought{Content: "Sydney is the capital of Australia"},
		SessionID: "s1",
	})
	if err != nil {
		t.Fatalf("DeepVerify failed: %v", err)
	}

	if result.Status != model.StatusContradictory {
		t.Errorf("expected contradictory, got %s", result.Status)
	}
	if result.Confidence != 0.4 {
		t.Errorf("expected confidence 0.4, got %f", result.Confidence)
	}
	if len(result.Contradictions) == 0 {
		t.Fatal("expected contradictions")
	}
	if !strings.Contains(result.Contradictions[0], "encyclopedia") || !strings.Contains(result.Contradictions[0], "almanac") {
		t.Errorf("expected contradiction to name both tools, got %q", result.Contradictions[0])
	}
}

func TestDeepVerify_VerifiedWithCorroboration(t *testing.T) {
	tools := &fakeTools{
		suggestions: []model.ToolSuggestion{
			{Name: "a", Confidence: 0.7},
			{Name: "b", Confidence: 0.8},
		},
		results: map[string]*model.ToolResult{
			"a": {IsValid: model.ValidityValid, Source: "https://a.example"},
			"b": {IsValid: model.ValidityValid},
		},
	}
	svc := newService(t, newStore(), tools, 2)

	result, err := svc.DeepVerify(context.Background(), DeepVerifyRequest{
		Thought:   &model.Thought{Content: "Water boils at 100 degrees Celsius at sea level"},
		SessionID: "s1",
	})
	if err != nil {
		t.Fatalf("DeepVerify failed: %v", err)
	}

	if result.Status != model.StatusVerified {
		t.Errorf("expected verified, got %s", result.Status)
	}
	if diff := cmp.Diff(0.8, result.Confidence, cmpApprox); diff != "" {
		t.Errorf("confidence mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"https://a.example", "b"}, result.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

var cmpApprox = cmp.Comparer(func(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
})

func TestDeepVerify_ConfidenceFloors(t *testing.T) {
	tests := []struct {
		name     string
		validity model.Validity
		status   model.Status
		floor    float64
	}{
		{"verified", model.ValidityValid, model.StatusVerified, 0.6},
		{"partial", model.ValidityPartial, model.StatusPartiallyVerified, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools := &fakeTools{
				suggestions: []model.ToolSuggestion{{Name: "weak", Confidence: 0.1}},
				results:     map[string]*model.ToolResult{"weak": {IsValid: tt.validity}},
			}
			svc := newService(t, newStore(), tools, 1)

			result, err := svc.DeepVerify(context.Background(), DeepVerifyRequest{
				Thought:   &model.Thought{Content: "Honey never spoils"},
				SessionID: "s1",
			})
			if err != nil {
				t.Fatalf("DeepVerify failed: %v", err)
			}
			if result.Status != tt.status {
				t.Errorf("expected %s, got %s", tt.status, result.Status)
			}
			if result.Confidence < tt.floor {
				t.Errorf("expected confidence >= %f, got %f", tt.floor, result.Confidence)
			}
		})
	}
}

func TestDeepVerify_AbsenceAndUncertain(t *testing.T) {
	tests := []struct {
		name    string
		results map[string]*model.ToolResult
		want    model.Status
	}{
		{
			name: "all absent",
			results: map[string]*model.ToolResult{
				"a": {IsValid: model.ValidityAbsent},
				"b": {IsValid: model.ValidityAbsent},
			},
			want: model.StatusAbsenceOfInformation,
		},
		{
			name: "no verdict",
			results: map[string]*model.ToolResult{
				"a": {Source: "somewhere"},
				"b": {IsValid: model.ValidityAbsent},
			},
			want: model.StatusUncertain,
		},
		{
			name: "only invalid",
			results: map[string]*model.ToolResult{
				"a": {IsValid: model.ValidityInvalid},
			},
			want: model.StatusUnverified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools := &fakeTools{suggestions: suggestions("a", "b"), results: tt.results}
			svc := newService(t, newStore(), tools, 2)

			result, err := svc.DeepVerify(context.Background(), DeepVerifyRequest{
				Thought:   &model.Thought{Content: "Octopuses have three hearts"},
				SessionID: "s1",
			})
			if err != nil {
				t.Fatalf("DeepVerify failed: %v", err)
			}
			if result.Status != tt.want {
				t.Errorf("expected %s, got %s", tt.want, result.Status)
			}
		})
	}
}

func TestDeepVerify_CacheShortCircuit(t *testing.T) {
	tools := &fakeTools{
		suggestions: []model.ToolSuggestion{{Name: "a", Confidence: 0.9}},
		results:     map[string]*model.ToolResult{"a": {IsValid: model.ValidityValid, Source: "atlas"}},
	}
	svc := newService(t, newStore(), tools, 1)
	ctx := context.Background()

	first := &model.Thought{Content: "Paris is the capital of France."}
	if _, err := svc.DeepVerify(ctx, DeepVerifyRequest{Thought: first, SessionID: "s1"}); err != nil {
		t.Fatalf("first DeepVerify failed: %v", err)
	}
	calls := tools.callCount()

	second := &model.Thought{Content: "Paris, capital of France"}
	result, err := svc.DeepVerify(ctx, DeepVerifyRequest{Thought: second, SessionID: "s1"})
	if err != nil {
		t.Fatalf("second DeepVerify failed: %v", err)
	}

	if tools.callCount() != calls {
		t.Errorf("expected cached result without tool calls, got %d new calls", tools.callCount()-calls)
	}
	if result.Status != model.StatusVerified {
		t.Errorf("expected cached verified status, got %s", result.Status)
	}
	if second.Metadata[model.MetaVerificationSource] != SourceCache {
		t.Errorf("expected cache source stamp, got %v", second.Metadata[model.MetaVerificationSource])
	}
	if diff := cmp.Diff([]string{StageCacheCheck}, second.Metadata[model.MetaStages]); diff != "" {
		t.Errorf("stages mismatch (-want +got):\n%s", diff)
	}

	// other sessions do not see it
	other := &model.Thought{Content: "Paris, capital of France"}
	if _, err := svc.DeepVerify(ctx, DeepVerifyRequest{Thought: other, SessionID: "s2"}); err != nil {
		t.Fatalf("DeepVerify failed: %v", err)
	}
	if other.Metadata[model.MetaVerificationSource] != SourceDeep {
		t.Errorf("expected deep verification in another session, got %v", other.Metadata[model.MetaVerificationSource])
	}

	// forcing skips the cache
	before := tools.callCount()
	forced := &model.Thought{Content: "Paris, capital of France"}
	if _, err := svc.DeepVerify(ctx, DeepVerifyRequest{Thought: forced, SessionID: "s1", ForceVerification: true}); err != nil {
		t.Fatalf("forced DeepVerify failed: %v", err)
	}
	if tools.callCount() == before {
		t.Error("expected forced verification to call tools")
	}
}

func TestDeepVerify_ReusesUnverified(t *testing.T) {
	tools := &fakeTools{
		suggestions: suggestions("a", "b"),
		errs:        map[string]error{"a": errors.New("timeout")},
		results:     map[string]*model.ToolResult{"b": nil},
	}
	svc := newService(t, newStore(), tools, 2)
	ctx := context.Background()
	claim := "The Library of Alexandria held 700,000 scrolls"

	first := &model.Thought{Content: claim}
	result, err := svc.DeepVerify(ctx, DeepVerifyRequest{Thought: first, SessionID: "s1"})
	if err != nil {
		t.Fatalf("first DeepVerify failed: %v", err)
	}
	if result.Status != model.StatusUnverified {
		t.Fatalf("expected unverified, got %s", result.Status)
	}
	calls := tools.callCount()
	if calls != 2 {
		t.Errorf("expected both tools to be tried, got %d", calls)
	}

	second := &model.Thought{Content: claim}
	result, err = svc.DeepVerify(ctx, DeepVerifyRequest{Thought: second, SessionID: "s1"})
	if err != nil {
		t.Fatalf("second DeepVerify failed: %v", err)
	}
	if tools.callCount() != calls {
		t.Errorf("expected no new tool calls, got %d", tools.callCount()-calls)
	}
	if result.Status != model.StatusUnverified {
		t.Errorf("expected cached unverified status, got %s", result.Status)
	}
	if second.Metadata[model.MetaVerificationSource] != SourceCache {
		t.Errorf("expected cache source stamp, got %v", second.Metadata[model.MetaVerificationSource])
	}

	forced := &model.Thought{Content: claim}
	if _, err := svc.DeepVerify(ctx, DeepVerifyRequest{Thought: forced, SessionID: "s1", ForceVerification: true}); err != nil {
		t.Fatalf("forced DeepVerify failed: %v", err)
	}
	if tools.callCount() != calls+2 {
		t.Errorf("expected forced run to retry both tools, got %d new calls", tools.callCount()-calls)
	}
}

func TestDeepVerify_ComplementaryPass(t *testing.T) {
	tools := &fakeTools{
		suggestions: suggestions("primary", "backup", "unused"),
		results: map[string]*model.ToolResult{
			"primary": nil,
			"backup":  {IsValid: model.ValidityValid},
		},
	}
	svc, err := New(newStore(),
		WithTools(tools),
		WithMetrics(fakeMetrics{req: model.VerificationRequirements{
			RequiresMultipleVerifications: true,
			RecommendedVerificationsCount: 1,
		}}),
		WithClock(func() time.Time { return fixedNow }),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	thought := &model.Thought{Content: "Mount Everest is 8849 metres high"}
	result, err := svc.DeepVerify(context.Background(), DeepVerifyRequest{Thought: thought, SessionID: "s1"})
	if err != nil {
		t.Fatalf("DeepVerify failed: %v", err)
	}

	if result.Status != model.StatusVerified {
		t.Errorf("expected verified via complementary tool, got %s", result.Status)
	}
	if diff := cmp.Diff([]string{"primary", "backup"}, tools.calls); diff != "" {
		t.Errorf("tool calls mismatch (-want +got):\n%s", diff)
	}

	wantStages := []string{StageCacheCheck, StageClassification, StageToolSizing, StagePrimary, StageComplementary, StageAggregation}
	if diff := cmp.Diff(wantStages, thought.Metadata[model.MetaStages]); diff != "" {
		t.Errorf("stages mismatch (-want +got):\n%s", diff)
	}
	if thought.Metadata[model.MetaToolsUsed] != 2 {
		t.Errorf("expected 2 tools used, got %v", thought.Metadata[model.MetaToolsUsed])
	}
	if thought.Metadata[model.MetaVerifiedAt] != "2025-03-01T10:00:00Z" {
		t.Errorf("unexpected timestamp stamp %v", thought.Metadata[model.MetaVerifiedAt])
	}
	if thought.Metadata[model.MetaSessionID] != "s1" {
		t.Errorf("expected session stamp, got %v", thought.Metadata[model.MetaSessionID])
	}
}

func TestDeepVerify_IncorrectCalculationContradicts(t *testing.T) {
	svc := newService(t, newStore(), nil, 1)

	result, err := svc.DeepVerify(context.Background(), DeepVerifyRequest{
		Thought:              &model.Thought{Content: "Clearly 2 + 2 = 5"},
		ContainsCalculations: true,
		SessionID:            "s1",
	})
	if err != nil {
		t.Fatalf("DeepVerify failed: %v", err)
	}

	if result.Status != model.StatusContradicted {
		t.Errorf("expected contradicted, got %s", result.Status)
	}
	if len(result.VerifiedCalculations) != 1 || result.VerifiedCalculations[0].IsCorrect {
		t.Errorf("expected one incorrect calculation, got %+v", result.VerifiedCalculations)
	}
}

func TestDeepVerify_ReusesToolCalculations(t *testing.T) {
	embedded := []model.VerifiedCalculation{{Original: "3 * 3 = 9", Verified: "3 * 3 = 9", IsCorrect: true, Confidence: 0.95}}
	tools := &fakeTools{
		suggestions: suggestions("calculator"),
		results: map[string]*model.ToolResult{
			"calculator": {IsValid: model.ValidityValid, VerifiedCalculations: embedded},
		},
	}
	svc := newService(t, newStore(), tools, 1)

	result, err := svc.DeepVerify(context.Background(), DeepVerifyRequest{
		Thought:              &model.Thought{Content: "3 * 3 = 9"},
		ContainsCalculations: true,
		SessionID:            "s1",
	})
	if err != nil {
		t.Fatalf("DeepVerify failed: %v", err)
	}
	if diff := cmp.Diff(embedded, result.VerifiedCalculations); diff != "" {
		t.Errorf("calculations mismatch (-want +got):\n%s", diff)
	}
}

func TestDeepVerify_IntrinsicPromotion(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		intrinsic float64
		want      model.Status
	}{
		{"markers and high confidence", "x is even, therefore x+1 is odd", 0.85, model.StatusPartiallyVerified},
		{"very high confidence alone", "The sky looks blue on clear days", 0.96, model.StatusPartiallyVerified},
		{"high confidence without markers", "The sky looks blue on clear days", 0.85, model.StatusUnverified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, newStore(), nil, 1)

			result, err := svc.DeepVerify(context.Background(), DeepVerifyRequest{
				Thought:   &model.Thought{Content: tt.content, Confidence: tt.intrinsic},
				SessionID: "s1",
			})
			if err != nil {
				t.Fatalf("DeepVerify failed: %v", err)
			}
			if result.Status != tt.want {
				t.Errorf("expected %s, got %s", tt.want, result.Status)
			}
			if result.Status == model.StatusPartiallyVerified && result.Confidence < 0.4 {
				t.Errorf("expected partial floor, got %f", result.Confidence)
			}
		})
	}
}

func TestCheckPreviousVerification(t *testing.T) {
	mem := &fakeMemory{match: &model.Match{
		ID: "e1", Text: "Paris is the capital of France", Status: model.StatusVerified,
		Confidence: 0.9, Similarity: 0.75, Sources: []string{"wiki"}, Timestamp: fixedNow,
	}}
	svc, err := New(mem)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	result, found, err := svc.CheckPreviousVerification("Paris capital", "s1")
	if err != nil || !found {
		t.Fatalf("expected hit, got found=%v err=%v", found, err)
	}
	if result.Confidence != 0.75 {
		t.Errorf("expected confidence capped by similarity at 0.75, got %f", result.Confidence)
	}
	if result.Status != model.StatusVerified || result.Notes == "" {
		t.Errorf("unexpected result %+v", result)
	}

	mem.match = nil
	result, found, err = svc.CheckPreviousVerification("Paris capital", "s1")
	if err != nil || found {
		t.Fatalf("expected miss, got found=%v err=%v", found, err)
	}
	if result.Status != model.StatusUnverified || result.Confidence != 0 {
		t.Errorf("expected default unverified result, got %+v", result)
	}
}

func TestPerformPreliminaryVerification(t *testing.T) {
	ctx := context.Background()

	t.Run("tool result", func(t *testing.T) {
		tools := &fakeTools{
			suggestions: suggestions("reference-check", "calculator"),
			results: map[string]*model.ToolResult{
				"calculator": {IsValid: model.ValidityValid, VerifiedCalculations: []model.VerifiedCalculation{
					{Original: "6 * 7 = 42", Verified: "6 * 7 = 42", IsCorrect: true, Confidence: 0.95},
				}},
			},
		}
		svc := newService(t, newStore(), tools, 1)

		res, err := svc.PerformPreliminaryVerification(ctx, "We get 6 * 7 = 42.", false)
		if err != nil {
			t.Fatalf("PerformPreliminaryVerification failed: %v", err)
		}
		if !res.InitialVerification || res.VerificationInProgress {
			t.Errorf("expected finished initial verification, got %+v", res)
		}
		if res.PreverifiedThought != "We get 6 * 7 = 42 [verified]." {
			t.Errorf("unexpected annotation %q", res.PreverifiedThought)
		}
		if diff := cmp.Diff([]string{"calculator"}, tools.calls); diff != "" {
			t.Errorf("expected only the calculation tool to run (-want +got):\n%s", diff)
		}
	})

	t.Run("evaluator fallback", func(t *testing.T) {
		tools := &fakeTools{
			suggestions: suggestions("calculator"),
			errs:        map[string]error{"calculator": errors.New("offline")},
		}
		svc := newService(t, newStore(), tools, 1)

		res, err := svc.PerformPreliminaryVerification(ctx, "So 2 + 2 = 5 holds", false)
		if err != nil {
			t.Fatalf("PerformPreliminaryVerification failed: %v", err)
		}
		if res.PreverifiedThought != "So 2 + 2 = 5 [incorrect: 2 + 2 = 4] holds" {
			t.Errorf("unexpected annotation %q", res.PreverifiedThought)
		}
	})

	t.Run("nothing to check", func(t *testing.T) {
		svc := newService(t, newStore(), nil, 1)

		res, err := svc.PerformPreliminaryVerification(ctx, "Paris is lovely", false)
		if err != nil {
			t.Fatalf("PerformPreliminaryVerification failed: %v", err)
		}
		if res.InitialVerification || res.VerificationInProgress || res.PreverifiedThought != "Paris is lovely" {
			t.Errorf("expected untouched result, got %+v", res)
		}
	})

	t.Run("no checker available", func(t *testing.T) {
		svc, err := New(newStore())
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		res, err := svc.PerformPreliminaryVerification(ctx, "Then 9 - 4 = 5", false)
		if err != nil {
			t.Fatalf("PerformPreliminaryVerification failed: %v", err)
		}
		if !res.VerificationInProgress || res.InitialVerification {
			t.Errorf("expected verification in progress, got %+v", res)
		}
		if res.PreverifiedThought != "Then 9 - 4 = 5 [pending]" {
			t.Errorf("unexpected annotation %q", res.PreverifiedThought)
		}
	})
}

func TestAnnotateThoughtWithVerifications(t *testing.T) {
	content := "f(2) = 2^2 = 4 and 3 + 3 = 6 and 2*5 = 11 and 1 + 1 = 2"
	verifications := []model.VerifiedCalculation{
		{Original: "3 + 3 = 6", Verified: "3 + 3 = 6", IsCorrect: true},
		{Original: "2*5 = 11", Verified: "2*5 = 10", IsCorrect: false},
	}

	got := AnnotateThoughtWithVerifications(content, verifications)
	want := "f(2) = 2^2 = 4 and 3 + 3 = 6 [verified] and 2*5 = 11 [incorrect: 2*5 = 10] and 1 + 1 = 2 [pending]"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestAnnotate_ToolOriginalOutsideSpans(t *testing.T) {
	got := AnnotateThoughtWithVerifications("The product is twelve, x*y = z", []model.VerifiedCalculation{
		{Original: "x*y = z", Verified: "x*y = z", IsCorrect: true},
	})
	if got != "The product is twelve, x*y = z [verified]" {
		t.Errorf("unexpected annotation %q", got)
	}
}

func TestDetectContradictions(t *testing.T) {
	outcomes := []ToolOutcome{
		{Name: "a", Result: &model.ToolResult{IsValid: model.ValidityValid}},
		{Name: "b", Result: &model.ToolResult{IsValid: model.ValidityInvalid}},
		{Name: "c", Result: &model.ToolResult{IsValid: model.ValidityInvalid}},
		{Name: "d", Result: &model.ToolResult{IsValid: model.ValidityPartial}},
	}

	got := DetectContradictions(outcomes)
	want := []string{
		"a reports the claim as valid but b reports it as invalid",
		"a reports the claim as valid but c reports it as invalid",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("contradictions mismatch (-want +got):\n%s", diff)
	}
}

func TestSizeTools(t *testing.T) {
	tests := []struct {
		recommended, categories, available, want int
	}{
		{0, 1, 3, 1},
		{2, 1, 3, 2},
		{5, 1, 3, 3},
		{2, 3, 4, 3},
		{3, 3, 3, 3},
		{2, 1, 0, 0},
	}
	for _, tt := range tests {
		if got := sizeTools(tt.recommended, tt.categories, tt.available); got != tt.want {
			t.Errorf("sizeTools(%d, %d, %d): expected %d, got %d", tt.recommended, tt.categories, tt.available, tt.want, got)
		}
	}
}
