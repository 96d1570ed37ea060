package tools

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/veritas/internal/cache"
	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/similarity"
	"github.com/ppiankov/veritas/internal/source"
)

const parisPage = `<html><body>
<h1>France</h1>
<p>Paris is the capital and largest city of France. The city has about two million residents.</p>
<p>Unrelated navigation text.</p>
</body></html>`

func newReferenceServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
		case "/paris":
			if hits != nil {
				hits.Add(1)
			}
			w.Header().Set("Content-Type", "text/html")
			_, _ = fmt.Fprint(w, parisPage)
		case "/private/paris":
			t.Errorf("robots-disallowed page was fetched")
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestReference(t *testing.T, authority *model.AuthorityConfig, pages *cache.Pages) *Reference {
	t.Helper()
	classifier, err := source.NewAuthorityClassifier(authority)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := NewReference(ReferenceConfig{
		Fetcher:   source.NewFetcher(5*time.Second, "Veritas-test/1.0", 1<<20, false, "", "", ""),
		Robots:    source.NewRobotsChecker("Veritas-test/1.0", 5*time.Second, time.Hour),
		Pages:     pages,
		Authority: classifier,
		Tokenizer: similarity.New(),
		MaxRefs:   2,
	})
	if err != nil {
		t.Fatal(err)
	}
	return ref
}

func TestReference_SupportedBySecondarySource(t *testing.T) {
	server := newReferenceServer(t, nil)
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	ref := newTestReference(t, &model.AuthorityConfig{DomainMap: map[string]string{strings.Split(host, ":")[0]: "secondary"}}, nil)

	res, err := ref.Verify(context.Background(), "Paris is the capital of France, see "+server.URL+"/paris.")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.IsValid != model.ValidityValid {
		t.Errorf("Expected valid, got %v (%s)", res.IsValid, res.Details)
	}
	if res.Source != server.URL+"/paris" {
		t.Errorf("Expected source %s/paris, got %s", server.URL, res.Source)
	}
	if !strings.Contains(res.Details, "Paris is the capital and largest city of France.") {
		t.Errorf("Expected supporting sentence in details, got %q", res.Details)
	}
}

func TestReference_TertiarySourceWithPartialCoverage(t *testing.T) {
	server := newReferenceServer(t, nil)
	defer server.Close()

	ref := newTestReference(t, &model.AuthorityConfig{}, nil)
	res, err := ref.Verify(context.Background(), "Paris is the capital of Germany "+server.URL+"/paris")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.IsValid != model.ValidityPartial {
		t.Errorf("Expected partial for a tertiary source, got %v (%s)", res.IsValid, res.Details)
	}
	if !strings.HasPrefix(res.Details, "tertiary source") {
		t.Errorf("Expected tertiary source in details, got %q", res.Details)
	}
}

func TestReference_PageWithoutClaimTerms(t *testing.T) {
	server := newReferenceServer(t, nil)
	defer server.Close()

	ref := newTestReference(t, nil, nil)
	res, err := ref.Verify(context.Background(), "Jupiter has ninety-five moons "+server.URL+"/paris")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if res.IsValid != model.ValidityAbsent {
		t.Errorf("Expected absence of information, got %v", res.IsValid)
	}
}

func TestReference_RobotsAndFailures(t *testing.T) {
	server := newReferenceServer(t, nil)
	defer server.Close()

	ref := newTestReference(t, nil, nil)
	_, err := ref.Verify(context.Background(), "Paris is the capital "+server.URL+"/private/paris "+server.URL+"/missing")
	if err == nil {
		t.Fatal("Expected error when no cited source can be read")
	}
}

func TestReference_UsesPageCache(t *testing.T) {
	var hits atomic.Int32
	server := newReferenceServer(t, &hits)
	defer server.Close()

	pages := cache.NewPages(cache.NewMemoryCache(time.Minute, 0), 0)
	ref := newTestReference(t, nil, pages)
	claim := "Paris is the capital of France " + server.URL + "/paris"

	for i := 0; i < 2; i++ {
		if _, err := ref.Verify(context.Background(), claim); err != nil {
			t.Fatalf("Verify %d failed: %v", i, err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("Expected one fetch with caching, got %d", hits.Load())
	}
}

func TestReference_NoURLs(t *testing.T) {
	ref := newTestReference(t, nil, nil)
	res, err := ref.Verify(context.Background(), "Paris is the capital of France")
	if err != nil || res != nil {
		t.Errorf("Expected nil result, got %+v, %v", res, err)
	}
}

func TestNewReference_RequiresCollaborators(t *testing.T) {
	if _, err := NewReference(ReferenceConfig{Tokenizer: similarity.New()}); err == nil {
		t.Error("Expected error without fetcher")
	}
	if _, err := NewReference(ReferenceConfig{Fetcher: source.NewFetcher(time.Second, "ua", 1, false, "", "", "")}); err == nil {
		t.Error("Expected error without tokenizer")
	}
}

func TestExtractURLs(t *testing.T) {
	got := ExtractURLs("See https://a.example/x, (https://b.example/y) and https://a.example/x.")
	expected := []string{"https://a.example/x", "https://b.example/y"}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("URLs mismatch (-want +got):\n%s", diff)
	}
}
