// Demo program showing verification reuse within a session.
// Similar claims in the same session are answered from memory, other
// sessions are not, and forcing a check bypasses memory.
package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/veritas/internal/calc"
	"github.com/ppiankov/veritas/internal/memory"
	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/score"
	"github.com/ppiankov/veritas/internal/similarity"
	"github.com/ppiankov/veritas/internal/tools"
	"github.com/ppiankov/veritas/internal/verify"
)

func main() {
	fmt.Println("=== Session Verification Reuse Demo ===")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := memory.New(model.DefaultConfig().Memory, memory.WithSimilarity(similarity.New()))
	store.Start(ctx)
	defer store.Stop()

	evaluator := calc.New(nil)
	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewCalculator(evaluator)); err != nil {
		fmt.Printf("register calculator: %v\n", err)
		return
	}

	scorer := score.NewScorer(nil)
	svc, err := verify.New(store,
		verify.WithTools(registry),
		verify.WithMetrics(scorer),
		verify.WithEvaluator(evaluator),
		verify.WithAssessor(scorer),
	)
	if err != nil {
		fmt.Printf("create service: %v\n", err)
		return
	}

	steps := []verify.CheckRequest{
		{Claim: "The total is 12 * 12 = 144 units", SessionID: "alpha"},
		{Claim: "The total is 12 * 12 = 144 units.", SessionID: "alpha"},
		{Claim: "The total is 12 * 12 = 144 units.", SessionID: "beta"},
		{Claim: "The total is 12 * 12 = 144 units.", SessionID: "alpha", Force: true},
		{Claim: "Doubling gives 2 * 21 = 44", SessionID: "alpha"},
	}

	for _, req := range steps {
		fmt.Printf("[%s] %s", req.SessionID, req.Claim)
		if req.Force {
			fmt.Print("  (forced)")
		}
		fmt.Println()
		fmt.Println(strings.Repeat("-", 60))

		report, err := svc.CheckClaim(ctx, req)
		if err != nil {
			fmt.Printf("  error: %v\n\n", err)
			continue
		}

		source, _ := report.Metadata[model.MetaVerificationSource].(string)
		fmt.Printf("  status:     %s\n", report.Result.Status)
		fmt.Printf("  confidence: %.2f\n", report.Result.Confidence)
		fmt.Printf("  answered:   %s\n", source)
		if report.Preliminary.PreverifiedThought != report.Claim {
			fmt.Printf("  annotated:  %s\n", report.Preliminary.PreverifiedThought)
		}
		fmt.Println()
	}

	stats := store.GetStats()
	fmt.Println("=== Memory ===")
	fmt.Printf("  entries:  %d\n", stats.TotalEntries)
	fmt.Printf("  sessions: %d\n", stats.Sessions)
	for status, n := range stats.ByStatus {
		fmt.Printf("  %-22s %d\n", status, n)
	}
}
