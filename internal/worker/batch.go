package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/verify"
)

// Checker verifies a single claim
type Checker interface {
	CheckClaim(ctx context.Context, req verify.CheckRequest) (*model.ClaimReport, error)
}

// ClaimJob checks one claim of a batch
type ClaimJob struct {
	Index     int
	Claim     string
	SessionID string
	Force     bool
	Checker   Checker
}

// Execute runs the check
func (j *ClaimJob) Execute(ctx context.Context) Result {
	report, err := j.Checker.CheckClaim(ctx, verify.CheckRequest{
		Claim:     j.Claim,
		SessionID: j.SessionID,
		Force:     j.Force,
	})
	return &ClaimResult{Index: j.Index, Claim: j.Claim, Report: report, Error: err}
}

// ClaimResult is the outcome of a ClaimJob
type ClaimResult struct {
	Index  int
	Claim  string
	Report *model.ClaimReport
	Error  error
}

func (r *ClaimResult) GetError() error {
	return r.Error
}

// BatchProcessor checks many claims concurrently. All claims share one
// session, so later claims can reuse earlier verifications.
type BatchProcessor struct {
	checker     Checker
	concurrency int
	force       bool
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(checker Checker, concurrency int, force bool) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
		force:       force,
	}
}

// ProcessClaims checks claims and returns results in input order.
// Claims not started before ctx ends are reported with ctx's error.
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []string, sessionID string) []*ClaimResult {
	if len(claims) == 0 {
		return []*ClaimResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, claim := range claims {
		if !pool.Submit(&ClaimJob{Index: i, Claim: claim, SessionID: sessionID, Force: b.force, Checker: b.checker}) {
			break
		}
	}
	results := pool.Wait()

	out := make([]*ClaimResult, len(claims))
	for _, r := range results {
		cr := r.(*ClaimResult)
		out[cr.Index] = cr
	}
	for i := range out {
		if out[i] == nil {
			err := ctx.Err()
			if err == nil {
				err = fmt.Errorf("claim was not processed")
			}
			out[i] = &ClaimResult{Index: i, Claim: claims[i], Error: err}
		}
	}
	return out
}

// ProcessFile reads claims from filePath and checks them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath, sessionID string) ([]*ClaimResult, error) {
	claims, err := ReadClaimsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	return b.ProcessClaims(ctx, claims, sessionID), nil
}

// ReadClaimsFromFile reads one claim per line. Blank lines and # comments are
// skipped and repeated claims are kept once.
func ReadClaimsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var claims []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			claims = append(claims, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return claims, nil
}
