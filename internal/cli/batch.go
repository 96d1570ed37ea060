package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	batchSession string
	batchForce   bool
	batchJSON    bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify many claims from a file in parallel",
	Long: `Batch verifies claims read from a file, one per line:
- Blank lines and lines starting with # are skipped
- Repeated claims are checked once
- All claims share one session, so similar claims reuse earlier results
- Claims are processed by a pool of workers

Example:
  veritas batch claims.txt
  veritas batch claims.txt --concurrency 8 --output-dir ./veritas-reports
  veritas batch claims.txt --json > reports.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "write one JSON report per claim to this directory")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().StringVar(&batchSession, "session", "batch", "verification session shared by all claims")
	batchCmd.Flags().BoolVar(&batchForce, "force", false, "ignore earlier verifications")
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "print all reports as a JSON array")

	addToolFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	logger.Info("batch started",
		zap.String("file", file),
		zap.Int("workers", cfg.Concurrency.Workers),
		zap.String("session", batchSession))

	processor := worker.NewBatchProcessor(a.service, cfg.Concurrency.Workers, batchForce)
	results, err := processor.ProcessFile(ctx, file, batchSession)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	var reports []*model.ClaimReport
	failures := 0
	for _, r := range results {
		if r.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Claim, r.Error)
			continue
		}
		reports = append(reports, r.Report)

		if outputDir != "" {
			path := filepath.Join(outputDir, fmt.Sprintf("%03d-%s.json", r.Index+1, sanitizeFilename(r.Claim)))
			if err := writeReportFile(path, r.Report); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Claim, err)
			}
		}
		if !batchJSON {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %.2f  %s\n", r.Report.Result.Status, r.Report.Result.Confidence, r.Claim)
		}
	}

	if batchJSON {
		if reports == nil {
			reports = []*model.ClaimReport{}
		}
		if err := writeJSON(cmd.OutOrStdout(), reports); err != nil {
			return err
		}
	}

	stats := a.store.GetStats()
	logger.Info("batch complete",
		zap.Int("total", len(results)),
		zap.Int("success", len(results)-failures),
		zap.Int("failures", failures),
		zap.Int("stored_verifications", stats.TotalEntries))

	if failures > 0 && failures == len(results) {
		return fmt.Errorf("all %d claims failed", failures)
	}
	return nil
}

func writeReportFile(path string, report *model.ClaimReport) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close report: %w", closeErr)
		}
	}()
	return writeJSON(f, report)
}

// sanitizeFilename turns a claim into a short file-name-safe slug
func sanitizeFilename(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= 60 {
			break
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "claim"
	}
	return slug
}
