package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/veritas/internal/model"
	"github.com/ppiankov/veritas/internal/verify"
)

var (
	sessionID    string
	force        bool
	jsonOutput   bool
	confidence   float64
	checkTimeout time.Duration
	llmEnabled   bool
	llmProvider  string
	llmModel     string
	noCache      bool
	noRobots     bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <claim>",
	Short: "Verify a single claim",
	Long: `Check runs a claim through the verification pipeline:
- Look for an earlier verification of a similar claim in the session
- Verify arithmetic in the claim
- Fetch and read sources the claim cites
- Optionally ask a language model for a verdict
- Reconcile the answers into one status with a confidence

Example:
  veritas check "2 + 2 = 5"
  veritas check "Paris is the capital of France https://en.wikipedia.org/wiki/Paris" --json
  veritas check "Water boils at 100 C at sea level" --llm --llm-provider openai`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&sessionID, "session", "default", "verification session")
	checkCmd.Flags().BoolVar(&force, "force", false, "ignore earlier verifications")
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	checkCmd.Flags().Float64Var(&confidence, "confidence", -1, "intrinsic confidence of the claim, 0-1 (default: assessed from wording)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall timeout")

	addToolFlags(checkCmd)
}

// addToolFlags registers the flags shared by check and batch
func addToolFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable the llm-judge tool")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the page cache (force fresh fetch)")
	cmd.Flags().BoolVar(&noRobots, "no-robots", false, "do not consult robots.txt before fetching")
}

// commandConfig loads the configuration and applies the flags of cmd
func commandConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("llm") {
		cfg.Tools.LLMJudge = llmEnabled
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
		applyProviderEnv(&cfg.LLM)
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noRobots {
		cfg.HTTP.RespectRobots = false
	}
	return cfg, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	claim := strings.Join(args, " ")

	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	req := verify.CheckRequest{Claim: claim, SessionID: sessionID, Force: force}
	if cmd.Flags().Changed("confidence") {
		if confidence < 0 || confidence > 1 {
			return fmt.Errorf("--confidence must be between 0 and 1, got %v", confidence)
		}
		req.Confidence = &confidence
	}

	logger.Debug("checking claim", zap.String("session", sessionID), zap.Strings("tools", a.registry.Names()))

	report, err := a.service.CheckClaim(ctx, req)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// printReport renders a human-readable report
func printReport(w io.Writer, r *model.ClaimReport) {
	res := r.Result
	fmt.Fprintf(w, "Claim:      %s\n", r.Claim)
	fmt.Fprintf(w, "Status:     %s\n", res.Status)
	fmt.Fprintf(w, "Confidence: %.2f\n", res.Confidence)
	if r.Assessment != nil {
		fmt.Fprintf(w, "Wording:    %s (intrinsic %.2f)\n", r.Assessment.Level, r.Assessment.Confidence)
	}
	if src, ok := r.Metadata[model.MetaVerificationSource].(string); ok && src == verify.SourceCache {
		fmt.Fprintf(w, "Source:     reused earlier verification\n")
	}

	if r.Preliminary.InitialVerification {
		fmt.Fprintf(w, "\nAnnotated:  %s\n", r.Preliminary.PreverifiedThought)
	}

	if len(res.VerifiedCalculations) > 0 {
		fmt.Fprintf(w, "\nCalculations:\n")
		for _, c := range res.VerifiedCalculations {
			mark := "ok"
			if !c.IsCorrect {
				mark = "wrong"
				if c.Verified == "" {
					mark = "unevaluable"
				}
			}
			fmt.Fprintf(w, "  [%s] %s", mark, c.Original)
			if !c.IsCorrect && c.Verified != "" {
				fmt.Fprintf(w, " (expected %s)", c.Verified)
			}
			fmt.Fprintln(w)
		}
	}

	if len(res.Contradictions) > 0 {
		fmt.Fprintf(w, "\nContradictions:\n")
		for _, c := range res.Contradictions {
			fmt.Fprintf(w, "  - %s\n", c)
		}
	}
	if len(res.Sources) > 0 {
		fmt.Fprintf(w, "\nSources:\n")
		for _, s := range res.Sources {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	if len(res.VerificationSteps) > 0 {
		fmt.Fprintf(w, "\nSteps:\n")
		for i, s := range res.VerificationSteps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, s)
		}
	}
	if res.Notes != "" {
		fmt.Fprintf(w, "\nNotes: %s\n", res.Notes)
	}
}
