package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/config"
	"github.com/lumensyntax-org/truthgit/internal/repo"
	"github.com/lumensyntax-org/truthgit/internal/validator"
	"github.com/lumensyntax-org/truthgit/internal/worker"
)

var (
	verifyLocal     bool
	verifyHuman     bool
	verifyThreshold float64
	verifyQuorum    int
	verifyTimeout   time.Duration
	verifyWorkers   int
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify staged claims with multi-validator consensus",
	Long: `Verify fans every staged claim out to the available validators, waits
for all of them to settle, and records the consensus outcome. A validator
that fails or exceeds its deadline is recorded as FAILED or TIMED_OUT, not
dropped.

Example:
  truthgit verify
  truthgit verify --local
  truthgit verify --threshold 0.8 --quorum 3`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVarP(&verifyLocal, "local", "l", false, "use only local validators (Ollama)")
	verifyCmd.Flags().BoolVar(&verifyHuman, "human", false, "add an interactive human validator")
	verifyCmd.Flags().Float64Var(&verifyThreshold, "threshold", 0, "consensus threshold (default from config)")
	verifyCmd.Flags().IntVar(&verifyQuorum, "quorum", 0, "minimum usable validator results (default from config)")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 0, "per-validator timeout (default from config)")
	verifyCmd.Flags().IntVar(&verifyWorkers, "workers", 2, "claims verified concurrently")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	r, cfg, err := openRepo()
	if err != nil {
		return err
	}
	defer r.Close()

	staged, err := r.Staged()
	if err != nil {
		return err
	}
	if len(staged) == 0 {
		fmt.Println("Nothing to verify")
		fmt.Println(`  Create a claim first: truthgit claim "..."`)
		return nil
	}

	ctx := cmd.Context()
	validators := buildValidators(ctx, cfg)
	if len(validators) < cfg.Quorum {
		fmt.Fprintf(os.Stderr, "✗ Need at least %d validators, found %d\n", cfg.Quorum, len(validators))
		if verifyLocal {
			fmt.Fprintln(os.Stderr, "  Try: ollama pull llama3 && ollama pull mistral")
		} else {
			fmt.Fprintln(os.Stderr, "  Set API keys or use --local with Ollama")
		}
		return fmt.Errorf("insufficient validators")
	}

	names := make([]string, len(validators))
	for i, v := range validators {
		names[i] = v.Name()
	}
	fmt.Printf("Verifying %d claim(s) using: %s\n\n", len(staged), strings.Join(names, ", "))

	opts := repo.VerifyOptions{
		Threshold: verifyThreshold,
		Quorum:    verifyQuorum,
		Timeout:   verifyTimeout,
	}
	jobs := make([]worker.Job, len(staged))
	for i, sc := range staged {
		jobs[i] = worker.Job{ClaimHash: sc.Hash, Validators: validators, Opts: opts}
	}

	pool := worker.NewPool(verifyWorkers)
	results := pool.Run(ctx, r, jobs)

	failures := 0
	for i, res := range results {
		fmt.Printf("Claim %s: %s\n", res.ClaimHash[:8], truncate(staged[i].Claim.Content, 50))
		if res.Err != nil {
			failures++
			fmt.Printf("  ✗ Error: %v\n", res.Err)
			continue
		}
		for _, vr := range res.Verification.Results {
			fmt.Printf("  [%s] %s %.0f%% - %s\n", vr.Validator, vr.Status, float64(vr.Confidence)*100, truncate(vr.Rationale, 40))
		}
		switch {
		case !res.Verification.QuorumMet:
			fmt.Printf("  ⚠ INSUFFICIENT QUORUM  Consensus: %.0f%%  (%s)\n", float64(res.Verification.Consensus)*100, res.Hash[:8])
		case res.Verification.Passed:
			fmt.Printf("  ✓ PASSED  Consensus: %.0f%%  (%s)\n", float64(res.Verification.Consensus)*100, res.Hash[:8])
		default:
			fmt.Printf("  ✗ FAILED  Consensus: %.0f%%  (%s)\n", float64(res.Verification.Consensus)*100, res.Hash[:8])
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d verifications failed", failures, len(results))
	}
	return nil
}

// buildValidators assembles the validator set from flags and availability.
func buildValidators(ctx context.Context, cfg config.Config) []validator.Validator {
	base := cfg.Validator
	if base.Timeout == 0 {
		base.Timeout = cfg.ValidatorTimeout
	}
	validators := validator.DefaultSet(ctx, base, verifyLocal)
	if verifyHuman {
		validators = append(validators, validator.NewHuman("HUMAN", os.Stdin, os.Stderr))
	}
	return validators
}
