package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show verification history, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, _, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		entries, err := r.History(logLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No verifications yet")
			return nil
		}
		for _, e := range entries {
			v := e.Verification
			fmt.Printf("verification %s\n", e.Hash)
			fmt.Printf("Claim:     %s\n", v.ClaimHash)
			fmt.Printf("Date:      %s\n", v.Timestamp)
			fmt.Printf("Consensus: %.0f%% (threshold %.0f%%, quorum %d)\n",
				float64(v.Consensus)*100, float64(v.Threshold)*100, v.Quorum)
			fmt.Printf("Outcome:   %s\n", outcomeLabel(v))
			for _, res := range v.Results {
				fmt.Printf("    [%s] %s %.0f%%\n", res.Validator, res.Status, float64(res.Confidence)*100)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "n", 10, "maximum entries to show (0 = all)")
	rootCmd.AddCommand(logCmd)
}

func outcomeLabel(v *object.Verification) string {
	switch {
	case !v.QuorumMet:
		return "INSUFFICIENT QUORUM"
	case v.Passed:
		return "PASSED"
	default:
		return "FAILED"
	}
}
