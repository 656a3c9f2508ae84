package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	claimDomain     string
	claimConfidence float64
	axiomDomain     string
	contextLabel    string
)

// claimCmd represents the claim command
var claimCmd = &cobra.Command{
	Use:   "claim <content>",
	Short: "Create a new claim to be verified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, _, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		claim, hash, err := r.CreateClaim(args[0], claimDomain, claimConfidence)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Created claim: %s\n", hash[:8])
		fmt.Printf("  Content: %s\n", truncate(claim.Content, 60))
		fmt.Printf("  Domain: %s\n", claim.Domain)
		fmt.Println("\nRun truthgit verify to validate with consensus")
		return nil
	},
}

// axiomCmd represents the axiom command
var axiomCmd = &cobra.Command{
	Use:   "axiom <content>",
	Short: "Store a non-verifiable axiom",
	Long: `Store an axiom: a statement trusted without verification. Axioms never
enter consensus and act as trusted leaves in derivations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, _, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		axiom, hash, err := r.AddAxiom(args[0], axiomDomain, 1.0)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Stored axiom: %s\n", hash[:8])
		fmt.Printf("  Content: %s\n", truncate(axiom.Content, 60))
		return nil
	},
}

// contextCmd represents the context command
var contextCmd = &cobra.Command{
	Use:   "context <hash> [<hash>...]",
	Short: "Group claims and axioms under a label",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, _, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		cx, hash, err := r.CreateContext(args, contextLabel)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Created context: %s (%d members)\n", hash[:8], len(cx.Members))
		return nil
	},
}

func init() {
	claimCmd.Flags().StringVarP(&claimDomain, "domain", "d", "general", "knowledge domain")
	claimCmd.Flags().Float64VarP(&claimConfidence, "confidence", "c", 0.5, "initial declared confidence")
	axiomCmd.Flags().StringVarP(&axiomDomain, "domain", "d", "general", "knowledge domain")
	contextCmd.Flags().StringVarP(&contextLabel, "label", "l", "", "context label")

	rootCmd.AddCommand(claimCmd)
	rootCmd.AddCommand(axiomCmd)
	rootCmd.AddCommand(contextCmd)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
