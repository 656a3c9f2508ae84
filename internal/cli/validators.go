package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validatorsLocal bool

var validatorsCmd = &cobra.Command{
	Use:   "validators",
	Short: "List available validators",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		verifyLocal = validatorsLocal
		set := buildValidators(cmd.Context(), cfg)
		if len(set) == 0 {
			fmt.Println("No validators available")
			fmt.Println("  Set ANTHROPIC_API_KEY or OPENAI_API_KEY, or run Ollama locally")
			return nil
		}
		fmt.Printf("Available validators (%d):\n", len(set))
		for _, v := range set {
			fmt.Printf("  %s\n", v.Name())
		}
		if len(set) < cfg.Quorum {
			fmt.Printf("\n⚠ Below quorum (%d required)\n", cfg.Quorum)
		}
		return nil
	},
}

func init() {
	validatorsCmd.Flags().BoolVarP(&validatorsLocal, "local", "l", false, "probe only local validators (Ollama)")
	rootCmd.AddCommand(validatorsCmd)
}
