package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

var catJSON bool

var catCmd = &cobra.Command{
	Use:   "cat <hash-prefix>",
	Short: "Show a stored object by hash or unique prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, _, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		obj, typ, hash, err := r.FindByPrefix(args[0])
		if err != nil {
			return err
		}

		if catJSON {
			data, err := object.Encode(obj)
			if err != nil {
				return err
			}
			var pretty any
			if err := json.Unmarshal(data, &pretty); err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(pretty)
		}

		fmt.Printf("%s %s\n", typ, hash)
		switch o := obj.(type) {
		case *object.Claim:
			fmt.Printf("  Content:    %s\n", o.Content)
			fmt.Printf("  Domain:     %s\n", o.Domain)
			fmt.Printf("  Confidence: %.2f (declared)\n", float64(o.DeclaredConfidence))
			fmt.Printf("  Created:    %s\n", o.CreatedAt)
			if state, err := r.ClaimState(hash); err == nil {
				fmt.Printf("  State:      %s\n", state)
			}
		case *object.Axiom:
			fmt.Printf("  Content:    %s\n", o.Content)
			fmt.Printf("  Domain:     %s\n", o.Domain)
			fmt.Printf("  Created:    %s\n", o.CreatedAt)
		case *object.Context:
			fmt.Printf("  Label:   %s\n", o.Label)
			fmt.Printf("  Members: %d\n", len(o.Members))
			for _, m := range o.Members {
				fmt.Printf("    %s\n", m)
			}
		case *object.Verification:
			fmt.Printf("  Claim:     %s\n", o.ClaimHash)
			fmt.Printf("  Consensus: %.0f%%\n", float64(o.Consensus)*100)
			fmt.Printf("  Outcome:   %s\n", outcomeLabel(o))
			fmt.Printf("  Date:      %s\n", o.Timestamp)
			for _, res := range o.Results {
				fmt.Printf("    [%s] %s %.0f%% - %s\n", res.Validator, res.Status, float64(res.Confidence)*100, truncate(res.Rationale, 50))
			}
		}
		return nil
	},
}

func init() {
	catCmd.Flags().BoolVar(&catJSON, "json", false, "print the raw object as JSON")
	rootCmd.AddCommand(catCmd)
}
