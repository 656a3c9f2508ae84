package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchDomain string
	searchLimit  int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search claims by content",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, _, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		results, err := r.Search(strings.Join(args, " "), searchDomain, searchLimit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matching claims")
			return nil
		}
		for _, res := range results {
			state := res.State
			if state == "" {
				state = "CREATED"
			}
			fmt.Printf("%s  [%s] %s\n", res.Hash[:8], state, truncate(res.Claim.Content, 60))
			if res.Consensus > 0 {
				fmt.Printf("          consensus %.0f%%, domain %s\n", res.Consensus*100, res.Claim.Domain)
			}
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchDomain, "domain", "d", "", "restrict to a domain")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum results (0 = all)")
	rootCmd.AddCommand(searchCmd)
}
