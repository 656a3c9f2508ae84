package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/object"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show staged claims and repository counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, cfg, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		st, err := r.Status()
		if err != nil {
			return err
		}

		fmt.Printf("Repository: %s\n", cfg.RepoPath)
		if st.Head != "" {
			fmt.Printf("HEAD: %s\n", st.Head[:minInt(12, len(st.Head))])
		} else {
			fmt.Println("HEAD: (none)")
		}
		fmt.Println()

		if len(st.Staged) == 0 {
			fmt.Println("Nothing staged for verification")
		} else {
			fmt.Printf("Staged for verification (%d):\n", len(st.Staged))
			for _, sc := range st.Staged {
				fmt.Printf("  %s  %s\n", sc.Hash[:8], truncate(sc.Claim.Content, 60))
			}
		}
		fmt.Println()

		fmt.Println("Objects:")
		for _, t := range object.Types() {
			fmt.Printf("  %-13s %d\n", string(t)+":", st.ObjectCounts[t])
		}
		if len(st.Perspectives) > 0 {
			fmt.Printf("\nPerspectives: %d\n", len(st.Perspectives))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
