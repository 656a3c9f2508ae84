package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/repo"
)

var initForce bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new truth repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := repo.Init(repoPath, initForce); err != nil {
			if errors.Is(err, repo.ErrAlreadyInitialized) {
				return fmt.Errorf("repository already exists at %s/ (use --force to reinitialize)", repoPath)
			}
			return err
		}
		fmt.Printf("✓ Initialized truth repository in %s/\n", repoPath)
		fmt.Println("\nNext steps:")
		fmt.Println(`  truthgit claim "Your statement here" --domain general`)
		fmt.Println("  truthgit verify")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing repository")
	rootCmd.AddCommand(initCmd)
}
