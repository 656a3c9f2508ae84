package cli

import (
	"encoding/base64"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/proof"
)

var keysForce bool

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the repository signing keypair",
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an Ed25519 signing keypair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir := filepath.Join(cfg.RepoPath, "keys")
		if proof.KeysExist(dir) && !keysForce {
			return fmt.Errorf("keypair already exists in %s (use --force to replace)", dir)
		}
		kp, err := proof.GenerateKeyPair()
		if err != nil {
			return err
		}
		if err := proof.SaveKeyPair(dir, kp); err != nil {
			return err
		}
		fmt.Printf("✓ Keypair written to %s\n", dir)
		fmt.Printf("  Public key: %s\n", base64.StdEncoding.EncodeToString(kp.Public))
		return nil
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the repository public key",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir := filepath.Join(cfg.RepoPath, "keys")
		if !proof.KeysExist(dir) {
			return fmt.Errorf("no keypair in %s (run: truthgit keys generate)", dir)
		}
		kp, err := proof.LoadKeyPair(dir)
		if err != nil {
			return err
		}
		fmt.Println(base64.StdEncoding.EncodeToString(kp.Public))
		return nil
	},
}

func init() {
	keysGenerateCmd.Flags().BoolVar(&keysForce, "force", false, "replace an existing keypair")
	keysCmd.AddCommand(keysGenerateCmd)
	keysCmd.AddCommand(keysShowCmd)
	rootCmd.AddCommand(keysCmd)
}
