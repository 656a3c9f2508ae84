package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/object"
	"github.com/lumensyntax-org/truthgit/internal/proof"
	"github.com/lumensyntax-org/truthgit/internal/repo"
)

var (
	proveCompact bool
	proveOut     string
)

var proveCmd = &cobra.Command{
	Use:   "prove <claim-hash>",
	Short: "Issue a signed proof certificate for a verified claim",
	Long: `Prove signs the claim and its consensus verification with the
repository's Ed25519 key and emits a self-contained certificate. Anyone
holding the certificate can check it offline with verify-proof.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, _, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		claimHash, err := resolveClaimHash(r, args[0])
		if err != nil {
			return err
		}
		cert, err := r.IssueProof(claimHash)
		if err != nil {
			return err
		}

		var out []byte
		if proveCompact {
			token, err := cert.Compact()
			if err != nil {
				return err
			}
			out = []byte(token + "\n")
		} else {
			out, err = cert.Encode()
			if err != nil {
				return err
			}
			out = append(out, '\n')
		}

		if proveOut != "" {
			if err := os.WriteFile(proveOut, out, 0o644); err != nil {
				return err
			}
			fmt.Printf("✓ Certificate written to %s\n", proveOut)
			return nil
		}
		_, err = os.Stdout.Write(out)
		return err
	},
}

var verifyProofCmd = &cobra.Command{
	Use:   "verify-proof <file>",
	Short: "Check a proof certificate offline",
	Long: `Verify-proof checks a certificate without touching the repository:
it recomputes the embedded claim and verification hashes and then checks
the Ed25519 signature. Pass "-" to read the certificate from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}

		res := proof.VerifyToken(data)
		if res.Valid {
			fmt.Println("✓ VALID")
			if cert, err := proof.Parse(data); err == nil {
				fmt.Printf("  Claim:     %s\n", truncate(cert.Claim.Content, 60))
				fmt.Printf("  Consensus: %.0f%%\n", float64(cert.Verification.Consensus)*100)
				fmt.Printf("  Issued:    %s\n", cert.IssuedAt)
			}
			return nil
		}
		fmt.Printf("✗ INVALID (%s)\n", res.Reason)
		return fmt.Errorf("certificate invalid: %s", res.Reason)
	},
}

// resolveClaimHash accepts a full claim hash or a unique prefix.
func resolveClaimHash(r *repo.Repository, arg string) (string, error) {
	if len(arg) == 64 {
		return arg, nil
	}
	_, typ, hash, err := r.FindByPrefix(arg)
	if err != nil {
		return "", err
	}
	if typ != object.TypeClaim {
		return "", fmt.Errorf("%s is a %s, not a claim", hash[:8], typ)
	}
	return hash, nil
}

func init() {
	proveCmd.Flags().BoolVar(&proveCompact, "compact", false, "emit the base64 token form")
	proveCmd.Flags().StringVarP(&proveOut, "output", "o", "", "write certificate to a file")
	rootCmd.AddCommand(proveCmd)
	rootCmd.AddCommand(verifyProofCmd)
}
