package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lumensyntax-org/truthgit/internal/api"
)

var (
	serveAddr  string
	serveLocal bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve exposes the repository over HTTP: claim verification, proof
issuance, offline proof checking, and search. The server shuts down
gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, cfg, err := openRepo()
		if err != nil {
			return err
		}
		defer r.Close()

		if serveAddr != "" {
			cfg.API.Addr = serveAddr
		}
		verifyLocal = serveLocal
		validators := buildValidators(cmd.Context(), cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := api.New(r, validators, cfg, newLogger(cfg))
		fmt.Printf("Listening on %s (%d validators)\n", cfg.API.Addr, len(validators))
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveLocal, "local", false, "use only local validators (Ollama)")
	rootCmd.AddCommand(serveCmd)
}
