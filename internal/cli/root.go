// Package cli implements the truthgit command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lumensyntax-org/truthgit/internal/config"
	"github.com/lumensyntax-org/truthgit/internal/repo"
)

const version = "0.4.0"

var (
	cfgFile  string
	repoPath string
	verbose  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "truthgit",
	Short: "Version control for verified truth",
	Long: `TruthGit is a version-control-style store for factual claims.

Each claim accumulates an immutable, auditable history of verification
results produced by independent validators. Consensus across validators
decides whether a claim passes; cryptographic certificates prove a specific
claim received a specific outcome and verify offline.

TruthGit records what validators said. It does not decide what is true.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("truthgit v%s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.truthgit/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&repoPath, "path", "p", ".truth", "repository path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("repo_path", rootCmd.PersistentFlags().Lookup("path"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.truthgit")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("TRUTHGIT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges viper state over the defaults.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse configuration: %w", err)
	}
	cfg.RepoPath = repoPath
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newLogger(cfg config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	return log
}

// openRepo loads configuration and opens the repository at --path.
func openRepo() (*repo.Repository, config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	if !repo.IsInitialized(cfg.RepoPath) {
		return nil, cfg, fmt.Errorf("%w at %s (run: truthgit init)", repo.ErrNotInitialized, cfg.RepoPath)
	}
	r, err := repo.Open(cfg.RepoPath, cfg, newLogger(cfg))
	if err != nil {
		return nil, cfg, err
	}
	return r, cfg, nil
}
