// Package main implements the repoflat CLI: flatten a public GitHub
// repository into a single searchable HTML page or a plain-text transcript
// for language model ingestion.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/repoflat/internal/config"
	"github.com/fyrsmithlabs/repoflat/internal/logging"
)

var (
	// configPath is the optional YAML config file location
	configPath string
	// version information (set via ldflags during build)
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "repoflat",
	Short: "Flatten GitHub repositories into single-page renderings",
	Long: `repoflat resolves a repository's full file tree, filters out binary and
oversized files, fetches the remaining content and renders it either as an
interactive HTML page with search or as a flat transcript for language model
ingestion.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup loads configuration and builds the logger shared by all subcommands.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("building logger: %w", err)
	}
	return cfg, logger, nil
}
