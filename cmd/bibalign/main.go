// Command bibalign reduces dblp RDF triples to publication records and
// aligns them with OpenReview notes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/bibalign/internal/app"
	"github.com/agenthands/bibalign/internal/config"
	"github.com/agenthands/bibalign/internal/logging"
)

const (
	Version = "0.1.0"
	appName = "bibalign"
)

// env is what every subcommand shares once flags are parsed.
type env struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

// open builds the collaborators for one command run.
func (e *env) open(ctx context.Context, opts app.Options) (*app.App, error) {
	return app.New(ctx, e.cfg, e.logger, opts)
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	e := &env{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Reduce dblp triples and align them with OpenReview",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg, err := config.LoadOrDefault(e.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = e.logLevel
			}
			e.cfg = cfg
			e.logger = logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
			slog.SetDefault(e.logger)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "Config file path (TOML)")
	cmd.PersistentFlags().StringVar(&e.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		reduceCmd(e),
		alignCmd(e),
		notesCmd(e),
		queryCmd(e),
		exportCmd(e),
		serveCmd(e),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}
