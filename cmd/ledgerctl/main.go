package main

import (
	"log/slog"
	"os"

	"github.com/SscSPs/statutory_ledger/internal/platform/config"
	"github.com/spf13/cobra"
)

// cli carries what every subcommand needs once the root pre-run has loaded it.
type cli struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	app := &cli{logger: slog.New(slog.NewTextHandler(os.Stderr, nil))}

	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Administration tool for the statutory ledger service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			app.cfg = cfg
			return nil
		},
	}

	rootCmd.AddCommand(migrateCommands(app))
	rootCmd.AddCommand(tokenCommands(app))
	return rootCmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		slog.Error("Command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
