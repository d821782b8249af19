// Package cmd wires the command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fmanzoor3/tiq-assistant/config"
	"github.com/fmanzoor3/tiq-assistant/logger"
	"github.com/fmanzoor3/tiq-assistant/store/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "tiq",
	Short: "tiq-assistant – timesheet reconciliation from your calendar",
	Long: `tiq-assistant reconciles Outlook calendar meetings into timesheet
entries: it matches meetings to tracked projects, tracks morning and
afternoon session quotas, and exports the monthly spreadsheet.
All data is stored in a SQLite database under ~/.tiq-assistant/.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(holidaysCmd)
}

// bootstrap loads the configuration and opens the store; every
// subcommand starts here.
func bootstrap() (config.Config, *sqlite.Store, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	log := logger.New(cfg.Env)
	store, err := sqlite.New(cfg.DatabasePath())
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return cfg, store, log, nil
}
