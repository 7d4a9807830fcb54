package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/duesbook/internal/config"
	"github.com/mmynk/duesbook/internal/storage/sqlite"
	"github.com/mmynk/duesbook/pkg/logging"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "duesbook",
	Short: "Shared-expense ledger for a small household",
	Long: `duesbook records who paid for what in a shared household, works out
who owes whom, and carries open balances from one month into the next.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a TOML config file (default $"+config.FileEnv+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

// openStore opens the ledger database named by cfg.
func openStore(cfg *config.Config) (*sqlite.SQLiteStore, error) {
	if err := cfg.ValidateStorage(); err != nil {
		return nil, err
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}
