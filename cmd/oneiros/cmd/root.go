package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oneiros/oneiros/internal/oneiros/brain"
	"github.com/oneiros/oneiros/internal/oneiros/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "oneiros",
	Short: "Oneiros cognitive-memory service CLI",
	Long:  "oneiros drives the event-sourced knowledge store from the command line: system bootstrap, brain replay/rebuild, dream collection, and search.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (optional)")
	rootCmd.AddCommand(systemCmd)
	rootCmd.AddCommand(brainCmd)
	rootCmd.AddCommand(dreamCmd)
	rootCmd.AddCommand(searchCmd)
}

// openManager loads config and opens the brain manager every
// subcommand needs. It checks no precondition: brain databases are
// created on first use.
func openManager() (*brain.Manager, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	return brain.NewManager(cfg.DataDir)
}
