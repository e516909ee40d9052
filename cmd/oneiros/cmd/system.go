package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var systemCmd = &cobra.Command{
	Use:   "system",
	Short: "Manage the multi-tenant system database",
}

var systemInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the system database and registry tables if they don't already exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := openManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		if _, _, err := mgr.System(); err != nil {
			return fmt.Errorf("initialize system database: %w", err)
		}
		fmt.Println("system database initialized")
		return nil
	},
}

func init() {
	systemCmd.AddCommand(systemInitCmd)
}
