package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oneiros/oneiros/internal/oneiros/brain"
	"github.com/oneiros/oneiros/internal/oneiros/obs"
	"github.com/oneiros/oneiros/internal/oneiros/replay"
	"github.com/oneiros/oneiros/internal/oneiros/store"
)

var brainCmd = &cobra.Command{
	Use:   "brain",
	Short: "Manage brain databases",
}

var brainRebuildCmd = &cobra.Command{
	Use:   "rebuild <brain-name>",
	Short: "Drop and re-derive every projection view from a brain's event log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := openManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		ctx, err := mgr.Brain(args[0])
		if err != nil {
			return err
		}
		if err := ctx.Rebuild(); err != nil {
			return fmt.Errorf("rebuild %s: %w", args[0], err)
		}
		fmt.Printf("brain %q rebuilt\n", args[0])
		return nil
	},
}

var brainReplayCmd = &cobra.Command{
	Use:   "replay <legacy-db-path> <brain-name>",
	Short: "Rewrite a legacy surrogate-id event log into a fresh content-addressed brain",
	Long: "replay reads every event from a legacy database file, rewrites surrogate\n" +
		"UUIDs to content-addressed Links in log order (spec §4.7), writes the\n" +
		"rewritten log into the named brain (created fresh if needed), and runs a\n" +
		"full rebuild so projections populate from the canonical form.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		legacyPath, brainName := args[0], args[1]
		logger := obs.New("text")

		legacy, err := store.Open(legacyPath)
		if err != nil {
			return fmt.Errorf("open legacy database %s: %w", legacyPath, err)
		}
		defer legacy.Close()

		mgr, err := openManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		ctx, err := mgr.Brain(brainName)
		if err != nil {
			return err
		}

		n, err := replay.Run(logger, legacy, ctx.Store(), brain.Projections())
		if err != nil {
			return err
		}
		fmt.Printf("replayed %d events into brain %q\n", n, brainName)
		return nil
	},
}

func init() {
	brainCmd.AddCommand(brainRebuildCmd)
	brainCmd.AddCommand(brainReplayCmd)
}
