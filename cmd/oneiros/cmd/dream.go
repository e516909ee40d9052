package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oneiros/oneiros/internal/oneiros/dream"
	"github.com/oneiros/oneiros/internal/oneiros/model"
)

var (
	dreamRecentWindow      int
	dreamDepth             int
	dreamDepthUnbounded    bool
	dreamCognitionSize     int
	dreamRecollectionLevel string
	dreamRecollectionSize  int
	dreamExperienceSize    int
)

var dreamCmd = &cobra.Command{
	Use:   "dream <brain-name> <agent-name>",
	Short: "Assemble an agent's recall context and print it as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		brainName, agentName := args[0], args[1]

		mgr, err := openManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		ctx, err := mgr.Brain(brainName)
		if err != nil {
			return err
		}

		cfg := dream.DefaultConfig()
		cfg.RecentWindow = dreamRecentWindow
		if dreamDepthUnbounded {
			cfg.DreamDepth = nil
		} else {
			cfg.DreamDepth = &dreamDepth
		}
		cfg.CognitionSize = &dreamCognitionSize
		cfg.RecollectionLevel = model.LevelName(dreamRecollectionLevel)
		cfg.RecollectionSize = &dreamRecollectionSize
		cfg.ExperienceSize = &dreamExperienceSize

		dctx, err := ctx.CollectDream(model.AgentName(agentName), cfg)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(dctx, "", "  ")
		if err != nil {
			return fmt.Errorf("encode dream context: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	dreamCmd.Flags().IntVar(&dreamRecentWindow, "recent-window", 5, "recent cognitions/experiences to seed")
	dreamCmd.Flags().IntVar(&dreamDepth, "depth", 1, "BFS hop limit from seeds")
	dreamCmd.Flags().BoolVar(&dreamDepthUnbounded, "unbounded-depth", false, "walk the connection graph with no depth limit")
	dreamCmd.Flags().IntVar(&dreamCognitionSize, "cognition-size", 20, "cap on cognitions in the result")
	dreamCmd.Flags().StringVar(&dreamRecollectionLevel, "recollection-level", "project", "minimum memory level to include")
	dreamCmd.Flags().IntVar(&dreamRecollectionSize, "recollection-size", 30, "cap on non-core memories")
	dreamCmd.Flags().IntVar(&dreamExperienceSize, "experience-size", 10, "cap on experiences")
}
