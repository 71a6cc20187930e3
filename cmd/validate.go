package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simranmultani197/Simforge-sub000/sim/scenario"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate scenario.yaml...",
		Short: "Check scenario files against the schema and topology rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				sc, err := scenario.Load(path)
				if err == nil {
					err = sc.Validate()
				}
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n  %v\n", dropStyle.Render("FAIL"), path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d nodes, %d edges)\n",
					okStyle.Render("ok  "), path, len(sc.Topology.Nodes), len(sc.Topology.Edges))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios invalid", failed, len(args))
			}
			return nil
		},
	}
}
