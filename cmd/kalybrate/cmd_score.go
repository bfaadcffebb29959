package main

import (
	"github.com/spf13/cobra"
)

func newScoreCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "score <skill-id>",
		Short: "Recompute a skill's score from persisted records, no model calls",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			sess, _, err := openEngine(cfg)
			if err != nil {
				return err
			}

			score, err := sess.Rescore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printScore(cmd, score)
			return nil
		},
	}
}
