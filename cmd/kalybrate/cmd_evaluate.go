package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kalybrate/kalybrate/internal/models"
	"github.com/kalybrate/kalybrate/internal/session"
)

func newEvaluateCommand(opts *rootOptions) *cobra.Command {
	var (
		regenerate bool
		fresh      bool
	)

	cmd := &cobra.Command{
		Use:   "evaluate <skill-id>...",
		Short: "Run the full evaluation pipeline for one or more skills",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			sess, _, err := openEngine(cfg)
			if err != nil {
				return err
			}

			evalOpts := session.EvaluateOptions{Regenerate: regenerate, Fresh: fresh}
			var firstErr error
			for _, skillID := range args {
				score, err := sess.Evaluate(cmd.Context(), skillID, evalOpts)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "evaluation of %s failed: %v\n", skillID, err)
					if firstErr == nil {
						firstErr = err
					}
					continue
				}
				printScore(cmd, score)
			}
			return firstErr
		},
	}

	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "regenerate the benchmark suite even when a cached one exists")
	cmd.Flags().BoolVar(&fresh, "fresh", false, "re-run tasks and comparisons that already have records")
	return cmd
}

func printScore(cmd *cobra.Command, score *models.SkillScore) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "\n%s\n", score.SkillID)
	if score.Overall != nil {
		fmt.Fprintf(out, "  overall:      %.1f  grade %s\n", *score.Overall, score.FormatGrade())
	} else {
		fmt.Fprintf(out, "  overall:      no scoreable results\n")
	}
	if score.TaskPassRate != nil {
		fmt.Fprintf(out, "  tasks:        %.0f%% passed (%d/%d scoreable, %d unverified, %d failed)\n",
			*score.TaskPassRate*100, score.TasksPassed,
			score.TasksTotal-score.TasksUnverified-score.TasksFailed,
			score.TasksUnverified, score.TasksFailed)
	}
	if score.QualityWinRate != nil {
		fmt.Fprintf(out, "  quality:      %.0f%% win rate (%dW %dL %dT)\n",
			*score.QualityWinRate*100, score.Wins, score.Losses, score.Ties)
	}
	if score.SelectivityRate != nil {
		fmt.Fprintf(out, "  selectivity:  %.0f%% (informational)\n", *score.SelectivityRate*100)
	}
	if len(score.ByDifficulty) > 0 {
		tiers := make([]models.Difficulty, 0, len(score.ByDifficulty))
		for tier := range score.ByDifficulty {
			tiers = append(tiers, tier)
		}
		sort.Slice(tiers, func(i, j int) bool { return tierOrder(tiers[i]) < tierOrder(tiers[j]) })
		for _, tier := range tiers {
			stats := score.ByDifficulty[tier]
			fmt.Fprintf(out, "    %-7s %d/%d\n", tier, stats.Passed, stats.Total)
		}
	}
	if score.AvgSkillTokens > 0 {
		fmt.Fprintf(out, "  avg tokens:   %.0f with skill, %.0f baseline\n",
			score.AvgSkillTokens, score.AvgBaselineTokens)
	}
}

func tierOrder(d models.Difficulty) int {
	for i, tier := range models.Difficulties {
		if tier == d {
			return i
		}
	}
	return len(models.Difficulties)
}
