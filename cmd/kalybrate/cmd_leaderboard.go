package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/kalybrate/kalybrate/internal/store"
)

func newLeaderboardCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Show all evaluated skills ranked by overall score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			st, err := store.New(cfg.DataDir)
			if err != nil {
				return err
			}

			board, err := st.LoadLeaderboard()
			if err != nil {
				return err
			}
			if len(board.Entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no skills evaluated yet")
				return nil
			}

			printLeaderboard(cmd, board)
			return nil
		},
	}
}

func printLeaderboard(cmd *cobra.Command, board *store.Leaderboard) {
	out := cmd.OutOrStdout()

	header := []string{"RANK", "SKILL", "SCORE", "GRADE", "EVALUATED"}
	rows := [][]string{}
	for _, e := range board.Entries {
		scoreCol := "-"
		if e.Overall != nil {
			scoreCol = fmt.Sprintf("%.1f", *e.Overall)
		}
		grade := e.Grade
		if grade != "" && !e.Complete {
			grade += " (partial)"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", e.Rank),
			e.SkillID,
			scoreCol,
			grade,
			e.EvaluatedAt.Format("2006-01-02 15:04"),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	printRow := func(cells []string) {
		padded := make([]string, len(cells))
		for i, cell := range cells {
			padded[i] = runewidth.FillRight(cell, widths[i])
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(padded, "  "), " "))
	}

	printRow(header)
	for _, row := range rows {
		printRow(row)
	}
}
