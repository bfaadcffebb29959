package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kalybrate/kalybrate/internal/capability"
	"github.com/kalybrate/kalybrate/internal/generator"
	"github.com/kalybrate/kalybrate/internal/store"
)

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "generate <skill-id>",
		Short: "Generate (or refresh) the benchmark suite for a skill without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			st, err := store.New(cfg.DataDir)
			if err != nil {
				return err
			}

			doc, err := newFetcher(cfg).Fetch(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			router := cfg.NewRouter()
			gen := generator.New(router.For(capability.RoleGeneration), generator.WithCache(st.SuiteCache()))

			suite, err := gen.Generate(cmd.Context(), doc, force)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "suite for %s (generated by %s)\n", suite.SkillID, suite.GeneratorModel)
			byTier := suite.TasksByDifficulty()
			fmt.Fprintf(out, "  tasks:             %d (%d easy, %d medium, %d hard)\n",
				len(suite.Tasks), len(byTier["easy"]), len(byTier["medium"]), len(byTier["hard"]))
			fmt.Fprintf(out, "  quality prompts:   %d\n", len(suite.QualityPrompts))
			fmt.Fprintf(out, "  selectivity tests: %d\n", len(suite.SelectivityTests))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "regenerate even when a cached suite exists")
	return cmd
}
