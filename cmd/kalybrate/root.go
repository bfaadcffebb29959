package main

import (
	"github.com/spf13/cobra"

	"github.com/kalybrate/kalybrate/internal/capability"
	"github.com/kalybrate/kalybrate/internal/comparator"
	"github.com/kalybrate/kalybrate/internal/config"
	"github.com/kalybrate/kalybrate/internal/generator"
	"github.com/kalybrate/kalybrate/internal/logger"
	"github.com/kalybrate/kalybrate/internal/runner"
	"github.com/kalybrate/kalybrate/internal/session"
	"github.com/kalybrate/kalybrate/internal/skilldoc"
	"github.com/kalybrate/kalybrate/internal/store"
)

func newFetcher(cfg *config.Config) skilldoc.Fetcher {
	return skilldoc.NewDirFetcher(cfg.SkillsDir)
}

// rootOptions carry the persistent flags into subcommands.
type rootOptions struct {
	configPath string
	debug      bool
}

// loadConfig resolves the effective configuration for a command invocation.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	logger.SetLevel(cfg.LogLevel)
	return cfg, nil
}

// openEngine wires the full evaluation pipeline from configuration.
func openEngine(cfg *config.Config) (*session.Session, *store.Store, error) {
	st, err := store.New(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}

	router := cfg.NewRouter()
	sess := session.New(
		newFetcher(cfg),
		generator.New(router.For(capability.RoleGeneration), generator.WithCache(st.SuiteCache())),
		runner.New(router.For(capability.RoleExecution), runner.WithWorkRoot(cfg.WorkDir)),
		comparator.New(router.For(capability.RoleExecution), router.For(capability.RoleJudge)),
		st,
		session.WithConcurrency(cfg.Concurrency),
		session.WithWeights(cfg.Weights()),
		session.WithProber(router.For(capability.RoleExecution)),
	)
	return sess, st, nil
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "kalybrate",
		Short:         "Benchmark and score AI skills",
		Long:          "kalybrate generates benchmark suites from skill documents, runs them against a capability model, and scores how much the skill actually helps.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to kalybrate.yaml (default: ./kalybrate.yaml, ~/.kalybrate/kalybrate.yaml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newEvaluateCommand(opts),
		newGenerateCommand(opts),
		newScoreCommand(opts),
		newLeaderboardCommand(opts),
		newInitCommand(),
	)
	return root
}
