package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// initConfig is the subset of configuration the wizard asks about, in the
// order it lands in kalybrate.yaml.
type initConfig struct {
	Provider       string  `yaml:"provider"`
	BaseURL        string  `yaml:"base_url,omitempty"`
	SmartModel     string  `yaml:"smart_model"`
	CheapModel     string  `yaml:"cheap_model"`
	SkillsDir      string  `yaml:"skills_dir"`
	DataDir        string  `yaml:"data_dir"`
	Concurrency    int     `yaml:"concurrency"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	TaskWeight     float64 `yaml:"task_weight"`
	QualityWeight  float64 `yaml:"quality_weight"`
}

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively write a starter kalybrate.yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const path = "kalybrate.yaml"
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := initConfig{
				Provider:       "anthropic",
				SmartModel:     "claude-sonnet-4-5",
				CheapModel:     "claude-haiku-4-5",
				SkillsDir:      "skills",
				DataDir:        "data",
				Concurrency:    4,
				TimeoutSeconds: 120,
				TaskWeight:     0.6,
				QualityWeight:  0.4,
			}
			concurrency := strconv.Itoa(cfg.Concurrency)

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewSelect[string]().
						Title("Capability provider").
						Options(
							huh.NewOption("Anthropic", "anthropic"),
							huh.NewOption("OpenAI-compatible", "openai"),
						).
						Value(&cfg.Provider),
					huh.NewInput().
						Title("Smart model (generation and judging)").
						Value(&cfg.SmartModel),
					huh.NewInput().
						Title("Cheap model (task execution)").
						Value(&cfg.CheapModel),
					huh.NewInput().
						Title("Skills directory").
						Value(&cfg.SkillsDir),
					huh.NewInput().
						Title("Data directory").
						Value(&cfg.DataDir),
					huh.NewInput().
						Title("Concurrency").
						Value(&concurrency).
						Validate(func(s string) error {
							n, err := strconv.Atoi(s)
							if err != nil || n < 1 {
								return fmt.Errorf("enter a positive number")
							}
							return nil
						}),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}
			cfg.Concurrency, _ = strconv.Atoi(concurrency)

			if cfg.Provider == "openai" {
				baseForm := huh.NewForm(huh.NewGroup(
					huh.NewInput().
						Title("Base URL (empty for api.openai.com)").
						Value(&cfg.BaseURL),
				))
				if err := baseForm.Run(); err != nil {
					return err
				}
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing kalybrate.yaml")
	return cmd
}
