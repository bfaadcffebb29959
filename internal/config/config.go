// Package config loads engine configuration from kalybrate.yaml and the
// KALYBRATE_* environment, with defaults that work out of the box against
// Anthropic models.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/kalybrate/kalybrate/internal/capability"
	"github.com/kalybrate/kalybrate/internal/scorer"
)

// Config is the typed engine configuration.
type Config struct {
	// Provider selects the capability backend: "anthropic" or "openai".
	Provider string `mapstructure:"provider"`
	// BaseURL points the openai provider at any compatible endpoint.
	BaseURL string `mapstructure:"base_url"`

	// SmartModel handles generation and judging; CheapModel handles task
	// execution and quality responses.
	SmartModel string `mapstructure:"smart_model"`
	CheapModel string `mapstructure:"cheap_model"`

	DataDir   string `mapstructure:"data_dir"`
	SkillsDir string `mapstructure:"skills_dir"`
	WorkDir   string `mapstructure:"work_dir"`

	Concurrency    int `mapstructure:"concurrency"`
	TimeoutSeconds int `mapstructure:"timeout_seconds"`

	TaskWeight    float64 `mapstructure:"task_weight"`
	QualityWeight float64 `mapstructure:"quality_weight"`

	LogLevel string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", "anthropic")
	v.SetDefault("smart_model", "claude-sonnet-4-5")
	v.SetDefault("cheap_model", "claude-haiku-4-5")
	v.SetDefault("data_dir", "data")
	v.SetDefault("skills_dir", "skills")
	v.SetDefault("work_dir", "")
	v.SetDefault("concurrency", 4)
	v.SetDefault("timeout_seconds", 120)
	v.SetDefault("task_weight", 0.6)
	v.SetDefault("quality_weight", 0.4)
	v.SetDefault("log_level", "info")
}

// Load reads configuration. path may be empty, then kalybrate.yaml is looked
// up in the working directory and ~/.kalybrate; a missing file just means
// defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("KALYBRATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	} else {
		v.SetConfigName("kalybrate")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.kalybrate")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "reading config")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("unknown provider %q (want anthropic or openai)", c.Provider)
	}
	if c.SmartModel == "" {
		return fmt.Errorf("smart_model must be set")
	}
	if c.CheapModel == "" {
		return fmt.Errorf("cheap_model must be set")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout_seconds must be at least 1, got %d", c.TimeoutSeconds)
	}
	if c.TaskWeight <= 0 || c.QualityWeight <= 0 {
		return fmt.Errorf("component weights must be positive")
	}
	return nil
}

// Timeout returns the per-call deadline.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Weights returns the configured component weights.
func (c *Config) Weights() scorer.Weights {
	return scorer.Weights{Task: c.TaskWeight, Quality: c.QualityWeight}
}

// NewRouter builds the capability router from the configured provider and
// model tiers, with the retry and timeout policy applied per call.
func (c *Config) NewRouter() *capability.Router {
	build := func(model string) capability.Client {
		var base capability.Client
		switch c.Provider {
		case "openai":
			base = capability.NewOpenAIClient(model, c.BaseURL)
		default:
			base = capability.NewAnthropicClient(model)
		}
		return capability.NewCaller(base, capability.WithTimeout(c.Timeout()))
	}
	return capability.NewRouter(build(c.SmartModel), build(c.CheapModel))
}
