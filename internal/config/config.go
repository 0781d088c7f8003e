package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/SaadHafeez466/qa-app/internal/apperrors"
	"github.com/SaadHafeez466/qa-app/internal/completion"
	"github.com/SaadHafeez466/qa-app/internal/csvout"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"
)

// DefaultConfigPath is the file written by `qa-app init`.
const DefaultConfigPath = "config.yaml"

// Config represents the application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Completion CompletionConfig `mapstructure:"completion"`
	Output     OutputConfig     `mapstructure:"output"`
}

// AppConfig represents the application-specific configuration
type AppConfig struct {
	Name            string `mapstructure:"name"`
	Debug           bool   `mapstructure:"debug"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// CompletionConfig selects and tunes the completion service
type CompletionConfig struct {
	Provider    string        `mapstructure:"provider"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// OutputConfig controls where results are written
type OutputConfig struct {
	Path   string `mapstructure:"path"`
	Reveal bool   `mapstructure:"reveal"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:            "qa-app",
			Debug:           false,
			CredentialsFile: DefaultCredentialsPath,
		},
		Completion: CompletionConfig{
			Provider:    completion.ProviderOpenAI,
			Temperature: completion.DefaultTemperature,
			MaxTokens:   completion.DefaultMaxTokens,
			Timeout:     completion.DefaultTimeout,
		},
		Output: OutputConfig{
			Path:   csvout.DefaultPath,
			Reveal: true,
		},
	}
}

// SetDefaults registers DefaultConfig values on v so env vars and config
// files only need to override what they change.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("app.name", d.App.Name)
	v.SetDefault("app.debug", d.App.Debug)
	v.SetDefault("app.credentials_file", d.App.CredentialsFile)
	v.SetDefault("completion.provider", d.Completion.Provider)
	v.SetDefault("completion.model", d.Completion.Model)
	v.SetDefault("completion.base_url", d.Completion.BaseURL)
	v.SetDefault("completion.temperature", d.Completion.Temperature)
	v.SetDefault("completion.max_tokens", d.Completion.MaxTokens)
	v.SetDefault("completion.timeout", d.Completion.Timeout)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.reveal", d.Output.Reveal)
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.Wrap("config.Load", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Settings converts the completion section for completion.New.
func (c *Config) Settings(apiKey string) completion.Settings {
	return completion.Settings{
		Provider:    c.Completion.Provider,
		Model:       c.Completion.Model,
		APIKey:      apiKey,
		BaseURL:     c.Completion.BaseURL,
		Temperature: c.Completion.Temperature,
		MaxTokens:   c.Completion.MaxTokens,
		Timeout:     c.Completion.Timeout,
	}
}

// Save writes cfg as YAML that Load reads back. Credentials are never part
// of the file.
func Save(path string, cfg *Config) error {
	const op = "config.Save"

	doc := map[string]any{
		"app": map[string]any{
			"name":             cfg.App.Name,
			"debug":            cfg.App.Debug,
			"credentials_file": cfg.App.CredentialsFile,
		},
		"completion": map[string]any{
			"provider":    cfg.Completion.Provider,
			"model":       cfg.Completion.Model,
			"base_url":    cfg.Completion.BaseURL,
			"temperature": cfg.Completion.Temperature,
			"max_tokens":  cfg.Completion.MaxTokens,
			"timeout":     cfg.Completion.Timeout.String(),
		},
		"output": map[string]any{
			"path":   cfg.Output.Path,
			"reveal": cfg.Output.Reveal,
		},
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return apperrors.Wrap(op, err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.Wrap(op, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.Wrapf(op, err, "writing %s", path)
	}
	return nil
}
