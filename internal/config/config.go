// Package config resolves the CLI's settings from flags, environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/parlancehq/parlance"
)

// Config is the resolved CLI configuration.
type Config struct {
	Vendor  string `mapstructure:"vendor"`
	Model   string `mapstructure:"model"`
	System  string `mapstructure:"system"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// Init wires viper to the config file and the PARLANCE_* environment. An
// empty configFile falls back to parlance.yaml in the working directory or
// $HOME/.config/parlance. A missing file is fine; everything has defaults or
// comes from flags and env.
func Init(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("parlance")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/parlance")
	}

	viper.SetEnvPrefix("PARLANCE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return
		}
		fmt.Fprintln(os.Stderr, err.Error())
	}
}

// Load unmarshals and validates the resolved configuration.
func Load() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if cfg.Vendor == "" {
		// Bound flags surface as empty strings when unset, so the default
		// is applied here rather than through viper.
		cfg.Vendor = string(parlance.OpenAI)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the vendor name and fills the model default.
func (c *Config) Validate() error {
	vendor, err := parlance.ParseVendor(c.Vendor)
	if err != nil {
		return err
	}
	c.Vendor = string(vendor)
	if c.Model == "" {
		c.Model = vendor.DefaultModel()
	}
	return nil
}

// ResolveAPIKey returns the key for the configured vendor: an explicit
// api_key setting wins, then the vendor's conventional environment variable.
// Ollama runs keyless, so an empty result there is not an error.
func (c Config) ResolveAPIKey() (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}
	var envNames []string
	switch parlance.Vendor(c.Vendor) {
	case parlance.OpenAI:
		envNames = []string{"OPENAI_API_KEY"}
	case parlance.Anthropic:
		envNames = []string{"ANTHROPIC_API_KEY"}
	case parlance.Google:
		envNames = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case parlance.DeepSeek:
		envNames = []string{"DEEPSEEK_API_KEY"}
	case parlance.Ollama:
		return "", nil
	}
	for _, name := range envNames {
		if key := os.Getenv(name); key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("no API key for %s: set api_key or %s", c.Vendor, strings.Join(envNames, " or "))
}
