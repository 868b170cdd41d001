// Package config holds glean's runtime configuration.
//
// Values are resolved by viper with the usual precedence (lowest → highest):
// defaults → config file → GLEAN_* env vars → flags.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// DefaultMode is the prompt mode used when none is configured.
const DefaultMode = "quick-question"

// DefaultPrompts maps each built-in mode to its prompt template.
var DefaultPrompts = map[string]string{
	DefaultMode: "",
	"explain":   "Please explain the following text:",
	"translate": "Please translate the following text:",
	"polish":    "Please improve or polish the following text:",
}

// Config is the daemon configuration.
type Config struct {
	Mode         string            `mapstructure:"mode"`
	SettleDelay  time.Duration     `mapstructure:"settle-delay"`
	Hotkey       string            `mapstructure:"hotkey"`
	Listen       string            `mapstructure:"listen"`
	Token        string            `mapstructure:"token"`
	TargetWindow string            `mapstructure:"target-window"`
	PopupWindow  string            `mapstructure:"popup-window"`
	Prompts      map[string]string `mapstructure:"prompts"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("mode", DefaultMode)
	v.SetDefault("settle-delay", 100*time.Millisecond)
	v.SetDefault("hotkey", "ctrl+shift+space")
	v.SetDefault("listen", "")
	v.SetDefault("token", "")
	v.SetDefault("target-window", "main")
	v.SetDefault("popup-window", "select")
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks values viper cannot check for us.
func (c *Config) Validate() error {
	if c.SettleDelay < 0 {
		return fmt.Errorf("config: settle-delay must not be negative, got %s", c.SettleDelay)
	}
	if c.Listen != "" && c.Token == "" {
		return fmt.Errorf("config: listen requires a token")
	}
	if strings.TrimSpace(c.Mode) == "" {
		c.Mode = DefaultMode
	}
	return nil
}

// Template returns the prompt template for mode, falling back to the
// configured mode when mode is empty. Configured prompts override the
// built-in ones; unknown modes have an empty template.
func (c *Config) Template(mode string) string {
	if mode == "" {
		mode = c.Mode
	}
	mode = strings.ToLower(mode)
	if p, ok := c.Prompts[mode]; ok {
		return p
	}
	return DefaultPrompts[mode]
}

// SearchPaths returns the directories searched for glean.toml, in order.
func SearchPaths() []string {
	paths := []string{"/etc/glean"}
	if home, err := homedir.Dir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "glean"))
	}
	return paths
}
