package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/canopy-tools/canopy/pkg/pipeline"
)

// Config holds user preferences loaded from ~/.config/canopy/config.toml.
// Command-line flags always take precedence over config values.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Serve  ServeConfig  `toml:"serve"`
}

// LayoutConfig carries default layout options.
type LayoutConfig struct {
	LevelSpacing   float64 `toml:"level_spacing"`
	SiblingSpacing float64 `toml:"sibling_spacing"`
	FontSize       float64 `toml:"font_size"`
	Wrap           bool    `toml:"wrap"`
	WrapWidth      float64 `toml:"wrap_width"`
}

// CacheConfig selects and configures the layout cache backend.
type CacheConfig struct {
	Disabled      bool   `toml:"disabled"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServeConfig carries defaults for the serve command.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// LoadConfig reads the user config file. A missing file yields the zero
// config and no error; a malformed file yields the zero config and the
// parse error so callers can warn without aborting.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	path, err := configPath()
	if err != nil {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return &Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// baseOptions builds pipeline options seeded from the config file.
// Zero config values leave the pipeline defaults in place.
func (c *CLI) baseOptions() pipeline.Options {
	opts := pipeline.Options{
		LevelSpacing:   c.Config.Layout.LevelSpacing,
		SiblingSpacing: c.Config.Layout.SiblingSpacing,
		FontSize:       c.Config.Layout.FontSize,
		WrapEnabled:    c.Config.Layout.Wrap,
		WrapWidth:      c.Config.Layout.WrapWidth,
	}
	opts.SetDefaults()
	return opts
}
