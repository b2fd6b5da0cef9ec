// Package config holds the engine's startup configuration, loadable from a
// TOML file with sensible defaults for anything left unset.
package config

import (
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"heapstore/pkg/memory"
)

// Config is the engine configuration.
type Config struct {
	// DataDir is where table files live.
	DataDir string `toml:"data_dir"`

	// PoolPages is the buffer pool capacity in pages.
	PoolPages int `toml:"pool_pages"`

	// SchemaPath optionally names a TOML schema file whose tables are
	// created at startup.
	SchemaPath string `toml:"schema_path"`

	// LogLevel is the logging verbosity: debug, info, warn, or error.
	LogLevel string `toml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `toml:"log_format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DataDir:   "data",
		PoolPages: memory.DefaultPoolPages,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads a TOML configuration file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	tree, err := toml.LoadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := tree.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse config file %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("data_dir cannot be empty")
	}
	if c.PoolPages <= 0 {
		return errors.Errorf("pool_pages must be positive, got %d", c.PoolPages)
	}
	return nil
}
