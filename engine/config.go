package engine

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/phoenixvis/avsengine/preset"
)

// Config holds host-tunable engine settings, loaded from engine.toml.
type Config struct {
	// MaxPoints caps the per-frame point loop a host drives.
	MaxPoints int `toml:"max-points"`

	// MaxFragmentLines caps each assembled script fragment.
	MaxFragmentLines int `toml:"max-fragment-lines"`

	// MaxRecordBytes rejects binary length fields above this.
	MaxRecordBytes int `toml:"max-record-bytes"`

	// Verbosity is passed to the logging backend by the host binary.
	Verbosity int `toml:"verbosity"`
}

// DefaultConfig returns the settings used when no engine.toml exists.
func DefaultConfig() Config {
	return Config{
		MaxPoints:        768,
		MaxFragmentLines: 400,
		MaxRecordBytes:   10000,
	}
}

// LoadConfig reads an engine.toml file. A missing file yields the defaults;
// present-but-unset fields are filled in.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse error in %s: %w", path, err)
	}
	if cfg.MaxPoints <= 0 {
		cfg.MaxPoints = 768
	}
	if cfg.MaxFragmentLines <= 0 {
		cfg.MaxFragmentLines = 400
	}
	if cfg.MaxRecordBytes <= 0 {
		cfg.MaxRecordBytes = 10000
	}
	return cfg, nil
}

func (c Config) decodeOptions() preset.Options {
	return preset.Options{
		MaxRecordBytes:   c.MaxRecordBytes,
		MaxFragmentLines: c.MaxFragmentLines,
		MinRunLength:     10,
	}
}
