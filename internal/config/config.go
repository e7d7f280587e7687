// Package config persists the single (instance hostname, access
// token) pair enrollment produces, the way the original implementation
// persists it to heffalump_config.json (SPEC_FULL.md §6). Contents
// are TOML, matching the rest of this module's on-disk encoding,
// despite the filename's .json suffix inherited from the original.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// FileName is the config file's name within the sync directory.
const FileName = "heffalump_config.json"

// ErrMissing is returned by Load when no config file exists yet, i.e.
// enrollment has not run.
var ErrMissing = errors.New("config missing")

// Config is the persisted enrollment state.
type Config struct {
	InstanceHostname string `toml:"instance_hostname"`
	AccessToken      string `toml:"access_token"`
}

// Load reads the config file from dir.
func Load(dir string) (Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to dir, overwriting any existing file.
func Save(dir string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return f.Sync()
}
