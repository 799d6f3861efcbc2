package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"artcontest/core/genesis"
)

type Config struct {
	ListenAddress string              `toml:"ListenAddress"`
	DataDir       string              `toml:"DataDir"`
	NetworkName   string              `toml:"NetworkName"`
	Environment   string              `toml:"Environment"`
	GenesisFile   string              `toml:"GenesisFile"`
	Logging       Logging             `toml:"Logging"`
	Auth          Auth                `toml:"Auth"`
	RateLimit     RateLimit           `toml:"RateLimit"`
	Telemetry     Telemetry           `toml:"Telemetry"`
	Genesis       genesis.GenesisSpec `toml:"Genesis"`
}

// Load loads the configuration from the given path, writing a default file
// first when none exists.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown field %q", path, undecoded[0].String())
	}

	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "contest-local"
	}
	return cfg, nil
}

// Default returns the configuration written on first start.
func Default() *Config {
	return &Config{
		ListenAddress: ":8080",
		DataDir:       "./contest-data",
		NetworkName:   "contest-local",
		Environment:   "dev",
		Logging: Logging{
			Level: "info",
		},
		RateLimit: RateLimit{
			RequestsPerMinute: 120,
			Burst:             20,
		},
		Telemetry: Telemetry{
			Endpoint: "localhost:4318",
			Insecure: true,
		},
	}
}

func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// GenesisSpec returns the genesis to apply on first start: the JSON file when
// GenesisFile is set, otherwise the inline Genesis table.
func (c *Config) GenesisSpec() (*genesis.GenesisSpec, error) {
	if path := strings.TrimSpace(c.GenesisFile); path != "" {
		return genesis.LoadGenesisSpec(path)
	}
	spec := c.Genesis
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("genesis: %w", err)
	}
	return &spec, nil
}
