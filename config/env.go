package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const envPrefix = "CONTEST_"

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from CONTEST_* variables.
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(v), true
	}
	strs := map[string]*string{
		"LISTEN_ADDRESS": &c.ListenAddress,
		"DATA_DIR":       &c.DataDir,
		"NETWORK":        &c.NetworkName,
		"ENV":            &c.Environment,
		"GENESIS_FILE":   &c.GenesisFile,
		"LOG_LEVEL":      &c.Logging.Level,
		"LOG_FILE":       &c.Logging.File,
		"AUTH_SECRET":    &c.Auth.Secret,
		"AUTH_ISSUER":    &c.Auth.Issuer,
		"AUTH_AUDIENCE":  &c.Auth.Audience,
		"OTLP_ENDPOINT":  &c.Telemetry.Endpoint,
		"OTLP_HEADERS":   &c.Telemetry.Headers,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}
	bools := map[string]*bool{
		"AUTH_ENABLED":  &c.Auth.Enabled,
		"OTLP_INSECURE": &c.Telemetry.Insecure,
		"OTEL_TRACES":   &c.Telemetry.Traces,
		"OTEL_METRICS":  &c.Telemetry.Metrics,
	}
	for name, dst := range bools {
		if v, ok := get(name); ok {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = parsed
		}
	}
	ints := map[string]*int{
		"RATE_LIMIT_RPM":   &c.RateLimit.RequestsPerMinute,
		"RATE_LIMIT_BURST": &c.RateLimit.Burst,
	}
	for name, dst := range ints {
		if v, ok := get(name); ok {
			parsed, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = parsed
		}
	}
	return nil
}
