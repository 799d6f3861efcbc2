package config

import (
	"fmt"
	"strings"
)

// MinSecretLength is the shortest accepted HMAC secret.
const MinSecretLength = 32

// Validate checks the fields the daemon cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ListenAddress) == "" {
		return fmt.Errorf("config: ListenAddress must be set")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("config: DataDir must be set")
	}
	if c.Auth.Enabled {
		if len(c.Auth.Secret) < MinSecretLength {
			return fmt.Errorf("auth: secret must be at least %d bytes", MinSecretLength)
		}
		if c.Auth.ClockSkewSeconds < 0 {
			return fmt.Errorf("auth: clock skew must not be negative")
		}
	} else if isProduction(c.Environment) {
		return fmt.Errorf("auth: must be enabled when Environment is %q", c.Environment)
	}
	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("ratelimit: values must not be negative")
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.Burst == 0 {
		return fmt.Errorf("ratelimit: burst must be positive when a rate is set")
	}
	if (c.Telemetry.Traces || c.Telemetry.Metrics) && strings.TrimSpace(c.Telemetry.Endpoint) == "" {
		return fmt.Errorf("telemetry: endpoint required when exporters are enabled")
	}
	return nil
}

func isProduction(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return true
	}
	return false
}
