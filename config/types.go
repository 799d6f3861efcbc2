package config

// Auth configures bearer token verification on the gateway. When Enabled is
// false the gateway trusts the X-Principal header, which is only suitable for
// local development.
type Auth struct {
	Enabled  bool   `toml:"Enabled"`
	Secret   string `toml:"Secret"`
	Issuer   string `toml:"Issuer"`
	Audience string `toml:"Audience"`
	// ClockSkewSeconds tolerates drift when checking exp and nbf.
	ClockSkewSeconds int `toml:"ClockSkewSeconds"`
}

// RateLimit bounds requests per client IP.
type RateLimit struct {
	RequestsPerMinute int `toml:"RequestsPerMinute"`
	Burst             int `toml:"Burst"`
}

// Telemetry configures the OTLP exporters.
type Telemetry struct {
	Endpoint string `toml:"Endpoint"`
	Insecure bool   `toml:"Insecure"`
	Headers  string `toml:"Headers"`
	Traces   bool   `toml:"Traces"`
	Metrics  bool   `toml:"Metrics"`
}

// Logging configures the structured logger.
type Logging struct {
	Level      string `toml:"Level"`
	File       string `toml:"File"`
	MaxSizeMB  int    `toml:"MaxSizeMB"`
	MaxBackups int    `toml:"MaxBackups"`
	MaxAgeDays int    `toml:"MaxAgeDays"`
}
