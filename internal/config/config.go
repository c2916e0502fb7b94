package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string   `mapstructure:"PORT"`
	Env             string   `mapstructure:"ENV"`
	ContentSource   string   `mapstructure:"CONTENT_SOURCE"`
	CaseContentPath string   `mapstructure:"CASE_CONTENT_PATH"`
	DatabaseURL     string   `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32    `mapstructure:"DB_MIN_CONNS"`
	EvidenceTimeout int      `mapstructure:"EVIDENCE_TIMEOUT_MS"`
	TelemetrySink   string   `mapstructure:"TELEMETRY_SINK_URL"`
	TelemetryBuffer int      `mapstructure:"TELEMETRY_BUFFER"`
	CORSOrigins     []string `mapstructure:"CORS_ORIGINS"`
	TLSEnabled      bool     `mapstructure:"TLS_ENABLED"`
	TLSCertFile     string   `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile      string   `mapstructure:"TLS_KEY_FILE"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("CONTENT_SOURCE", "seed")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("EVIDENCE_TIMEOUT_MS", 1500)
	v.SetDefault("TELEMETRY_BUFFER", 256)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("CONTENT_SOURCE")
	v.BindEnv("CASE_CONTENT_PATH")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("EVIDENCE_TIMEOUT_MS")
	v.BindEnv("TELEMETRY_SINK_URL")
	v.BindEnv("TELEMETRY_BUFFER")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("TLS_ENABLED")
	v.BindEnv("TLS_CERT_FILE")
	v.BindEnv("TLS_KEY_FILE")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GuidanceTimeout returns the evidence lookup deadline as a duration.
func (c *Config) GuidanceTimeout() time.Duration {
	return time.Duration(c.EvidenceTimeout) * time.Millisecond
}

// Validate checks that the configuration is safe to run. The postgres
// content source needs a connection string; the file source needs a path
// to the authored case content.
func (c *Config) Validate() error {
	switch c.ContentSource {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when CONTENT_SOURCE is \"postgres\"")
		}
	case "file":
		if c.CaseContentPath == "" {
			return fmt.Errorf("CASE_CONTENT_PATH is required when CONTENT_SOURCE is \"file\"")
		}
	case "seed":
	default:
		return fmt.Errorf("CONTENT_SOURCE must be \"postgres\", \"file\", or \"seed\", got %q", c.ContentSource)
	}

	if c.EvidenceTimeout <= 0 {
		return fmt.Errorf("EVIDENCE_TIMEOUT_MS must be positive, got %d", c.EvidenceTimeout)
	}
	if c.TelemetryBuffer <= 0 {
		return fmt.Errorf("TELEMETRY_BUFFER must be positive, got %d", c.TelemetryBuffer)
	}

	// TLS validation: when TLS is enabled, cert and key files must be specified.
	if c.TLSEnabled {
		if c.TLSCertFile == "" {
			return fmt.Errorf("TLS_CERT_FILE is required when TLS_ENABLED is true")
		}
		if c.TLSKeyFile == "" {
			return fmt.Errorf("TLS_KEY_FILE is required when TLS_ENABLED is true")
		}
	}

	return nil
}
