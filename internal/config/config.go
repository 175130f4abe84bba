// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
)

// Config contains server configuration values such as the listen address, timeouts and
// the Slack API base URL. Slack credentials are read separately at call time; see
// LoadCredentials.
type Config struct {
	Host          string        `env:"HOST,default=0.0.0.0"`
	Port          int           `env:"PORT,default=3000"`
	LogLevel      string        `env:"LOG_LEVEL,default=info"`
	LogFormat     string        `env:"LOG_FORMAT,default=dev"`
	TLSCertFile   string        `env:"TLS_CERT_FILE"`
	TLSKeyFile    string        `env:"TLS_KEY_FILE"`
	SlackAPIURL   string        `env:"SLACK_API_URL,default=https://slack.com/api"`
	SlackTimeout  time.Duration `env:"SLACK_HTTP_TIMEOUT,default=30s"`
	CORSOrigins   string        `env:"CORS_ALLOWED_ORIGINS,default=*"`
	QueueSize     int           `env:"SESSION_QUEUE_SIZE,default=64"`
	KeepAlive     time.Duration `env:"KEEP_ALIVE_TIMEOUT,default=65s"`
	HeaderTimeout time.Duration `env:"HEADERS_TIMEOUT,default=66s"`
	ShutdownAfter time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

// FromEnv decodes a Config from the process environment, applying defaults for every
// unset variable.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}
	return cfg, nil
}

// Addr returns the host:port pair the HTTP server listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TLSEnabled reports whether both a certificate and a key were configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be provided together")
	}
	if strings.TrimSpace(c.SlackAPIURL) == "" {
		return fmt.Errorf("SLACK_API_URL must not be empty")
	}
	if c.SlackTimeout <= 0 {
		return fmt.Errorf("SLACK_HTTP_TIMEOUT must be > 0")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("SESSION_QUEUE_SIZE must be > 0")
	}
	if c.KeepAlive <= 0 || c.HeaderTimeout <= 0 {
		return fmt.Errorf("KEEP_ALIVE_TIMEOUT and HEADERS_TIMEOUT must be > 0")
	}
	if c.ShutdownAfter <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	return nil
}
