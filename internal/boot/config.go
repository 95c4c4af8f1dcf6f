package boot

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

const (
	AppName    = "inbox-api"
	AppVersion = "1.0.0"
)

type Config struct {
	Env      string `env:"ENV,default=dev"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`
	Server   struct {
		Port        string `env:"PORT,default=8080"`
		MetricsPort string `env:"METRICS_PORT,default=8081"`
	}
	Database struct {
		URL string `env:"DATABASE_URL,default=sqlite:///data/app.db"`
	}
	WebhookSecret string `env:"WEBHOOK_SECRET"`
}

func Load() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}

// IsReady reports whether the service can accept signed webhooks: without a
// secret every signature check would fail closed.
func (c *Config) IsReady() bool {
	return c.WebhookSecret != ""
}

// DatabasePath strips the sqlite:/// URL scheme down to a plain file path.
func (c *Config) DatabasePath() string {
	return strings.TrimPrefix(c.Database.URL, "sqlite:///")
}
