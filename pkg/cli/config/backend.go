package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/service/backend"
	"github.com/urfave/cli/v3"
)

// Backend holds the connection settings for the construction log REST API.
type Backend struct {
	baseURL string
	timeout time.Duration
}

func (x *Backend) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "api-base-url",
			Usage:       "Base URL of the construction log API",
			Category:    "Backend",
			Value:       "http://localhost:3001",
			Destination: &x.baseURL,
			Sources:     cli.EnvVars("SITELOG_API_BASE_URL"),
		},
		&cli.DurationFlag{
			Name:        "api-timeout",
			Usage:       "Timeout for API requests (0 disables)",
			Category:    "Backend",
			Value:       backend.DefaultTimeout,
			Destination: &x.timeout,
			Sources:     cli.EnvVars("SITELOG_API_TIMEOUT"),
		},
	}
}

func (x Backend) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_url", x.baseURL),
		slog.Duration("timeout", x.timeout),
	)
}

func (x *Backend) BaseURL() string {
	return x.baseURL
}

// Configure creates the API client.
func (x *Backend) Configure(userAgent string) (*backend.Client, error) {
	if x.timeout < 0 {
		return nil, goerr.Wrap(ErrInvalidConfig, "api timeout must not be negative", goerr.V(FlagKey, "api-timeout"))
	}

	opts := []backend.Option{backend.WithTimeout(x.timeout)}
	if userAgent != "" {
		opts = append(opts, backend.WithUserAgent(userAgent))
	}

	client, err := backend.New(x.baseURL, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create API client", goerr.V(FlagKey, "api-base-url"))
	}
	return client, nil
}
