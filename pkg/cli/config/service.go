package config

import (
	"net/url"
	"time"

	"github.com/m-mizutani/dubbing/pkg/domain/interfaces"
	"github.com/m-mizutani/dubbing/pkg/domain/model"
	"github.com/m-mizutani/dubbing/pkg/infra/transport"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Service holds the location of the dubbing service
type Service struct {
	BaseURL string
	Timeout time.Duration
}

// Flags returns CLI flags for the dubbing service
func (c *Service) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Base URL of the dubbing service",
			Value:       model.DefaultBaseURL,
			Destination: &c.BaseURL,
			Sources:     cli.EnvVars("DUBBING_BASE_URL"),
		},
		&cli.DurationFlag{
			Name:        "http-timeout",
			Usage:       "Timeout of a single HTTP exchange (0 disables it)",
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("DUBBING_HTTP_TIMEOUT"),
		},
	}
}

// Configure validates the base URL and returns the service config
func (c *Service) Configure() (model.ServiceConfig, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return model.ServiceConfig{}, goerr.Wrap(err, "invalid base URL", goerr.V("base_url", c.BaseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return model.ServiceConfig{}, goerr.New("base URL must be http or https", goerr.V("base_url", c.BaseURL))
	}
	return model.ServiceConfig{BaseURL: c.BaseURL}, nil
}

// Transport builds the HTTP transport with the configured timeout
func (c *Service) Transport() interfaces.Transport {
	return transport.New(transport.WithTimeout(c.Timeout))
}
