package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds relay server configuration
type Server struct {
	Addr          string
	WaitTimeout   time.Duration
	MaxUploadSize int64
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Server address",
			Value:       "localhost:8080",
			Destination: &c.Addr,
			Sources:     cli.EnvVars("DUBBING_ADDR"),
		},
		&cli.DurationFlag{
			Name:        "wait-timeout",
			Usage:       "How long a relayed submission waits for the dubbing service",
			Value:       10 * time.Minute,
			Destination: &c.WaitTimeout,
			Sources:     cli.EnvVars("DUBBING_WAIT_TIMEOUT"),
		},
		&cli.Int64Flag{
			Name:        "max-upload-size",
			Usage:       "Largest accepted upload in bytes (0 for no limit)",
			Value:       1 << 30,
			Destination: &c.MaxUploadSize,
			Sources:     cli.EnvVars("DUBBING_MAX_UPLOAD_SIZE"),
		},
	}
}
