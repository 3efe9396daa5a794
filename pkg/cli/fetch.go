package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/m-mizutani/dubbing/pkg/infra/transport"
	"github.com/m-mizutani/dubbing/pkg/usecase"
	"github.com/m-mizutani/dubbing/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdFetch() *cli.Command {
	var (
		url     string
		timeout time.Duration
	)

	return &cli.Command{
		Name:  "fetch",
		Usage: "GET a URL and print the body when it answers 200",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "url",
				Usage:       "URL to fetch",
				Required:    true,
				Destination: &url,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "Give up after this long",
				Value:       30 * time.Second,
				Destination: &timeout,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			received := async.NewFuture[string]()
			uc := usecase.NewFetcher(transport.New(transport.WithTimeout(timeout)))
			uc.Get(ctx, url, func(body string) {
				received.Resolve(body, nil)
			})

			waitCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			// A non-200 answer never resolves; only the timeout ends the wait.
			body, err := received.Wait(waitCtx)
			if err != nil {
				return goerr.Wrap(err, "no successful response", goerr.V("url", url))
			}
			fmt.Fprint(os.Stdout, body)
			return nil
		},
	}
}
