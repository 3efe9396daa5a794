package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/m-mizutani/dubbing/pkg/cli/config"
	"github.com/m-mizutani/dubbing/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdStats() *cli.Command {
	var (
		serviceCfg config.Service
		date       string
	)

	return &cli.Command{
		Name:  "stats",
		Usage: "Show queue and storage statistics of the dubbing service",
		Flags: append(serviceCfg.Flags(),
			&cli.StringFlag{
				Name:        "date",
				Usage:       "Day to report, YYYY-MM-DD (default: today)",
				Destination: &date,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			service, err := serviceCfg.Configure()
			if err != nil {
				return err
			}

			stats, err := usecase.NewInfo(serviceCfg.Transport(), service).Stats(ctx, date)
			if err != nil {
				return err
			}

			label := color.New(color.Bold).SprintFunc()
			fmt.Fprintf(os.Stdout, "%s %s\n", label("date:"), stats.Date)
			fmt.Fprintf(os.Stdout, "%s %d\n", label("queue:"), stats.Queue.Items)
			fmt.Fprintf(os.Stdout, "%s %d (%s)\n", label("stored:"), stats.FilesStored, stats.FilesStoredSize)
			fmt.Fprintf(os.Stdout, "%s %s\n", label("free space:"), stats.FreeStorageSpace)

			keys := make([]string, 0, len(stats.Usage))
			for k := range stats.Usage {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(os.Stdout, "%s %s\n", label(k+":"), stats.Usage[k])
			}
			return nil
		},
	}
}

func cmdVoices() *cli.Command {
	var serviceCfg config.Service

	return &cli.Command{
		Name:  "voices",
		Usage: "List the voices offered by the dubbing service",
		Flags: serviceCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			service, err := serviceCfg.Configure()
			if err != nil {
				return err
			}

			body, err := usecase.NewInfo(serviceCfg.Transport(), service).Voices(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(os.Stdout, string(body))
			return err
		},
	}
}
