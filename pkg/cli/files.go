package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/dubbing/pkg/cli/config"
	"github.com/m-mizutani/dubbing/pkg/domain/model"
	"github.com/m-mizutani/dubbing/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func uuidFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "uuid",
		Usage:       "Identifier returned by submit",
		Required:    true,
		Destination: dst,
	}
}

func cmdExists() *cli.Command {
	var (
		serviceCfg config.Service
		id         string
	)

	return &cli.Command{
		Name:  "exists",
		Usage: "Check whether the processed files of a submission are available",
		Flags: append(serviceCfg.Flags(), uuidFlag(&id)),
		Action: func(ctx context.Context, c *cli.Command) error {
			service, err := serviceCfg.Configure()
			if err != nil {
				return err
			}

			status, err := usecase.NewFiles(serviceCfg.Transport(), service).Exists(ctx, id)
			if err != nil {
				return err
			}

			if status.Exists {
				fmt.Fprintf(os.Stdout, "%s %s\n", color.GreenString("ready:"), id)
				return nil
			}
			fmt.Fprintf(os.Stdout, "%s %s %s\n", color.YellowString("not ready:"), id, status.Message)
			return nil
		},
	}
}

func cmdDownload() *cli.Command {
	var (
		serviceCfg config.Service
		id         string
		ext        string
		output     string
	)

	flags := append(serviceCfg.Flags(),
		uuidFlag(&id),
		&cli.StringFlag{
			Name:        "ext",
			Usage:       "Rendition to fetch: dub, bin (original) or a file extension such as srt",
			Value:       model.ExtDubbed,
			Destination: &ext,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Destination path (default: <uuid>.<ext> in the current directory)",
			Destination: &output,
		},
	)

	return &cli.Command{
		Name:  "download",
		Usage: "Download a processed file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			service, err := serviceCfg.Configure()
			if err != nil {
				return err
			}
			if output == "" {
				output = id + "." + ext
			}

			f, err := os.CreateTemp(filepath.Dir(output), ".dubbing-download-*")
			if err != nil {
				return goerr.Wrap(err, "failed to create temporary file", goerr.V("dir", filepath.Dir(output)))
			}
			defer func() {
				_ = os.Remove(f.Name())
			}()

			file, err := usecase.NewFiles(serviceCfg.Transport(), service).Download(ctx, id, ext, f)
			if closeErr := f.Close(); err == nil && closeErr != nil {
				err = goerr.Wrap(closeErr, "failed to close downloaded file")
			}
			if err != nil {
				return err
			}

			if err := os.Rename(f.Name(), output); err != nil {
				return goerr.Wrap(err, "failed to move downloaded file", goerr.V("output", output))
			}

			logger.Debug("Saved download", "output", output, "server_filename", file.Filename)
			fmt.Fprintf(os.Stdout, "%s %s (%d bytes)\n", color.GreenString("saved:"), output, file.Size)
			return nil
		},
	}
}

func cmdFeedback() *cli.Command {
	var (
		serviceCfg config.Service
		id         string
		comment    string
	)

	return &cli.Command{
		Name:  "feedback",
		Usage: "Send a comment about a processed file",
		Flags: append(serviceCfg.Flags(),
			uuidFlag(&id),
			&cli.StringFlag{
				Name:        "comment",
				Usage:       "Comment text",
				Required:    true,
				Destination: &comment,
			},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			service, err := serviceCfg.Configure()
			if err != nil {
				return err
			}

			return usecase.NewFiles(serviceCfg.Transport(), service).SendFeedback(ctx, &model.Feedback{
				UUID:   id,
				Fields: map[string]string{"comment": comment},
			})
		},
	}
}
