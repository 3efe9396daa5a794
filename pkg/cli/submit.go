package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/dubbing/pkg/cli/config"
	"github.com/m-mizutani/dubbing/pkg/infra/console"
	"github.com/m-mizutani/dubbing/pkg/infra/form"
	"github.com/m-mizutani/dubbing/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdSubmit() *cli.Command {
	var (
		serviceCfg config.Service
		formCfg    config.Form
	)

	return &cli.Command{
		Name:    "submit",
		Aliases: []string{"s"},
		Usage:   "Upload a video for dubbing and print its download link",
		Flags:   append(serviceCfg.Flags(), formCfg.Flags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			service, err := serviceCfg.Configure()
			if err != nil {
				return err
			}
			fields, err := formCfg.Fields()
			if err != nil {
				return err
			}

			logger.Debug("Submitting form", "file", formCfg.File, "form", formCfg)

			uc := usecase.NewSubmission(
				serviceCfg.Transport(),
				service,
				form.FromFile(formCfg.File, fields),
				console.NewLink(os.Stdout),
				console.NewAlert(os.Stderr),
			)

			future, err := uc.Submit(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to submit file")
			}

			// The alert was already shown; the error only sets the exit status.
			if _, err := future.Wait(ctx); err != nil {
				return goerr.Wrap(err, "submission failed")
			}
			return nil
		},
	}
}
