package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/dubbing/pkg/cli/config"
	controller "github.com/m-mizutani/dubbing/pkg/controller/http"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg  config.Server
		serviceCfg config.Service
	)

	flags := append(serverCfg.Flags(), serviceCfg.Flags()...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP relay that accepts dubbing forms from browsers",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			service, err := serviceCfg.Configure()
			if err != nil {
				return err
			}

			logger.Info("Starting dubbing relay",
				slog.String("addr", serverCfg.Addr),
				slog.String("base_url", service.BaseURL),
			)

			server, err := controller.NewServer(
				ctx,
				serviceCfg.Transport(),
				service,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWaitTimeout(serverCfg.WaitTimeout),
				controller.WithMaxUploadSize(serverCfg.MaxUploadSize),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
