package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/leakwatch/leakwatch/pkg/app"
	"github.com/leakwatch/leakwatch/pkg/cli/config"
	httpctrl "github.com/leakwatch/leakwatch/pkg/controller/http"
	"github.com/leakwatch/leakwatch/pkg/service/backend"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var secureCookie bool
	var dashboardCfg config.Dashboard
	var repoCfg config.Repository
	var sentryCfg config.Sentry
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("LEAKWATCH_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "secure-cookie",
			Usage:       "Mark the session cookie Secure (serve behind HTTPS)",
			Sources:     cli.EnvVars("LEAKWATCH_SECURE_COOKIE"),
			Destination: &secureCookie,
		},
	}

	// Add shared config flags
	flags = append(flags, dashboardCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the dashboard HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			settings, err := dashboardCfg.Configure(c)
			if err != nil {
				return goerr.Wrap(err, "failed to load dashboard configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			dispatcher, flush, err := configureDispatcher(repo, &sentryCfg, &slackCfg)
			if err != nil {
				return err
			}
			defer flush()
			dispatcher.Start(ctx)
			defer dispatcher.Stop()

			client, err := backend.New(settings.BackendURL, backend.WithTimeout(settings.BackendTimeout))
			if err != nil {
				return goerr.Wrap(err, "failed to create backend client")
			}

			// The global fault listener starts inside Bootstrap, before the router exists
			application, err := app.Bootstrap(ctx, client,
				app.WithSink(dispatcher),
				app.WithTitle(settings.Title),
				app.WithInstanceTTL(settings.InstanceTTL),
				app.WithAutoRefresh(settings.AutoRefreshSeconds),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to bootstrap application")
			}

			httpHandler, err := httpctrl.New(application, httpctrl.WithSecureCookie(secureCookie))
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"backend", client.BaseURL(),
					"channels", dispatcher.Channels(),
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logging.Default().Info("Context cancelled, shutting down")
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)
			}

			// Create shutdown context with timeout
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			// Attempt graceful shutdown
			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logging.Default().Info("Server shutdown completed")
			return nil
		},
	}
}
