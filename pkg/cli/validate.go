package cli

import (
	"context"

	"github.com/leakwatch/leakwatch/pkg/cli/config"
	"github.com/leakwatch/leakwatch/pkg/service/backend"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var dashboardCfg config.Dashboard
	var probe bool

	flags := dashboardCfg.Flags()
	flags = append(flags, &cli.BoolFlag{
		Name:        "probe",
		Usage:       "Also call the backend API and validate both responses",
		Destination: &probe,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the dashboard configuration and optionally probe the backend",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			settings, err := dashboardCfg.Configure(c)
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}
			logger.Info("Configuration validation passed",
				"title", settings.Title,
				"backend_url", settings.BackendURL,
				"instance_ttl", settings.InstanceTTL,
			)

			client, err := backend.New(settings.BackendURL, backend.WithTimeout(settings.BackendTimeout))
			if err != nil {
				return goerr.Wrap(err, "invalid backend URL")
			}

			if !probe {
				return nil
			}

			reports, err := client.ViewReports(ctx)
			if err != nil {
				return goerr.Wrap(err, "backend reports probe failed")
			}
			logger.Info("Reports endpoint OK", "rows", len(reports.TableData))

			logs, err := client.Logs(ctx)
			if err != nil {
				return goerr.Wrap(err, "backend logs probe failed")
			}
			logger.Info("Logs endpoint OK", "entries", len(logs.Logs))

			w := c.Root().Writer
			successColor.Fprintln(w, "Backend API OK")
			return nil
		},
	}
}
