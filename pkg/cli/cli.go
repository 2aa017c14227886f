package cli

import (
	"context"
	"io"
	"os"

	"github.com/leakwatch/leakwatch/pkg/cli/config"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	if err := newApp(version, os.Stdout).Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}

func newApp(version string, w io.Writer) *cli.Command {
	var loggerCfg config.Logger
	var closer func()

	return &cli.Command{
		Name:    "leakwatch",
		Usage:   "Leak detection dashboard with fault containment",
		Version: version,
		Writer:  w,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Debug("Starting leakwatch", "logger", loggerCfg, "version", version)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdReports(),
			cmdLogs(),
			cmdFaults(),
			cmdValidate(),
			cmdMigrate(),
		},
	}
}
