package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/leakwatch/leakwatch/pkg/cli/config"
	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/leakwatch/leakwatch/pkg/service/backend"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

var (
	headingColor = color.New(color.FgHiWhite, color.Bold)
	mutedColor   = color.New(color.FgHiBlack)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgBlue, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
)

func levelColor(class model.LogLevelClass) *color.Color {
	switch class {
	case model.LogLevelClassError:
		return errorColor
	case model.LogLevelClassWarning:
		return warningColor
	case model.LogLevelClassInfo:
		return infoColor
	default:
		return headingColor
	}
}

func cmdReports() *cli.Command {
	var dashboardCfg config.Dashboard

	return &cli.Command{
		Name:  "reports",
		Usage: "Fetch the detection reports once and print them",
		Flags: dashboardCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			client, err := newBackendClient(c, &dashboardCfg)
			if err != nil {
				return err
			}

			resp, err := client.ViewReports(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to load reports")
			}
			printReports(c.Root().Writer, resp)
			return nil
		},
	}
}

func cmdLogs() *cli.Command {
	var dashboardCfg config.Dashboard

	return &cli.Command{
		Name:  "logs",
		Usage: "Fetch the backend logs once and print them",
		Flags: dashboardCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			client, err := newBackendClient(c, &dashboardCfg)
			if err != nil {
				return err
			}

			resp, err := client.Logs(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to fetch logs")
			}
			printLogs(c.Root().Writer, resp)
			return nil
		},
	}
}

func newBackendClient(c *cli.Command, dashboardCfg *config.Dashboard) (*backend.Client, error) {
	settings, err := dashboardCfg.Configure(c)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load dashboard configuration")
	}
	client, err := backend.New(settings.BackendURL, backend.WithTimeout(settings.BackendTimeout))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create backend client")
	}
	return client, nil
}

func printReports(w io.Writer, resp *model.ReportsResponse) {
	headingColor.Fprintln(w, "Detection Reports")
	fmt.Fprintf(w, "Total Datasets: %d\n", resp.Summary.TotalDatasets)
	fmt.Fprintf(w, "Total Rows:     %d\n", resp.Summary.TotalRows)
	fmt.Fprintln(w)

	headingColor.Fprintln(w, "Leak Distribution (by zone)")
	if graph := resp.GraphDataJSON(); graph != "" {
		fmt.Fprintln(w, graph)
	} else {
		mutedColor.Fprintln(w, "No graph data available")
	}
	fmt.Fprintln(w)

	if len(resp.TableData) == 0 {
		mutedColor.Fprintln(w, "No report data available")
		return
	}

	headingColor.Fprintln(w, "Reports Table")
	for _, row := range resp.TableData {
		fmt.Fprintf(w, "%s\t%s\t%d rows", row.FilenameText(), row.TimestampText(), row.Rows)
		if row.Totals != nil {
			fmt.Fprintf(w, "\tsupplied=%s consumed=%s", row.Totals.SuppliedText(), row.Totals.ConsumedText())
		} else {
			mutedColor.Fprint(w, "\t-")
		}
		fmt.Fprintln(w)
	}
}

func printLogs(w io.Writer, resp *model.LogsResponse) {
	headingColor.Fprintln(w, "System Logs")
	if len(resp.Logs) == 0 {
		mutedColor.Fprintln(w, "No logs available")
		return
	}

	for _, entry := range resp.Logs {
		if ts := entry.TimestampText(); ts != "" {
			mutedColor.Fprintf(w, "%s ", ts)
		}
		if level := entry.LevelText(); level != "" {
			levelColor(entry.LevelClass()).Fprintf(w, "[%s] ", strings.ToUpper(level))
		}
		fmt.Fprintln(w, entry.Title())
		if details := entry.DetailsText(); details != "" {
			for _, line := range strings.Split(details, "\n") {
				mutedColor.Fprintf(w, "    %s\n", line)
			}
		}
	}
	fmt.Fprintf(w, "Total Log Entries: %d\n", len(resp.Logs))
}
