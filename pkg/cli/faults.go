package cli

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/fatih/color"
	"github.com/leakwatch/leakwatch/pkg/cli/config"
	"github.com/leakwatch/leakwatch/pkg/domain/model"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdFaults() *cli.Command {
	var repoCfg config.Repository
	var limit int
	var id string
	var kind string

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of records to list",
			Value:       20,
			Destination: &limit,
		},
		&cli.StringFlag{
			Name:        "id",
			Usage:       "Show a single record with all of its payload",
			Destination: &id,
		},
		&cli.StringFlag{
			Name:        "kind",
			Usage:       "Only list records of this fault kind (render, uncaught, unhandled_rejection, api)",
			Destination: &kind,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "faults",
		Aliases: []string{"f"},
		Usage:   "List the fault journal, newest first",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if repoCfg.Backend() == "memory" {
				logging.Default().Warn("in-memory journal is empty in a new process; use --repository-backend=firestore")
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

			w := c.Root().Writer
			if id != "" {
				record, err := repo.FaultRecord().Get(ctx, model.FaultRecordID(id))
				if err != nil {
					return goerr.Wrap(err, "failed to get fault record", goerr.V("id", id))
				}
				printFaultRecord(w, record, true)
				return nil
			}

			var records []*model.FaultRecord
			if kind != "" {
				records, err = repo.FaultRecord().ListByKind(ctx, kind, limit)
			} else {
				records, err = repo.FaultRecord().List(ctx, limit)
			}
			if err != nil {
				return goerr.Wrap(err, "failed to list fault records")
			}
			if len(records) == 0 {
				mutedColor.Fprintln(w, "No faults recorded")
				return nil
			}
			for _, record := range records {
				printFaultRecord(w, record, false)
			}
			return nil
		},
	}
}

func severityColor(s model.Severity) *color.Color {
	switch s {
	case model.SeverityFatal, model.SeverityError:
		return errorColor
	case model.SeverityWarning:
		return warningColor
	case model.SeverityInfo:
		return infoColor
	default:
		return mutedColor
	}
}

func printFaultRecord(w io.Writer, record *model.FaultRecord, full bool) {
	mutedColor.Fprintf(w, "%s ", record.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	severityColor(record.Severity).Fprintf(w, "[%s] ", record.Severity)
	fmt.Fprintf(w, "%s", record.Message)
	if record.Kind != "" {
		mutedColor.Fprintf(w, " (%s)", record.Kind)
	}
	fmt.Fprintf(w, "  %s\n", record.ID)

	if !full {
		return
	}
	for _, k := range slices.Sorted(maps.Keys(record.Payload)) {
		fmt.Fprintf(w, "    %s: %s\n", k, record.Payload[k])
	}
}
