package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/cli/config"
	"github.com/sitelog/sitelog/pkg/usecase"
	"github.com/sitelog/sitelog/pkg/utils/logging"
	"github.com/sitelog/sitelog/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdReport() *cli.Command {
	var reportType string
	var startDate string
	var endDate string
	var output string
	var backendCfg config.Backend

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "type",
			Aliases:     []string{"t"},
			Usage:       "Report type ID offered by the backend (e.g. daily, weekly)",
			Required:    true,
			Destination: &reportType,
		},
		&cli.StringFlag{
			Name:        "start",
			Usage:       "Start date (YYYY-MM-DD), custom reports only",
			Destination: &startDate,
		},
		&cli.StringFlag{
			Name:        "end",
			Usage:       "End date (YYYY-MM-DD), custom reports only",
			Destination: &endDate,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file, or a directory to write the default file name into; stdout when empty",
			Destination: &output,
		},
	}
	flags = append(flags, backendCfg.Flags()...)

	return &cli.Command{
		Name:    "report",
		Aliases: []string{"r"},
		Usage:   "Generate a report and write its plain-text export",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			client, err := backendCfg.Configure("sitelog-cli")
			if err != nil {
				return err
			}

			uc := usecase.NewReportsUseCase(client)
			state := usecase.NewReports()

			uc.Load(ctx, state)
			if v := state.View(); v.Phase.Failed() {
				return goerr.New(v.LoadError, goerr.V("api", backendCfg.BaseURL()))
			}
			if err := uc.Select(state, reportType, startDate, endDate); err != nil {
				return err
			}

			status := color.New(color.FgCyan)
			_, _ = status.Fprintf(os.Stderr, "Generating %s report...\n", reportType)

			if err := uc.Generate(ctx, state); err != nil {
				_, _ = color.New(color.FgRed).Fprintln(os.Stderr, usecase.AlertMessage(err, usecase.MsgGenerateReportFailed))
				return err
			}
			report := uc.Current(state)
			text := usecase.FormatReportText(report)

			if output == "" {
				safe.Write(ctx, os.Stdout, []byte(text))
				return nil
			}

			path := output
			if info, err := os.Stat(output); err == nil && info.IsDir() {
				path = filepath.Join(output, usecase.ReportFileName(report, time.Now()))
			}
			if err := writeFile(path, text); err != nil {
				return err
			}

			logging.Default().Info("report written", "path", path, "log_count", report.LogCount)
			_, _ = color.New(color.FgGreen).Fprintf(os.Stderr, "Report written to %s (%d logs)\n", path, report.LogCount)
			return nil
		},
	}
}

func writeFile(path, content string) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return goerr.Wrap(err, "failed to create report file", goerr.V("path", path))
	}
	if _, err := io.WriteString(f, content); err != nil {
		_ = f.Close()
		return goerr.Wrap(err, "failed to write report file", goerr.V("path", path))
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close report file", goerr.V("path", path))
	}
	return nil
}
