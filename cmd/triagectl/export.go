package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

type exportOptions struct {
	rangePreset     string
	from            string
	to              string
	format          string
	includePersonal bool
	output          string
}

func newExportCommand(root *rootOptions) *cobra.Command {
	opts := exportOptions{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a feedback export to stdout or a file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			window, err := opts.window(time.Now())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, root.timeout)
			defer cancel()

			session, err := root.openStore(ctx, application.ServiceConfig{})
			if err != nil {
				return err
			}
			defer session.Close()

			result, err := session.service.Export(ctx, application.ExportCommand{
				Window:              window,
				Format:              opts.format,
				IncludePersonalInfo: opts.includePersonal,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output != "" && opts.output != "-" {
				f, err := os.Create(opts.output)
				if err != nil {
					return fmt.Errorf("create %s: %w", opts.output, err)
				}
				defer f.Close()
				out = f
			}
			if err := writeExport(out, result); err != nil {
				return err
			}
			root.logger.Info("export written",
				zap.Int("records", result.TotalRecords),
				zap.String("format", string(result.Format)),
				zap.Bool("includePersonalInfo", result.IncludePersonalInfo),
			)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.rangePreset, "range", domain.DefaultWindowPreset, "window preset (24h, 7d, 30d, 90d, 1y, all)")
	flags.StringVar(&opts.from, "from", "", "window start (RFC3339), overrides --range")
	flags.StringVar(&opts.to, "to", "", "window end (RFC3339, exclusive), overrides --range")
	flags.StringVar(&opts.format, "format", "json", "json or csv")
	flags.BoolVar(&opts.includePersonal, "include-personal-info", false, "include customer contact fields")
	flags.StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func (o exportOptions) window(now time.Time) (domain.TimeWindow, error) {
	if o.from == "" && o.to == "" {
		return domain.ParseWindow(o.rangePreset, now)
	}
	var from, to time.Time
	var err error
	if o.from != "" {
		if from, err = time.Parse(time.RFC3339, o.from); err != nil {
			return domain.TimeWindow{}, fmt.Errorf("--from: %w", err)
		}
	}
	if o.to != "" {
		if to, err = time.Parse(time.RFC3339, o.to); err != nil {
			return domain.TimeWindow{}, fmt.Errorf("--to: %w", err)
		}
	}
	return domain.NewTimeWindow(from, to)
}

func writeExport(w io.Writer, result *application.ExportResult) error {
	if result.Format == application.ExportCSV {
		return application.WriteCSV(w, result)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(application.NewExportEnvelope(result))
}
