package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
)

func newSweepCommand(root *rootOptions) *cobra.Command {
	var batch, concurrency int
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Analyse feedback that still only has a placeholder analysis",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, root.timeout)
			defer cancel()

			session, err := root.openStore(ctx, application.ServiceConfig{SweepConcurrency: concurrency})
			if err != nil {
				return err
			}
			defer session.Close()

			n, err := session.service.AnalyzePending(ctx, batch)
			fmt.Fprintf(cmd.OutOrStdout(), "analysed %d pending feedback items\n", n)
			return err
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 50, "maximum number of items to analyse")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "parallel analyses")
	return cmd
}
