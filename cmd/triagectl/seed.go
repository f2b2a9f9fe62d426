package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
)

type seedOptions struct {
	count      int
	drop       bool
	analyze    bool
	days       int
	randomSeed int64
}

func newSeedCommand(root *rootOptions) *cobra.Command {
	opts := seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo feedback into mongo and analyse it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.count <= 0 {
				return fmt.Errorf("--count must be at least 1")
			}
			if opts.days <= 0 {
				return fmt.Errorf("--days must be at least 1")
			}
			return runSeed(cmd.Context(), root, opts, cmd)
		},
	}
	flags := cmd.Flags()
	flags.IntVar(&opts.count, "count", 100, "number of feedback items to create")
	flags.BoolVar(&opts.drop, "drop", false, "drop the feedback collections first")
	flags.BoolVar(&opts.analyze, "analyze", true, "analyse every seeded item")
	flags.IntVar(&opts.days, "days", 30, "spread creation times over this many past days")
	flags.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "random seed (for reproducible data)")
	return cmd
}

func runSeed(ctx context.Context, root *rootOptions, opts seedOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, root.timeout)
	defer cancel()

	rng := rand.New(rand.NewSource(opts.randomSeed))
	end := time.Now().UTC()
	stamps := seedTimestamps(rng, opts.count, end, opts.days)
	var current time.Time

	session, err := root.openStore(ctx, application.ServiceConfig{
		Now: func() time.Time { return current },
	})
	if err != nil {
		return err
	}
	defer session.Close()

	if opts.drop {
		if err := session.repo.Drop(ctx); err != nil {
			return fmt.Errorf("drop collections: %w", err)
		}
		root.logger.Info("dropped feedback collections")
	}
	if err := session.repo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	analysed := 0
	for i, submission := range generateFeedback(rng, opts.count) {
		current = stamps[i]
		created, err := session.service.Submit(ctx, submission)
		if err != nil {
			return fmt.Errorf("submit #%d: %w", i, err)
		}
		if !opts.analyze {
			continue
		}
		if _, err := session.service.Analyze(ctx, created.Feedback.ID, false); err != nil {
			return fmt.Errorf("analyze %s: %w", created.Feedback.ID, err)
		}
		analysed++
	}

	root.logger.Info("seed complete",
		zap.Int("feedback", opts.count),
		zap.Int("analysed", analysed),
		zap.Int64("seed", opts.randomSeed),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d feedback items (%d analysed)\n", opts.count, analysed)
	return nil
}
