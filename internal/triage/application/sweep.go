package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

// AnalyzePending analyses up to limit items that still carry the submission
// placeholder. Items deleted while the sweep runs are skipped. It returns the
// number of items analysed and the combined per-item failures.
func (s *triageService) AnalyzePending(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		return 0, domain.NewValidationError("limit", "must be positive")
	}
	ids, err := s.repo.ListPending(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list pending: %w", err)
	}

	var (
		analysed atomic.Int64
		mu       sync.Mutex
		failures error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if _, err := s.Analyze(gctx, id, false); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil
				}
				mu.Lock()
				failures = multierr.Append(failures, fmt.Errorf("analyze %s: %w", id, err))
				mu.Unlock()
				return nil
			}
			analysed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(analysed.Load()), err
	}
	return int(analysed.Load()), failures
}

// SweepJob runs AnalyzePending on a schedule. It satisfies cron.Job.
type SweepJob struct {
	Service   TriageService
	BatchSize int
	Timeout   time.Duration
	Logger    *zap.Logger
}

func (j *SweepJob) Run() {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger := j.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	started := time.Now()
	n, err := j.Service.AnalyzePending(ctx, j.BatchSize)
	fields := []zap.Field{zap.Int("analysed", n), zap.Duration("elapsed", time.Since(started))}
	if err != nil {
		logger.Warn("pending analysis sweep finished with errors", append(fields, zap.Error(err))...)
		return
	}
	if n > 0 {
		logger.Info("pending analysis sweep finished", fields...)
	}
}
