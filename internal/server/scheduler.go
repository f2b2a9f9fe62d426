package server

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger adapts zap to the cron.Logger interface.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// newScheduler registers job on a standard five-field schedule. Overlapping
// runs are skipped and panics are recovered.
func newScheduler(spec string, job cron.Job, logger *zap.Logger) (*cron.Cron, error) {
	clog := cronLogger{log: logger.Named("cron").Sugar()}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
	)
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("SWEEP_SCHEDULE %q: %w", spec, err)
	}
	return c, nil
}
