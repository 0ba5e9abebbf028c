package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type codeReaperRepository interface {
	DeleteDeadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CodeReaper prunes used and expired verification codes on a schedule.
// Recent dead codes are kept as an audit trail; only rows older than the
// retention window are removed, so the auth flow never observes the
// difference.
type CodeReaper struct {
	codes     codeReaperRepository
	interval  time.Duration
	retention time.Duration
	logger    *zap.Logger
}

// NewCodeReaper constructs a CodeReaper.
func NewCodeReaper(codes codeReaperRepository, interval, retention time.Duration, logger *zap.Logger) *CodeReaper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CodeReaper{codes: codes, interval: interval, retention: retention, logger: logger}
}

// Run blocks, reaping on every tick until the context is cancelled.
// Callers start it in a goroutine.
func (r *CodeReaper) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

func (r *CodeReaper) reap(ctx context.Context) {
	cutoff := time.Now().Add(-r.retention)
	removed, err := r.codes.DeleteDeadBefore(ctx, cutoff)
	if err != nil {
		r.logger.Warn("sms code reap failed", zap.Error(err))
		return
	}
	if removed > 0 {
		r.logger.Info("sms codes reaped", zap.Int64("removed", removed))
	}
}
