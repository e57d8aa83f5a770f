package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"randevu.backend/pkg/logger"
)

// cleaner is the maintenance operation the job drives
type cleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// VerificationCleanupJob periodically purges expired, consumed
// verification records. Active records are never touched.
type VerificationCleanupJob struct {
	usecase  cleaner
	interval time.Duration
	stop     chan struct{}
}

// NewVerificationCleanupJob creates the cleanup job
func NewVerificationCleanupJob(usecase cleaner, interval time.Duration) *VerificationCleanupJob {
	return &VerificationCleanupJob{
		usecase:  usecase,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is called
func (j *VerificationCleanupJob) Start(ctx context.Context) {
	logger.Info(ctx, "verification cleanup job started", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "verification cleanup job stopped")
			return
		case <-j.stop:
			logger.Info(ctx, "verification cleanup job stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

// Stop terminates the loop
func (j *VerificationCleanupJob) Stop() {
	close(j.stop)
}

func (j *VerificationCleanupJob) sweep(ctx context.Context) {
	removed, err := j.usecase.CleanupExpired(ctx)
	if err != nil {
		logger.Error(ctx, "verification cleanup sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		logger.Info(ctx, "verification cleanup sweep done", zap.Int64("removed", removed))
	}
}
