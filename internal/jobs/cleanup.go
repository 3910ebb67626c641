package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"intervuai/backend/internal/metrics"
)

type OTPPurger interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type PaymentExpirer interface {
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupConfig controls the housekeeping schedule.
type CleanupConfig struct {
	Schedule   string        // cron spec, e.g. "@hourly"
	PendingTTL time.Duration // pending orders older than this are failed
}

// CleanupJob purges expired OTP challenges and abandoned payment orders.
type CleanupJob struct {
	otps     OTPPurger
	payments PaymentExpirer
	config   CleanupConfig
	logger   *zap.Logger
	cron     *cron.Cron
	now      func() time.Time
}

func NewCleanupJob(otps OTPPurger, payments PaymentExpirer, config CleanupConfig, logger *zap.Logger) *CleanupJob {
	if config.Schedule == "" {
		config.Schedule = "@hourly"
	}
	if config.PendingTTL <= 0 {
		config.PendingTTL = 72 * time.Hour
	}
	return &CleanupJob{
		otps:     otps,
		payments: payments,
		config:   config,
		logger:   logger,
		cron:     cron.New(),
		now:      time.Now,
	}
}

func (j *CleanupJob) Start() error {
	_, err := j.cron.AddFunc(j.config.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		j.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule cleanup job: %w", err)
	}
	j.cron.Start()
	j.logger.Info("cleanup job started", zap.String("schedule", j.config.Schedule))
	return nil
}

// Stop waits for a running pass to finish.
func (j *CleanupJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("cleanup job stopped")
}

// RunOnce performs both passes; a failure in one does not skip the other.
func (j *CleanupJob) RunOnce(ctx context.Context) {
	now := j.now().UTC()

	if n, err := j.otps.DeleteExpired(ctx, now); err != nil {
		j.logger.Error("otp purge failed", zap.Error(err))
		metrics.JobRuns.WithLabelValues("otp_purge", "error").Inc()
	} else {
		j.logger.Debug("otp purge done", zap.Int64("deleted", n))
		metrics.JobRuns.WithLabelValues("otp_purge", "ok").Inc()
	}

	if n, err := j.payments.ExpirePending(ctx, now.Add(-j.config.PendingTTL)); err != nil {
		j.logger.Error("pending payment expiry failed", zap.Error(err))
		metrics.JobRuns.WithLabelValues("payment_expiry", "error").Inc()
	} else {
		if n > 0 {
			j.logger.Info("expired pending payments", zap.Int64("count", n))
		}
		metrics.JobRuns.WithLabelValues("payment_expiry", "ok").Inc()
	}
}
