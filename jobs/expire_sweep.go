package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// ExpirationService persists the expired status for overdue quotations.
type ExpirationService interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// ExpireSweepJob handles TaskQuotationExpireSweep tasks.
type ExpireSweepJob struct {
	service ExpirationService
	logger  *slog.Logger
}

func NewExpireSweepJob(service ExpirationService, logger *slog.Logger) *ExpireSweepJob {
	return &ExpireSweepJob{service: service, logger: logger}
}

// Handle runs one sweep. The underlying update is idempotent, so retries and
// overlapping cron/one-shot runs are harmless.
func (j *ExpireSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload ExpireSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	expired, err := j.service.ExpireStale(ctx)
	if err != nil {
		j.logger.Error("expire sweep failed", slog.Any("error", err), slog.String("reason", payload.Reason))
		return err
	}
	if expired > 0 {
		j.logger.Info("expire sweep completed",
			slog.Int64("expired", expired),
			slog.String("reason", payload.Reason))
	}
	return nil
}
