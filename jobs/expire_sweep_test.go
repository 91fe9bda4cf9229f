package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type stubExpirationService struct {
	expired int64
	err     error
	calls   int
}

func (s *stubExpirationService) ExpireStale(ctx context.Context) (int64, error) {
	s.calls++
	return s.expired, s.err
}

func TestExpireSweepHandle(t *testing.T) {
	svc := &stubExpirationService{expired: 3}
	job := NewExpireSweepJob(svc, slog.New(slog.DiscardHandler))

	task, err := NewExpireSweepTask("cron")
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 1, svc.calls)
}

func TestExpireSweepPropagatesError(t *testing.T) {
	svc := &stubExpirationService{err: errors.New("db down")}
	job := NewExpireSweepJob(svc, slog.New(slog.DiscardHandler))

	task, err := NewExpireSweepTask("cron")
	require.NoError(t, err)

	require.Error(t, job.Handle(context.Background(), task))
}

func TestExpireSweepSkipsMalformedPayload(t *testing.T) {
	svc := &stubExpirationService{}
	job := NewExpireSweepJob(svc, slog.New(slog.DiscardHandler))

	task := asynq.NewTask(TaskQuotationExpireSweep, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Zero(t, svc.calls)
}
