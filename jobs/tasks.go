package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskQuotationExpireSweep marks overdue sent/approved quotations expired.
	TaskQuotationExpireSweep = "quotes:expire_sweep"
)

// ExpireSweepPayload configures one sweep run. Reason is informational and
// shows up in logs and the asynq inspector.
type ExpireSweepPayload struct {
	Reason string `json:"reason"`
}

// NewExpireSweepTask constructs an Asynq task for the expiration sweep.
func NewExpireSweepTask(reason string) (*asynq.Task, error) {
	data, err := json.Marshal(ExpireSweepPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuotationExpireSweep, data), nil
}
