package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup pre-populates report caches for the common windows.
	TaskReportsWarmup = "reports:warmup"
)

// ReportsWarmupPayload selects which quick-filter windows to precompute.
type ReportsWarmupPayload struct {
	Presets []string `json:"presets"`
}

// NewReportsWarmupTask constructs an Asynq task.
func NewReportsWarmupTask(presets ...string) (*asynq.Task, error) {
	data, err := json.Marshal(ReportsWarmupPayload{Presets: presets})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}
