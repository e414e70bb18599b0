package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAlertScan evaluates stock levels and recipe price drift.
	TaskAlertScan = "alerts:scan"
	// TaskInventoryRevaluation values stock and exports the report.
	TaskInventoryRevaluation = "inventory:revaluation"
)

// AlertScanPayload carries the trigger metadata for an alert scan.
type AlertScanPayload struct {
	Reason string `json:"reason"`
}

// InventoryRevaluationPayload carries scheduling metadata.
type InventoryRevaluationPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewAlertScanTask constructs an alert scan task.
func NewAlertScanTask(reason string) (*asynq.Task, error) {
	body, err := json.Marshal(AlertScanPayload{Reason: reason})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAlertScan, body, asynq.Queue(QueueDefault)), nil
}

// NewInventoryRevaluationTask constructs a revaluation task. A zero time
// values stock as of the moment the task runs.
func NewInventoryRevaluationTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(InventoryRevaluationPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskInventoryRevaluation, body, asynq.Queue(QueueDefault)), nil
}
