package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSummaryWarmup pre-computes bucket summaries into the cache.
	TaskSummaryWarmup = "ledger:summary_warmup"
	// TaskLedgerIntegrity re-checks the split invariant over stored entries.
	TaskLedgerIntegrity = "ledger:integrity_scan"
)

// SummaryWarmupPayload scopes a warmup run.
type SummaryWarmupPayload struct {
	// Year limits the warmup to entries dated within the given year.
	// Zero means all time.
	Year int `json:"year,omitempty"`
}

// NewSummaryWarmupTask constructs an Asynq task.
func NewSummaryWarmupTask(payload SummaryWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSummaryWarmup, data), nil
}

// LedgerIntegrityPayload scopes an integrity scan.
type LedgerIntegrityPayload struct {
	// Limit caps the number of entries checked per run. Zero means all.
	Limit int `json:"limit,omitempty"`
}

// NewLedgerIntegrityTask constructs an Asynq task.
func NewLedgerIntegrityTask(payload LedgerIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}
