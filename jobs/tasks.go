package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerIntegrity verifies journal balance and ledger history
	// consistency.
	TaskLedgerIntegrity = "ledger:integrity"
)

// LedgerIntegrityPayload scopes an integrity run. A zero Since checks the
// whole ledger.
type LedgerIntegrityPayload struct {
	Since time.Time `json:"since,omitempty"`
}

// NewLedgerIntegrityTask constructs an Asynq task for an integrity sweep.
func NewLedgerIntegrityTask(payload LedgerIntegrityPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerIntegrity, data), nil
}
