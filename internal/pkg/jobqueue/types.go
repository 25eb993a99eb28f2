package jobqueue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType identifies the processor for a queued job.
type JobType string

const (
	// JobTypeStatRollup applies one delta to the daily vendor rollups.
	JobTypeStatRollup JobType = "stat_rollup"
	// JobTypeCounterFlush drains the pending redis view counters to MySQL.
	JobTypeCounterFlush JobType = "counter_flush"
)

const (
	// QueueKey is the redis list the workers consume. Admin tooling reads
	// its length as the backlog gauge.
	QueueKey          = "billing_jobs"
	DefaultMaxRetries = 3
)

// Job is one unit of best-effort background work. Jobs carry no money:
// everything on this queue may be lost or repeated without breaking a
// ledger invariant.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Retries   int             `json:"retries"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewJob builds a job with a marshaled payload.
func NewJob(jobType JobType, payload interface{}) (*Job, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   raw,
		CreatedAt: time.Now(),
	}, nil
}

// ProcessorFunc handles one job payload.
type ProcessorFunc func(payload []byte) error
