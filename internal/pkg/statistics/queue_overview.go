package statistics

import (
	"github.com/craftmarkt/craftmarkt/app/repository"
	"github.com/craftmarkt/craftmarkt/internal/pkg/jobqueue"
)

// QueueOverview summarizes the async billing infrastructure for the admin
// dashboard: how deep the job backlog is, how many dedupe windows are open
// and whether pending view counters are waiting for a flush.
type QueueOverview struct {
	JobBacklog      int64 `json:"job_backlog"`
	DedupeWindows   int   `json:"dedupe_windows"`
	PendingCounters int   `json:"pending_counters"`
}

// GetQueueOverview inspects the redis side of the billing pipeline through
// the queue repository.
func GetQueueOverview(repo repository.QueueRepository) (*QueueOverview, error) {
	backlog, err := repo.GetListLength(jobqueue.QueueKey)
	if err != nil {
		return nil, err
	}

	dedupe, err := repo.FindKeysByPatterns([]string{"views:dedupe:*"})
	if err != nil {
		return nil, err
	}

	counters, err := repo.FindKeysByPatterns([]string{"product:counters:*", "vendor:counters:*"})
	if err != nil {
		return nil, err
	}

	return &QueueOverview{
		JobBacklog:      backlog,
		DedupeWindows:   len(dedupe),
		PendingCounters: len(counters),
	}, nil
}
