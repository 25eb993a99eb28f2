package jobqueue

import (
	"sync"

	"github.com/gofiber/fiber/v2/log"
)

var (
	defaultQueue *Queue
	managerOnce  sync.Once
)

// InitManager creates and returns the process-wide queue. Processors must
// be registered on it before Start.
func InitManager(workers int) *Queue {
	managerOnce.Do(func() {
		defaultQueue = NewQueue(workers)
	})
	return defaultQueue
}

// GetQueue returns the process-wide queue, initializing it lazily.
func GetQueue() *Queue {
	return InitManager(2)
}

// TryEnqueue pushes a best-effort job and swallows any failure. This is the
// only enqueue entry point the recording and charging paths use: a full
// queue or a dead redis must never fail them.
func TryEnqueue(jobType JobType, payload interface{}) {
	if err := GetQueue().Enqueue(jobType, payload); err != nil {
		log.Warnf("[JobQueue] best-effort enqueue of %s failed: %v", jobType, err)
	}
}
