package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/craftmarkt/craftmarkt/internal/pkg/cache"
)

// Queue is a redis-list backed worker pool for best-effort jobs.
type Queue struct {
	client     *redis.Client
	workers    int
	processors map[JobType]ProcessorFunc
	stopCh     chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
}

// NewQueue creates a job queue with the given worker count.
func NewQueue(workers int) *Queue {
	if workers <= 0 {
		workers = 2
	}
	return &Queue{
		client:     cache.GetClient(),
		workers:    workers,
		processors: make(map[JobType]ProcessorFunc),
		stopCh:     make(chan struct{}),
	}
}

// RegisterProcessor wires the handler for a job type. Must be called before
// Start.
func (q *Queue) RegisterProcessor(jobType JobType, fn ProcessorFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.processors[jobType] = fn
}

// Start launches the workers.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.running = true

	log.Infof("[JobQueue] Starting %d workers", q.workers)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop signals the workers and waits for them to drain.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.stopCh)
	q.mu.Unlock()

	q.wg.Wait()
	log.Info("[JobQueue] Stopped")
}

// Enqueue pushes a job. Callers on best-effort paths should use the
// manager's TryEnqueue helpers, which swallow the error.
func (q *Queue) Enqueue(jobType JobType, payload interface{}) error {
	job, err := NewJob(jobType, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(context.Background(), QueueKey, data).Err()
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()

	for {
		select {
		case <-q.stopCh:
			return
		default:
		}

		res, err := q.client.BRPop(context.Background(), 2*time.Second, QueueKey).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) {
				log.Warnf("[JobQueue] worker %d pop failed: %v", id, err)
				time.Sleep(time.Second)
			}
			continue
		}
		if len(res) < 2 {
			continue
		}

		var job Job
		if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
			log.Errorf("[JobQueue] worker %d dropping unreadable job: %v", id, err)
			continue
		}

		if err := q.process(&job); err != nil {
			q.retry(&job, err)
		}
	}
}

func (q *Queue) process(job *Job) error {
	q.mu.Lock()
	fn, ok := q.processors[job.Type]
	q.mu.Unlock()
	if !ok {
		return fmt.Errorf("no processor registered for job type %s", job.Type)
	}
	return fn(job.Payload)
}

// retry re-enqueues a failed job up to DefaultMaxRetries, then drops it.
// Dropping is acceptable: every job on this queue is a lossy aggregate
// update by contract.
func (q *Queue) retry(job *Job, cause error) {
	job.Retries++
	if job.Retries > DefaultMaxRetries {
		log.Errorf("[JobQueue] dropping job %s (%s) after %d attempts: %v", job.ID, job.Type, job.Retries, cause)
		return
	}

	log.Warnf("[JobQueue] retrying job %s (%s), attempt %d: %v", job.ID, job.Type, job.Retries, cause)
	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := q.client.LPush(context.Background(), QueueKey, data).Err(); err != nil {
		log.Errorf("[JobQueue] re-enqueue of job %s failed: %v", job.ID, err)
	}
}
