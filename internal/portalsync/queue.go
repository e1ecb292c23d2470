package portalsync

import (
	"context"
	"log"
	"sync"
	"time"
)

// jobTimeout bounds a single sync job; the portal client's own timeout
// covers individual requests, this covers the whole sequence.
const jobTimeout = 60 * time.Second

type SyncJobKind string

const (
	JobCreateSync SyncJobKind = "create"
	JobUpdateSync SyncJobKind = "update"
)

// SyncJob is one unit of background sync work. CRUD handlers enqueue
// jobs instead of firing detached goroutines so failures land in the
// worker's log and the notification feed instead of vanishing.
type SyncJob struct {
	Kind       SyncJobKind
	PropertyID string
	Publish    bool
}

// Queue feeds sync jobs to a fixed pool of workers over a buffered
// channel. Enqueue never blocks the request path: a full buffer drops
// the job and reports it, leaving the property for the next scheduled
// bulk pass.
type Queue struct {
	jobs         chan SyncJob
	orchestrator *Orchestrator
	workers      int
	wg           sync.WaitGroup
}

func NewQueue(orchestrator *Orchestrator, workers, buffer int) *Queue {
	if workers <= 0 {
		workers = 3
	}
	if buffer <= 0 {
		buffer = 100
	}
	return &Queue{
		jobs:         make(chan SyncJob, buffer),
		orchestrator: orchestrator,
		workers:      workers,
	}
}

// Start launches the worker pool.
func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	log.Printf("[SyncQueue] Started %d workers", q.workers)
}

// Enqueue submits a job without blocking. Returns false when the buffer
// is full.
func (q *Queue) Enqueue(job SyncJob) bool {
	select {
	case q.jobs <- job:
		return true
	default:
		log.Printf("[SyncQueue] Queue full, dropping %s job for property %s", job.Kind, job.PropertyID)
		return false
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (q *Queue) Stop() {
	close(q.jobs)
	q.wg.Wait()
	log.Println("[SyncQueue] Stopped")
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for job := range q.jobs {
		q.process(id, job)
	}
}

func (q *Queue) process(workerID int, job SyncJob) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[SyncQueue] Worker %d panic on property %s: %v", workerID, job.PropertyID, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	var err error
	switch job.Kind {
	case JobCreateSync:
		err = q.orchestrator.SyncToPropertyFinder(ctx, job.PropertyID, job.Publish)
	case JobUpdateSync:
		err = q.orchestrator.UpdateSync(ctx, job.PropertyID)
	default:
		log.Printf("[SyncQueue] Unknown job kind %q for property %s", job.Kind, job.PropertyID)
		return
	}

	// Failures are already in the notification feed; the log line here is
	// for operators tailing the process.
	if err != nil {
		log.Printf("[SyncQueue] Worker %d: %s sync for property %s failed: %v", workerID, job.Kind, job.PropertyID, err)
	}
}
