package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/sjperalta/lendera-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	queue         chan namedJob
	asyncSem      chan struct{}
	maxConcurrent int
	closeOnce     sync.Once

	statsMu sync.RWMutex
	stats   WorkerStats
}

type namedJob struct {
	name string
	run  Job
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	ActiveJobs    int                    `json:"active_jobs"`
	CompletedJobs int64                  `json:"completed_jobs"`
	FailedJobs    int64                  `json:"failed_jobs"`
	QueueLength   int                    `json:"queue_length"`
	MaxConcurrent int                    `json:"max_concurrent"`
	Jobs          map[string]JobRunStats `json:"jobs"`
}

// JobRunStats describes the latest run of a named job
type JobRunStats struct {
	Runs         int64      `json:"runs"`
	Failures     int64      `json:"failures"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty"`
	LastDuration string     `json:"last_duration,omitempty"`
	LastError    string     `json:"last_error,omitempty"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	// Allow 2x workers for async jobs
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan namedJob, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		stats:         WorkerStats{Jobs: make(map[string]JobRunStats)},
	}

	// Start worker goroutines
	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool. Jobs enqueued after
// Shutdown are dropped.
func (w *Worker) Enqueue(name string, job Job) {
	if w.ctx.Err() != nil {
		logger.Warn("[Worker] Dropping job after shutdown", "job", name)
		return
	}
	select {
	case w.queue <- namedJob{name: name, run: job}:
	default:
		logger.Warn("[Worker] Queue full, running job synchronously", "job", name)
		w.run("Worker", name, job)
	}
}

// EnqueueAsync runs a job in a new goroutine (fire-and-forget), bounded by semaphore
func (w *Worker) EnqueueAsync(name string, job Job) {
	if w.ctx.Err() != nil {
		logger.Warn("[Worker] Dropping async job after shutdown", "job", name)
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		// Acquire semaphore to limit concurrency
		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()

		w.run("Worker", name, job)
	}()
}

// process handles jobs from the queue
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	source := fmt.Sprintf("Worker %d", workerID)
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.run(source, job.name, job.run)
		}
	}
}

// ScheduleEvery runs a job at fixed intervals. The first run happens after the interval (not at startup).
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, false, job)
}

// ScheduleEveryImmediate runs a job once at startup, then at fixed intervals.
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, true, job)
}

func (w *Worker) schedule(name string, interval time.Duration, immediate bool, job Job) {
	if interval <= 0 {
		logger.Error("[Scheduler] Refusing non-positive interval", "job", name, "interval", interval)
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if immediate {
			w.run("Scheduler", name, job)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.run("Scheduler", name, job)
			}
		}
	}()
}

// run executes one job, recovering panics and reporting failures to sentry
func (w *Worker) run(source, name string, job Job) {
	w.trackJobStart()
	start := time.Now()

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = job(w.ctx)
	}()

	elapsed := time.Since(start)
	w.trackJobEnd(name, start, elapsed, err)

	if err != nil {
		logger.Error(fmt.Sprintf("[%s] Job failed", source), "job", name, "error", err, "elapsed", elapsed)
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("job", name)
			sentry.CaptureException(err)
		})
		return
	}
	logger.Info(fmt.Sprintf("[%s] Job completed", source), "job", name, "elapsed", elapsed)
}

// Shutdown gracefully stops all workers
func (w *Worker) Shutdown() {
	w.closeOnce.Do(func() {
		w.cancel()
		w.wg.Wait()
	})
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	stats.Jobs = make(map[string]JobRunStats, len(w.stats.Jobs))
	for k, v := range w.stats.Jobs {
		stats.Jobs[k] = v
	}
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

// CompletedJobs counts every finished run; FailedJobs is the failed subset
func (w *Worker) trackJobEnd(name string, start time.Time, elapsed time.Duration, err error) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++

	run := w.stats.Jobs[name]
	run.Runs++
	run.LastRunAt = &start
	run.LastDuration = elapsed.String()
	run.LastError = ""
	if err != nil {
		w.stats.FailedJobs++
		run.Failures++
		run.LastError = err.Error()
	}
	w.stats.Jobs[name] = run
}
