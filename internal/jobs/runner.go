package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// Default runner settings.
const (
	defaultWorkerCount  = 2
	defaultQueueSize    = 100
	defaultBackoffBase  = 5 * time.Second
	defaultBackoffCap   = 5 * time.Minute
	defaultStuckJobAge  = 30 * time.Minute
	defaultPollInterval = 30 * time.Second
)

// RunnerConfig holds the runner settings.
type RunnerConfig struct {
	// WorkerCount is the number of concurrent worker goroutines.
	WorkerCount int

	// QueueSize is the buffer size of the in-memory dispatch channel.
	QueueSize int

	// BackoffBase is the delay before the first retry; each subsequent retry
	// doubles it.
	BackoffBase time.Duration

	// BackoffCap bounds the exponential backoff.
	BackoffCap time.Duration

	// StuckJobAge is how long a job may sit in processing status before the
	// monitor assumes its worker died and requeues it.
	StuckJobAge time.Duration

	// PollInterval is how often the monitor sweeps for stuck and stranded
	// jobs.
	PollInterval time.Duration
}

// withDefaults fills in zero-valued settings.
func (c RunnerConfig) withDefaults() RunnerConfig {
	if c.WorkerCount <= 0 {
		c.WorkerCount = defaultWorkerCount
	}
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.BackoffBase <= 0 {
		c.BackoffBase = defaultBackoffBase
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = defaultBackoffCap
	}
	if c.StuckJobAge <= 0 {
		c.StuckJobAge = defaultStuckJobAge
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	return c
}

// Runner drains the durable notification queue. Jobs are persisted before
// dispatch, handed to workers through an in-memory channel, and acknowledged
// late: a job row only reaches a terminal status after its handler succeeds
// or its retry budget is exhausted. Pending rows are recovered on startup, so
// a crash between enqueue and delivery loses nothing.
type Runner struct {
	store    JobStore
	config   RunnerConfig
	logger   *slog.Logger
	handlers map[string]Handler

	queue  chan *Job
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu       sync.Mutex
	inFlight map[string]struct{}
	started  bool

	// jitterFn returns a random duration in [0, max); injectable for tests.
	jitterFn func(max time.Duration) time.Duration
}

// NewRunner creates a Runner with the given store and settings.
func NewRunner(store JobStore, config RunnerConfig, logger *slog.Logger) *Runner {
	config = config.withDefaults()
	return &Runner{
		store:    store,
		config:   config,
		logger:   logger.With("component", "job_runner"),
		handlers: make(map[string]Handler),
		queue:    make(chan *Job, config.QueueSize),
		inFlight: make(map[string]struct{}),
		jitterFn: func(max time.Duration) time.Duration {
			if max <= 0 {
				return 0
			}
			return time.Duration(rand.Int63n(int64(max)))
		},
	}
}

// RegisterHandler registers the handler for its job type. Must be called
// before Start.
func (r *Runner) RegisterHandler(handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[handler.Type()] = handler
}

// Enqueue persists the job and dispatches it to a worker. Persistence is the
// durability guarantee: a full dispatch channel leaves the job pending for
// the monitor to pick up rather than dropping it.
func (r *Runner) Enqueue(ctx context.Context, job *Job) error {
	if err := r.store.Save(ctx, job); err != nil {
		return fmt.Errorf("failed to persist job: %w", err)
	}

	if !r.dispatch(job) {
		r.logger.Warn("dispatch queue full, job will be picked up by the monitor", "job_id", job.ID, "job_type", job.Type)
	}

	return nil
}

// Start recovers persisted work and launches the workers and the monitor.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return fmt.Errorf("runner already started")
	}
	r.started = true
	r.mu.Unlock()

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel

	if err := r.recover(runCtx); err != nil {
		return fmt.Errorf("failed to recover persisted jobs: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.monitor(runCtx)

	r.logger.Info("job runner started", "workers", r.config.WorkerCount, "queue_size", r.config.QueueSize)
	return nil
}

// Stop cancels the workers and waits for them to drain.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	r.logger.Info("job runner stopped")
}

// recover requeues work left over from a previous process: jobs stranded in
// processing status by a crash, and pending jobs that never dispatched.
func (r *Runner) recover(ctx context.Context) error {
	processing, err := r.store.GetProcessing(ctx, 0)
	if err != nil {
		return err
	}
	for _, job := range processing {
		// The crash consumed no retry budget; the job simply runs again.
		if err := r.store.UpdateStatus(ctx, job.ID, JobStatusPending, "requeued after restart"); err != nil {
			r.logger.Error("failed to reset stranded job", "job_id", job.ID, "error", err)
			continue
		}
		job.Status = JobStatusPending
		r.dispatch(job)
	}

	pending, err := r.store.GetPending(ctx)
	if err != nil {
		return err
	}
	requeued := 0
	for _, job := range pending {
		if r.dispatchEligible(job) {
			requeued++
		}
	}

	if len(processing) > 0 || requeued > 0 {
		r.logger.Info("recovered persisted jobs", "processing_reset", len(processing), "pending_requeued", requeued)
	}
	return nil
}

// worker consumes dispatched jobs until the runner stops.
func (r *Runner) worker(ctx context.Context) {
	defer r.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-r.queue:
			r.process(ctx, job)
		}
	}
}

// process runs one delivery attempt and settles the outcome.
func (r *Runner) process(ctx context.Context, job *Job) {
	log := r.logger.With("job_id", job.ID, "job_type", job.Type)

	if err := r.store.UpdateStatus(ctx, job.ID, JobStatusProcessing, ""); err != nil {
		log.Error("failed to mark job processing", "error", err)
	}

	handler, ok := r.handler(job.Type)
	if !ok {
		log.Error("no handler registered for job type, failing permanently")
		r.settleFailed(ctx, job, fmt.Sprintf("no handler registered for type %q", job.Type))
		return
	}

	err := handler.Handle(ctx, job)
	if err == nil {
		if uerr := r.store.UpdateStatus(ctx, job.ID, JobStatusCompleted, ""); uerr != nil {
			log.Error("failed to acknowledge completed job", "error", uerr)
		}
		r.clearInFlight(job)
		log.Info("job completed", "attempts", job.Attempts+1)
		return
	}

	job.Attempts++
	if job.Attempts >= job.MaxAttempts {
		log.Error("job permanently failed, retry budget exhausted",
			"attempts", job.Attempts, "max_attempts", job.MaxAttempts, "error", err)
		r.settleFailed(ctx, job, err.Error())
		return
	}

	delay := r.backoff(job.Attempts)
	nextRetryAt := time.Now().UTC().Add(delay)
	if merr := r.store.MarkRetry(ctx, job.ID, job.Attempts, err.Error(), nextRetryAt); merr != nil {
		log.Error("failed to record retry, dropping from dispatch", "error", merr)
		r.clearInFlight(job)
		return
	}

	log.Warn("job attempt failed, retry scheduled",
		"attempts", job.Attempts, "max_attempts", job.MaxAttempts, "delay", delay, "error", err)

	retry := *job
	time.AfterFunc(delay, func() {
		if ctx.Err() != nil {
			// Runner stopped; the pending row survives for the next process.
			r.clearInFlight(&retry)
			return
		}
		select {
		case r.queue <- &retry:
		default:
			r.clearInFlight(&retry)
		}
	})
}

// settleFailed dead-letters a job: terminal failed status, last error
// recorded, no further retries.
func (r *Runner) settleFailed(ctx context.Context, job *Job, lastError string) {
	if err := r.store.UpdateStatus(ctx, job.ID, JobStatusFailed, lastError); err != nil {
		r.logger.Error("failed to mark job failed", "job_id", job.ID, "error", err)
	}
	r.clearInFlight(job)
}

// backoff computes the delay before the given retry: exponential in the
// attempt count with random jitter of up to half the delay, never exceeding
// the configured cap.
func (r *Runner) backoff(attempts int) time.Duration {
	delay := r.config.BackoffBase
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= r.config.BackoffCap {
			delay = r.config.BackoffCap
			break
		}
	}
	delay += r.jitterFn(delay / 2)
	if delay > r.config.BackoffCap {
		delay = r.config.BackoffCap
	}
	return delay
}

// monitor periodically requeues jobs stuck in processing status and pending
// jobs that missed dispatch (full queue, retry timer lost to a restart).
func (r *Runner) monitor(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// sweep performs one monitor pass.
func (r *Runner) sweep(ctx context.Context) {
	stuck, err := r.store.GetProcessing(ctx, r.config.StuckJobAge)
	if err != nil {
		r.logger.Error("monitor failed to query stuck jobs", "error", err)
	} else {
		for _, job := range stuck {
			if r.isInFlight(job) {
				continue
			}
			r.logger.Warn("requeueing stuck job", "job_id", job.ID, "job_type", job.Type)
			if err := r.store.UpdateStatus(ctx, job.ID, JobStatusPending, "requeued by monitor"); err != nil {
				r.logger.Error("failed to reset stuck job", "job_id", job.ID, "error", err)
				continue
			}
			job.Status = JobStatusPending
			r.dispatch(job)
		}
	}

	pending, err := r.store.GetPending(ctx)
	if err != nil {
		r.logger.Error("monitor failed to query pending jobs", "error", err)
		return
	}
	for _, job := range pending {
		r.dispatchEligible(job)
	}
}

// dispatchEligible dispatches a pending job unless it is already in flight
// or its retry time has not arrived.
func (r *Runner) dispatchEligible(job *Job) bool {
	if r.isInFlight(job) {
		return false
	}
	if job.NextRetryAt != nil && job.NextRetryAt.After(time.Now().UTC()) {
		return false
	}
	return r.dispatch(job)
}

// dispatch marks the job in flight and hands it to a worker. Returns false
// when the channel is full; the job stays pending in the store.
func (r *Runner) dispatch(job *Job) bool {
	r.mu.Lock()
	if _, exists := r.inFlight[job.ID.String()]; exists {
		r.mu.Unlock()
		return false
	}
	r.inFlight[job.ID.String()] = struct{}{}
	r.mu.Unlock()

	select {
	case r.queue <- job:
		return true
	default:
		r.clearInFlight(job)
		return false
	}
}

func (r *Runner) isInFlight(job *Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inFlight[job.ID.String()]
	return ok
}

func (r *Runner) clearInFlight(job *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, job.ID.String())
}

func (r *Runner) handler(jobType string) (Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[jobType]
	return h, ok
}
