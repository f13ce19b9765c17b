package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-co-op/gocron/v2"

	"github.com/dgallion1/md2docx/internal/config"
	"github.com/dgallion1/md2docx/internal/metrics"
)

// ErrQueueFull is returned by Submit when no queue slot is free.
var ErrQueueFull = errors.New("job queue is full")

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("pipeline is stopped")

// Orchestrator runs asynchronous conversion jobs on a worker pool.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	conv      *Converter
	log       *slog.Logger
	cfg       config.Config
	metrics   *metrics.Recorder
	scheduler gocron.Scheduler

	mu      sync.RWMutex
	stopped bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start to launch the workers.
func NewOrchestrator(cfg config.Config, conv *Converter, log *slog.Logger, m *metrics.Recorder) (*Orchestrator, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	o := &Orchestrator{
		jobs:      NewJobStore(cfg.JobTTL),
		queue:     make(chan *Job, cfg.MaxQueueSize),
		conv:      conv,
		log:       log,
		cfg:       cfg,
		metrics:   m,
		scheduler: s,
	}
	_, err = s.NewJob(
		gocron.DurationJob(cfg.CleanupInterval),
		gocron.NewTask(o.cleanup),
		gocron.WithName("job-cleanup"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule job cleanup: %w", err)
	}
	return o, nil
}

// Start launches worker goroutines and the cleanup schedule.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.conv, o.log, o.metrics)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	o.scheduler.Start()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if err := o.scheduler.Shutdown(); err != nil {
		o.log.Warn("scheduler shutdown failed", "error", err)
	}
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing. A rejected job is not stored.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}

	select {
	case o.queue <- job:
		o.jobs.Put(job)
		return nil
	default:
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Converter returns the converter used by the workers.
func (o *Orchestrator) Converter() *Converter {
	return o.conv
}

func (o *Orchestrator) cleanup() {
	if n := o.jobs.Cleanup(); n > 0 {
		o.log.Debug("evicted expired jobs", "count", n, "remaining", o.jobs.Len())
	}
}
