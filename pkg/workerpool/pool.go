// Package workerpool provides a bounded worker pool for the triage worker.
// Each consumed consultation request becomes a Task; retries are linear and
// errors marked Permanent are never retried.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrPoolClosed is returned by Submit after Stop.
	ErrPoolClosed = errors.New("pool is shutting down")
	// ErrQueueFull is returned when the task queue has no free slot.
	ErrQueueFull = errors.New("task queue is full")
)

// Task represents a unit of work to be processed
type Task struct {
	ID      string
	Payload any
	Context context.Context

	// done receives the result of a SubmitWait task instead of the shared
	// results channel.
	done chan *Result
}

// Result represents the outcome of task processing
type Result struct {
	TaskID   string
	Success  bool
	Error    error
	Data     any
	Attempts int
}

// WorkerFunc is the function signature for task processing
type WorkerFunc func(ctx context.Context, task *Task) *Result

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// Config holds worker pool configuration
type Config struct {
	// Workers is the number of concurrent workers
	Workers int
	// QueueSize is the size of the task queue
	QueueSize int
	// MaxRetries is the maximum number of retries for failed tasks
	MaxRetries int
	// RetryDelay grows linearly with each attempt
	RetryDelay time.Duration
	// GracefulShutdownTimeout is the timeout for graceful shutdown
	GracefulShutdownTimeout time.Duration
	// OnQueueDepth, when set, is called whenever the queue depth changes.
	OnQueueDepth func(depth int64)
}

// DefaultConfig returns defaults sized for the triage worker. Triage is CPU
// bound and fast, so the queue is what absorbs bursts.
func DefaultConfig() Config {
	return Config{
		Workers:                 16,
		QueueSize:               1024,
		MaxRetries:              2,
		RetryDelay:              200 * time.Millisecond,
		GracefulShutdownTimeout: 30 * time.Second,
	}
}

// Pool manages a pool of workers for concurrent task processing
type Pool struct {
	config     Config
	workerFunc WorkerFunc
	logger     *zap.Logger

	taskChan   chan *Task
	resultChan chan *Result
	wg         sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool

	submitted, completed, failed, retried atomic.Int64
	active, depth                         atomic.Int64
}

// New creates a new worker pool
func New(cfg Config, fn WorkerFunc, logger *zap.Logger) (*Pool, error) {
	if fn == nil {
		return nil, fmt.Errorf("worker function is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.GracefulShutdownTimeout <= 0 {
		cfg.GracefulShutdownTimeout = def.GracefulShutdownTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		config:     cfg,
		workerFunc: fn,
		logger:     logger,
		taskChan:   make(chan *Task, cfg.QueueSize),
		resultChan: make(chan *Result, cfg.QueueSize),
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// Start launches all workers
func (p *Pool) Start() {
	for i := 0; i < p.config.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("worker pool started",
		zap.Int("workers", p.config.Workers),
		zap.Int("queue_size", p.config.QueueSize))
}

// Submit queues a task without waiting. Its result is delivered on Results.
func (p *Pool) Submit(task *Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.taskChan <- task:
		p.submitted.Add(1)
		p.setDepth(p.depth.Add(1))
		return nil
	default:
		return ErrQueueFull
	}
}

// SubmitWait queues a task and blocks until it finishes or ctx is done. The
// result is delivered only to the caller.
func (p *Pool) SubmitWait(ctx context.Context, task *Task) (*Result, error) {
	task.done = make(chan *Result, 1)
	if err := p.Submit(task); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-task.done:
		return result, nil
	}
}

// Results returns the result channel for tasks queued with Submit
func (p *Pool) Results() <-chan *Result {
	return p.resultChan
}

// Stop stops accepting tasks, lets the workers drain the queue and closes
// the results channel.
func (p *Pool) Stop() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.taskChan)
	p.mu.Unlock()

	p.logger.Info("stopping worker pool")

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		close(p.resultChan)
		p.logger.Info("worker pool stopped gracefully")
		return nil
	case <-time.After(p.config.GracefulShutdownTimeout):
		// Workers still running may deliver, so the results channel stays open.
		p.cancel()
		p.logger.Warn("worker pool shutdown timed out")
		return fmt.Errorf("worker pool shutdown timed out after %s", p.config.GracefulShutdownTimeout)
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.active.Add(1)
	defer p.active.Add(-1)

	for task := range p.taskChan {
		p.setDepth(p.depth.Add(-1))
		result := p.process(task)
		p.deliver(id, task, result)
	}
}

// process runs the worker function with retries.
func (p *Pool) process(task *Task) *Result {
	ctx := task.Context
	if ctx == nil {
		ctx = p.ctx
	}

	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return &Result{TaskID: task.ID, Error: err, Attempts: attempt}
		}

		result := p.workerFunc(ctx, task)
		if result == nil {
			result = &Result{TaskID: task.ID, Error: fmt.Errorf("worker returned no result")}
		}
		result.TaskID = task.ID
		result.Attempts = attempt + 1
		if result.Success || IsPermanent(result.Error) {
			return result
		}
		lastErr = result.Error

		if attempt < p.config.MaxRetries {
			p.retried.Add(1)
			p.logger.Debug("retrying task",
				zap.String("task_id", task.ID),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr))

			select {
			case <-ctx.Done():
				return &Result{TaskID: task.ID, Error: ctx.Err(), Attempts: attempt + 1}
			case <-time.After(p.config.RetryDelay * time.Duration(attempt+1)):
			}
		}
	}

	return &Result{
		TaskID:   task.ID,
		Error:    fmt.Errorf("task failed after %d retries: %w", p.config.MaxRetries, lastErr),
		Attempts: p.config.MaxRetries + 1,
	}
}

func (p *Pool) deliver(workerID int, task *Task, result *Result) {
	if result.Success {
		p.completed.Add(1)
	} else {
		p.failed.Add(1)
		p.logger.Error("task failed",
			zap.String("task_id", task.ID),
			zap.Int("worker_id", workerID),
			zap.Error(result.Error))
	}

	if task.done != nil {
		task.done <- result
		return
	}
	select {
	case p.resultChan <- result:
	default:
		p.logger.Warn("result channel full, dropping result",
			zap.String("task_id", task.ID))
	}
}

func (p *Pool) setDepth(depth int64) {
	if p.config.OnQueueDepth != nil {
		p.config.OnQueueDepth(depth)
	}
}

// Stats is a point-in-time view of the pool counters
type Stats struct {
	TasksSubmitted int64
	TasksCompleted int64
	TasksFailed    int64
	TasksRetried   int64
	ActiveWorkers  int64
	QueueDepth     int64
	QueueCapacity  int
	Workers        int
}

// Stats returns current pool statistics
func (p *Pool) Stats() Stats {
	return Stats{
		TasksSubmitted: p.submitted.Load(),
		TasksCompleted: p.completed.Load(),
		TasksFailed:    p.failed.Load(),
		TasksRetried:   p.retried.Load(),
		ActiveWorkers:  p.active.Load(),
		QueueDepth:     p.depth.Load(),
		QueueCapacity:  p.config.QueueSize,
		Workers:        p.config.Workers,
	}
}

// IsHealthy returns true while the queue is below 90% of capacity
func (p *Pool) IsHealthy() bool {
	stats := p.Stats()
	return float64(stats.QueueDepth)/float64(stats.QueueCapacity) < 0.9
}
