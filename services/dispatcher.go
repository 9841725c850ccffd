package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/startup-platform/metrics"
	"github.com/yeremiapane/startup-platform/utils"
)

// Task is a side effect run off the request path.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher runs tasks on a fixed pool of workers with bounded retry.
// Failures are logged and counted, never returned to the enqueuer.
type Dispatcher struct {
	queue       chan Task
	workers     int
	maxAttempts int
	backoff     time.Duration
	taskTimeout time.Duration

	mu      sync.RWMutex
	stopped bool
	started bool

	running sync.WaitGroup
	pending sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewDispatcher(workers, queueSize, maxAttempts int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		queue:       make(chan Task, queueSize),
		workers:     workers,
		maxAttempts: maxAttempts,
		backoff:     500 * time.Millisecond,
		taskTimeout: 30 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// WithBackoff sets the delay before the first retry; later retries double it.
func (d *Dispatcher) WithBackoff(backoff time.Duration) *Dispatcher {
	if backoff > 0 {
		d.backoff = backoff
	}
	return d
}

// WithTaskTimeout bounds a single attempt. Non-positive values keep the default.
func (d *Dispatcher) WithTaskTimeout(timeout time.Duration) *Dispatcher {
	if timeout > 0 {
		d.taskTimeout = timeout
	}
	return d
}

// Start launches the workers. It is safe to call once.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	for i := 0; i < d.workers; i++ {
		d.running.Add(1)
		go d.work()
	}
	utils.InfoLogger.WithField("workers", d.workers).Info("Dispatcher started")
}

// Enqueue schedules task without blocking. It reports false when the queue
// is full or the dispatcher has stopped; the task is then dropped.
func (d *Dispatcher) Enqueue(task Task) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		metrics.DispatchTasks.WithLabelValues(task.Name, "dropped").Inc()
		return false
	}

	d.pending.Add(1)
	select {
	case d.queue <- task:
		return true
	default:
		d.pending.Done()
		metrics.DispatchTasks.WithLabelValues(task.Name, "dropped").Inc()
		utils.ErrorLogger.WithField("task", task.Name).Error("dispatch queue full, dropping task")
		return false
	}
}

// Wait blocks until every enqueued task has finished.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

// Stop refuses new tasks, lets workers drain the queue and waits for them
// or for ctx. Retries still sleeping are abandoned when ctx ends.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		for task := range d.queue {
			metrics.DispatchTasks.WithLabelValues(task.Name, "dropped").Inc()
			d.pending.Done()
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.running.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.running.Done()
	for task := range d.queue {
		d.run(task)
		d.pending.Done()
	}
}

func (d *Dispatcher) run(task Task) {
	log := utils.ErrorLogger.WithField("task", task.Name)
	delay := d.backoff

	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		err := d.attempt(task)
		if err == nil {
			metrics.DispatchTasks.WithLabelValues(task.Name, "ok").Inc()
			return
		}

		if attempt == d.maxAttempts || errors.Is(err, errPermanent) {
			metrics.DispatchTasks.WithLabelValues(task.Name, "failed").Inc()
			log.WithFields(logrus.Fields{"attempts": attempt}).WithError(err).Error("side effect failed")
			return
		}

		metrics.DispatchTasks.WithLabelValues(task.Name, "retry").Inc()
		select {
		case <-time.After(delay):
			delay *= 2
		case <-d.ctx.Done():
			log.WithError(err).Error("side effect abandoned on shutdown")
			return
		}
	}
}

func (d *Dispatcher) attempt(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = permanent(errors.New("task panicked"))
			utils.ErrorLogger.WithFields(logrus.Fields{"task": task.Name, "panic": r}).Error("side effect panicked")
		}
	}()
	ctx, cancel := context.WithTimeout(d.ctx, d.taskTimeout)
	defer cancel()
	return task.Run(ctx)
}

var errPermanent = errors.New("permanent failure")

type permanentError struct{ err error }

func (e permanentError) Error() string   { return e.err.Error() }
func (e permanentError) Unwrap() []error { return []error{e.err, errPermanent} }

// permanent marks err as not worth retrying.
func permanent(err error) error {
	return permanentError{err: err}
}
