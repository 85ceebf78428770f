package systems

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/renderer/metadata"
)

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeQueueSize = fmt.Errorf("attempting to create worker pool with a negative queue size")
var ErrTaskServiceClosed = errors.New("task service is shut down")
var ErrTaskQueueFull = errors.New("task queue is full")

/** @brief The task service configuration. */
type TaskServiceConfig struct {
	/** @brief The number of worker goroutines. Must be > 0. */
	Workers int
	/** @brief How many submitted tasks may wait for a worker. 0 makes Submit hand off synchronously. */
	QueueSize int
}

// TaskService runs work outside the frame loop on a fixed pool of workers.
// Nothing submitted here may touch the model, the view or the layer list
// while a frame is in progress; results are handed back to the frame loop
// through the task callbacks.
type TaskService struct {
	numWorkers int
	taskQueue  chan metadata.Task
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewTaskService(config *TaskServiceConfig) (*TaskService, error) {
	if config.Workers <= 0 {
		core.LogError("%v", ErrNoWorkers)
		return nil, ErrNoWorkers
	}
	if config.QueueSize < 0 {
		core.LogError("%v", ErrNegativeQueueSize)
		return nil, ErrNegativeQueueSize
	}

	ts := &TaskService{
		numWorkers: config.Workers,
		taskQueue:  make(chan metadata.Task, config.QueueSize),
	}
	ts.start()

	core.LogDebug("Task service started with %d workers.", config.Workers)
	return ts, nil
}

func (ts *TaskService) start() {
	for i := 0; i < ts.numWorkers; i++ {
		ts.wg.Add(1)
		go func() {
			defer ts.wg.Done()
			for task := range ts.taskQueue {
				run(task)
			}
		}()
	}
}

// run executes a single task. A panicking entry point counts as a failure
// and leaves the worker alive.
func run(task metadata.Task) {
	if task.OnDone != nil {
		defer task.OnDone()
	}
	name := task.Name
	if name == "" {
		name = "task"
	}

	var out interface{}
	res := core.Isolate(name, func() error {
		var err error
		out, err = task.EntryPoint(task.Params)
		return err
	})
	if !res.Ok() {
		if task.OnFailure != nil {
			task.OnFailure(res.Err)
		}
		return
	}
	if task.OnSuccess != nil {
		task.OnSuccess(out)
	}
}

/**
 * @brief Submits the provided task to be queued for execution. Blocks
 * while the queue is full.
 * @param task The description of the task to be executed.
 * @return ErrTaskServiceClosed after Shutdown.
 */
func (ts *TaskService) Submit(task metadata.Task) error {
	if task.EntryPoint == nil {
		return core.NewPreconditionError("TaskService.Submit", core.ErrNilArgument, "task %q has no entry point", task.Name)
	}
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	if ts.closed {
		return ErrTaskServiceClosed
	}
	ts.taskQueue <- task
	return nil
}

// TrySubmit queues the task without blocking and returns ErrTaskQueueFull
// when no slot is free.
func (ts *TaskService) TrySubmit(task metadata.Task) error {
	if task.EntryPoint == nil {
		return core.NewPreconditionError("TaskService.TrySubmit", core.ErrNilArgument, "task %q has no entry point", task.Name)
	}
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	if ts.closed {
		return ErrTaskServiceClosed
	}
	select {
	case ts.taskQueue <- task:
		return nil
	default:
		return ErrTaskQueueFull
	}
}

/**
 * @brief Shuts the task service down. Queued tasks still run; the call
 * returns once every worker has exited. Calling it twice is a no-op.
 */
func (ts *TaskService) Shutdown() error {
	ts.mu.Lock()
	if ts.closed {
		ts.mu.Unlock()
		return nil
	}
	ts.closed = true
	close(ts.taskQueue)
	ts.mu.Unlock()

	ts.wg.Wait()
	return nil
}
