package systems

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spaghettifunk/terra/engine/core"
	"github.com/spaghettifunk/terra/engine/renderer/metadata"
)

func TestNewTaskServiceValidatesConfig(t *testing.T) {
	if _, err := NewTaskService(&TaskServiceConfig{Workers: 0}); !errors.Is(err, ErrNoWorkers) {
		t.Errorf("expected ErrNoWorkers, got %v", err)
	}
	if _, err := NewTaskService(&TaskServiceConfig{Workers: 1, QueueSize: -1}); !errors.Is(err, ErrNegativeQueueSize) {
		t.Errorf("expected ErrNegativeQueueSize, got %v", err)
	}
}

func TestTaskServiceRunsCallbacks(t *testing.T) {
	core.SetLogOutput(io.Discard)
	ts, err := NewTaskService(&TaskServiceConfig{Workers: 3, QueueSize: 4})
	if err != nil {
		t.Fatalf("NewTaskService: %v", err)
	}

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		failed    atomic.Int32
		done      atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		i := i
		err := ts.Submit(metadata.Task{
			Name:   "square",
			Params: i,
			EntryPoint: func(params interface{}) (interface{}, error) {
				n := params.(int)
				switch n {
				case 3:
					return nil, errors.New("three is not allowed")
				case 7:
					panic("seven")
				}
				return n * n, nil
			},
			OnSuccess: func(result interface{}) {
				if result.(int) != i*i {
					t.Errorf("task %d returned %v", i, result)
				}
				succeeded.Add(1)
			},
			OnFailure: func(err error) { failed.Add(1) },
			OnDone: func() {
				done.Add(1)
				wg.Done()
			},
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()

	if succeeded.Load() != 8 || failed.Load() != 2 || done.Load() != 10 {
		t.Errorf("succeeded=%d failed=%d done=%d", succeeded.Load(), failed.Load(), done.Load())
	}
	if err := ts.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestTaskServiceShutdown(t *testing.T) {
	ts, err := NewTaskService(&TaskServiceConfig{Workers: 1, QueueSize: 8})
	if err != nil {
		t.Fatalf("NewTaskService: %v", err)
	}
	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		if err := ts.Submit(metadata.Task{EntryPoint: func(interface{}) (interface{}, error) {
			ran.Add(1)
			return nil, nil
		}}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if err := ts.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if ran.Load() != 5 {
		t.Errorf("expected queued tasks to drain, %d ran", ran.Load())
	}
	if err := ts.Shutdown(); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}

	task := metadata.Task{EntryPoint: func(interface{}) (interface{}, error) { return nil, nil }}
	if err := ts.Submit(task); !errors.Is(err, ErrTaskServiceClosed) {
		t.Errorf("expected ErrTaskServiceClosed, got %v", err)
	}
	if err := ts.TrySubmit(task); !errors.Is(err, ErrTaskServiceClosed) {
		t.Errorf("expected ErrTaskServiceClosed, got %v", err)
	}
}

func TestTrySubmitReportsFullQueue(t *testing.T) {
	ts, err := NewTaskService(&TaskServiceConfig{Workers: 1, QueueSize: 1})
	if err != nil {
		t.Fatalf("NewTaskService: %v", err)
	}
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := metadata.Task{EntryPoint: func(interface{}) (interface{}, error) {
		close(started)
		<-release
		return nil, nil
	}}
	noop := metadata.Task{EntryPoint: func(interface{}) (interface{}, error) { return nil, nil }}

	if err := ts.Submit(blocking); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started
	if err := ts.TrySubmit(noop); err != nil {
		t.Fatalf("expected a free slot, got %v", err)
	}
	if err := ts.TrySubmit(noop); !errors.Is(err, ErrTaskQueueFull) {
		t.Errorf("expected ErrTaskQueueFull, got %v", err)
	}
	close(release)
	if err := ts.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestSubmitRequiresEntryPoint(t *testing.T) {
	ts, err := NewTaskService(&TaskServiceConfig{Workers: 1})
	if err != nil {
		t.Fatalf("NewTaskService: %v", err)
	}
	defer ts.Shutdown()
	if err := ts.Submit(metadata.Task{Name: "empty"}); !core.IsPrecondition(err) {
		t.Errorf("expected a precondition error, got %v", err)
	}
}
