package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitWaitReturnsOwnResult(t *testing.T) {
	p, err := New(Config{Workers: 4, QueueSize: 64}, func(_ context.Context, task *Task) *Result {
		return &Result{Success: true, Data: task.Payload}
	}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Start()
	defer p.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("task-%d", i)
			res, err := p.SubmitWait(context.Background(), &Task{ID: id, Payload: i})
			if err != nil {
				t.Errorf("SubmitWait(%s): %v", id, err)
				return
			}
			if res.TaskID != id || res.Data.(int) != i {
				t.Errorf("got result for %s/%v, want %s", res.TaskID, res.Data, id)
			}
		}(i)
	}
	wg.Wait()

	if s := p.Stats(); s.TasksCompleted != 32 || s.TasksFailed != 0 {
		t.Errorf("stats = %+v", s)
	}
}

func TestRetriesThenSucceeds(t *testing.T) {
	var calls int32
	p, _ := New(Config{Workers: 1, QueueSize: 1, MaxRetries: 3, RetryDelay: time.Millisecond}, func(context.Context, *Task) *Result {
		if atomic.AddInt32(&calls, 1) < 3 {
			return &Result{Error: errors.New("broker unavailable")}
		}
		return &Result{Success: true}
	}, nil)
	p.Start()
	defer p.Stop()

	res, err := p.SubmitWait(context.Background(), &Task{ID: "r"})
	if err != nil {
		t.Fatalf("SubmitWait: %v", err)
	}
	if !res.Success || res.Attempts != 3 {
		t.Errorf("result = %+v", res)
	}
	if got := p.Stats().TasksRetried; got != 2 {
		t.Errorf("TasksRetried = %d", got)
	}
}

func TestPermanentErrorIsNotRetried(t *testing.T) {
	var calls int32
	bad := errors.New("malformed request")
	p, _ := New(Config{Workers: 1, QueueSize: 1, MaxRetries: 5, RetryDelay: time.Millisecond}, func(context.Context, *Task) *Result {
		atomic.AddInt32(&calls, 1)
		return &Result{Error: Permanent(bad)}
	}, nil)
	p.Start()
	defer p.Stop()

	res, _ := p.SubmitWait(context.Background(), &Task{ID: "p"})
	if res.Success || !errors.Is(res.Error, bad) {
		t.Errorf("result = %+v", res)
	}
	if calls != 1 {
		t.Errorf("worker called %d times", calls)
	}
}

func TestRetriesExhausted(t *testing.T) {
	p, _ := New(Config{Workers: 1, QueueSize: 1, MaxRetries: 1, RetryDelay: time.Millisecond}, func(context.Context, *Task) *Result {
		return &Result{Error: errors.New("nope")}
	}, nil)
	p.Start()
	defer p.Stop()

	res, _ := p.SubmitWait(context.Background(), &Task{ID: "x"})
	if res.Success || res.Attempts != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestSubmitAfterStop(t *testing.T) {
	p, _ := New(Config{Workers: 1, QueueSize: 1}, func(context.Context, *Task) *Result {
		return &Result{Success: true}
	}, nil)
	p.Start()
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := p.Submit(&Task{ID: "late"}); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("err = %v, want ErrPoolClosed", err)
	}
	if err := p.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestQueueFullAndDepthCallback(t *testing.T) {
	release := make(chan struct{})
	var depth int64
	p, _ := New(Config{
		Workers:      1,
		QueueSize:    2,
		OnQueueDepth: func(d int64) { atomic.StoreInt64(&depth, d) },
	}, func(context.Context, *Task) *Result {
		<-release
		return &Result{Success: true}
	}, nil)
	p.Start()

	// The first task occupies the worker, the next two fill the queue.
	if err := p.Submit(&Task{ID: "1"}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(time.Second)
	for p.Stats().QueueDepth != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	for _, id := range []string{"2", "3"} {
		if err := p.Submit(&Task{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := p.Submit(&Task{ID: "4"}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("err = %v, want ErrQueueFull", err)
	}
	if got := atomic.LoadInt64(&depth); got != 2 {
		t.Errorf("depth callback = %d, want 2", got)
	}
	if p.IsHealthy() {
		t.Error("a full queue is not healthy")
	}

	close(release)
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	for range p.Results() {
	}
	if got := p.Stats().TasksCompleted; got != 3 {
		t.Errorf("TasksCompleted = %d, want 3", got)
	}
}

func TestNewRequiresWorkerFunc(t *testing.T) {
	if _, err := New(DefaultConfig(), nil, nil); err == nil {
		t.Fatal("expected error")
	}
}
