package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

type stubResult struct{ err error }

func (r stubResult) GetError() error { return r.err }

// jobFunc adapts a function to the Job interface
type jobFunc func(ctx context.Context) Result

func (f jobFunc) Execute(ctx context.Context) Result { return f(ctx) }

func okJob() Job {
	return jobFunc(func(context.Context) Result { return stubResult{} })
}

func sleepJob(d time.Duration, onStart func()) Job {
	return jobFunc(func(ctx context.Context) Result {
		if onStart != nil {
			onStart()
		}
		select {
		case <-time.After(d):
			return stubResult{}
		case <-ctx.Done():
			return stubResult{err: ctx.Err()}
		}
	})
}

func TestNewPool_ClampsWorkers(t *testing.T) {
	for in, expected := range map[int]int{3: 3, 0: 1, -4: 1} {
		p := NewPool(context.Background(), in)
		if p.workers != expected {
			t.Errorf("NewPool(%d): expected %d workers, got %d", in, expected, p.workers)
		}
		p.Shutdown()
	}
}

func TestPool_RunsEveryJobAndKeepsErrors(t *testing.T) {
	pool := NewPool(context.Background(), 3)
	pool.Start()

	var ran atomic.Int32
	for i := 0; i < 12; i++ {
		fail := i%4 == 0
		pool.Submit(jobFunc(func(context.Context) Result {
			ran.Add(1)
			if fail {
				return stubResult{err: errors.New("claim failed")}
			}
			return stubResult{}
		}))
	}

	results := pool.Wait()
	if len(results) != 12 || ran.Load() != 12 {
		t.Fatalf("Expected 12 results from 12 runs, got %d from %d", len(results), ran.Load())
	}
	failed := 0
	for _, r := range results {
		if r.GetError() != nil {
			failed++
		}
	}
	if failed != 3 {
		t.Errorf("Expected 3 failed jobs, got %d", failed)
	}
}

func TestPool_ManyJobsDoNotDeadlock(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	pool.Start()

	done := make(chan int)
	go func() {
		for i := 0; i < 200; i++ {
			pool.Submit(okJob())
		}
		done <- len(pool.Wait())
	}()

	select {
	case n := <-done:
		if n != 200 {
			t.Errorf("Expected 200 results, got %d", n)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pool deadlocked with more jobs than buffer space")
	}
}

func TestPool_RespectsWorkerLimit(t *testing.T) {
	const workers = 4
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var running, peak atomic.Int32
	for i := 0; i < 20; i++ {
		pool.Submit(jobFunc(func(context.Context) Result {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return stubResult{}
		}))
	}
	pool.Wait()

	if peak.Load() > workers {
		t.Errorf("Expected at most %d concurrent jobs, saw %d", workers, peak.Load())
	}
}

func TestResultCollector_ReturnsCopy(t *testing.T) {
	c := NewResultCollector()
	c.Add(stubResult{})
	c.Add(stubResult{err: errors.New("x")})

	got := c.Results()
	got[0] = nil
	if res := c.Results(); len(res) != 2 || res[0] == nil {
		t.Errorf("Expected collector to keep its own slice, got %v", res)
	}
}

func TestPool_ShutdownStopsRunningJobs(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(sleepJob(time.Minute, func() { close(started) }))
	<-started

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not cancel the running job")
	}

	if pool.Submit(okJob()) {
		t.Error("Expected Submit after Shutdown to be rejected")
	}
}

func TestPool_ParentContextCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()
	cancel()

	if pool.Submit(okJob()) {
		t.Error("Expected Submit to be rejected after parent cancel")
	}
	pool.Wait()
}
