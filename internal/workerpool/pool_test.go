package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolBoundsConcurrency(t *testing.T) {
	p := New(2, func(int) error { return nil })

	var (
		mu      sync.Mutex
		current int
		peak    int
	)
	release := make(chan struct{})

	start := func(stageID int64) *Handle {
		h, err := p.Submit(context.Background(), stageID, func(ctx context.Context, pids PIDRegistrar) (Outcome, error) {
			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			<-release

			mu.Lock()
			current--
			mu.Unlock()
			return Outcome{StageID: stageID, Success: true}, nil
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		return h
	}

	h1 := start(1)
	h2 := start(2)

	// A third submission should block until a slot frees up.
	done3 := make(chan *Handle, 1)
	go func() {
		h3, err := p.Submit(context.Background(), 3, func(ctx context.Context, pids PIDRegistrar) (Outcome, error) {
			return Outcome{StageID: 3, Success: true}, nil
		})
		if err != nil {
			t.Errorf("Submit: %v", err)
			return
		}
		done3 <- h3
	}()

	select {
	case <-done3:
		t.Fatal("third Submit returned before a slot freed up")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-h1.Done()
	<-h2.Done()

	select {
	case h3 := <-done3:
		<-h3.Done()
	case <-time.After(time.Second):
		t.Fatal("third Submit never completed after a slot freed up")
	}

	mu.Lock()
	defer mu.Unlock()
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestPoolPIDTracking(t *testing.T) {
	p := New(4, nil)
	p.AddPID(111)
	p.AddPID(222)

	pids := p.LivePIDs()
	if len(pids) != 2 {
		t.Fatalf("LivePIDs() = %v, want 2 entries", pids)
	}

	p.RemovePID(111)
	pids = p.LivePIDs()
	if len(pids) != 1 || pids[0] != 222 {
		t.Fatalf("LivePIDs() after remove = %v, want [222]", pids)
	}
}

func TestPoolTerminateAllSignalsEveryLivePID(t *testing.T) {
	var killed int32
	p := New(4, func(pid int) error {
		atomic.AddInt32(&killed, 1)
		return nil
	})
	p.AddPID(1)
	p.AddPID(2)
	p.AddPID(3)

	p.TerminateAll()

	if got := atomic.LoadInt32(&killed); got != 3 {
		t.Errorf("TerminateAll killed %d PIDs, want 3", got)
	}
}

func TestPoolGracefulCloseWaitsForInFlight(t *testing.T) {
	p := New(1, nil)
	started := make(chan struct{})
	finish := make(chan struct{})

	_, err := p.Submit(context.Background(), 1, func(ctx context.Context, pids PIDRegistrar) (Outcome, error) {
		close(started)
		<-finish
		return Outcome{StageID: 1, Success: true}, nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started

	closed := make(chan struct{})
	go func() {
		p.GracefulClose()
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("GracefulClose returned before in-flight task finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(finish)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("GracefulClose never returned")
	}

	if _, err := p.Submit(context.Background(), 2, nil); err != errClosed {
		t.Errorf("Submit after GracefulClose: err = %v, want errClosed", err)
	}
}
