package gate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(0, time.Second); err == nil {
		t.Fatal("expected error for zero capacity")
	}
	if _, err := New(-1, time.Second); err == nil {
		t.Fatal("expected error for negative capacity")
	}
	if _, err := New(1, 0); err == nil {
		t.Fatal("expected error for zero wait")
	}
}

func TestAcquireWithinCapacity(t *testing.T) {
	g, err := New(4, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 4; i++ {
		if err := g.Acquire(context.Background()); err != nil {
			t.Fatalf("acquire %d within capacity: %v", i, err)
		}
	}
	if got := g.InUse(); got != 4 {
		t.Fatalf("expected 4 slots in use, got %d", got)
	}

	for i := 0; i < 4; i++ {
		g.Release()
	}
	if got := g.InUse(); got != 0 {
		t.Fatalf("expected 0 slots in use after drain, got %d", got)
	}
}

func TestAcquireTimesOutWhenFull(t *testing.T) {
	g, err := New(1, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	start := time.Now()
	err = g.Acquire(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if waited := time.Since(start); waited < 40*time.Millisecond {
		t.Fatalf("timed out too early: %v", waited)
	}

	g.Release()
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	g.Release()
}

func TestAcquireHonorsCallerCancellation(t *testing.T) {
	g, err := New(1, 10*time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	defer g.Release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err = g.Acquire(ctx)
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if errors.Is(err, ErrTimeout) {
		t.Fatalf("cancellation must not be reported as timeout: %v", err)
	}
}

func TestWaiterObservesFreedSlot(t *testing.T) {
	g, err := New(1, 2*time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Acquire(context.Background())
	}()

	time.Sleep(20 * time.Millisecond)
	g.Release()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("waiter should admit after release: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter never observed the freed slot")
	}
	g.Release()
}

func TestOverloadExactlyOncePerExcessRequest(t *testing.T) {
	const capacity = 3
	const total = 10

	g, err := New(capacity, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	hold := make(chan struct{})
	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted, rejected := 0, 0

	for i := 0; i < total; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Acquire(context.Background()); err != nil {
				mu.Lock()
				rejected++
				mu.Unlock()
				return
			}
			mu.Lock()
			admitted++
			mu.Unlock()
			<-hold
			g.Release()
		}()
	}

	// Hold the admitted slots past the wait window so the rest time out.
	time.Sleep(200 * time.Millisecond)
	close(hold)
	wg.Wait()

	if admitted != capacity {
		t.Fatalf("expected %d admitted, got %d", capacity, admitted)
	}
	if rejected != total-capacity {
		t.Fatalf("expected %d rejected, got %d", total-capacity, rejected)
	}
	if g.InUse() != 0 {
		t.Fatalf("slots leaked: %d still in use", g.InUse())
	}
}
