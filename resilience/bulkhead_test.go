package resilience

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNewBulkhead_Defaults(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{})

	if b.config.MaxConcurrent != 10 {
		t.Errorf("MaxConcurrent = %d, want 10", b.config.MaxConcurrent)
	}
}

func TestBulkhead_RejectsAtCapacity(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1})

	release := make(chan struct{})
	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = b.Execute(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	err := b.Execute(context.Background(), func(ctx context.Context) error {
		t.Error("operation invoked while bulkhead full")
		return nil
	})
	if err != ErrBulkheadFull {
		t.Errorf("Execute() = %v, want ErrBulkheadFull", err)
	}
	if b.Rejected() != 1 {
		t.Errorf("Rejected() = %d, want 1", b.Rejected())
	}

	close(release)
	wg.Wait()

	if err := b.Execute(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Errorf("Execute() after release = %v", err)
	}
}

func TestBulkhead_WaitsForSlot(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, MaxWait: time.Second})

	started := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = b.Execute(context.Background(), func(ctx context.Context) error {
			close(started)
			time.Sleep(20 * time.Millisecond)
			return nil
		})
	}()

	<-started
	err := b.Execute(context.Background(), func(ctx context.Context) error { return nil })
	if err != nil {
		t.Errorf("Execute() with wait = %v, want nil", err)
	}
	wg.Wait()
}

func TestIsolated(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 2})

	operation := Isolated(b, func(ctx context.Context) (int, error) {
		return b.Active(), nil
	})

	active, err := operation(context.Background())
	if err != nil {
		t.Fatalf("operation() error = %v", err)
	}
	if active != 1 {
		t.Errorf("active during call = %d, want 1", active)
	}
	if b.Active() != 0 {
		t.Errorf("Active() after call = %d, want 0", b.Active())
	}
}
