package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	stopped  atomic.Bool
}

func (f *fakeService) Name() string { return f.name }

func (f *fakeService) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeService) Stop(ctx context.Context) error {
	f.stopped.Store(true)
	return nil
}

func TestRunnerPropagatesServiceError(t *testing.T) {
	boom := errors.New("listener failed")
	failing := &fakeService{name: "api", startErr: boom}
	idle := &fakeService{name: "worker"}

	runner := NewRunner(failing, idle)
	err := runner.Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected start error to propagate, got: %v", err)
	}
	if !failing.stopped.Load() || !idle.stopped.Load() {
		t.Fatalf("expected every service to be stopped: failing=%v idle=%v",
			failing.stopped.Load(), idle.stopped.Load())
	}
}

func TestRunnerCancelledContextIsCleanShutdown(t *testing.T) {
	svc := &fakeService{name: "api"}
	runner := NewRunner(svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx, time.Second, nil)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil error on cancellation, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("runner did not return after cancellation")
	}
	if !svc.stopped.Load() {
		t.Fatalf("expected service to be stopped on cancellation")
	}
}

func TestRunnerRejectsEmptyServiceSet(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error for empty service set")
	}
}
