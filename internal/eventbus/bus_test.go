package eventbus

import (
	"context"
	"errors"
	"testing"
)

func TestBusPublishBroadcast(t *testing.T) {
	bus := NewRunEventBus()
	calledA := false
	calledB := false

	bus.Subscribe(RunEventCompleted, func(ctx context.Context, event RunEvent) error {
		calledA = true
		return nil
	})
	bus.Subscribe(RunEventCompleted, func(ctx context.Context, event RunEvent) error {
		calledB = true
		return nil
	})

	if err := bus.Publish(context.Background(), RunEvent{Type: RunEventCompleted, RunID: "r1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !calledA || !calledB {
		t.Fatalf("expected handlers to be called")
	}
}

func TestBusPublishOnlyMatchingType(t *testing.T) {
	bus := NewRunEventBus()
	called := false
	bus.Subscribe(RunEventFailed, func(ctx context.Context, event RunEvent) error {
		called = true
		return nil
	})

	if err := bus.Publish(context.Background(), RunEvent{Type: RunEventStageStarted}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatalf("handler for RunFailed should not receive StageStarted")
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewRunEventBus()
	called := false
	unsubscribe := bus.Subscribe(RunEventCompleted, func(ctx context.Context, event RunEvent) error {
		called = true
		return nil
	})
	unsubscribe()

	if err := bus.Publish(context.Background(), RunEvent{Type: RunEventCompleted}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatalf("expected handler to be unsubscribed")
	}
}

func TestBusSubscribeNilHandler(t *testing.T) {
	bus := NewRunEventBus()
	unsubscribe := bus.Subscribe(RunEventCompleted, nil)
	unsubscribe()
	if err := bus.Publish(context.Background(), RunEvent{Type: RunEventCompleted}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBusPublishJoinErrors(t *testing.T) {
	bus := NewRunEventBus()
	errA := errors.New("err-a")
	bus.Subscribe(RunEventFailed, func(ctx context.Context, event RunEvent) error {
		return errA
	})
	bus.Subscribe(RunEventFailed, func(ctx context.Context, event RunEvent) error {
		return errors.New("err-b")
	})

	err := bus.Publish(context.Background(), RunEvent{Type: RunEventFailed})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !errors.Is(err, errA) {
		t.Fatalf("expected joined error to contain err-a, got %v", err)
	}
}
