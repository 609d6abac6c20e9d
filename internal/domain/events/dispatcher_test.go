package events_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"repo-popularity/internal/domain/events"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestDispatchCallsRegisteredHandlers(t *testing.T) {
	d := events.NewDispatcher(quietLogger())

	var calls atomic.Int32
	handler := func(ctx context.Context, event events.DomainEvent) error {
		calls.Add(1)
		return nil
	}
	d.Register("thing.happened", handler)
	d.Register("thing.happened", handler)
	d.Register("other.event", handler)

	if err := d.Dispatch(context.Background(), events.NewBaseEvent("thing.happened", "agg-1", "golang/go")); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("handler calls = %d, want 2", got)
	}
}

func TestDispatchWithoutHandlers(t *testing.T) {
	d := events.NewDispatcher(quietLogger())
	if err := d.Dispatch(context.Background(), events.NewBaseEvent("nobody.listens", "agg", "golang/go")); err != nil {
		t.Errorf("Dispatch() error = %v, want nil", err)
	}
}

func TestDispatchJoinsHandlerErrors(t *testing.T) {
	d := events.NewDispatcher(quietLogger())
	boom := errors.New("boom")
	d.Register("thing.happened", func(ctx context.Context, event events.DomainEvent) error {
		return boom
	})

	err := d.Dispatch(context.Background(), events.NewBaseEvent("thing.happened", "agg", "golang/go"))
	if !errors.Is(err, boom) {
		t.Errorf("Dispatch() error = %v, want %v", err, boom)
	}
}

func TestBaseEvent(t *testing.T) {
	e := events.NewBaseEvent("thing.happened", "agg-1", "golang/go")
	if e.EventID() == "" {
		t.Error("EventID should be generated")
	}
	if e.EventType() != "thing.happened" || e.AggregateID() != "agg-1" {
		t.Errorf("unexpected event %+v", e)
	}
	if e.Repository() != "golang/go" {
		t.Errorf("Repository() = %q, want golang/go", e.Repository())
	}
	if e.OccurredAt().IsZero() || e.OccurredAt().Location() != time.UTC {
		t.Errorf("OccurredAt = %v, want a UTC time", e.OccurredAt())
	}
}

func TestLogHandlerRecordsRepository(t *testing.T) {
	log, hook := test.NewNullLogger()
	d := events.NewDispatcher(log)
	d.Register("thing.happened", events.LogHandler(log))

	e := events.NewBaseEvent("thing.happened", "agg-1", "golang/go")
	if err := d.Dispatch(context.Background(), e); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	want := map[string]string{
		"event_type":   "thing.happened",
		"event_id":     e.EventID(),
		"aggregate_id": "agg-1",
		"repository":   "golang/go",
	}
	for key, value := range want {
		if got := entry.Data[key]; got != value {
			t.Errorf("entry.Data[%q] = %v, want %q", key, got, value)
		}
	}
}
