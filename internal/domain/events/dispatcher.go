package events

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// EventHandler is a function that handles a domain event
type EventHandler func(ctx context.Context, event DomainEvent) error

// Dispatcher dispatches domain events to registered handlers
type Dispatcher struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
	log      logrus.FieldLogger
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Dispatcher{
		handlers: make(map[string][]EventHandler),
		log:      log,
	}
}

// Register registers an event handler for a specific event type
func (d *Dispatcher) Register(eventType string, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// Dispatch dispatches an event to all registered handlers
func (d *Dispatcher) Dispatch(ctx context.Context, event DomainEvent) error {
	d.mu.RLock()
	handlers := d.handlers[event.EventType()]
	d.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(handlers))

	for _, handler := range handlers {
		wg.Add(1)
		go func(h EventHandler) {
			defer wg.Done()
			if err := h(ctx, event); err != nil {
				d.log.WithFields(Fields(event)).WithError(err).Error("event handler failed")
				errChan <- err
			}
		}(handler)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// LogHandler returns a handler that records every event it receives
func LogHandler(log logrus.FieldLogger) EventHandler {
	return func(ctx context.Context, event DomainEvent) error {
		log.WithFields(Fields(event)).Info("domain event")
		return nil
	}
}

// Fields describes an event for structured logging
func Fields(event DomainEvent) logrus.Fields {
	return logrus.Fields{
		"event_type":   event.EventType(),
		"event_id":     event.EventID(),
		"aggregate_id": event.AggregateID(),
		"repository":   event.Repository(),
	}
}
