package unit_tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"inkwell/internal/events"
)

// eventRecorder captures every emitted event so tests can assert on
// sequence and payload. The emitter is global, so recording is installed
// per test and torn down via t.Cleanup.
type eventRecorder struct {
	mu       sync.Mutex
	recorded []recordedEvent
}

type recordedEvent struct {
	Name  string
	Event events.ProviderEvent
}

func recordEvents(t *testing.T) *eventRecorder {
	t.Helper()
	r := &eventRecorder{}
	events.SetCustomEmitter(func(ctx context.Context, name string, evt events.ProviderEvent) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.recorded = append(r.recorded, recordedEvent{Name: name, Event: evt})
	})
	t.Cleanup(func() { events.SetCustomEmitter(nil) })
	return r
}

// named returns the payloads of every captured event with the given name.
func (r *eventRecorder) named(name string) []events.ProviderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.ProviderEvent
	for _, rec := range r.recorded {
		if rec.Name == name {
			out = append(out, rec.Event)
		}
	}
	return out
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
