package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInfo    EventType = "info"
	EventWarn    EventType = "warn"
	EventSuccess EventType = "success"
	EventError   EventType = "error"
)

// Frontend event channels. The settings UI subscribes to these.
const (
	AIConnectionState = "events:ai:connection-state"
	AIModelsRefreshed = "events:ai:models-refreshed"
	AILoadProgress    = "events:ai:load-progress"
	AILoadFinished    = "events:ai:load-finished"
	AISettingsSaved   = "events:ai:settings-saved"
	AIGenerateChunk   = "events:ai:generate-chunk"
	AIGenerateDone    = "events:ai:generate-done"
)

// ProviderEvent is the payload emitted on every observable change in the
// AI provider subsystem.
type ProviderEvent struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	ProviderID string            `json:"providerId,omitempty"`
	ModelID    string            `json:"modelId,omitempty"`
	State      string            `json:"state,omitempty"`
	Progress   float64           `json:"progress,omitempty"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type contextKey string

const providerContextKey contextKey = "inkwell/events/provider"

// WithProvider returns a derived context annotated with the provider id
// so event emitters can automatically scope payloads.
func WithProvider(ctx context.Context, providerID string) context.Context {
	if strings.TrimSpace(providerID) == "" {
		return ctx
	}
	return context.WithValue(ctx, providerContextKey, providerID)
}

// ProviderFromContext extracts the provider id associated with ctx.
func ProviderFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(providerContextKey).(string); ok {
		return v
	}
	return ""
}

// NewProviderEvent builds a payload with a fresh id and timestamp.
func NewProviderEvent(eventType EventType, providerID, message string) ProviderEvent {
	return ProviderEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		ProviderID: providerID,
		Message:    message,
		Timestamp:  time.Now(),
	}
}
