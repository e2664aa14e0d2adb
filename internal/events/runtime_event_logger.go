package events

import (
	"context"
	"encoding/json"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

func logRuntimeEvent(ctx context.Context, name string, event ProviderEvent) {
	if name == AILoadProgress {
		// progress ticks are too chatty for the log
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		runtime.LogError(ctx, "loggers: failed to marshal provider event: "+err.Error())
		return
	}

	payload := string(data)

	switch event.Type {
	case EventError:
		runtime.LogError(ctx, payload)
	case EventWarn:
		runtime.LogWarning(ctx, payload)
	default:
		runtime.LogInfo(ctx, payload)
	}
}
