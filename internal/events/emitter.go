package events

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

var Emit = func(ctx context.Context, name string, evt ProviderEvent) {}

func EnableRuntimeEmitter() {
	Emit = func(ctx context.Context, name string, evt ProviderEvent) {
		if evt.ProviderID == "" {
			if provider := ProviderFromContext(ctx); provider != "" {
				evt.ProviderID = provider
			}
		}

		runtime.EventsEmit(ctx, name, evt)
		logRuntimeEvent(ctx, name, evt)
	}
}

func SetCustomEmitter(f func(ctx context.Context, name string, evt ProviderEvent)) {
	if f == nil {
		Emit = func(context.Context, string, ProviderEvent) {}
		return
	}
	Emit = func(ctx context.Context, name string, evt ProviderEvent) {
		if evt.ProviderID == "" {
			if provider := ProviderFromContext(ctx); provider != "" {
				evt.ProviderID = provider
			}
		}
		f(ctx, name, evt)
	}
}
