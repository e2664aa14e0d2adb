package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"inkwell/internal/models"
	"inkwell/internal/services"
)

// App struct
type App struct {
	ctx         context.Context
	AppSettings services.AppSettingsService
	Connections *services.ConnectionService
	LocalModels *services.LocalModelService
	Client      *services.ClientService
	loader      *webviewLoader
	caps        *runtimeCapabilities
	dbClose     func() error
}

// NewApp creates a new App application struct
func NewApp() *App {
	return &App{
		loader: &webviewLoader{},
		caps:   newRuntimeCapabilities(),
	}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
	a.loader.ctx = ctx
}

// maybeAutoLoad applies the persisted auto-load policy once at startup.
// Failures surface as events; there is no retry.
func (a *App) maybeAutoLoad() {
	policy, err := a.AppSettings.AutoLoadPolicy()
	if err != nil || policy.Strategy == models.StrategyNone {
		return
	}
	manager, err := a.Connections.Manager("webllm")
	if err != nil {
		return
	}
	if err := manager.LoadModels(); err != nil {
		runtime.LogWarning(a.ctx, fmt.Sprintf("auto-load: model list unavailable: %v", err))
		return
	}
	if err := a.LocalModels.AutoLoad(manager.Models(), policy); err != nil {
		runtime.LogWarning(a.ctx, fmt.Sprintf("auto-load failed: %v", err))
	}
}

func (a *App) shutdown(ctx context.Context) {
	a.LocalModels.CancelLoad()
	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			fmt.Println("Error closing database:", err)
		}
	}
}

// ReportRuntimeCapabilities is called by the frontend once the webview
// has probed its own runtime (WebGPU, wasm, device memory).
func (a *App) ReportRuntimeCapabilities(gpu, wasm bool, memoryGB float64) {
	a.caps.set(gpu, wasm, memoryGB)
}

// ReportLoadProgress forwards a progress sample from the webview runtime
// to the in-flight load.
func (a *App) ReportLoadProgress(progress float64) {
	a.loader.reportProgress(progress)
}

// ReportLoadResult resolves the in-flight load. An empty message means
// success.
func (a *App) ReportLoadResult(errMessage string) {
	a.loader.reportResult(errMessage)
}

// runtimeCapabilities caches what the webview reported about its own
// runtime. Until the first report arrives, the wasm runtime is assumed
// present (every supported webview ships one) and the rest unknown.
type runtimeCapabilities struct {
	mu       sync.Mutex
	gpu      bool
	wasm     bool
	memoryGB float64
}

func newRuntimeCapabilities() *runtimeCapabilities {
	return &runtimeCapabilities{wasm: true}
}

func (c *runtimeCapabilities) set(gpu, wasm bool, memoryGB float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gpu = gpu
	c.wasm = wasm
	c.memoryGB = memoryGB
}

func (c *runtimeCapabilities) probes() services.CompatibilityProbes {
	return services.CompatibilityProbes{
		GPUAcceleration: func() bool { c.mu.Lock(); defer c.mu.Unlock(); return c.gpu },
		WasmRuntime:     func() bool { c.mu.Lock(); defer c.mu.Unlock(); return c.wasm },
		MemoryGB:        func() float64 { c.mu.Lock(); defer c.mu.Unlock(); return c.memoryGB },
	}
}

// webviewLoader bridges model loading to the webview, where the actual
// inference runtime lives. The backend asks the frontend to load and the
// frontend reports progress and the final result back.
type webviewLoader struct {
	ctx context.Context

	mu       sync.Mutex
	progress func(float64)
	done     chan error
}

const loadRequestEvent = "events:ai:load-request"

func (l *webviewLoader) LoadModel(ctx context.Context, modelID string, onProgress func(float64)) error {
	l.mu.Lock()
	l.progress = onProgress
	done := make(chan error, 1)
	l.done = done
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.progress = nil
		l.done = nil
		l.mu.Unlock()
	}()

	runtime.EventsEmit(l.ctx, loadRequestEvent, modelID)

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *webviewLoader) reportProgress(p float64) {
	l.mu.Lock()
	progress := l.progress
	l.mu.Unlock()
	if progress != nil {
		progress(p)
	}
}

func (l *webviewLoader) reportResult(errMessage string) {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()
	if done == nil {
		return
	}
	if errMessage == "" {
		done <- nil
		return
	}
	done <- fmt.Errorf("%s", errMessage)
}
