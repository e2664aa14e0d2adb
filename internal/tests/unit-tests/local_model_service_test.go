package unit_tests

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/providers"
	"inkwell/internal/services"
	"inkwell/internal/tests/mocks"
)

func capableProbes() services.CompatibilityProbes {
	return services.CompatibilityProbes{
		GPUAcceleration: func() bool { return true },
		WasmRuntime:     func() bool { return true },
		MemoryGB:        func() float64 { return 16 },
	}
}

func newLocalModelService(t *testing.T, history *mocks.DownloadHistoryRepositoryMock, loader *mocks.LocalLoaderMock, probes services.CompatibilityProbes, cacheDir string) *services.LocalModelService {
	t.Helper()
	svc := services.NewLocalModelService("webllm", history, loader, probes, cacheDir)
	assert.NoError(t, svc.Startup(context.Background()))
	return svc
}

func TestLocalModelService_LoadModel_Success(t *testing.T) {
	history := &mocks.DownloadHistoryRepositoryMock{}
	loader := &mocks.LocalLoaderMock{
		LoadModelFunc: func(ctx context.Context, modelID string, onProgress func(float64)) error {
			onProgress(0.25)
			onProgress(0.8)
			return nil
		},
	}
	svc := newLocalModelService(t, history, loader, capableProbes(), "")
	rec := recordEvents(t)

	assert.NoError(t, svc.LoadModel("llama-3.2-1b"))

	assert.Equal(t, "llama-3.2-1b", svc.ActiveModel())
	assert.Empty(t, svc.Loading())

	record, ok := svc.Record("llama-3.2-1b")
	assert.True(t, ok)
	assert.Equal(t, models.LoadSuccess, record.LoadState)
	assert.Equal(t, 1.0, record.Progress)
	assert.True(t, record.Downloaded)
	assert.NotNil(t, record.LastLoadedAt)

	assert.Equal(t, 1, history.AppendCalls)

	finished := rec.named(events.AILoadFinished)
	assert.Len(t, finished, 1)
	assert.Equal(t, events.EventSuccess, finished[0].Type)
	assert.Equal(t, "llama-3.2-1b", finished[0].ModelID)
}

func TestLocalModelService_LoadModel_RejectsConcurrentLoad(t *testing.T) {
	release := make(chan struct{})
	history := &mocks.DownloadHistoryRepositoryMock{}
	loader := &mocks.LocalLoaderMock{
		LoadModelFunc: func(ctx context.Context, modelID string, onProgress func(float64)) error {
			<-release
			return nil
		},
	}
	svc := newLocalModelService(t, history, loader, capableProbes(), "")

	done := make(chan error, 1)
	go func() { done <- svc.LoadModel("m-one") }()
	waitFor(t, func() bool { return svc.Loading() == "m-one" }, "first load to start")

	err := svc.LoadModel("m-two")

	// rejected, never queued
	assert.True(t, providers.IsKind(err, providers.KindConcurrency))
	assert.Contains(t, err.Error(), "m-one")

	// the in-flight load is untouched and the rejected one left no trace
	record, ok := svc.Record("m-one")
	assert.True(t, ok)
	assert.Equal(t, models.LoadLoading, record.LoadState)
	_, ok = svc.Record("m-two")
	assert.False(t, ok)

	close(release)
	assert.NoError(t, <-done)
	assert.Equal(t, "m-one", svc.ActiveModel())
	assert.Equal(t, 1, loader.LoadCalls())
}

func TestLocalModelService_LoadFailure_KeepsHistoryAndActive(t *testing.T) {
	history := &mocks.DownloadHistoryRepositoryMock{
		ListFunc: func(ctx context.Context) ([]models.DownloadedModel, error) {
			return []models.DownloadedModel{{ModelID: "m1", Present: true}}, nil
		},
	}
	loader := &mocks.LocalLoaderMock{
		LoadModelFunc: func(ctx context.Context, modelID string, onProgress func(float64)) error {
			return errors.New("initialization failed")
		},
	}
	svc := newLocalModelService(t, history, loader, capableProbes(), "")
	rec := recordEvents(t)

	err := svc.LoadModel("m1")

	assert.True(t, providers.IsKind(err, providers.KindLoad))
	assert.Empty(t, svc.ActiveModel())

	// a cached artifact that fails to initialize stays cached
	record, ok := svc.Record("m1")
	assert.True(t, ok)
	assert.True(t, record.Downloaded)
	assert.Equal(t, models.LoadError, record.LoadState)
	assert.Contains(t, record.Error, "initialization failed")
	assert.Equal(t, 0, history.AppendCalls)

	finished := rec.named(events.AILoadFinished)
	assert.Len(t, finished, 1)
	assert.Equal(t, events.EventError, finished[0].Type)
}

func TestLocalModelService_HistoryWriteFailureStillAnnouncesSuccess(t *testing.T) {
	history := &mocks.DownloadHistoryRepositoryMock{
		AppendFunc: func(ctx context.Context, modelID string) (*models.DownloadedModel, error) {
			return nil, errors.New("disk full")
		},
	}
	loader := &mocks.LocalLoaderMock{}
	svc := newLocalModelService(t, history, loader, capableProbes(), "")
	rec := recordEvents(t)

	err := svc.LoadModel("m1")

	assert.ErrorContains(t, err, "record download history")
	// the load itself succeeded and is announced as such
	assert.Equal(t, "m1", svc.ActiveModel())
	record, ok := svc.Record("m1")
	assert.True(t, ok)
	assert.Equal(t, models.LoadSuccess, record.LoadState)

	finished := rec.named(events.AILoadFinished)
	assert.Len(t, finished, 1)
	assert.Equal(t, events.EventSuccess, finished[0].Type)
}

func TestLocalModelService_ProgressIsClampedAndMonotonic(t *testing.T) {
	history := &mocks.DownloadHistoryRepositoryMock{}
	loader := &mocks.LocalLoaderMock{
		LoadModelFunc: func(ctx context.Context, modelID string, onProgress func(float64)) error {
			onProgress(0.3)
			onProgress(0.1)
			onProgress(1.7)
			onProgress(-0.2)
			return nil
		},
	}
	svc := newLocalModelService(t, history, loader, capableProbes(), "")
	rec := recordEvents(t)

	assert.NoError(t, svc.LoadModel("m1"))

	progress := rec.named(events.AILoadProgress)
	assert.Len(t, progress, 4)
	expected := []float64{0.3, 0.3, 1, 1}
	previous := 0.0
	for i, evt := range progress {
		assert.Equal(t, expected[i], evt.Progress)
		assert.GreaterOrEqual(t, evt.Progress, previous)
		previous = evt.Progress
	}

	record, _ := svc.Record("m1")
	assert.Equal(t, 1.0, record.Progress)
}

func TestLocalModelService_CancelLoad(t *testing.T) {
	history := &mocks.DownloadHistoryRepositoryMock{}
	loader := &mocks.LocalLoaderMock{
		LoadModelFunc: func(ctx context.Context, modelID string, onProgress func(float64)) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}
	svc := newLocalModelService(t, history, loader, capableProbes(), "")
	rec := recordEvents(t)

	done := make(chan error, 1)
	go func() { done <- svc.LoadModel("m1") }()
	waitFor(t, func() bool { return svc.Loading() == "m1" }, "load to start")

	svc.CancelLoad()

	assert.Empty(t, svc.Loading())
	record, ok := svc.Record("m1")
	assert.True(t, ok)
	assert.Equal(t, models.LoadError, record.LoadState)
	assert.Equal(t, "load canceled", record.Error)

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)

	// the superseded attempt's completion did not mutate anything
	record, _ = svc.Record("m1")
	assert.Equal(t, "load canceled", record.Error)
	assert.Empty(t, svc.ActiveModel())
	assert.Equal(t, 0, history.AppendCalls)

	finished := rec.named(events.AILoadFinished)
	assert.Len(t, finished, 1)
	assert.Equal(t, events.EventWarn, finished[0].Type)
}

func TestLocalModelService_CompatibilityBlocksLoad(t *testing.T) {
	history := &mocks.DownloadHistoryRepositoryMock{}
	loader := &mocks.LocalLoaderMock{}
	probes := capableProbes()
	probes.WasmRuntime = func() bool { return false }
	svc := newLocalModelService(t, history, loader, probes, "")

	report := svc.CheckCompatibility()
	assert.True(t, report.Blocked)
	assert.False(t, report.Degraded)

	err := svc.LoadModel("m1")
	assert.True(t, providers.IsKind(err, providers.KindLoad))
	assert.Equal(t, 0, loader.LoadCalls())
}

func TestLocalModelService_CompatibilityDegrades(t *testing.T) {
	history := &mocks.DownloadHistoryRepositoryMock{}
	loader := &mocks.LocalLoaderMock{}
	probes := capableProbes()
	probes.GPUAcceleration = func() bool { return false }
	probes.MemoryGB = func() float64 { return 2 }
	svc := newLocalModelService(t, history, loader, probes, "")

	report := svc.CheckCompatibility()

	assert.False(t, report.Blocked)
	assert.True(t, report.Degraded)
	assert.Contains(t, report.Detail, "low memory")

	// degraded still loads
	assert.NoError(t, svc.LoadModel("m1"))
	assert.Equal(t, 1, loader.LoadCalls())
}

func TestLocalModelService_AutoLoad(t *testing.T) {
	history := &mocks.DownloadHistoryRepositoryMock{}
	loader := &mocks.LocalLoaderMock{}
	svc := newLocalModelService(t, history, loader, capableProbes(), "")

	list := []models.ModelInfo{
		{ID: "big", Category: models.SizeLarge},
		{ID: "tiny", Category: models.SizeSmall},
	}

	assert.NoError(t, svc.AutoLoad(list, models.AutoLoadPolicy{Strategy: models.StrategySmallest}))
	assert.Equal(t, "tiny", svc.ActiveModel())
	assert.Equal(t, 1, loader.LoadCalls())

	// "none" never loads anything
	assert.NoError(t, svc.AutoLoad(list, models.AutoLoadPolicy{Strategy: models.StrategyNone}))
	assert.Equal(t, 1, loader.LoadCalls())
}

func TestLocalModelService_Startup_ReconcilesCache(t *testing.T) {
	cacheDir := t.TempDir()
	assert.NoError(t, os.MkdirAll(filepath.Join(cacheDir, "m-present"), 0o755))
	assert.NoError(t, os.MkdirAll(filepath.Join(cacheDir, "m-back"), 0o755))

	marked := make(map[string]bool)
	history := &mocks.DownloadHistoryRepositoryMock{
		ListFunc: func(ctx context.Context) ([]models.DownloadedModel, error) {
			return []models.DownloadedModel{
				{ModelID: "m-present", Present: true},
				{ModelID: "m-gone", Present: true},
				{ModelID: "m-back", Present: false},
			}, nil
		},
		MarkPresentFunc: func(ctx context.Context, modelID string, present bool) error {
			marked[modelID] = present
			return nil
		},
	}
	svc := services.NewLocalModelService("webllm", history, &mocks.LocalLoaderMock{}, capableProbes(), cacheDir)

	assert.NoError(t, svc.Startup(context.Background()))

	// only rows whose on-disk state disagrees are touched; none are deleted
	assert.Equal(t, map[string]bool{"m-gone": false, "m-back": true}, marked)
	assert.Len(t, svc.Records(), 3)
	for _, rec := range svc.Records() {
		assert.True(t, rec.Downloaded)
		assert.Equal(t, models.LoadIdle, rec.LoadState)
	}
}
