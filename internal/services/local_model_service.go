package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"inkwell/internal/catalog"
	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/providers"
	"inkwell/internal/repositories"
	"inkwell/internal/utils"
)

// CompatibilityProbes are the injected capability checks for the
// in-process runtime. Each probe is synchronous and cheap.
type CompatibilityProbes struct {
	GPUAcceleration func() bool
	WasmRuntime     func() bool
	MemoryGB        func() float64
}

// LocalModelService manages download/initialize/cache state for models
// that execute entirely on this device. At most one load is in flight
// system-wide; a second request is rejected, never queued. There is no
// automatic retry anywhere: retrying a multi-hundred-megabyte download
// silently is the caller's call to make, not ours.
type LocalModelService struct {
	providerID string
	history    repositories.DownloadHistoryRepository
	loader     providers.LocalLoader
	probes     CompatibilityProbes
	cacheDir   string
	ctx        context.Context

	mu         sync.Mutex
	records    map[string]*models.LocalModelRecord
	loading    string // model id in flight, empty when idle
	attempt    string // guards late progress callbacks from a superseded load
	loadCancel context.CancelFunc
	active     string
}

func NewLocalModelService(providerID string, history repositories.DownloadHistoryRepository, loader providers.LocalLoader, probes CompatibilityProbes, cacheDir string) *LocalModelService {
	return &LocalModelService{
		providerID: providerID,
		history:    history,
		loader:     loader,
		probes:     probes,
		cacheDir:   cacheDir,
		records:    make(map[string]*models.LocalModelRecord),
	}
}

// Startup loads the persisted download history and reconciles it against
// the runtime cache. The history list is a hint, not a source of truth:
// rows whose artifacts are gone are marked absent but never deleted.
func (s *LocalModelService) Startup(ctx context.Context) error {
	s.ctx = ctx

	rows, err := s.history.List(ctx)
	if err != nil {
		return fmt.Errorf("load download history: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		if s.cacheDir != "" {
			onDisk := utils.DirectoryExists(filepath.Join(s.cacheDir, sanitizeModelDir(row.ModelID)))
			if onDisk != row.Present {
				if err := s.history.MarkPresent(ctx, row.ModelID, onDisk); err != nil {
					return fmt.Errorf("reconcile download history: %w", err)
				}
			}
		}
		s.records[row.ModelID] = &models.LocalModelRecord{
			ModelID:    row.ModelID,
			Downloaded: true,
			LoadState:  models.LoadIdle,
		}
	}
	return nil
}

// CheckCompatibility probes the runtime capabilities. Missing GPU
// acceleration or low memory only degrades; a missing execution runtime
// blocks loading outright.
func (s *LocalModelService) CheckCompatibility() models.CompatibilityReport {
	report := models.CompatibilityReport{
		GPUAcceleration: s.probes.GPUAcceleration != nil && s.probes.GPUAcceleration(),
		WasmRuntime:     s.probes.WasmRuntime != nil && s.probes.WasmRuntime(),
	}
	if s.probes.MemoryGB != nil {
		report.MemoryGB = s.probes.MemoryGB()
	}

	if !report.WasmRuntime {
		report.Blocked = true
		report.Detail = "no execution runtime available"
		return report
	}
	if !report.GPUAcceleration {
		report.Degraded = true
		report.Detail = "no graphics acceleration; inference will run on CPU"
	}
	if report.MemoryGB > 0 && report.MemoryGB < 4 {
		report.Degraded = true
		if report.Detail != "" {
			report.Detail += "; "
		}
		report.Detail += "low memory, large models may fail to initialize"
	}
	return report
}

// LoadModel downloads (if needed) and initializes one model. The call
// blocks until the load finishes; concurrent requests are rejected with
// a concurrency error while one is in flight.
func (s *LocalModelService) LoadModel(modelID string) error {
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return fmt.Errorf("model id is required")
	}
	if s.loader == nil {
		return providers.NewConfigurationError(s.providerID, "no local runtime configured")
	}

	if report := s.CheckCompatibility(); report.Blocked {
		return providers.NewLoadError(s.providerID, modelID, fmt.Errorf("%s", report.Detail))
	}

	s.mu.Lock()
	if s.loading != "" {
		inFlight := s.loading
		s.mu.Unlock()
		return providers.NewAlreadyLoadingError(inFlight)
	}

	rec := s.recordLocked(modelID)
	rec.LoadState = models.LoadLoading
	rec.Progress = 0
	rec.Error = ""

	attemptID := uuid.NewString()
	s.loading = modelID
	s.attempt = attemptID
	ctx, cancel := context.WithCancel(s.ctx)
	s.loadCancel = cancel
	s.mu.Unlock()

	err := s.loader.LoadModel(ctx, modelID, func(p float64) {
		s.reportProgress(modelID, attemptID, p)
	})
	cancel()

	s.mu.Lock()
	if s.attempt != attemptID {
		// a cancel already finalized this attempt
		s.mu.Unlock()
		return err
	}
	s.loading = ""
	s.attempt = ""
	s.loadCancel = nil
	rec = s.recordLocked(modelID)

	if err != nil {
		// the active model and any prior download-history entry are
		// deliberately untouched: a cached artifact that fails to
		// initialize stays cached
		rec.LoadState = models.LoadError
		rec.Error = err.Error()
		s.mu.Unlock()

		wrapped := providers.NewLoadError(s.providerID, modelID, err)
		evt := events.NewProviderEvent(events.EventError, s.providerID, wrapped.Error())
		evt.ModelID = modelID
		events.Emit(s.ctx, events.AILoadFinished, evt)
		return wrapped
	}

	now := time.Now()
	rec.LoadState = models.LoadSuccess
	rec.Progress = 1
	rec.Downloaded = true
	rec.LastLoadedAt = &now
	s.active = modelID
	s.mu.Unlock()

	evt := events.NewProviderEvent(events.EventSuccess, s.providerID, fmt.Sprintf("model %s ready", modelID))
	evt.ModelID = modelID
	events.Emit(s.ctx, events.AILoadFinished, evt)

	if _, err := s.history.Append(s.ctx, modelID); err != nil {
		// the model is loaded and announced; a failed history write only
		// costs the next reconcile pass
		return fmt.Errorf("record download history: %w", err)
	}
	return nil
}

// CancelLoad cancels the in-flight load, if any. The superseded load's
// late completion cannot mutate shared state afterwards.
func (s *LocalModelService) CancelLoad() {
	s.mu.Lock()
	if s.loading == "" {
		s.mu.Unlock()
		return
	}
	modelID := s.loading
	cancel := s.loadCancel
	rec := s.recordLocked(modelID)
	rec.LoadState = models.LoadError
	rec.Error = "load canceled"
	s.loading = ""
	s.attempt = ""
	s.loadCancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	evt := events.NewProviderEvent(events.EventWarn, s.providerID, fmt.Sprintf("load of %s canceled", modelID))
	evt.ModelID = modelID
	events.Emit(s.ctx, events.AILoadFinished, evt)
}

// reportProgress clamps the noisy underlying signal so observed progress
// never decreases within one attempt.
func (s *LocalModelService) reportProgress(modelID, attemptID string, sample float64) {
	s.mu.Lock()
	if s.attempt != attemptID {
		s.mu.Unlock()
		return
	}
	rec := s.recordLocked(modelID)
	if sample < 0 {
		sample = 0
	}
	if sample > 1 {
		sample = 1
	}
	if sample < rec.Progress {
		sample = rec.Progress
	}
	rec.Progress = sample
	s.mu.Unlock()

	evt := events.NewProviderEvent(events.EventInfo, s.providerID, "downloading")
	evt.ModelID = modelID
	evt.Progress = sample
	events.Emit(s.ctx, events.AILoadProgress, evt)
}

// AutoLoad resolves the policy against the given catalog and, when it
// yields a model, loads it. Resolution itself is pure and lives in the
// catalog package.
func (s *LocalModelService) AutoLoad(list []models.ModelInfo, policy models.AutoLoadPolicy) error {
	modelID, ok := catalog.ResolveAutoLoad(list, policy)
	if !ok {
		return nil
	}
	return s.LoadModel(modelID)
}

// ActiveModel returns the single system-wide active model id, if any.
func (s *LocalModelService) ActiveModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Loading returns the model id currently loading, or empty.
func (s *LocalModelService) Loading() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Record returns a copy of one model's runtime record.
func (s *LocalModelService) Record(modelID string) (models.LocalModelRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[modelID]
	if !ok {
		return models.LocalModelRecord{}, false
	}
	return *rec, true
}

// Records returns copies of all known runtime records, sorted by id.
func (s *LocalModelService) Records() []models.LocalModelRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.LocalModelRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModelID < out[j].ModelID })
	return out
}

// DownloadedHistory returns the persisted append-only history.
func (s *LocalModelService) DownloadedHistory() ([]models.DownloadedModel, error) {
	return s.history.List(s.ctx)
}

func (s *LocalModelService) recordLocked(modelID string) *models.LocalModelRecord {
	rec, ok := s.records[modelID]
	if !ok {
		rec = &models.LocalModelRecord{ModelID: modelID, LoadState: models.LoadIdle}
		s.records[modelID] = rec
	}
	return rec
}

// sanitizeModelDir mirrors how the runtime names artifact directories.
func sanitizeModelDir(modelID string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, modelID)
}

// DefaultCacheDir is where the in-process runtime keeps downloaded
// artifacts.
func DefaultCacheDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "inkwell", "model-cache")
}
