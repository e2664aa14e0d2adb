package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"inkwell/internal/catalog"
	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/providers"
	"inkwell/internal/repositories"
)

// SecretStore abstracts the OS keyring so managers and tests do not
// depend on a real keychain.
type SecretStore interface {
	StoreApiKey(provider string, apiKey []byte) error
	GetApiKey(provider string) (string, error)
	DeleteApiKey(provider string) error
}

// ConnectionService owns one ConnectionManager per registered provider.
// The driver for each provider is selected exactly once, at startup, via
// the registry; nothing downstream branches on provider identity.
type ConnectionService struct {
	registry *providers.Registry
	repo     repositories.ProviderSettingsRepository
	secrets  SecretStore
	factory  providers.DriverFactory
	timeout  time.Duration

	ctx      context.Context
	mu       sync.RWMutex
	managers map[string]*ConnectionManager
}

func NewConnectionService(registry *providers.Registry, repo repositories.ProviderSettingsRepository, secrets SecretStore, factory providers.DriverFactory) *ConnectionService {
	return &ConnectionService{
		registry: registry,
		repo:     repo,
		secrets:  secrets,
		factory:  factory,
		timeout:  providers.DefaultTimeout,
		managers: make(map[string]*ConnectionManager),
	}
}

// SetTimeout overrides the per-request deadline. Used by tests.
func (s *ConnectionService) SetTimeout(d time.Duration) {
	s.timeout = d
}

func (s *ConnectionService) Startup(ctx context.Context) error {
	s.ctx = ctx

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, desc := range s.registry.List() {
		manager, err := newConnectionManager(ctx, desc, s.repo, s.secrets, s.factory, s.timeout)
		if err != nil {
			return fmt.Errorf("init connection manager for %s: %w", desc.ID, err)
		}
		s.managers[desc.ID] = manager
	}
	return nil
}

// Manager returns the per-provider manager.
func (s *ConnectionService) Manager(providerID string) (*ConnectionManager, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	manager, ok := s.managers[strings.TrimSpace(providerID)]
	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", providerID)
	}
	return manager, nil
}

// ListProviders exposes the descriptor catalog to the UI.
func (s *ConnectionService) ListProviders() []models.ProviderDescriptor {
	return s.registry.List()
}

// Wails-facing wrappers. The frontend addresses providers by id.

func (s *ConnectionService) SetAPIKey(providerID, key string) error {
	manager, err := s.Manager(providerID)
	if err != nil {
		return err
	}
	return manager.SetAPIKey(key)
}

func (s *ConnectionService) TestConnection(providerID string) (bool, error) {
	manager, err := s.Manager(providerID)
	if err != nil {
		return false, err
	}
	return manager.TestConnection()
}

func (s *ConnectionService) LoadModels(providerID string) error {
	manager, err := s.Manager(providerID)
	if err != nil {
		return err
	}
	return manager.LoadModels()
}

func (s *ConnectionService) SaveSettings(providerID, selectedModelID, customURL string) error {
	manager, err := s.Manager(providerID)
	if err != nil {
		return err
	}
	return manager.SaveSettings(selectedModelID, customURL)
}

func (s *ConnectionService) State(providerID string) (models.ConnectionState, error) {
	manager, err := s.Manager(providerID)
	if err != nil {
		return "", err
	}
	return manager.State(), nil
}

func (s *ConnectionService) Models(providerID string) ([]models.ModelInfo, error) {
	manager, err := s.Manager(providerID)
	if err != nil {
		return nil, err
	}
	return manager.Models(), nil
}

func (s *ConnectionService) ModelGroups(providerID string) ([]models.ModelGroup, error) {
	manager, err := s.Manager(providerID)
	if err != nil {
		return nil, err
	}
	return catalog.GroupByCategory(manager.Models()), nil
}

func (s *ConnectionService) Settings(providerID string) (*models.ProviderSettings, error) {
	manager, err := s.Manager(providerID)
	if err != nil {
		return nil, err
	}
	return manager.Settings(), nil
}

// ConnectionManager owns the key lifecycle, connection testing, model
// refresh and settings persistence for a single provider.
//
// State machine: disconnected -> connecting -> {connected | error}.
// connected -> disconnected happens only through explicit key removal,
// and that edge is synchronous: it never passes through connecting.
type ConnectionManager struct {
	desc    models.ProviderDescriptor
	driver  providers.Driver
	repo    repositories.ProviderSettingsRepository
	secrets SecretStore
	timeout time.Duration
	ctx     context.Context

	mu       sync.Mutex
	state    models.ConnectionState
	models   []models.ModelInfo
	settings *models.ProviderSettings
	apiKey   string

	// epoch increments on every key change and whenever an in-flight
	// request is superseded. Requests carry the epoch they were issued
	// under and their results are discarded when it no longer matches: a
	// stale response, or the late failure of a canceled request, must
	// never overwrite newer state.
	epoch    uint64
	inflight context.CancelFunc
}

func newConnectionManager(ctx context.Context, desc models.ProviderDescriptor, repo repositories.ProviderSettingsRepository, secrets SecretStore, factory providers.DriverFactory, timeout time.Duration) (*ConnectionManager, error) {
	m := &ConnectionManager{
		desc:    desc,
		repo:    repo,
		secrets: secrets,
		timeout: timeout,
		ctx:     ctx,
		state:   models.StateDisconnected,
	}
	m.driver = factory(desc, m.credentials)

	settings, err := repo.GetOrCreate(ctx, desc.ID)
	if err != nil {
		return nil, err
	}
	m.settings = settings

	if desc.RequiresAPIKey {
		// missing keyring entry just means no key yet
		if key, err := secrets.GetApiKey(desc.ID); err == nil {
			m.apiKey = strings.TrimSpace(key)
		}
	}
	return m, nil
}

// credentials snapshots the mutable connection inputs for the driver.
func (m *ConnectionManager) credentials() providers.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return providers.Credentials{APIKey: m.apiKey, BaseURL: m.settings.CustomURL}
}

func (m *ConnectionManager) Descriptor() models.ProviderDescriptor {
	return m.desc
}

func (m *ConnectionManager) State() models.ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *ConnectionManager) Models() []models.ModelInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ModelInfo(nil), m.models...)
}

func (m *ConnectionManager) Settings() *models.ProviderSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *m.settings
	return &copied
}

// HasAPIKey reports whether a key is configured, without exposing it.
func (m *ConnectionManager) HasAPIKey() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.apiKey != ""
}

// SetAPIKey persists the key and triggers a model refresh. Setting an
// empty key clears the model list and forces disconnected immediately;
// that transition bypasses connecting entirely.
func (m *ConnectionManager) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)

	if key == "" {
		m.mu.Lock()
		m.cancelInflightLocked()
		m.epoch++
		m.apiKey = ""
		m.models = nil
		m.state = models.StateDisconnected
		m.settings.ConnectionError = ""
		m.settings.LastValidated = nil
		settings := *m.settings
		m.mu.Unlock()

		// tolerate a missing keyring entry
		_ = m.secrets.DeleteApiKey(m.desc.ID)
		if err := m.repo.Update(m.ctx, &settings); err != nil {
			return err
		}
		m.emitState(models.StateDisconnected, "API key removed")
		return nil
	}

	m.mu.Lock()
	m.cancelInflightLocked()
	m.epoch++
	m.apiKey = key
	m.mu.Unlock()

	if err := m.secrets.StoreApiKey(m.desc.ID, []byte(key)); err != nil {
		return fmt.Errorf("store api key: %w", err)
	}

	// refresh outcome is reported through state and events, not the
	// return value of the key write
	_ = m.LoadModels()
	return nil
}

// TestConnection probes the provider. A key-requiring provider with no
// key short-circuits to false before the driver is ever invoked.
func (m *ConnectionManager) TestConnection() (bool, error) {
	m.mu.Lock()
	if m.desc.RequiresAPIKey && m.apiKey == "" {
		m.mu.Unlock()
		return false, providers.NewConfigurationError(m.desc.ID, "api key is required")
	}

	ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
	m.cancelInflightLocked()
	m.inflight = cancel
	epoch := m.epoch
	m.state = models.StateConnecting
	m.mu.Unlock()
	m.emitState(models.StateConnecting, "testing connection")

	ok, err := m.driver.TestConnection(ctx)
	cancel()

	m.mu.Lock()
	if m.epoch != epoch {
		// superseded; drop the result
		m.mu.Unlock()
		return false, nil
	}
	m.inflight = nil

	if err != nil || !ok {
		if err == nil {
			err = fmt.Errorf("connection test failed")
		}
		wrapped := providers.NewConnectionError(m.desc.ID, err)
		m.state = models.StateError
		m.settings.ConnectionError = wrapped.Error()
		settings := *m.settings
		m.mu.Unlock()

		_ = m.repo.Update(m.ctx, &settings)
		m.emitState(models.StateError, wrapped.Error())
		return false, wrapped
	}

	now := time.Now()
	m.state = models.StateConnected
	m.settings.LastValidated = &now
	m.settings.ConnectionError = ""
	settings := *m.settings
	m.mu.Unlock()

	if err := m.repo.Update(m.ctx, &settings); err != nil {
		return true, err
	}
	m.emitState(models.StateConnected, "connection verified")

	// a verified connection immediately refreshes the model list
	_ = m.LoadModels()
	return true, nil
}

func (m *ConnectionManager) isConfiguredLocked() bool {
	if m.desc.RequiresAPIKey && m.apiKey == "" {
		return false
	}
	if m.desc.Kind == models.KindLocalDaemon && m.effectiveURLLocked() == "" {
		return false
	}
	return true
}

func (m *ConnectionManager) effectiveURLLocked() string {
	if url := strings.TrimSpace(m.settings.CustomURL); url != "" {
		return url
	}
	return m.desc.DefaultURL
}

// EffectiveURL is the custom URL when set, else the descriptor default.
func (m *ConnectionManager) EffectiveURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.effectiveURLLocked()
}

// LoadModels refreshes the provider's model list. On failure the
// previous list is kept: stale data beats an empty picker.
func (m *ConnectionManager) LoadModels() error {
	m.mu.Lock()
	if !m.isConfiguredLocked() {
		m.mu.Unlock()
		return providers.NewConfigurationError(m.desc.ID, "provider is not configured")
	}

	ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
	m.cancelInflightLocked()
	m.inflight = cancel
	epoch := m.epoch
	m.mu.Unlock()

	fetched, err := m.driver.FetchModels(ctx)
	cancel()

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return nil
	}
	m.inflight = nil

	if err != nil {
		wrapped := providers.NewConnectionError(m.desc.ID, err)
		m.settings.ConnectionError = wrapped.Error()
		settings := *m.settings
		m.mu.Unlock()

		_ = m.repo.Update(m.ctx, &settings)
		m.emitEvent(events.AIModelsRefreshed, events.NewProviderEvent(events.EventError, m.desc.ID, wrapped.Error()))
		return wrapped
	}

	normalized := catalog.Normalize(fetched)
	m.models = normalized
	m.settings.ConnectionError = ""
	if m.settings.SelectedModelID == "" && m.desc.SupportsModelSelection {
		m.settings.SelectedModelID = catalog.DefaultSelection(normalized)
	}
	settings := *m.settings
	count := len(normalized)
	m.mu.Unlock()

	if err := m.repo.Update(m.ctx, &settings); err != nil {
		return err
	}
	evt := events.NewProviderEvent(events.EventSuccess, m.desc.ID, fmt.Sprintf("loaded %d models", count))
	m.emitEvent(events.AIModelsRefreshed, evt)
	return nil
}

// SaveSettings persists the selected model and custom URL. Saving
// identical values is a no-op: no write, no event.
func (m *ConnectionManager) SaveSettings(selectedModelID, customURL string) error {
	selectedModelID = strings.TrimSpace(selectedModelID)
	customURL = strings.TrimSpace(customURL)

	m.mu.Lock()
	if m.settings.SelectedModelID == selectedModelID && m.settings.CustomURL == customURL {
		m.mu.Unlock()
		return nil
	}
	if m.settings.CustomURL != customURL {
		// a URL change invalidates any request still running against the
		// old endpoint
		m.cancelInflightLocked()
	}
	m.settings.SelectedModelID = selectedModelID
	m.settings.CustomURL = customURL
	settings := *m.settings
	m.mu.Unlock()

	if err := m.repo.Update(m.ctx, &settings); err != nil {
		return err
	}
	m.emitEvent(events.AISettingsSaved, events.NewProviderEvent(events.EventSuccess, m.desc.ID, "settings saved"))
	return nil
}

// cancelInflightLocked cancels the in-flight request, if any, and bumps
// the epoch so its late completion is discarded.
func (m *ConnectionManager) cancelInflightLocked() {
	if m.inflight != nil {
		m.inflight()
		m.inflight = nil
		m.epoch++
	}
}

func (m *ConnectionManager) emitState(state models.ConnectionState, message string) {
	eventType := events.EventInfo
	switch state {
	case models.StateConnected:
		eventType = events.EventSuccess
	case models.StateError:
		eventType = events.EventError
	}
	evt := events.NewProviderEvent(eventType, m.desc.ID, message)
	evt.State = string(state)
	m.emitEvent(events.AIConnectionState, evt)
}

func (m *ConnectionManager) emitEvent(name string, evt events.ProviderEvent) {
	events.Emit(events.WithProvider(m.ctx, m.desc.ID), name, evt)
}
