package services

import (
	"context"

	"gorm.io/gorm"

	"inkwell/internal/providers"
	"inkwell/internal/repositories"
)

// DbServices aggregates all domain services backed by the database.
type DbServices struct {
	AppSettings     AppSettingsService
	Connections     *ConnectionService
	LocalModels     *LocalModelService
	ProviderRepo    repositories.ProviderSettingsRepository
	DownloadHistory repositories.DownloadHistoryRepository
}

// NewDbServices constructs the service container using repositories
// backed by db. The driver factory and local runtime bindings come from
// the caller so tests can swap them.
func NewDbServices(db *gorm.DB, registry *providers.Registry, secrets SecretStore, factory providers.DriverFactory, loader providers.LocalLoader, probes CompatibilityProbes, cacheDir string) *DbServices {
	providerRepo := repositories.NewProviderSettingsRepository(db)
	historyRepo := repositories.NewDownloadHistoryRepository(db)
	appSettingsRepo := repositories.NewAppSettingsRepository(db)

	return &DbServices{
		AppSettings:     NewAppSettingsService(appSettingsRepo, registry),
		Connections:     NewConnectionService(registry, providerRepo, secrets, factory),
		LocalModels:     NewLocalModelService("webllm", historyRepo, loader, probes, cacheDir),
		ProviderRepo:    providerRepo,
		DownloadHistory: historyRepo,
	}
}

// StartDbServices runs every service's startup hook.
func (s *DbServices) StartDbServices(ctx context.Context) error {
	s.AppSettings.Startup(ctx)
	if err := s.Connections.Startup(ctx); err != nil {
		return err
	}
	return s.LocalModels.Startup(ctx)
}
