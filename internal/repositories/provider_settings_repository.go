package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"inkwell/internal/models"
)

type ProviderSettingsRepository interface {
	// GetOrCreate returns the row for a provider, creating it with
	// defaults on first access.
	GetOrCreate(ctx context.Context, providerID string) (*models.ProviderSettings, error)
	Update(ctx context.Context, settings *models.ProviderSettings) error
	// Clear resets a provider's row to defaults without deleting it.
	Clear(ctx context.Context, providerID string) error
}

type providerSettingsRepository struct {
	db *gorm.DB
}

func NewProviderSettingsRepository(db *gorm.DB) ProviderSettingsRepository {
	return &providerSettingsRepository{db: db}
}

func (r *providerSettingsRepository) GetOrCreate(ctx context.Context, providerID string) (*models.ProviderSettings, error) {
	if providerID == "" {
		return nil, fmt.Errorf("provider id is required")
	}
	var settings models.ProviderSettings
	err := r.db.WithContext(ctx).Where("provider_id = ?", providerID).Take(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.ProviderSettings{ProviderID: providerID}
		if err := r.db.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, err
		}
		return &settings, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *providerSettingsRepository) Update(ctx context.Context, settings *models.ProviderSettings) error {
	if settings == nil || settings.ProviderID == "" {
		return fmt.Errorf("provider id is required")
	}
	return r.db.WithContext(ctx).Save(settings).Error
}

func (r *providerSettingsRepository) Clear(ctx context.Context, providerID string) error {
	if providerID == "" {
		return fmt.Errorf("provider id is required")
	}
	return r.db.WithContext(ctx).Model(&models.ProviderSettings{}).
		Where("provider_id = ?", providerID).
		Updates(map[string]interface{}{
			"selected_model_id": "",
			"custom_url":        "",
			"last_validated":    nil,
			"connection_error":  "",
		}).Error
}
