package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/providers"
	"inkwell/internal/repositories"
)

// UpdateAppSettingsInput carries every editable app-wide preference.
type UpdateAppSettingsInput struct {
	Theme               string  `json:"theme"`
	Locale              string  `json:"locale"`
	PreferredProviderID string  `json:"preferredProviderId"`
	Temperature         float64 `json:"temperature"`
	MaxTokens           int     `json:"maxTokens"`
	SystemPrompt        string  `json:"systemPrompt"`
	LocalDefaultModelID string  `json:"localDefaultModelId"`
	AutoLoad            bool    `json:"autoLoad"`
	AutoLoadStrategy    string  `json:"autoLoadStrategy"`
}

type AppSettingsService interface {
	Get() (*models.AppSettings, error)
	Update(input UpdateAppSettingsInput) (*models.AppSettings, error)
	AutoLoadPolicy() (models.AutoLoadPolicy, error)
	Startup(ctx context.Context)
}

type appSettingsService struct {
	appSettings repositories.AppSettingsRepository
	registry    *providers.Registry
	context     context.Context
}

func (s *appSettingsService) Startup(ctx context.Context) {
	s.context = ctx
}

func NewAppSettingsService(appSettings repositories.AppSettingsRepository, registry *providers.Registry) AppSettingsService {
	return &appSettingsService{appSettings: appSettings, registry: registry}
}

func (s *appSettingsService) Get() (*models.AppSettings, error) {
	return s.appSettings.Get(context.Background())
}

func (s *appSettingsService) Update(input UpdateAppSettingsInput) (*models.AppSettings, error) {
	if input.Theme == "" {
		return nil, errors.New("theme is required")
	}
	if input.Locale == "" {
		return nil, errors.New("locale is required")
	}
	if input.Theme != "light" && input.Theme != "dark" && input.Theme != "system" {
		return nil, errors.New("theme must be 'light', 'dark', or 'system'")
	}
	if input.MaxTokens <= 0 {
		return nil, errors.New("max tokens must be positive")
	}

	// an empty strategy keeps the persisted one; only a named strategy
	// is validated
	if input.AutoLoadStrategy != "" {
		switch models.AutoLoadStrategy(input.AutoLoadStrategy) {
		case models.StrategySmallest, models.StrategyFastest, models.StrategyBalanced, models.StrategyDefaultModel, models.StrategyNone:
		default:
			return nil, fmt.Errorf("unknown auto-load strategy: %s", input.AutoLoadStrategy)
		}
	}

	// Temperature bounds are per provider, not global.
	if input.PreferredProviderID != "" {
		desc, ok := s.registry.Get(input.PreferredProviderID)
		if !ok {
			return nil, fmt.Errorf("unknown provider: %s", input.PreferredProviderID)
		}
		if input.Temperature < desc.TemperatureMin || input.Temperature > desc.TemperatureMax {
			return nil, fmt.Errorf("temperature must be between %g and %g for %s",
				desc.TemperatureMin, desc.TemperatureMax, desc.DisplayName)
		}
	} else if input.Temperature < 0 {
		return nil, errors.New("temperature must not be negative")
	}

	current, err := s.appSettings.Get(context.Background())
	if err != nil {
		return nil, err
	}

	current.Theme = input.Theme
	current.Locale = input.Locale
	current.PreferredProviderID = input.PreferredProviderID
	current.Temperature = input.Temperature
	current.MaxTokens = input.MaxTokens
	current.SystemPrompt = input.SystemPrompt
	current.LocalDefaultModelID = input.LocalDefaultModelID
	current.AutoLoad = input.AutoLoad
	if input.AutoLoadStrategy != "" {
		current.AutoLoadStrategy = input.AutoLoadStrategy
	} else if current.AutoLoadStrategy == "" {
		current.AutoLoadStrategy = string(models.StrategySmallest)
	}
	current.UpdatedAt = time.Now()

	if err := s.appSettings.Update(context.Background(), current); err != nil {
		return nil, err
	}

	return current, nil
}

func (s *appSettingsService) AutoLoadPolicy() (models.AutoLoadPolicy, error) {
	current, err := s.appSettings.Get(context.Background())
	if err != nil {
		return models.AutoLoadPolicy{Strategy: models.StrategyNone}, err
	}
	return models.AutoLoadPolicyFromSettings(current), nil
}
