package unit_tests

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"inkwell/internal/models"
	"inkwell/internal/providers"
	"inkwell/internal/services"
	"inkwell/internal/tests/mocks"
)

func newAppSettingsService(t *testing.T, repo *mocks.AppSettingsRepositoryMock) services.AppSettingsService {
	t.Helper()
	registry, err := providers.NewRegistry()
	assert.NoError(t, err)
	return services.NewAppSettingsService(repo, registry)
}

func validSettingsInput() services.UpdateAppSettingsInput {
	return services.UpdateAppSettingsInput{
		Theme:               "dark",
		Locale:              "en",
		PreferredProviderID: "openai",
		Temperature:         0.7,
		MaxTokens:           2048,
		AutoLoadStrategy:    string(models.StrategySmallest),
	}
}

func TestAppSettingsService_Get_Success(t *testing.T) {
	expected := &models.AppSettings{
		ID:          1,
		Version:     1,
		Theme:       "dark",
		Locale:      "fr",
		Temperature: 0.5,
		MaxTokens:   1024,
	}
	repo := &mocks.AppSettingsRepositoryMock{
		GetFunc: func(ctx context.Context) (*models.AppSettings, error) {
			return expected, nil
		},
	}
	service := newAppSettingsService(t, repo)

	settings, err := service.Get()
	assert.NoError(t, err)
	assert.Equal(t, expected.Theme, settings.Theme)
	assert.Equal(t, expected.Locale, settings.Locale)
	assert.Equal(t, expected.Temperature, settings.Temperature)
}

func TestAppSettingsService_Get_RepositoryError(t *testing.T) {
	repo := &mocks.AppSettingsRepositoryMock{
		GetFunc: func(ctx context.Context) (*models.AppSettings, error) {
			return nil, errors.New("database error")
		},
	}
	service := newAppSettingsService(t, repo)

	_, err := service.Get()
	assert.EqualError(t, err, "database error")
}

func TestAppSettingsService_Update_Success(t *testing.T) {
	var saved *models.AppSettings
	repo := &mocks.AppSettingsRepositoryMock{
		UpdateFunc: func(ctx context.Context, settings *models.AppSettings) error {
			saved = settings
			return nil
		},
	}
	service := newAppSettingsService(t, repo)

	input := validSettingsInput()
	input.SystemPrompt = "You help with note taking."
	input.AutoLoad = true
	input.LocalDefaultModelID = "Phi-3.5-mini-instruct-q4f16_1-MLC"

	updated, err := service.Update(input)
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, "dark", updated.Theme)
	assert.Equal(t, "openai", updated.PreferredProviderID)
	assert.Equal(t, "You help with note taking.", updated.SystemPrompt)
	assert.True(t, updated.AutoLoad)
	assert.Equal(t, "Phi-3.5-mini-instruct-q4f16_1-MLC", updated.LocalDefaultModelID)
	assert.False(t, updated.UpdatedAt.IsZero())
}

func TestAppSettingsService_Update_InvalidTheme(t *testing.T) {
	service := newAppSettingsService(t, &mocks.AppSettingsRepositoryMock{})

	input := validSettingsInput()
	input.Theme = "neon"
	_, err := service.Update(input)
	assert.Error(t, err)

	input.Theme = ""
	_, err = service.Update(input)
	assert.EqualError(t, err, "theme is required")
}

func TestAppSettingsService_Update_MissingLocale(t *testing.T) {
	service := newAppSettingsService(t, &mocks.AppSettingsRepositoryMock{})

	input := validSettingsInput()
	input.Locale = ""
	_, err := service.Update(input)
	assert.EqualError(t, err, "locale is required")
}

func TestAppSettingsService_Update_NonPositiveMaxTokens(t *testing.T) {
	service := newAppSettingsService(t, &mocks.AppSettingsRepositoryMock{})

	input := validSettingsInput()
	input.MaxTokens = 0
	_, err := service.Update(input)
	assert.Error(t, err)
}

func TestAppSettingsService_Update_UnknownStrategy(t *testing.T) {
	service := newAppSettingsService(t, &mocks.AppSettingsRepositoryMock{})

	input := validSettingsInput()
	input.AutoLoadStrategy = "largest"
	_, err := service.Update(input)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "largest")
}

func TestAppSettingsService_Update_EmptyStrategyKeepsPersisted(t *testing.T) {
	repo := &mocks.AppSettingsRepositoryMock{
		GetFunc: func(ctx context.Context) (*models.AppSettings, error) {
			return &models.AppSettings{
				ID:               1,
				Theme:            "system",
				Locale:           "en",
				AutoLoadStrategy: string(models.StrategyBalanced),
			}, nil
		},
	}
	service := newAppSettingsService(t, repo)

	input := validSettingsInput()
	input.AutoLoadStrategy = ""
	updated, err := service.Update(input)
	assert.NoError(t, err)
	assert.Equal(t, string(models.StrategyBalanced), updated.AutoLoadStrategy)
}

func TestAppSettingsService_Update_EmptyStrategyDefaultsToSmallest(t *testing.T) {
	repo := &mocks.AppSettingsRepositoryMock{
		GetFunc: func(ctx context.Context) (*models.AppSettings, error) {
			return &models.AppSettings{ID: 1, Theme: "system", Locale: "en"}, nil
		},
	}
	service := newAppSettingsService(t, repo)

	input := validSettingsInput()
	input.AutoLoadStrategy = ""
	updated, err := service.Update(input)
	assert.NoError(t, err)
	assert.Equal(t, string(models.StrategySmallest), updated.AutoLoadStrategy)
}

func TestAppSettingsService_Update_TemperatureBoundsPerProvider(t *testing.T) {
	service := newAppSettingsService(t, &mocks.AppSettingsRepositoryMock{})

	// 1.5 is valid for OpenAI (max 2)...
	input := validSettingsInput()
	input.PreferredProviderID = "openai"
	input.Temperature = 1.5
	_, err := service.Update(input)
	assert.NoError(t, err)

	// ...but out of range for Anthropic (max 1)
	input.PreferredProviderID = "anthropic"
	_, err = service.Update(input)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 1")
}

func TestAppSettingsService_Update_UnknownProvider(t *testing.T) {
	service := newAppSettingsService(t, &mocks.AppSettingsRepositoryMock{})

	input := validSettingsInput()
	input.PreferredProviderID = "acme-llm"
	_, err := service.Update(input)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "acme-llm")
}

func TestAppSettingsService_Update_NoProviderNegativeTemperature(t *testing.T) {
	service := newAppSettingsService(t, &mocks.AppSettingsRepositoryMock{})

	input := validSettingsInput()
	input.PreferredProviderID = ""
	input.Temperature = -0.1
	_, err := service.Update(input)
	assert.Error(t, err)
}

func TestAppSettingsService_AutoLoadPolicy(t *testing.T) {
	repo := &mocks.AppSettingsRepositoryMock{
		GetFunc: func(ctx context.Context) (*models.AppSettings, error) {
			return &models.AppSettings{
				AutoLoad:            true,
				AutoLoadStrategy:    string(models.StrategyFastest),
				LocalDefaultModelID: "Llama-3.2-1B-Instruct-q4f16_1-MLC",
			}, nil
		},
	}
	service := newAppSettingsService(t, repo)

	policy, err := service.AutoLoadPolicy()
	assert.NoError(t, err)
	assert.Equal(t, models.StrategyFastest, policy.Strategy)
	assert.Equal(t, "Llama-3.2-1B-Instruct-q4f16_1-MLC", policy.DefaultModelID)
}

func TestAppSettingsService_AutoLoadPolicy_Disabled(t *testing.T) {
	repo := &mocks.AppSettingsRepositoryMock{
		GetFunc: func(ctx context.Context) (*models.AppSettings, error) {
			return &models.AppSettings{AutoLoad: false, AutoLoadStrategy: string(models.StrategySmallest)}, nil
		},
	}
	service := newAppSettingsService(t, repo)

	policy, err := service.AutoLoadPolicy()
	assert.NoError(t, err)
	assert.Equal(t, models.StrategyNone, policy.Strategy)
}
