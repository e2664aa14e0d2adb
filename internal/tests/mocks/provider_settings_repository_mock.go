package mocks

import (
	"context"

	"inkwell/internal/models"
)

type ProviderSettingsRepositoryMock struct {
	GetOrCreateFunc func(ctx context.Context, providerID string) (*models.ProviderSettings, error)
	UpdateFunc      func(ctx context.Context, settings *models.ProviderSettings) error
	ClearFunc       func(ctx context.Context, providerID string) error

	UpdateCalls int
}

func (m *ProviderSettingsRepositoryMock) GetOrCreate(ctx context.Context, providerID string) (*models.ProviderSettings, error) {
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, providerID)
	}
	return &models.ProviderSettings{ProviderID: providerID}, nil
}

func (m *ProviderSettingsRepositoryMock) Update(ctx context.Context, settings *models.ProviderSettings) error {
	m.UpdateCalls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, settings)
	}
	return nil
}

func (m *ProviderSettingsRepositoryMock) Clear(ctx context.Context, providerID string) error {
	if m.ClearFunc != nil {
		return m.ClearFunc(ctx, providerID)
	}
	return nil
}
