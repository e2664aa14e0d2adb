package mocks

import (
	"context"

	"inkwell/internal/models"
)

type DownloadHistoryRepositoryMock struct {
	ListFunc        func(ctx context.Context) ([]models.DownloadedModel, error)
	AppendFunc      func(ctx context.Context, modelID string) (*models.DownloadedModel, error)
	MarkPresentFunc func(ctx context.Context, modelID string, present bool) error

	AppendCalls      int
	MarkPresentCalls int
}

func (m *DownloadHistoryRepositoryMock) List(ctx context.Context) ([]models.DownloadedModel, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *DownloadHistoryRepositoryMock) Append(ctx context.Context, modelID string) (*models.DownloadedModel, error) {
	m.AppendCalls++
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, modelID)
	}
	return &models.DownloadedModel{ModelID: modelID, Present: true}, nil
}

func (m *DownloadHistoryRepositoryMock) MarkPresent(ctx context.Context, modelID string, present bool) error {
	m.MarkPresentCalls++
	if m.MarkPresentFunc != nil {
		return m.MarkPresentFunc(ctx, modelID, present)
	}
	return nil
}
