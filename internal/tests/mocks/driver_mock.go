package mocks

import (
	"context"
	"sync/atomic"

	"inkwell/internal/models"
	"inkwell/internal/providers"
)

// DriverMock implements providers.Driver with injectable behavior and
// call counters.
type DriverMock struct {
	TestConnectionFunc func(ctx context.Context) (bool, error)
	FetchModelsFunc    func(ctx context.Context) ([]models.ModelInfo, error)

	testCalls  int32
	fetchCalls int32
}

func (m *DriverMock) TestConnection(ctx context.Context) (bool, error) {
	atomic.AddInt32(&m.testCalls, 1)
	if m.TestConnectionFunc != nil {
		return m.TestConnectionFunc(ctx)
	}
	return true, nil
}

func (m *DriverMock) FetchModels(ctx context.Context) ([]models.ModelInfo, error) {
	atomic.AddInt32(&m.fetchCalls, 1)
	if m.FetchModelsFunc != nil {
		return m.FetchModelsFunc(ctx)
	}
	return nil, nil
}

func (m *DriverMock) TestCalls() int {
	return int(atomic.LoadInt32(&m.testCalls))
}

func (m *DriverMock) FetchCalls() int {
	return int(atomic.LoadInt32(&m.fetchCalls))
}

// SingleDriverFactory routes every provider to the same mock driver.
func SingleDriverFactory(driver providers.Driver) providers.DriverFactory {
	return func(desc models.ProviderDescriptor, creds providers.CredentialFunc) providers.Driver {
		return driver
	}
}

// DriverFactoryMap routes providers to dedicated mock drivers, falling
// back to a default.
func DriverFactoryMap(drivers map[string]providers.Driver, fallback providers.Driver) providers.DriverFactory {
	return func(desc models.ProviderDescriptor, creds providers.CredentialFunc) providers.Driver {
		if d, ok := drivers[desc.ID]; ok {
			return d
		}
		return fallback
	}
}

// LocalLoaderMock implements providers.LocalLoader.
type LocalLoaderMock struct {
	LoadModelFunc func(ctx context.Context, modelID string, onProgress func(float64)) error

	loadCalls int32
}

func (m *LocalLoaderMock) LoadModel(ctx context.Context, modelID string, onProgress func(float64)) error {
	atomic.AddInt32(&m.loadCalls, 1)
	if m.LoadModelFunc != nil {
		return m.LoadModelFunc(ctx, modelID, onProgress)
	}
	return nil
}

func (m *LocalLoaderMock) LoadCalls() int {
	return int(atomic.LoadInt32(&m.loadCalls))
}
