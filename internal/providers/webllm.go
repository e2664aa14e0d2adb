package providers

import (
	"context"
	"fmt"

	"inkwell/internal/models"
)

// webLLMDriver serves the in-process inference runtime. Its model catalog
// ships with the app, and "connection" is a local capability question, so
// both operations resolve without touching the network. The actual
// download/initialize binding is injected; this package never inspects it.
type webLLMDriver struct {
	desc    models.ProviderDescriptor
	catalog []models.ModelInfo
	load    LoadModelFunc
}

func newWebLLMDriver(desc models.ProviderDescriptor, catalog []models.ModelInfo, load LoadModelFunc) *webLLMDriver {
	return &webLLMDriver{desc: desc, catalog: catalog, load: load}
}

func (d *webLLMDriver) TestConnection(ctx context.Context) (bool, error) {
	return d.load != nil, nil
}

func (d *webLLMDriver) FetchModels(ctx context.Context) ([]models.ModelInfo, error) {
	return append([]models.ModelInfo(nil), d.catalog...), nil
}

func (d *webLLMDriver) LoadModel(ctx context.Context, modelID string, onProgress func(float64)) error {
	if d.load == nil {
		return fmt.Errorf("no local runtime binding configured")
	}
	return d.load(ctx, modelID, onProgress)
}
