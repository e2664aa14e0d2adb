package providers

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"inkwell/internal/models"
)

// geminiDriver lists models through the official genai SDK instead of raw
// HTTP; the SDK is also what the generation client builds on.
type geminiDriver struct {
	desc  models.ProviderDescriptor
	creds CredentialFunc
}

func newGeminiDriver(desc models.ProviderDescriptor, creds CredentialFunc) *geminiDriver {
	return &geminiDriver{desc: desc, creds: creds}
}

func (d *geminiDriver) newClient(ctx context.Context) (*genai.Client, error) {
	key := strings.TrimSpace(d.creds().APIKey)
	if key == "" {
		return nil, fmt.Errorf("api key is empty")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
}

func (d *geminiDriver) TestConnection(ctx context.Context) (bool, error) {
	client, err := d.newClient(ctx)
	if err != nil {
		return false, err
	}
	for _, err := range client.Models.All(ctx) {
		if err != nil {
			return false, err
		}
		return true, nil
	}
	return true, nil
}

func (d *geminiDriver) FetchModels(ctx context.Context) ([]models.ModelInfo, error) {
	client, err := d.newClient(ctx)
	if err != nil {
		return nil, err
	}

	var list []models.ModelInfo
	for m, err := range client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list models: %w", err)
		}
		if m == nil || !supportsGeneration(m) {
			continue
		}
		id := strings.TrimPrefix(m.Name, "models/")
		name := m.DisplayName
		if name == "" {
			name = id
		}
		list = append(list, models.ModelInfo{
			ID:          id,
			Name:        name,
			Description: m.Description,
			MaxTokens:   int(m.OutputTokenLimit),
		})
	}
	return list, nil
}

func supportsGeneration(m *genai.Model) bool {
	for _, action := range m.SupportedActions {
		if action == "generateContent" {
			return true
		}
	}
	return false
}
