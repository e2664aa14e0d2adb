package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"inkwell/internal/models"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com/v1"
	anthropicAPIVersion     = "2023-06-01"
)

type anthropicDriver struct {
	desc   models.ProviderDescriptor
	creds  CredentialFunc
	client *http.Client
}

func newAnthropicDriver(desc models.ProviderDescriptor, creds CredentialFunc, client *http.Client) *anthropicDriver {
	return &anthropicDriver{desc: desc, creds: creds, client: client}
}

func (d *anthropicDriver) baseURL() string {
	if c := d.creds(); strings.TrimSpace(c.BaseURL) != "" {
		return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	}
	return anthropicDefaultBaseURL
}

func (d *anthropicDriver) TestConnection(ctx context.Context) (bool, error) {
	if _, err := d.FetchModels(ctx); err != nil {
		return false, err
	}
	return true, nil
}

type anthropicModelList struct {
	Data []struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"data"`
}

func (d *anthropicDriver) FetchModels(ctx context.Context) ([]models.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL()+"/models", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-api-key", d.creds().APIKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: unexpected status %s", resp.Status)
	}

	var parsed anthropicModelList
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}

	list := make([]models.ModelInfo, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		name := m.DisplayName
		if name == "" {
			name = m.ID
		}
		list = append(list, models.ModelInfo{ID: m.ID, Name: name})
	}
	return list, nil
}
