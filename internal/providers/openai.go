package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"inkwell/internal/models"
)

const openAIDefaultBaseURL = "https://api.openai.com/v1"

// openAIDriver speaks the OpenAI-compatible REST surface. It backs the
// hosted OpenAI provider and any provider exposing the same API shape.
type openAIDriver struct {
	desc   models.ProviderDescriptor
	creds  CredentialFunc
	client *http.Client
}

func newOpenAIDriver(desc models.ProviderDescriptor, creds CredentialFunc, client *http.Client) *openAIDriver {
	return &openAIDriver{desc: desc, creds: creds, client: client}
}

func (d *openAIDriver) baseURL() string {
	if c := d.creds(); strings.TrimSpace(c.BaseURL) != "" {
		return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	}
	if d.desc.DefaultURL != "" {
		return strings.TrimRight(d.desc.DefaultURL, "/")
	}
	return openAIDefaultBaseURL
}

func (d *openAIDriver) TestConnection(ctx context.Context) (bool, error) {
	if _, err := d.FetchModels(ctx); err != nil {
		return false, err
	}
	return true, nil
}

type openAIModelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (d *openAIDriver) FetchModels(ctx context.Context) ([]models.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL()+"/models", nil)
	if err != nil {
		return nil, err
	}
	if key := d.creds().APIKey; key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: unexpected status %s", resp.Status)
	}

	var parsed openAIModelList
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}

	list := make([]models.ModelInfo, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		list = append(list, models.ModelInfo{ID: m.ID, Name: m.ID})
	}
	return list, nil
}
