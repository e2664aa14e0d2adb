package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"inkwell/internal/models"
)

// ollamaDriver talks to a locally running Ollama daemon. No API key; the
// base URL is user-configurable and defaults from the descriptor.
type ollamaDriver struct {
	desc   models.ProviderDescriptor
	creds  CredentialFunc
	client *http.Client
}

func newOllamaDriver(desc models.ProviderDescriptor, creds CredentialFunc, client *http.Client) *ollamaDriver {
	return &ollamaDriver{desc: desc, creds: creds, client: client}
}

func (d *ollamaDriver) baseURL() string {
	if c := d.creds(); strings.TrimSpace(c.BaseURL) != "" {
		return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	}
	return strings.TrimRight(d.desc.DefaultURL, "/")
}

func (d *ollamaDriver) TestConnection(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL()+"/api/version", nil)
	if err != nil {
		return false, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("daemon responded with %s", resp.Status)
	}
	return true, nil
}

type ollamaTagList struct {
	Models []struct {
		Name    string `json:"name"`
		Details struct {
			ParameterSize string `json:"parameter_size"`
		} `json:"details"`
	} `json:"models"`
}

func (d *ollamaDriver) FetchModels(ctx context.Context) ([]models.ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL()+"/api/tags", nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list models: unexpected status %s", resp.Status)
	}

	var parsed ollamaTagList
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode model list: %w", err)
	}

	list := make([]models.ModelInfo, 0, len(parsed.Models))
	for _, m := range parsed.Models {
		if strings.TrimSpace(m.Name) == "" {
			continue
		}
		info := models.ModelInfo{ID: m.Name, Name: m.Name}
		// The daemon reports the parameter count directly; fold it into
		// the name so categorization sees it even for aliased tags.
		if size := strings.TrimSpace(m.Details.ParameterSize); size != "" {
			info.Name = fmt.Sprintf("%s (%s)", m.Name, size)
		}
		list = append(list, info)
	}
	return list, nil
}
