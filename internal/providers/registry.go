// Package providers holds the immutable provider registry, the driver
// capability interface each backend implements, and the typed errors
// shared across the connection and model lifecycle services.
package providers

import (
	"encoding/json"
	"fmt"
	"strings"

	"inkwell/internal/assets"
	"inkwell/internal/models"
)

type rawProviderFile struct {
	Providers []rawProvider `json:"providers"`
}

type rawProvider struct {
	models.ProviderDescriptor
	Models []models.ModelInfo `json:"models,omitempty"`
}

// Registry is the read-only catalog of provider descriptors. It is built
// once from the embedded asset and holds no mutable state.
type Registry struct {
	order         []string
	descriptors   map[string]models.ProviderDescriptor
	builtinModels map[string][]models.ModelInfo
}

// NewRegistry parses the embedded provider catalog.
func NewRegistry() (*Registry, error) {
	return newRegistryFromJSON(assets.ProvidersData)
}

func newRegistryFromJSON(data []byte) (*Registry, error) {
	var parsed rawProviderFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse providers asset: %w", err)
	}

	r := &Registry{
		descriptors:   make(map[string]models.ProviderDescriptor),
		builtinModels: make(map[string][]models.ModelInfo),
	}
	for _, p := range parsed.Providers {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			continue
		}
		desc := p.ProviderDescriptor
		desc.ID = id
		if desc.TemperatureMax <= desc.TemperatureMin {
			desc.TemperatureMin = 0
			desc.TemperatureMax = 1
		}
		r.order = append(r.order, id)
		r.descriptors[id] = desc
		if len(p.Models) > 0 {
			r.builtinModels[id] = append([]models.ModelInfo(nil), p.Models...)
		}
	}
	if len(r.order) == 0 {
		return nil, fmt.Errorf("providers asset contains no providers")
	}
	return r, nil
}

// Get looks up a descriptor by provider id.
func (r *Registry) Get(id string) (models.ProviderDescriptor, bool) {
	desc, ok := r.descriptors[strings.TrimSpace(id)]
	return desc, ok
}

// List returns descriptors in catalog order. The slice is a copy.
func (r *Registry) List() []models.ProviderDescriptor {
	out := make([]models.ProviderDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.descriptors[id])
	}
	return out
}

// BuiltinModels returns the static model list shipped with the app for a
// provider, if any. In-process runtimes carry their catalog in the asset
// instead of a network endpoint. The slice is a copy.
func (r *Registry) BuiltinModels(id string) []models.ModelInfo {
	list, ok := r.builtinModels[strings.TrimSpace(id)]
	if !ok {
		return nil
	}
	return append([]models.ModelInfo(nil), list...)
}
