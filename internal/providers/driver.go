package providers

import (
	"context"
	"net/http"
	"time"

	"inkwell/internal/models"
)

// Credentials are the mutable per-provider connection inputs, resolved at
// call time so a key or URL change is picked up by the next request.
type Credentials struct {
	APIKey  string
	BaseURL string
}

// CredentialFunc supplies the current credentials for a provider.
type CredentialFunc func() Credentials

// Driver is the capability surface a provider backend offers to the
// connection layer. One driver is selected per provider at startup via
// the registry; call sites never branch on provider identity again.
type Driver interface {
	// TestConnection probes reachability with the current credentials.
	TestConnection(ctx context.Context) (bool, error)
	// FetchModels returns the provider's model list, unnormalized.
	FetchModels(ctx context.Context) ([]models.ModelInfo, error)
}

// LocalLoader is implemented by drivers whose models execute in-process
// and must be downloaded and initialized before use.
type LocalLoader interface {
	LoadModel(ctx context.Context, modelID string, onProgress func(float64)) error
}

// LoadModelFunc is the injected binding to the actual inference runtime.
// Its internals are opaque to this package.
type LoadModelFunc func(ctx context.Context, modelID string, onProgress func(float64)) error

// DriverFactory builds the driver for one provider descriptor.
type DriverFactory func(desc models.ProviderDescriptor, creds CredentialFunc) Driver

// DefaultDriverFactory wires the built-in drivers: OpenAI-compatible HTTP
// for remote keyed APIs and the local daemon, the Gemini SDK, and the
// embedded in-process runtime catalog.
func DefaultDriverFactory(registry *Registry, load LoadModelFunc) DriverFactory {
	httpClient := &http.Client{Timeout: 0} // deadlines come from the caller's context
	return func(desc models.ProviderDescriptor, creds CredentialFunc) Driver {
		switch {
		case desc.Kind == models.KindInProcess:
			return newWebLLMDriver(desc, registry.BuiltinModels(desc.ID), load)
		case desc.Kind == models.KindLocalDaemon:
			return newOllamaDriver(desc, creds, httpClient)
		case desc.ID == "anthropic":
			return newAnthropicDriver(desc, creds, httpClient)
		case desc.ID == "gemini":
			return newGeminiDriver(desc, creds)
		default:
			return newOpenAIDriver(desc, creds, httpClient)
		}
	}
}

// DefaultTimeout bounds every connection test and model fetch.
const DefaultTimeout = 30 * time.Second
