package models

// ConnectionState describes a provider's current reachability.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateError        ConnectionState = "error"
)

// ProviderKind distinguishes the three backend shapes the app talks to.
type ProviderKind string

const (
	// KindRemoteAPI is a key-authenticated hosted API.
	KindRemoteAPI ProviderKind = "remote"
	// KindLocalDaemon is a network-reachable daemon on the local machine.
	KindLocalDaemon ProviderKind = "daemon"
	// KindInProcess is an inference runtime embedded in the app itself.
	KindInProcess ProviderKind = "in-process"
)

// ProviderDescriptor is the immutable capability record for one AI backend.
// Descriptors are parsed once from the embedded catalog and never mutated.
type ProviderDescriptor struct {
	ID                     string       `json:"id"`
	DisplayName            string       `json:"displayName"`
	Kind                   ProviderKind `json:"kind"`
	RequiresAPIKey         bool         `json:"requiresApiKey"`
	SupportsModelSelection bool         `json:"supportsModelSelection"`
	SupportsCustomURL      bool         `json:"supportsCustomUrl"`
	DefaultURL             string       `json:"defaultUrl,omitempty"`

	// Generation parameter bounds differ between backends (Anthropic caps
	// temperature at 1, OpenAI-compatible APIs at 2), so they are carried
	// per descriptor instead of hardcoded app-wide.
	TemperatureMin float64 `json:"temperatureMin"`
	TemperatureMax float64 `json:"temperatureMax"`
}
