package models

import "time"

// LoadState tracks a single local model's initialization lifecycle.
type LoadState string

const (
	LoadIdle    LoadState = "idle"
	LoadLoading LoadState = "loading"
	LoadSuccess LoadState = "success"
	LoadError   LoadState = "error"
)

// LocalModelRecord is the runtime view of one in-process model.
// "Downloaded" and "successfully initialized" are independent facts: a
// cached artifact can fail to initialize without being un-cached.
type LocalModelRecord struct {
	ModelID      string     `json:"modelId"`
	Downloaded   bool       `json:"downloaded"`
	LoadState    LoadState  `json:"loadState"`
	Progress     float64    `json:"progress"`
	Error        string     `json:"error,omitempty"`
	LastLoadedAt *time.Time `json:"lastLoadedAt,omitempty"`
}

// DownloadedModel is one row of the persisted download history. The set
// is append-only: rows are never deleted, a reconcile pass only flips
// Present when the cached artifact can no longer be found.
type DownloadedModel struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	ModelID   string    `gorm:"size:255;not null;uniqueIndex" json:"modelId"`
	Present   bool      `gorm:"not null;default:true" json:"present"`
	CreatedAt time.Time `gorm:"not null" json:"firstDownloadedAt"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}

// AutoLoadStrategy selects a model without explicit user action.
type AutoLoadStrategy string

const (
	StrategySmallest     AutoLoadStrategy = "smallest"
	StrategyFastest      AutoLoadStrategy = "fastest"
	StrategyBalanced     AutoLoadStrategy = "balanced"
	StrategyDefaultModel AutoLoadStrategy = "defaultModel"
	StrategyNone         AutoLoadStrategy = "none"
)

// AutoLoadPolicy configures startup model selection for the in-process
// runtime.
type AutoLoadPolicy struct {
	Strategy       AutoLoadStrategy `json:"strategy"`
	DefaultModelID string           `json:"defaultModelId,omitempty"`
}

// CompatibilityReport summarizes what the local inference runtime can use
// on this machine. Missing acceleration degrades performance but does not
// block loading; a missing execution runtime does.
type CompatibilityReport struct {
	GPUAcceleration bool    `json:"gpuAcceleration"`
	WasmRuntime     bool    `json:"wasmRuntime"`
	MemoryGB        float64 `json:"memoryGb"`
	Degraded        bool    `json:"degraded"`
	Blocked         bool    `json:"blocked"`
	Detail          string  `json:"detail,omitempty"`
}
