package models

// SizeCategory buckets models by rough parameter count.
type SizeCategory string

const (
	SizeSmall  SizeCategory = "small"
	SizeMedium SizeCategory = "medium"
	SizeLarge  SizeCategory = "large"
)

// ModelInfo is the normalized shape every provider's model list is
// reduced to before it reaches the UI.
type ModelInfo struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Category    SizeCategory `json:"category"`
	MaxTokens   int          `json:"maxTokens,omitempty"`
	Vision      bool         `json:"vision,omitempty"`
}

// ModelGroup groups normalized models by size category for presentation.
type ModelGroup struct {
	Category SizeCategory `json:"category"`
	Models   []ModelInfo  `json:"models"`
}
