package models

import "time"

// AppSettings is the single-row table of app-wide preferences, including
// the global generation parameters shared by every provider.
type AppSettings struct {
	ID      uint   `gorm:"primaryKey" json:"-"` // single-row table (ID=1)
	Version int    `gorm:"not null;default:1" json:"version"`
	Theme   string `gorm:"not null;default:system" json:"theme"` // "light" | "dark" | "system"
	Locale  string `gorm:"not null" json:"locale"`

	PreferredProviderID string  `gorm:"size:50" json:"preferredProviderId,omitempty"`
	Temperature         float64 `gorm:"not null;default:0.7" json:"temperature"`
	MaxTokens           int     `gorm:"not null;default:2048" json:"maxTokens"`
	SystemPrompt        string  `gorm:"size:4096" json:"systemPrompt,omitempty"`

	// In-process runtime preferences.
	LocalDefaultModelID string `gorm:"size:255" json:"localDefaultModelId,omitempty"`
	AutoLoad            bool   `gorm:"not null;default:false" json:"autoLoad"`
	AutoLoadStrategy    string `gorm:"not null;default:smallest" json:"autoLoadStrategy"`

	UpdatedAt time.Time `json:"-"`
}

// AutoLoadPolicyFromSettings derives the runtime auto-load policy from the
// persisted preferences.
func AutoLoadPolicyFromSettings(s *AppSettings) AutoLoadPolicy {
	if s == nil || !s.AutoLoad {
		return AutoLoadPolicy{Strategy: StrategyNone}
	}
	strategy := AutoLoadStrategy(s.AutoLoadStrategy)
	switch strategy {
	case StrategySmallest, StrategyFastest, StrategyBalanced, StrategyDefaultModel, StrategyNone:
	default:
		strategy = StrategySmallest
	}
	return AutoLoadPolicy{Strategy: strategy, DefaultModelID: s.LocalDefaultModelID}
}
