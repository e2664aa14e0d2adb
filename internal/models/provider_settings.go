package models

import "time"

// ProviderSettings persists the per-provider connection configuration.
// The API key itself lives in the OS keyring; this row only records the
// non-secret state. A row is created lazily on first access and is never
// deleted, only cleared.
type ProviderSettings struct {
	ID              uint       `gorm:"primaryKey" json:"-"`
	ProviderID      string     `gorm:"size:50;not null;uniqueIndex" json:"providerId"`
	SelectedModelID string     `gorm:"size:255" json:"selectedModelId,omitempty"`
	CustomURL       string     `gorm:"size:512" json:"customUrl,omitempty"`
	LastValidated   *time.Time `json:"lastValidated,omitempty"`
	ConnectionError string     `gorm:"size:1024" json:"connectionError,omitempty"`
	CreatedAt       time.Time  `gorm:"not null" json:"-"`
	UpdatedAt       time.Time  `gorm:"not null" json:"-"`
}
