package domain

import "time"

// ThemeMode is the light/dark display preference of the presentation layer.
type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// Valid reports whether m is a known mode.
func (m ThemeMode) Valid() bool { return m == ThemeLight || m == ThemeDark }

// Toggle returns the opposite mode. Unknown values toggle to dark, matching
// a light default.
func (m ThemeMode) Toggle() ThemeMode {
	if m == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ThemeModeKey is the preference key the mode is persisted under.
const ThemeModeKey = "theme-mode"

// Preference is a persisted string flag keyed by name.
type Preference struct {
	Key       string    `gorm:"type:varchar(64);primaryKey"`
	Value     string    `gorm:"type:varchar(255);not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the database table name for Preference.
func (Preference) TableName() string { return "preferences" }
