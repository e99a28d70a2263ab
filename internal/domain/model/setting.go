package model

import "encoding/json"

// Setting keys persisted in the settings table.
const (
	SettingPasskeyHash       = "passkey_hash"
	SettingTheme             = "theme"
	SettingStyle             = "style"
	SettingEnabledCategories = "enabled_categories"
)

// Theme defaults applied when no value has been stored yet.
const (
	DefaultTheme = "light"
	DefaultStyle = "Sunrise"
)

// ThemeSettings holds the presentation preferences kept for the UI shell.
type ThemeSettings struct {
	Mode  string
	Style string
}

// EnabledCategories records which categories the monitor is allowed to store.
// A category missing from the map counts as enabled.
type EnabledCategories map[Category]bool

// DefaultEnabledCategories returns a map with every category enabled.
func DefaultEnabledCategories() EnabledCategories {
	m := make(EnabledCategories, len(AllCategories))
	for _, c := range AllCategories {
		m[c] = true
	}
	return m
}

// Enabled reports whether clips of category c should be stored.
func (e EnabledCategories) Enabled(c Category) bool {
	enabled, ok := e[c]
	return !ok || enabled
}

// Clone returns an independent copy of the map.
func (e EnabledCategories) Clone() EnabledCategories {
	m := make(EnabledCategories, len(e))
	for k, v := range e {
		m[k] = v
	}
	return m
}

// Marshal serializes the map as a JSON object keyed by category name.
func (e EnabledCategories) Marshal() (string, error) {
	data, err := json.Marshal(map[Category]bool(e))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseEnabledCategories decodes a stored enabled_categories value. Entries
// are merged over the all-enabled default so that a partial map still covers
// every category.
func ParseEnabledCategories(raw string) (EnabledCategories, error) {
	var decoded map[Category]bool
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}

	m := DefaultEnabledCategories()
	for k, v := range decoded {
		m[k] = v
	}
	return m, nil
}
