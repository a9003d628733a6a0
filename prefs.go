package arix

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	prefsObject   = "preferences"
	prefsProperty = "viewer"
)

// Preferences are the user choices that survive restarts.
type Preferences struct {
	ShowFPS        bool    `yaml:"show_fps"`
	StartAssembled bool    `yaml:"start_assembled"`
	CameraDistance float64 `yaml:"camera_distance"` // 0 keeps the configured framing
}

// DefaultPreferences returns the first-run preferences.
func DefaultPreferences() Preferences {
	return Preferences{}
}

// PreferenceStore loads and saves Preferences through gdata. A store
// without a manager keeps preferences in memory only.
type PreferenceStore struct {
	manager *gdata.Manager
	prefs   Preferences
}

// OpenPreferenceStore opens the per-user data directory for appName. When
// gdata is unavailable the store falls back to memory-only mode and the
// error is logged, not returned.
func OpenPreferenceStore(appName string) *PreferenceStore {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		logger.Printf("preferences: storage unavailable: %v (memory only)", err)
		m = nil
	}
	return NewPreferenceStore(m)
}

// NewPreferenceStore wraps manager, which may be nil, and loads any saved
// preferences. Load failures fall back to defaults.
func NewPreferenceStore(manager *gdata.Manager) *PreferenceStore {
	ps := &PreferenceStore{manager: manager, prefs: DefaultPreferences()}
	if err := ps.Load(); err != nil {
		logger.Printf("preferences: %v (using defaults)", err)
	}
	return ps
}

// Load reads saved preferences. Missing data leaves the defaults in place.
func (ps *PreferenceStore) Load() error {
	if ps.manager == nil || !ps.manager.ObjectPropExists(prefsObject, prefsProperty) {
		ps.prefs = DefaultPreferences()
		return nil
	}
	data, err := ps.manager.LoadObjectProp(prefsObject, prefsProperty)
	if err != nil {
		ps.prefs = DefaultPreferences()
		return fmt.Errorf("load preferences: %w", err)
	}
	var p Preferences
	if err := yaml.Unmarshal(data, &p); err != nil {
		ps.prefs = DefaultPreferences()
		return fmt.Errorf("unmarshal preferences: %w", err)
	}
	ps.prefs = p
	return nil
}

// Save writes the current preferences. Memory-only stores do nothing.
func (ps *PreferenceStore) Save() error {
	if ps.manager == nil {
		return nil
	}
	data, err := yaml.Marshal(ps.prefs)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	if err := ps.manager.SaveObjectProp(prefsObject, prefsProperty, data); err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// Persistent reports whether preferences are written to disk.
func (ps *PreferenceStore) Persistent() bool {
	return ps.manager != nil
}

// Get returns a copy of the current preferences.
func (ps *PreferenceStore) Get() Preferences {
	return ps.prefs
}

// Set replaces the current preferences in memory; call Save to persist.
func (ps *PreferenceStore) Set(p Preferences) {
	if p.CameraDistance < 0 {
		p.CameraDistance = 0
	}
	ps.prefs = p
}

// Update applies fn to the current preferences and saves them, logging any
// save error.
func (ps *PreferenceStore) Update(fn func(*Preferences)) {
	p := ps.prefs
	fn(&p)
	ps.Set(p)
	if err := ps.Save(); err != nil {
		logger.Printf("preferences: %v", err)
	}
}
