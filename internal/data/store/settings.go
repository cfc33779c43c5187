// Package store persists settings, usage history, the API response cache and
// notification state as JSON files under a single data directory.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/penwyp/cc-usage-monitor/internal/core/model"
	"github.com/penwyp/cc-usage-monitor/internal/core/worktime"
	"github.com/penwyp/cc-usage-monitor/internal/util"
)

const settingsFile = "settings.json"

// SettingsObserver is notified with the new settings after every successful
// save. Observers run synchronously on the saving goroutine.
type SettingsObserver func(model.Settings)

// SettingsStore is the file-backed settings record. All reads return the
// in-memory copy; Save writes through to disk before notifying observers.
type SettingsStore struct {
	path      string
	mu        sync.RWMutex
	current   model.Settings
	observers []SettingsObserver
}

// NewSettingsStore opens (or initializes) the settings file under dataDir.
// A missing or unreadable file yields the defaults.
func NewSettingsStore(dataDir string) (*SettingsStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &SettingsStore{path: filepath.Join(dataDir, settingsFile)}
	s.current = s.load()
	return s, nil
}

// load reads the settings file over a defaults base, so fields added after
// the file was written keep their default values.
func (s *SettingsStore) load() model.Settings {
	settings := model.DefaultSettings()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			util.LogWarn(fmt.Sprintf("Failed to read settings file %s: %v", s.path, err))
		}
		return settings
	}
	if err := sonic.Unmarshal(raw, &settings); err != nil {
		util.LogWarn(fmt.Sprintf("Failed to parse settings file %s: %v", s.path, err))
		return model.DefaultSettings()
	}
	return mergeDefaults(settings)
}

// mergeDefaults fills structurally absent sections of decoded settings.
func mergeDefaults(settings model.Settings) model.Settings {
	defaults := model.DefaultSettings()
	if settings.WorkingHours == (model.WorkingHours{}) {
		settings.WorkingHours = defaults.WorkingHours
	}
	if settings.Notifications.QueryInterval == 0 {
		settings.Notifications.QueryInterval = defaults.Notifications.QueryInterval
	}
	if settings.Notifications.Thresholds == (model.NotificationThresholds{}) {
		settings.Notifications.Thresholds = defaults.Notifications.Thresholds
	}
	if settings.AlertThresholds == (model.AlertThresholds{}) {
		settings.AlertThresholds = defaults.AlertThresholds
	}
	return settings
}

// Get returns the current settings.
func (s *SettingsStore) Get() model.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Save validates, persists and publishes new settings. On any error the
// previous settings stay in effect and no observer fires.
func (s *SettingsStore) Save(settings model.Settings) error {
	if err := worktime.ValidateWorkingHours(settings.WorkingHours.Start, settings.WorkingHours.End); err != nil {
		return err
	}

	s.mu.Lock()
	if err := writeJSONFile(s.path, settings); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = settings
	observers := make([]SettingsObserver, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(settings)
	}
	return nil
}

// Subscribe registers an observer for future saves.
func (s *SettingsStore) Subscribe(fn SettingsObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// Reload re-reads the settings file and publishes the result. Used when an
// external process rewrote the file.
func (s *SettingsStore) Reload() model.Settings {
	settings := s.load()

	s.mu.Lock()
	s.current = settings
	observers := make([]SettingsObserver, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(settings)
	}
	return settings
}

// Path returns the settings file location.
func (s *SettingsStore) Path() string {
	return s.path
}

// writeJSONFile writes v atomically via a temp file rename in the same
// directory.
func writeJSONFile(path string, v interface{}) error {
	raw, err := sonic.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
