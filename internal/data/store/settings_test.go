package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/cc-usage-monitor/internal/core/model"
)

func TestSettingsStore_DefaultsWhenMissing(t *testing.T) {
	s, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	settings := s.Get()
	assert.Equal(t, model.DefaultSettings(), settings)
	assert.Equal(t, 9, settings.WorkingHours.Start)
	assert.Equal(t, 24, settings.WorkingHours.End)
}

func TestSettingsStore_SaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewSettingsStore(dir)
	require.NoError(t, err)

	settings := model.DefaultSettings()
	settings.ApiUrl = "https://api.example.com/usage"
	settings.Token = "tok"
	settings.Mapping.DailySpent = "usage.daily_spent"
	require.NoError(t, s.Save(settings))

	reopened, err := NewSettingsStore(dir)
	require.NoError(t, err)
	assert.Equal(t, settings, reopened.Get())
}

func TestSettingsStore_SaveRejectsBadWorkingHours(t *testing.T) {
	s, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	settings := model.DefaultSettings()
	settings.WorkingHours = model.WorkingHours{Start: 18, End: 9}

	assert.Error(t, s.Save(settings))
	assert.Equal(t, model.DefaultSettings(), s.Get(), "failed save leaves settings untouched")
}

func TestSettingsStore_ObserversFireAfterSave(t *testing.T) {
	s, err := NewSettingsStore(t.TempDir())
	require.NoError(t, err)

	var seen []string
	s.Subscribe(func(settings model.Settings) {
		seen = append(seen, settings.ApiUrl)
	})

	settings := model.DefaultSettings()
	settings.ApiUrl = "https://one.example.com"
	require.NoError(t, s.Save(settings))
	settings.ApiUrl = "https://two.example.com"
	require.NoError(t, s.Save(settings))

	assert.Equal(t, []string{"https://one.example.com", "https://two.example.com"}, seen)

	// A rejected save must not notify.
	settings.WorkingHours = model.WorkingHours{Start: 5, End: 5}
	assert.Error(t, s.Save(settings))
	assert.Len(t, seen, 2)
}

func TestSettingsStore_CorruptFileFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFile), []byte("{not json"), 0644))

	s, err := NewSettingsStore(dir)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), s.Get())
}

func TestSettingsStore_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	raw := []byte(`{"apiUrl":"https://api.example.com","token":"t"}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, settingsFile), raw, 0644))

	s, err := NewSettingsStore(dir)
	require.NoError(t, err)

	settings := s.Get()
	assert.Equal(t, "https://api.example.com", settings.ApiUrl)
	assert.Equal(t, model.DefaultSettings().WorkingHours, settings.WorkingHours)
	assert.Equal(t, model.DefaultSettings().AlertThresholds, settings.AlertThresholds)
}
