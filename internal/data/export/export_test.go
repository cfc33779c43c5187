package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bytedance/sonic"

	"github.com/penwyp/cc-usage-monitor/internal/core/model"
	"github.com/penwyp/cc-usage-monitor/internal/data/store"
	"github.com/penwyp/cc-usage-monitor/internal/util"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	settings, err := store.NewSettingsStore(dir)
	require.NoError(t, err)
	history, err := store.NewHistoryStore(dir)
	require.NoError(t, err)
	return &Manager{Settings: settings, History: history, Cache: store.NewResponseCache()}
}

func configuredSettings() model.Settings {
	s := model.DefaultSettings()
	s.ApiUrl = "https://api.example.com/usage"
	s.Token = "tok"
	s.Mapping = model.Mapping{
		MonthlyBudget: "monthly_budget",
		MonthlySpent:  "monthly_spent",
		DailyBudget:   "daily_budget",
		DailySpent:    "daily_spent",
	}
	return s
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "cc-usage-backup-2025-06-10.json", Filename(now))
}

func TestBuildEnvelope(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	history := model.History{Data: []model.Snapshot{
		{Timestamp: time.Date(2025, 6, 8, 9, 0, 0, 0, time.UTC).UnixMilli(), DailySpent: 5},
		{Timestamp: time.Date(2025, 6, 10, 11, 0, 0, 0, time.UTC).UnixMilli(), DailySpent: 9},
	}}

	envelope := BuildEnvelope(configuredSettings(), history, now)

	assert.Equal(t, model.ExportVersion, envelope.ExportVersion)
	assert.Equal(t, "2025-06-10", envelope.ExportDate)
	assert.Equal(t, 2, envelope.Metadata.TotalDataPoints)
	assert.Equal(t, "2025-06-08T09:00:00Z", envelope.Metadata.DateRange.Start)
	assert.Equal(t, "2025-06-10T11:00:00Z", envelope.Metadata.DateRange.End)
	assert.Equal(t, now.UnixMilli(), envelope.Metadata.ExportedAt)
}

func TestBuildEnvelope_EmptyHistory(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	envelope := BuildEnvelope(configuredSettings(), model.History{}, now)

	assert.NotNil(t, envelope.HistoricalData)
	assert.Zero(t, envelope.Metadata.TotalDataPoints)
	assert.Equal(t, "2025-06-10T12:00:00Z", envelope.Metadata.DateRange.Start)
	assert.Equal(t, envelope.Metadata.DateRange.Start, envelope.Metadata.DateRange.End)
}

func TestManager_ExportImportRoundTrip(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	src := newManager(t)
	require.NoError(t, src.Settings.Save(configuredSettings()))
	require.NoError(t, src.History.Replace(model.History{Data: []model.Snapshot{
		{Timestamp: now.Add(-time.Hour).UnixMilli(), DailyBudget: 50, DailySpent: 10, MonthlyBudget: 1000, MonthlySpent: 300},
	}}))

	path := filepath.Join(t.TempDir(), Filename(now))
	require.NoError(t, src.ExportToFile(path, now))

	dst := newManager(t)
	require.NoError(t, dst.ImportFromFile(path, now))

	assert.Equal(t, configuredSettings(), dst.Settings.Get())
	history := dst.History.Load()
	require.Len(t, history.Data, 1)
	assert.Equal(t, 10.0, history.Data[0].DailySpent)
	assert.Equal(t, now.UnixMilli(), history.LastUpdated)
}

func TestManager_ImportClearsCache(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	m := newManager(t)
	m.Cache.Set("k", map[string]interface{}{"v": 1})

	envelope := BuildEnvelope(configuredSettings(), model.History{}, now)
	raw, err := sonic.Marshal(envelope)
	require.NoError(t, err)
	require.NoError(t, m.Import(raw, now))

	_, ok := m.Cache.Get("k")
	assert.False(t, ok)
}

func TestManager_ImportRejectsInvalidAndKeepsState(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	m := newManager(t)

	original := configuredSettings()
	require.NoError(t, m.Settings.Save(original))
	require.NoError(t, m.History.Replace(model.History{Data: []model.Snapshot{
		{Timestamp: now.UnixMilli(), DailySpent: 7},
	}}))

	valid := BuildEnvelope(configuredSettings(), model.History{}, now)

	corrupt := func(mutate func(map[string]interface{})) []byte {
		raw, err := sonic.Marshal(valid)
		require.NoError(t, err)
		var generic map[string]interface{}
		require.NoError(t, sonic.Unmarshal(raw, &generic))
		mutate(generic)
		out, err := sonic.Marshal(generic)
		require.NoError(t, err)
		return out
	}

	cases := []struct {
		name string
		raw  []byte
	}{
		{"not json", []byte("{nope")},
		{"missing metadata", corrupt(func(g map[string]interface{}) { delete(g, "metadata") })},
		{"missing version", corrupt(func(g map[string]interface{}) { delete(g, "exportVersion") })},
		{"empty api url", corrupt(func(g map[string]interface{}) {
			g["settings"].(map[string]interface{})["apiUrl"] = ""
		})},
		{"missing token key", corrupt(func(g map[string]interface{}) {
			delete(g["settings"].(map[string]interface{}), "token")
		})},
		{"mapping key missing", corrupt(func(g map[string]interface{}) {
			delete(g["settings"].(map[string]interface{})["mapping"].(map[string]interface{}), "dailySpent")
		})},
		{"working hours not numeric", corrupt(func(g map[string]interface{}) {
			g["settings"].(map[string]interface{})["workingHours"].(map[string]interface{})["start"] = "nine"
		})},
		{"notifications enabled not bool", corrupt(func(g map[string]interface{}) {
			g["settings"].(map[string]interface{})["notifications"].(map[string]interface{})["enabled"] = "yes"
		})},
		{"history point not numeric", corrupt(func(g map[string]interface{}) {
			g["historicalData"] = []interface{}{
				map[string]interface{}{"timestamp": "later", "dailyBudget": 1.0, "dailySpent": 1.0, "monthlyBudget": 1.0, "monthlySpent": 1.0},
			}
		})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := m.Import(tc.raw, now)
			require.Error(t, err)

			assert.Equal(t, original, m.Settings.Get(), "settings untouched after rejected import")
			history := m.History.Load()
			require.Len(t, history.Data, 1)
			assert.Equal(t, 7.0, history.Data[0].DailySpent)
		})
	}
}

func TestManager_ImportWithEmptyTokenAllowed(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	m := newManager(t)

	settings := configuredSettings()
	settings.Token = ""
	envelope := BuildEnvelope(settings, model.History{}, now)
	raw, err := sonic.Marshal(envelope)
	require.NoError(t, err)

	require.NoError(t, m.Import(raw, now), "token may be empty as long as the key exists")
	assert.Empty(t, m.Settings.Get().Token)
}
