// Package export backs up settings and usage history to a single JSON file
// and restores them from one, validating the file before anything is
// applied.
package export

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/cc-usage-monitor/internal/core/model"
	"github.com/penwyp/cc-usage-monitor/internal/core/worktime"
	"github.com/penwyp/cc-usage-monitor/internal/data/store"
)

// ErrInvalidBackup indicates the file is not a backup this tool produced.
var ErrInvalidBackup = errors.New("export: file is not a valid backup")

// Manager wires the stores a backup round-trips through.
type Manager struct {
	Settings *store.SettingsStore
	History  *store.HistoryStore
	Cache    *store.ResponseCache
}

// Filename returns the canonical backup filename for a point in time.
func Filename(now time.Time) string {
	return fmt.Sprintf("cc-usage-backup-%s.json", now.UTC().Format("2006-01-02"))
}

// BuildEnvelope assembles the backup payload from current state.
func BuildEnvelope(settings model.Settings, history model.History, now time.Time) model.ExportEnvelope {
	points := history.Data
	if points == nil {
		points = []model.Snapshot{}
	}

	dateRange := model.DateRange{
		Start: now.UTC().Format(time.RFC3339),
		End:   now.UTC().Format(time.RFC3339),
	}
	if len(points) > 0 {
		minTs, maxTs := points[0].Timestamp, points[0].Timestamp
		for _, p := range points[1:] {
			if p.Timestamp < minTs {
				minTs = p.Timestamp
			}
			if p.Timestamp > maxTs {
				maxTs = p.Timestamp
			}
		}
		dateRange.Start = time.UnixMilli(minTs).UTC().Format(time.RFC3339)
		dateRange.End = time.UnixMilli(maxTs).UTC().Format(time.RFC3339)
	}

	return model.ExportEnvelope{
		ExportVersion:  model.ExportVersion,
		ExportDate:     now.UTC().Format("2006-01-02"),
		Settings:       settings,
		HistoricalData: points,
		Metadata: model.ExportMetadata{
			TotalDataPoints: len(points),
			DateRange:       dateRange,
			ExportedAt:      now.UnixMilli(),
		},
	}
}

// ExportToFile writes the backup to path.
func (m *Manager) ExportToFile(path string, now time.Time) error {
	envelope := BuildEnvelope(m.Settings.Get(), m.History.Load(), now)
	raw, err := sonic.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal backup: %w", err)
	}
	return os.WriteFile(path, raw, 0644)
}

// Import validates a backup and applies it: settings and history are
// replaced and the response cache is cleared. An invalid backup changes
// nothing.
func (m *Manager) Import(raw []byte, now time.Time) error {
	var generic map[string]interface{}
	if err := sonic.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("export: not valid JSON: %w", err)
	}
	if err := Validate(generic); err != nil {
		return err
	}

	var envelope model.ExportEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("export: decode backup: %w", err)
	}

	// Working hours are checked up front so the settings write cannot be
	// rejected after history was already replaced.
	wh := envelope.Settings.WorkingHours
	if err := worktime.ValidateWorkingHours(wh.Start, wh.End); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	history := model.History{
		Data:        envelope.HistoricalData,
		LastUpdated: now.UnixMilli(),
	}
	if err := m.History.Replace(history); err != nil {
		return fmt.Errorf("export: restore history: %w", err)
	}
	if err := m.Settings.Save(envelope.Settings); err != nil {
		return fmt.Errorf("export: restore settings: %w", err)
	}
	if m.Cache != nil {
		m.Cache.Clear()
	}
	return nil
}

// ImportFromFile reads and applies a backup file.
func (m *Manager) ImportFromFile(path string, now time.Time) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("export: read backup: %w", err)
	}
	return m.Import(raw, now)
}

// Validate checks a decoded backup against the format this tool exports.
// The checks run over the generic decoding so absent keys and wrong types
// are told apart.
func Validate(data map[string]interface{}) error {
	if data == nil {
		return ErrInvalidBackup
	}
	for _, key := range []string{"exportVersion", "exportDate", "settings", "metadata"} {
		if isEmptyValue(data[key]) {
			return fmt.Errorf("%w: missing %s", ErrInvalidBackup, key)
		}
	}

	settings, ok := data["settings"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: settings is not an object", ErrInvalidBackup)
	}
	if s, _ := settings["apiUrl"].(string); s == "" {
		return fmt.Errorf("%w: settings.apiUrl is empty", ErrInvalidBackup)
	}
	if _, present := settings["token"]; !present {
		return fmt.Errorf("%w: settings.token is missing", ErrInvalidBackup)
	}

	wh, ok := settings["workingHours"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: settings.workingHours is missing", ErrInvalidBackup)
	}
	for _, key := range []string{"start", "end"} {
		if _, ok := wh[key].(float64); !ok {
			return fmt.Errorf("%w: workingHours.%s is not a number", ErrInvalidBackup, key)
		}
	}

	mapping, ok := settings["mapping"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: settings.mapping is missing", ErrInvalidBackup)
	}
	for _, key := range []string{"monthlyBudget", "monthlySpent", "dailyBudget", "dailySpent"} {
		if _, present := mapping[key]; !present {
			return fmt.Errorf("%w: mapping.%s is missing", ErrInvalidBackup, key)
		}
	}

	notifications, ok := settings["notifications"].(map[string]interface{})
	if !ok {
		return fmt.Errorf("%w: settings.notifications is missing", ErrInvalidBackup)
	}
	if _, ok := notifications["enabled"].(bool); !ok {
		return fmt.Errorf("%w: notifications.enabled is not a boolean", ErrInvalidBackup)
	}
	if _, ok := notifications["queryInterval"].(float64); !ok {
		return fmt.Errorf("%w: notifications.queryInterval is not a number", ErrInvalidBackup)
	}
	if isEmptyValue(notifications["thresholds"]) {
		return fmt.Errorf("%w: notifications.thresholds is missing", ErrInvalidBackup)
	}

	if points, ok := data["historicalData"].([]interface{}); ok {
		for i, elem := range points {
			point, ok := elem.(map[string]interface{})
			if !ok {
				return fmt.Errorf("%w: historicalData[%d] is not an object", ErrInvalidBackup, i)
			}
			for _, key := range []string{"timestamp", "dailyBudget", "dailySpent", "monthlyBudget", "monthlySpent"} {
				if _, ok := point[key].(float64); !ok {
					return fmt.Errorf("%w: historicalData[%d].%s is not a number", ErrInvalidBackup, i, key)
				}
			}
		}
	}

	return nil
}

// isEmptyValue mirrors JavaScript falsiness for the fields the validator
// treats as required.
func isEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0
	default:
		return false
	}
}
