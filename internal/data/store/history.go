package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/cc-usage-monitor/internal/core/model"
	"github.com/penwyp/cc-usage-monitor/internal/util"
)

const (
	historyFile = "history.json"

	maxHistoryDays  = 30
	maxPointsPerDay = 288 // one per five minutes
	mergeWindow     = 5 * time.Minute
)

// HistoryStore is the append-mostly usage history. All mutation runs under a
// single lock as a read-modify-write of the whole file.
type HistoryStore struct {
	path string
	mu   sync.Mutex
}

// NewHistoryStore opens the history file under dataDir.
func NewHistoryStore(dataDir string) (*HistoryStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &HistoryStore{path: filepath.Join(dataDir, historyFile)}, nil
}

// Load reads the full history. A missing or corrupt file yields an empty
// history rather than an error.
func (h *HistoryStore) Load() model.History {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loadLocked()
}

func (h *HistoryStore) loadLocked() model.History {
	var history model.History
	raw, err := os.ReadFile(h.path)
	if err != nil {
		if !os.IsNotExist(err) {
			util.LogWarn(fmt.Sprintf("Failed to read history file %s: %v", h.path, err))
		}
		return model.History{Data: []model.Snapshot{}}
	}
	if err := sonic.Unmarshal(raw, &history); err != nil {
		util.LogWarn(fmt.Sprintf("Failed to parse history file %s: %v", h.path, err))
		return model.History{Data: []model.Snapshot{}}
	}
	if history.Data == nil {
		history.Data = []model.Snapshot{}
	}
	return history
}

// Append records one metrics sample at now. A snapshot taken within the last
// five minutes is updated in place instead of growing the history, so the
// stored cadence tracks the query interval. Old days are pruned past the
// retention window and the current day is capped to its newest points.
func (h *HistoryStore) Append(m model.Metrics, now time.Time) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	history := h.loadLocked()
	nowMs := now.UnixMilli()

	merged := false
	mergeCutoff := nowMs - mergeWindow.Milliseconds()
	for i := range history.Data {
		if history.Data[i].Timestamp > mergeCutoff {
			history.Data[i].DailyBudget = m.DailyBudget
			history.Data[i].DailySpent = m.DailySpent
			history.Data[i].MonthlyBudget = m.MonthlyBudget
			history.Data[i].MonthlySpent = m.MonthlySpent
			merged = true
			break
		}
	}
	if !merged {
		history.Data = append(history.Data, model.Snapshot{
			Timestamp:     nowMs,
			DailyBudget:   m.DailyBudget,
			DailySpent:    m.DailySpent,
			MonthlyBudget: m.MonthlyBudget,
			MonthlySpent:  m.MonthlySpent,
		})
	}

	retentionCutoff := nowMs - int64(maxHistoryDays)*24*time.Hour.Milliseconds()
	kept := history.Data[:0]
	for _, p := range history.Data {
		if p.Timestamp > retentionCutoff {
			kept = append(kept, p)
		}
	}
	history.Data = kept

	history.Data = capToday(history.Data, now)

	sort.Slice(history.Data, func(i, j int) bool {
		return history.Data[i].Timestamp < history.Data[j].Timestamp
	})

	history.LastUpdated = nowMs
	return writeJSONFile(h.path, history)
}

// capToday limits today's snapshots to the newest maxPointsPerDay entries.
func capToday(data []model.Snapshot, now time.Time) []model.Snapshot {
	todayMs := util.GetTimeProvider().StartOfDay(now).UnixMilli()

	var today, earlier []model.Snapshot
	for _, p := range data {
		if p.Timestamp >= todayMs {
			today = append(today, p)
		} else {
			earlier = append(earlier, p)
		}
	}
	if len(today) <= maxPointsPerDay {
		return data
	}
	sort.Slice(today, func(i, j int) bool { return today[i].Timestamp < today[j].Timestamp })
	return append(earlier, today[len(today)-maxPointsPerDay:]...)
}

// Replace overwrites the whole history, used by data import.
func (h *HistoryStore) Replace(history model.History) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if history.Data == nil {
		history.Data = []model.Snapshot{}
	}
	return writeJSONFile(h.path, history)
}

// Clear removes all recorded history.
func (h *HistoryStore) Clear() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	err := os.Remove(h.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Recent returns the snapshots of the trailing number of days.
func (h *HistoryStore) Recent(days int, now time.Time) []model.Snapshot {
	history := h.Load()
	cutoff := now.UnixMilli() - int64(days)*24*time.Hour.Milliseconds()
	out := make([]model.Snapshot, 0, len(history.Data))
	for _, p := range history.Data {
		if p.Timestamp > cutoff {
			out = append(out, p)
		}
	}
	return out
}
