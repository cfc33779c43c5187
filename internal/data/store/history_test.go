package store

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/cc-usage-monitor/internal/core/model"
	"github.com/penwyp/cc-usage-monitor/internal/util"
)

func metrics(dailySpent float64) model.Metrics {
	return model.Metrics{
		DailyBudget:   100,
		DailySpent:    dailySpent,
		MonthlyBudget: 2000,
		MonthlySpent:  dailySpent * 3,
	}
}

func TestHistoryStore_AppendAndMerge(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))
	h, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	require.NoError(t, h.Append(metrics(10), base))

	// Two minutes later the sample lands inside the merge window and
	// updates the existing snapshot in place.
	require.NoError(t, h.Append(metrics(12), base.Add(2*time.Minute)))
	history := h.Load()
	require.Len(t, history.Data, 1)
	assert.Equal(t, 12.0, history.Data[0].DailySpent)
	assert.Equal(t, base.UnixMilli(), history.Data[0].Timestamp, "merge keeps the original timestamp")

	// Past the window a new snapshot is appended.
	require.NoError(t, h.Append(metrics(20), base.Add(8*time.Minute)))
	history = h.Load()
	require.Len(t, history.Data, 2)
	assert.Equal(t, 20.0, history.Data[1].DailySpent)
	assert.Equal(t, base.Add(8*time.Minute).UnixMilli(), history.LastUpdated)
}

func TestHistoryStore_SortedAfterAppends(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))
	h, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	base := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{0, 20 * time.Minute, 10 * time.Minute, 40 * time.Minute} {
		require.NoError(t, h.Append(metrics(1), base.Add(offset)))
	}

	history := h.Load()
	assert.True(t, sort.SliceIsSorted(history.Data, func(i, j int) bool {
		return history.Data[i].Timestamp < history.Data[j].Timestamp
	}))
}

func TestHistoryStore_PrunesOldDays(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))
	h, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, h.Replace(model.History{Data: []model.Snapshot{
		{Timestamp: now.AddDate(0, 0, -40).UnixMilli(), DailySpent: 1},
		{Timestamp: now.AddDate(0, 0, -31).UnixMilli(), DailySpent: 2},
		{Timestamp: now.AddDate(0, 0, -5).UnixMilli(), DailySpent: 3},
	}}))

	require.NoError(t, h.Append(metrics(4), now))

	history := h.Load()
	require.Len(t, history.Data, 2)
	assert.Equal(t, 3.0, history.Data[0].DailySpent)
	assert.Equal(t, 4.0, history.Data[1].DailySpent)
}

func TestHistoryStore_CapsTodayToNewest(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))
	h, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2025, 6, 10, 23, 50, 0, 0, time.UTC)
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	data := make([]model.Snapshot, 0, maxPointsPerDay+10)
	// Yesterday's points are exempt from the per-day cap.
	data = append(data, model.Snapshot{Timestamp: today.Add(-2 * time.Hour).UnixMilli(), DailySpent: -1})
	for i := 0; i < maxPointsPerDay+9; i++ {
		data = append(data, model.Snapshot{
			Timestamp:  today.Add(time.Duration(i) * 4 * time.Minute).UnixMilli(),
			DailySpent: float64(i),
		})
	}
	require.NoError(t, h.Replace(model.History{Data: data}))

	require.NoError(t, h.Append(metrics(999), now))

	history := h.Load()
	require.Len(t, history.Data, maxPointsPerDay+1)
	assert.Equal(t, -1.0, history.Data[0].DailySpent, "previous day survives the cap")
	last := history.Data[len(history.Data)-1]
	assert.Equal(t, 999.0, last.DailySpent, "newest points are the ones kept")
}

func TestHistoryStore_Recent(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))
	h, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, h.Replace(model.History{Data: []model.Snapshot{
		{Timestamp: now.AddDate(0, 0, -10).UnixMilli(), DailySpent: 1},
		{Timestamp: now.AddDate(0, 0, -3).UnixMilli(), DailySpent: 2},
		{Timestamp: now.Add(-time.Hour).UnixMilli(), DailySpent: 3},
	}}))

	recent := h.Recent(7, now)
	require.Len(t, recent, 2)
	assert.Equal(t, 2.0, recent[0].DailySpent)
	assert.Equal(t, 3.0, recent[1].DailySpent)
}

func TestHistoryStore_LoadMissingFile(t *testing.T) {
	h, err := NewHistoryStore(t.TempDir())
	require.NoError(t, err)

	history := h.Load()
	assert.NotNil(t, history.Data)
	assert.Empty(t, history.Data)
	assert.Zero(t, history.LastUpdated)
}
