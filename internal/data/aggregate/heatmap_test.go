package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/cc-usage-monitor/internal/core/model"
	"github.com/penwyp/cc-usage-monitor/internal/util"
)

func TestBuildHeatmap_WeekRange(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))

	// 2025-06-10 is a Tuesday; its calendar week runs Sunday the 8th
	// through Saturday the 14th.
	center := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	points := []model.Snapshot{
		{Timestamp: ms(t, "2025-06-08T10:00:00Z"), DailySpent: 10},
		{Timestamp: ms(t, "2025-06-08T10:40:00Z"), DailySpent: 30}, // same cell, later wins
		{Timestamp: ms(t, "2025-06-10T14:20:00Z"), DailySpent: 20},
		{Timestamp: ms(t, "2025-06-07T23:00:00Z"), DailySpent: 99}, // before the week
		{Timestamp: ms(t, "2025-06-15T01:00:00Z"), DailySpent: 99}, // after the week
	}

	hm := BuildHeatmap(points, HeatmapOptions{Range: RangeWeek}, center)

	assert.Equal(t, 7, hm.DayCount)
	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC).UnixMilli(), hm.PeriodStart)
	require.Len(t, hm.Cells, 7)
	assert.Equal(t, []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}, hm.DayLabels)

	sunday := hm.Cells[0][10]
	assert.True(t, sunday.HasData)
	assert.Equal(t, 30.0, sunday.Value)
	assert.Equal(t, 1.0, sunday.Intensity)

	tuesday := hm.Cells[2][14]
	assert.True(t, tuesday.HasData)
	assert.Equal(t, 20.0, tuesday.Value)
	assert.Equal(t, 0.0, tuesday.Intensity, "minimum positive value sits at the floor")

	assert.Equal(t, 30.0, hm.MaxValue)
	assert.Equal(t, 20.0, hm.MinValue)
	assert.True(t, hm.HasAnyData)

	assert.Equal(t, 50.0, hm.Stats.TotalSpent)
	assert.Equal(t, 2, hm.Stats.ActiveCells)
	assert.Equal(t, 0, hm.Stats.PeakDay)
	assert.Equal(t, 10, hm.Stats.PeakHour)
	assert.Equal(t, 30.0, hm.Stats.PeakValue)
	assert.InDelta(t, 2.0/(7*24)*100, hm.Stats.DataCompleteness, 1e-9)
}

func TestBuildHeatmap_TrailingRanges(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))

	center := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

	hm := BuildHeatmap(nil, HeatmapOptions{Range: RangeTwoWeeks}, center)
	assert.Equal(t, 14, hm.DayCount)
	assert.Equal(t, time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC).UnixMilli(), hm.PeriodStart)
	assert.Equal(t, "Jun 17", hm.DayLabels[0])

	hm = BuildHeatmap(nil, HeatmapOptions{Range: RangeMonth}, center)
	assert.Equal(t, 30, hm.DayCount)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), hm.PeriodStart)
	assert.False(t, hm.HasAnyData)
}

func TestBuildHeatmap_SingleValueIntensity(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))

	center := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	points := []model.Snapshot{
		{Timestamp: ms(t, "2025-06-10T08:00:00Z"), DailySpent: 42},
	}
	hm := BuildHeatmap(points, HeatmapOptions{Range: RangeWeek}, center)

	cell := hm.Cells[2][8]
	assert.Equal(t, 42.0, cell.Value)
	assert.Equal(t, 0.5, cell.Intensity, "degenerate min==max pins the midpoint")
}

func TestBuildHeatmap_HideWeekends(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))

	center := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	points := []model.Snapshot{
		{Timestamp: ms(t, "2025-06-08T10:00:00Z"), DailySpent: 30}, // Sunday
		{Timestamp: ms(t, "2025-06-14T10:00:00Z"), DailySpent: 25}, // Saturday
		{Timestamp: ms(t, "2025-06-10T10:00:00Z"), DailySpent: 20}, // Tuesday
	}

	hm := BuildHeatmap(points, HeatmapOptions{Range: RangeWeek, HideWeekends: true}, center)

	assert.False(t, hm.Cells[0][10].HasData)
	assert.Equal(t, 0.0, hm.Cells[0][10].Value)
	assert.False(t, hm.Cells[6][10].HasData)
	assert.True(t, hm.Cells[2][10].HasData)

	// Stats reflect the suppressed grid, not the raw points.
	assert.Equal(t, 20.0, hm.Stats.TotalSpent)
	assert.Equal(t, 1, hm.Stats.ActiveCells)

	// Suppression only applies to the week view.
	hm = BuildHeatmap(points, HeatmapOptions{Range: RangeTwoWeeks, HideWeekends: true}, time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, 75.0, hm.Stats.TotalSpent)
}

func TestBuildHeatmap_ZeroSpendCellsStayInactive(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))

	center := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	points := []model.Snapshot{
		{Timestamp: ms(t, "2025-06-10T08:00:00Z"), DailySpent: 0},
		{Timestamp: ms(t, "2025-06-10T09:00:00Z"), DailySpent: 15},
	}
	hm := BuildHeatmap(points, HeatmapOptions{Range: RangeWeek}, center)

	assert.False(t, hm.Cells[2][8].HasData, "snapshots with zero spend do not light cells")
	assert.True(t, hm.Cells[2][9].HasData)
	assert.Equal(t, 15.0, hm.MinValue, "bounds ignore zero-spend cells")
	assert.Equal(t, 15.0, hm.MaxValue)
}
