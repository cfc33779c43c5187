package formatter

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/cc-usage-monitor/internal/application"
	"github.com/penwyp/cc-usage-monitor/internal/core/alert"
	"github.com/penwyp/cc-usage-monitor/internal/core/model"
	"github.com/penwyp/cc-usage-monitor/internal/core/worktime"
	"github.com/penwyp/cc-usage-monitor/internal/data/aggregate"
	"github.com/penwyp/cc-usage-monitor/internal/util"
)

func TestParseOutput(t *testing.T) {
	assert.Equal(t, OutputJSON, ParseOutput("json"))
	assert.Equal(t, OutputJSON, ParseOutput("JSON"))
	assert.Equal(t, OutputCSV, ParseOutput("csv"))
	assert.Equal(t, OutputTable, ParseOutput("table"))
	assert.Equal(t, OutputTable, ParseOutput(""))
	assert.Equal(t, OutputTable, ParseOutput("yaml"))
}

func sampleDashboard(t *testing.T) application.DashboardData {
	t.Helper()
	require.NoError(t, util.InitializeTimeProvider("UTC"))
	now := time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)
	status := worktime.StatusAt(now, 9, 18)
	metrics := model.Metrics{DailyBudget: 50, DailySpent: 40, MonthlyBudget: 1000, MonthlySpent: 300}
	return application.DashboardData{
		Metrics:    metrics,
		WorkStatus: status,
		Assessment: alert.Classify(metrics.DailySpent, metrics.DailyBudget, status, model.AlertThresholds{}),
		FetchedAt:  now.UnixMilli(),
	}
}

func TestRenderDashboard(t *testing.T) {
	var buf bytes.Buffer
	RenderDashboard(&buf, sampleDashboard(t))
	out := buf.String()

	assert.Contains(t, out, "Usage Monitor")
	assert.Contains(t, out, "2025-06-10 14:30")
	assert.Contains(t, out, "$40.00 / $50.00")
	assert.Contains(t, out, "$300.00 / $1,000.00")
	assert.Contains(t, out, "09:00 - 18:00")
	assert.Contains(t, out, "working")
}

func TestRenderTimelineTable(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))
	points := []model.Snapshot{
		{Timestamp: time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC).UnixMilli(), DailySpent: 25, DailyBudget: 50},
	}
	tl := aggregate.BuildTimeline(points, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC).UnixMilli())

	var buf bytes.Buffer
	RenderTimelineTable(&buf, tl)
	out := buf.String()

	assert.Contains(t, out, "Daily Timeline 2025-06-10")
	assert.Contains(t, out, "09:00")
	assert.Contains(t, out, "$25.00")
	assert.Contains(t, out, "Active hours   1")
}

func TestRenderTimelineCSV(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))
	points := []model.Snapshot{
		{Timestamp: time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC).UnixMilli(), DailySpent: 25, DailyBudget: 50},
		{Timestamp: time.Date(2025, 6, 10, 14, 0, 0, 0, time.UTC).UnixMilli(), DailySpent: 40, DailyBudget: 50},
	}
	tl := aggregate.BuildTimeline(points, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC).UnixMilli())

	var buf bytes.Buffer
	require.NoError(t, RenderTimelineCSV(&buf, tl))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3, "header plus one row per active hour")
	assert.Equal(t, "date,hour,spent,budget,usage_percent,increase,increase_percent", lines[0])
	assert.Equal(t, "2025-06-10,09:00,25.00,50.00,50.0,25.00,0.0", lines[1])
	assert.Equal(t, "2025-06-10,14:00,40.00,50.00,80.0,15.00,60.0", lines[2])
}

func TestRenderHeatmap(t *testing.T) {
	require.NoError(t, util.InitializeTimeProvider("UTC"))
	center := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	points := []model.Snapshot{
		{Timestamp: time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC).UnixMilli(), DailySpent: 30},
	}
	hm := aggregate.BuildHeatmap(points, aggregate.HeatmapOptions{Range: aggregate.RangeWeek}, center)

	var buf bytes.Buffer
	RenderHeatmap(&buf, hm)
	out := buf.String()

	assert.Contains(t, out, "Spend Heatmap")
	assert.Contains(t, out, "Tue")
	assert.Contains(t, out, "Total spent    $30.00")
	assert.Contains(t, out, "Peak cell      Tue 09:00")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, map[string]int{"hour": 9}))
	assert.Contains(t, buf.String(), `"hour": 9`)
}
