package aggregate

import (
	"fmt"
	"time"

	"github.com/penwyp/cc-usage-monitor/internal/core/model"
	"github.com/penwyp/cc-usage-monitor/internal/util"
)

// TimeRange selects the span of days a heatmap covers.
type TimeRange string

const (
	RangeWeek     TimeRange = "week"   // calendar week Sunday through Saturday
	RangeTwoWeeks TimeRange = "2weeks" // trailing 14 days ending at the center day
	RangeMonth    TimeRange = "month"  // trailing 30 days ending at the center day
)

// DayCount returns the number of day rows for the range. Unknown ranges fall
// back to a week.
func (r TimeRange) DayCount() int {
	switch r {
	case RangeTwoWeeks:
		return 14
	case RangeMonth:
		return 30
	default:
		return 7
	}
}

// HeatmapOptions control range selection and weekend visibility.
type HeatmapOptions struct {
	Range        TimeRange
	HideWeekends bool // effective for the week range only
}

// Cell is one day-hour bucket of the heatmap grid.
type Cell struct {
	Day       int     `json:"day"`
	Hour      int     `json:"hour"`
	Timestamp int64   `json:"timestamp"` // epoch ms of the cell's hour start
	Value     float64 `json:"value"`     // cumulative daily spend at the latest snapshot
	Intensity float64 `json:"intensity"` // 0..1 relative to the grid's min/max
	HasData   bool    `json:"hasData"`
}

// HeatmapStats summarizes the populated cells of a grid.
type HeatmapStats struct {
	TotalSpent       float64 `json:"totalSpent"`
	AvgIntensity     float64 `json:"avgIntensity"`
	PeakDay          int     `json:"peakDay"`
	PeakHour         int     `json:"peakHour"`
	PeakValue        float64 `json:"peakValue"`
	ActiveCells      int     `json:"activeCells"`
	DataCompleteness float64 `json:"dataCompleteness"` // percent of cells with data
}

// Heatmap is a dayCount x 24 grid of spend density cells.
type Heatmap struct {
	PeriodStart int64        `json:"periodStart"` // epoch ms
	PeriodEnd   int64        `json:"periodEnd"`   // epoch ms
	DayCount    int          `json:"dayCount"`
	DayLabels   []string     `json:"dayLabels"`
	Cells       [][]Cell     `json:"cells"` // indexed [day][hour]
	MaxValue    float64      `json:"maxValue"`
	MinValue    float64      `json:"minValue"`
	HasAnyData  bool         `json:"hasAnyData"`
	Stats       HeatmapStats `json:"stats"`
}

// periodOf resolves the [start, end] day span for a range centered on center.
// The week range is the calendar week containing center; the trailing ranges
// end at center's end of day.
func periodOf(tp *util.TimeProvider, center time.Time, r TimeRange) (time.Time, time.Time, int) {
	dayCount := r.DayCount()
	end := tp.EndOfDay(center)
	switch r {
	case RangeTwoWeeks, RangeMonth:
		start := tp.StartOfDay(center).AddDate(0, 0, -(dayCount - 1))
		return start, end, dayCount
	default:
		weekStart := tp.StartOfDay(center).AddDate(0, 0, -int(tp.In(center).Weekday()))
		return weekStart, tp.EndOfDay(weekStart.AddDate(0, 0, 6)), 7
	}
}

func emptyHeatmap(tp *util.TimeProvider, start, end time.Time, dayCount int) Heatmap {
	hm := Heatmap{
		PeriodStart: start.UnixMilli(),
		PeriodEnd:   end.UnixMilli(),
		DayCount:    dayCount,
		DayLabels:   make([]string, dayCount),
		Cells:       make([][]Cell, dayCount),
	}
	for d := 0; d < dayCount; d++ {
		day := start.AddDate(0, 0, d)
		if dayCount <= 7 {
			hm.DayLabels[d] = day.Format("Mon")
		} else {
			hm.DayLabels[d] = day.Format("Jan 2")
		}
		hm.Cells[d] = make([]Cell, 24)
		for h := 0; h < 24; h++ {
			hm.Cells[d][h] = Cell{
				Day:       d,
				Hour:      h,
				Timestamp: day.Add(time.Duration(h) * time.Hour).UnixMilli(),
			}
		}
	}
	return hm
}

// BuildHeatmap buckets snapshots into a day-by-hour spend density grid around
// center. Within a cell the snapshot with the greatest timestamp wins, and
// intensity is normalized over the grid's positive cell values. Any panic
// while aggregating yields the empty grid for the same period.
func BuildHeatmap(points []model.Snapshot, opts HeatmapOptions, center time.Time) (hm Heatmap) {
	tp := util.GetTimeProvider()
	start, end, dayCount := periodOf(tp, center, opts.Range)

	defer func() {
		if r := recover(); r != nil {
			util.LogError(fmt.Sprintf("Heatmap aggregation failed for range %s: %v", opts.Range, r))
			hm = emptyHeatmap(tp, start, end, dayCount)
		}
	}()

	hm = emptyHeatmap(tp, start, end, dayCount)
	startMs := hm.PeriodStart
	endMs := hm.PeriodEnd

	// Latest snapshot per day-hour cell.
	type cellKey struct{ day, hour int }
	latest := make(map[cellKey]model.Snapshot)
	for _, p := range points {
		if p.Timestamp < startMs || p.Timestamp > endMs {
			continue
		}
		day := int((p.Timestamp - startMs) / (24 * 60 * 60 * 1000))
		if day < 0 || day >= dayCount {
			continue
		}
		key := cellKey{day, tp.HourOfMillis(p.Timestamp)}
		if prev, ok := latest[key]; !ok || p.Timestamp > prev.Timestamp {
			latest[key] = p
		}
	}

	// Normalization bounds come from positive cell values only.
	minSet := false
	for _, p := range latest {
		v := util.SafeNumber(p.DailySpent, 0)
		if v <= 0 {
			continue
		}
		if !minSet {
			hm.MinValue, hm.MaxValue = v, v
			minSet = true
			continue
		}
		if v < hm.MinValue {
			hm.MinValue = v
		}
		if v > hm.MaxValue {
			hm.MaxValue = v
		}
	}

	for key, p := range latest {
		v := util.SafeNumber(p.DailySpent, 0)
		cell := &hm.Cells[key.day][key.hour]
		cell.Value = v
		cell.Intensity = intensityOf(v, hm.MinValue, hm.MaxValue)
		cell.HasData = v > 0
		if v > 0 {
			hm.HasAnyData = true
		}
	}

	if opts.HideWeekends && opts.Range.DayCount() == 7 {
		for _, d := range []int{0, 6} {
			for h := 0; h < 24; h++ {
				hm.Cells[d][h].Value = 0
				hm.Cells[d][h].Intensity = 0
				hm.Cells[d][h].HasData = false
			}
		}
	}

	hm.Stats = summarizeHeatmap(&hm)
	return hm
}

// intensityOf maps a value onto 0..1 inside [min, max]. A degenerate range
// pins populated cells at the midpoint.
func intensityOf(v, min, max float64) float64 {
	if max == min {
		if v > 0 {
			return 0.5
		}
		return 0
	}
	i := (v - min) / (max - min)
	if i < 0 {
		return 0
	}
	if i > 1 {
		return 1
	}
	return i
}

func summarizeHeatmap(hm *Heatmap) HeatmapStats {
	var s HeatmapStats
	var intensitySum float64
	for d := 0; d < hm.DayCount; d++ {
		for h := 0; h < 24; h++ {
			cell := hm.Cells[d][h]
			if !cell.HasData || cell.Value <= 0 {
				continue
			}
			s.TotalSpent += cell.Value
			intensitySum += cell.Intensity
			s.ActiveCells++
			if cell.Value > s.PeakValue {
				s.PeakValue = cell.Value
				s.PeakDay = d
				s.PeakHour = h
			}
		}
	}
	if s.ActiveCells > 0 {
		s.AvgIntensity = intensitySum / float64(s.ActiveCells)
	}
	s.DataCompleteness = float64(s.ActiveCells) / float64(hm.DayCount*24) * 100
	return s
}
