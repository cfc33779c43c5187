// Package aggregate builds hourly timeline and multi-day heatmap views from
// raw usage snapshots. Both builders are total: malformed input degrades to
// an empty well-formed result instead of propagating a failure into the
// render path.
package aggregate

import (
	"fmt"
	"time"

	"github.com/penwyp/cc-usage-monitor/internal/core/model"
	"github.com/penwyp/cc-usage-monitor/internal/util"
)

// HourlyBucket holds the resolved state of one hour of the timeline day.
type HourlyBucket struct {
	Hour            int     `json:"hour"`
	Timestamp       int64   `json:"timestamp"` // epoch ms of the winning snapshot, 0 if empty
	DailySpent      float64 `json:"dailySpent"`
	DailyBudget     float64 `json:"dailyBudget"`
	UsagePercent    float64 `json:"usagePercent"`
	SpentIncrease   float64 `json:"spentIncrease"`
	IncreasePercent float64 `json:"increasePercent"`
	HasData         bool    `json:"hasData"`
}

// TimelineStats summarizes one day of hourly buckets.
type TimelineStats struct {
	ActiveHours      int     `json:"activeHours"`
	LatestSpent      float64 `json:"latestSpent"`
	PeakHour         int     `json:"peakHour"`
	PeakSpent        float64 `json:"peakSpent"`
	AvgUsagePercent  float64 `json:"avgUsagePercent"`
	MaxIncrease      float64 `json:"maxIncrease"`
	AvgIncrease      float64 `json:"avgIncrease"`
	PeakIncreaseHour int     `json:"peakIncreaseHour"`
}

// Timeline is the complete single-day hourly view.
type Timeline struct {
	Date  string         `json:"date"` // YYYY-MM-DD in the provider timezone
	Hours []HourlyBucket `json:"hours"`
	Stats TimelineStats  `json:"stats"`
}

func emptyTimeline(date string) Timeline {
	hours := make([]HourlyBucket, 24)
	for h := range hours {
		hours[h].Hour = h
	}
	return Timeline{Date: date, Hours: hours}
}

// BuildTimeline resolves snapshots into 24 hourly buckets for dateMs's
// calendar day in the active timezone. Within an hour the snapshot with the
// greatest timestamp wins. Any panic while aggregating yields the empty
// timeline for that day.
func BuildTimeline(points []model.Snapshot, dateMs int64) (tl Timeline) {
	tp := util.GetTimeProvider()
	day := tp.In(time.UnixMilli(dateMs))
	date := day.Format("2006-01-02")

	defer func() {
		if r := recover(); r != nil {
			util.LogError(fmt.Sprintf("Timeline aggregation failed for %s: %v", date, r))
			tl = emptyTimeline(date)
		}
	}()

	startMs := tp.StartOfDay(day).UnixMilli()
	endMs := tp.EndOfDay(day).UnixMilli()

	tl = emptyTimeline(date)

	// Per-hour snapshots of the day, last write wins.
	type hourPoints struct {
		first model.Snapshot
		last  model.Snapshot
		count int
	}
	byHour := make(map[int]*hourPoints)
	for _, p := range points {
		if p.Timestamp < startMs || p.Timestamp > endMs {
			continue
		}
		h := tp.HourOfMillis(p.Timestamp)
		hp := byHour[h]
		if hp == nil {
			byHour[h] = &hourPoints{first: p, last: p, count: 1}
			continue
		}
		hp.count++
		if p.Timestamp < hp.first.Timestamp {
			hp.first = p
		}
		if p.Timestamp > hp.last.Timestamp {
			hp.last = p
		}
	}

	// Cumulative spend of the closest earlier hour with nonzero spend, 0 if
	// the day has no earlier spend. Buckets are filled in ascending hour
	// order, so earlier buckets are already resolved.
	priorSpent := func(h int) float64 {
		for prev := h - 1; prev >= 0; prev-- {
			if tl.Hours[prev].DailySpent > 0 {
				return tl.Hours[prev].DailySpent
			}
		}
		return 0
	}

	for h := 0; h < 24; h++ {
		b := &tl.Hours[h]
		hp, ok := byHour[h]
		if !ok {
			continue
		}
		b.HasData = true
		b.Timestamp = hp.last.Timestamp
		b.DailySpent = hp.last.DailySpent
		b.DailyBudget = hp.last.DailyBudget
		if b.DailyBudget > 0 {
			b.UsagePercent = b.DailySpent / b.DailyBudget * 100
		}
		if b.DailySpent <= 0 {
			continue
		}

		// With two or more points in the hour the increase is the actual
		// in-hour delta; with one point it is measured against the closest
		// earlier hour that had spend, which for the first active hour of
		// the day means the full cumulative spend.
		if hp.count >= 2 {
			b.SpentIncrease = hp.last.DailySpent - hp.first.DailySpent
		} else {
			b.SpentIncrease = b.DailySpent - priorSpent(h)
		}
		if b.SpentIncrease < 0 {
			b.SpentIncrease = 0
		}
		if prior := priorSpent(h); prior > 0 {
			b.IncreasePercent = (b.DailySpent - prior) / prior * 100
		}
	}

	tl.Stats = summarizeTimeline(tl.Hours)
	return tl
}

func summarizeTimeline(hours []HourlyBucket) TimelineStats {
	var s TimelineStats
	var usageSum, increaseSum float64
	increaseCount := 0
	peakSet, peakIncSet := false, false

	for _, b := range hours {
		if !b.HasData || b.DailySpent <= 0 {
			continue
		}
		s.ActiveHours++
		s.LatestSpent = b.DailySpent
		usageSum += b.UsagePercent
		if !peakSet || b.DailySpent > s.PeakSpent {
			s.PeakSpent = b.DailySpent
			s.PeakHour = b.Hour
			peakSet = true
		}
		if b.SpentIncrease > 0 {
			increaseCount++
			increaseSum += b.SpentIncrease
			if !peakIncSet || b.SpentIncrease > s.MaxIncrease {
				s.MaxIncrease = b.SpentIncrease
				s.PeakIncreaseHour = b.Hour
				peakIncSet = true
			}
		}
	}
	if s.ActiveHours > 0 {
		s.AvgUsagePercent = usageSum / float64(s.ActiveHours)
	}
	if increaseCount > 0 {
		s.AvgIncrease = increaseSum / float64(increaseCount)
	}
	return s
}
