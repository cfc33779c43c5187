// Package alert classifies spend velocity against the remaining daily budget
// into a discrete alert level.
package alert

import (
	"github.com/penwyp/cc-usage-monitor/internal/core/model"
	"github.com/penwyp/cc-usage-monitor/internal/core/worktime"
)

// Level is the discrete alert classification, ordered roughly by severity.
type Level string

const (
	LevelBeforeWork   Level = "before-work"
	LevelAfterWork    Level = "after-work"
	LevelExceeded     Level = "exceeded"
	LevelDanger       Level = "danger"
	LevelWarning      Level = "warning"
	LevelCaution      Level = "caution"
	LevelNormal       Level = "normal"
	LevelConservative Level = "conservative"
)

// Severity orders levels for display emphasis; higher means more urgent.
type Severity int

const (
	SeverityIdle Severity = iota
	SeverityInfo
	SeverityNotice
	SeverityWarning
	SeverityCritical
)

// Assessment is the full classification result, including the derived rates
// so callers can render them without recomputing.
type Assessment struct {
	Level           Level    `json:"level"`
	Severity        Severity `json:"severity"`
	Message         string   `json:"message"`
	RemainingBudget float64 `json:"remainingBudget"`
	CurrentRate     float64 `json:"currentRate"`  // spend per elapsed work-hour
	RequiredRate    float64 `json:"requiredRate"` // remaining budget per remaining work-hour
	Ratio           float64 `json:"ratio"`        // CurrentRate / RequiredRate
}

// CurrentBurnRate is the spend per elapsed work-hour, 0 when no work time
// has elapsed.
func CurrentBurnRate(dailySpent, elapsedWorkHours float64) float64 {
	if elapsedWorkHours <= 0 {
		return 0
	}
	return dailySpent / elapsedWorkHours
}

// RequiredBurnRate is the remaining budget per remaining work-hour, 0 when
// no work time or budget remains.
func RequiredBurnRate(remainingBudget, remainingWorkHours float64) float64 {
	if remainingWorkHours <= 0 || remainingBudget <= 0 {
		return 0
	}
	return remainingBudget / remainingWorkHours
}

// withDefaults substitutes the documented defaults for unset (zero) bands.
func withDefaults(t model.AlertThresholds) model.AlertThresholds {
	defaults := model.DefaultSettings().AlertThresholds
	if t.Danger == 0 {
		t.Danger = defaults.Danger
	}
	if t.Warning == 0 {
		t.Warning = defaults.Warning
	}
	if t.Caution == 0 {
		t.Caution = defaults.Caution
	}
	if t.NormalMin == 0 {
		t.NormalMin = defaults.NormalMin
	}
	return t
}

// Classify derives the alert level for today's spend against today's budget.
//
// Decision order matters because the bands overlap conceptually: outside the
// work window the before/after levels win; an exhausted budget overrides any
// rate-based level; then the ratio is compared highest band first with
// strict > (a ratio exactly at a band boundary falls into the lower band),
// and >= only at the normal floor. Threshold ordering is not validated; if a
// caller supplies inverted bands, the first matching comparison still wins.
func Classify(dailySpent, dailyBudget float64, status worktime.Status, thresholds model.AlertThresholds) Assessment {
	t := withDefaults(thresholds)

	remaining := dailyBudget - dailySpent
	currentRate := CurrentBurnRate(dailySpent, status.ElapsedWorkHours)
	requiredRate := RequiredBurnRate(remaining, status.RemainingWorkHours)

	ratio := 0.0
	if requiredRate > 0 {
		ratio = currentRate / requiredRate
	}

	a := Assessment{
		RemainingBudget: remaining,
		CurrentRate:     currentRate,
		RequiredRate:    requiredRate,
		Ratio:           ratio,
	}

	switch {
	case status.IsBeforeWork:
		a.Level = LevelBeforeWork
		a.Severity = SeverityIdle
		a.Message = "work has not started"
	case status.IsAfterWork:
		a.Level = LevelAfterWork
		a.Severity = SeverityIdle
		a.Message = "work day is over"
	case remaining <= 0:
		a.Level = LevelExceeded
		a.Severity = SeverityCritical
		a.Message = "daily budget exceeded"
	case ratio > t.Danger:
		a.Level = LevelDanger
		a.Severity = SeverityCritical
		a.Message = "spending far too fast, strict control needed"
	case ratio > t.Warning:
		a.Level = LevelWarning
		a.Severity = SeverityWarning
		a.Message = "spending somewhat fast, moderation advised"
	case ratio > t.Caution:
		a.Level = LevelCaution
		a.Severity = SeverityNotice
		a.Message = "spending slightly fast, watch the pace"
	case ratio >= t.NormalMin:
		a.Level = LevelNormal
		a.Severity = SeverityInfo
		a.Message = "spending pace is on track"
	default:
		a.Level = LevelConservative
		a.Severity = SeverityInfo
		a.Message = "spending below pace, room to spare"
	}

	return a
}
