// Package worktime computes where "now" falls inside the configured daily
// work window and how much of the window has elapsed or remains.
package worktime

import (
	"fmt"
	"time"
)

// Status describes the current position within today's work window.
// Exactly one of IsBeforeWork/IsDuringWork/IsAfterWork is true.
type Status struct {
	IsBeforeWork       bool    `json:"isBeforeWork"`
	IsDuringWork       bool    `json:"isDuringWork"`
	IsAfterWork        bool    `json:"isAfterWork"`
	ElapsedWorkHours   float64 `json:"elapsedWorkHours"`
	RemainingWorkHours float64 `json:"remainingWorkHours"`
	CurrentHour        float64 `json:"currentHour"`
	WorkStart          int     `json:"workStart"`
	WorkEnd            int     `json:"workEnd"`
}

// StatusAt evaluates the work window [startHour, endHour) of now's calendar
// date against now itself. An endHour of 24 is clamped to 23:59:59.999 of
// the same day rather than rolling into the next one.
//
// The function assumes startHour < endHour; configurations are validated at
// entry time via ValidateWorkingHours, not here.
func StatusAt(now time.Time, startHour, endHour int) Status {
	windowStart := time.Date(now.Year(), now.Month(), now.Day(), startHour, 0, 0, 0, now.Location())

	var windowEnd time.Time
	if endHour == 24 {
		windowEnd = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999_000_000, now.Location())
	} else {
		windowEnd = time.Date(now.Year(), now.Month(), now.Day(), endHour, 0, 0, 0, now.Location())
	}

	before := now.Before(windowStart)
	after := now.After(windowEnd)
	during := !before && !after

	var elapsed float64
	if during {
		elapsed = now.Sub(windowStart).Hours()
	} else if after {
		elapsed = float64(endHour - startHour)
	}
	if elapsed < 0 {
		elapsed = 0
	}

	var remaining float64
	if during {
		remaining = windowEnd.Sub(now).Hours()
	}
	if remaining < 0 {
		remaining = 0
	}

	return Status{
		IsBeforeWork:       before,
		IsDuringWork:       during,
		IsAfterWork:        after,
		ElapsedWorkHours:   elapsed,
		RemainingWorkHours: remaining,
		CurrentHour:        float64(now.Hour()) + float64(now.Minute())/60,
		WorkStart:          startHour,
		WorkEnd:            endHour,
	}
}

// ValidateWorkingHours checks a working-hours configuration at config-entry
// time. Downstream code does not defend against start >= end.
func ValidateWorkingHours(start, end int) error {
	if start < 0 || end > 24 {
		return fmt.Errorf("working hours must lie within 0..24, got %d..%d", start, end)
	}
	if start >= end {
		return fmt.Errorf("work start hour %d must be before end hour %d", start, end)
	}
	return nil
}
