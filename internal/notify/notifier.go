// Package notify raises budget warnings when usage crosses the configured
// thresholds, with dedup so a given warning fires once per period.
package notify

import (
	"fmt"
	"time"

	"github.com/penwyp/cc-usage-monitor/internal/core/model"
	"github.com/penwyp/cc-usage-monitor/internal/data/store"
	"github.com/penwyp/cc-usage-monitor/internal/util"
)

// minInterval is the minimum spacing between any two notifications.
const minInterval = 30 * time.Minute

// Type identifies which budget a notification concerns.
type Type string

const (
	TypeDailyBudget   Type = "dailyBudget"
	TypeMonthlyBudget Type = "monthlyBudget"
)

// Notification is one budget warning ready for delivery.
type Notification struct {
	Type         Type
	Title        string
	Message      string
	UsagePercent float64
	Threshold    float64
}

// Sink delivers notifications. Delivery failures are logged and otherwise
// ignored; the warning will come around again next period.
type Sink interface {
	Notify(n Notification) error
}

// LogSink writes notifications to the structured log. It is the default
// delivery path for a terminal tool.
type LogSink struct{}

func (LogSink) Notify(n Notification) error {
	util.LogWarnf("%s: %s", n.Title, n.Message)
	return nil
}

// Notifier evaluates budget thresholds against fresh metrics.
type Notifier struct {
	state *store.NotifyStateStore
	sink  Sink
}

func NewNotifier(state *store.NotifyStateStore, sink Sink) *Notifier {
	if sink == nil {
		sink = LogSink{}
	}
	return &Notifier{state: state, sink: sink}
}

// budgetWarning builds the user-facing text for one crossed threshold.
func budgetWarning(t Type, usagePercent, threshold float64, period string) Notification {
	var message string
	if usagePercent >= 100 {
		message = fmt.Sprintf("%s budget exceeded, usage at %.1f%%", period, usagePercent)
	} else {
		message = fmt.Sprintf("%s budget usage reached %.1f%%, above the configured %.0f%% threshold", period, usagePercent, threshold)
	}
	return Notification{
		Type:         t,
		Title:        fmt.Sprintf("%s budget warning", period),
		Message:      message,
		UsagePercent: usagePercent,
		Threshold:    threshold,
	}
}

// CheckBudgets compares metrics against the notification thresholds and
// delivers at most one warning per budget type. Zero or negative budgets
// never warn.
func (n *Notifier) CheckBudgets(m model.Metrics, cfg model.Notifications, now time.Time) {
	if !cfg.Enabled {
		return
	}
	n.rollPeriods(now)

	if m.DailyBudget > 0 && m.DailySpent >= 0 {
		pct := m.DailySpent / m.DailyBudget * 100
		if pct >= cfg.Thresholds.DailyBudget {
			n.send(budgetWarning(TypeDailyBudget, pct, cfg.Thresholds.DailyBudget, "Daily"), now)
		}
	}
	if m.MonthlyBudget > 0 && m.MonthlySpent >= 0 {
		pct := m.MonthlySpent / m.MonthlyBudget * 100
		if pct >= cfg.Thresholds.MonthlyBudget {
			n.send(budgetWarning(TypeMonthlyBudget, pct, cfg.Thresholds.MonthlyBudget, "Monthly"), now)
		}
	}
}

// send delivers one notification if neither the global spacing nor the
// per-type once-per-period flag suppresses it.
func (n *Notifier) send(notification Notification, now time.Time) {
	state := n.state.Load()

	if now.UnixMilli()-state.LastNotifiedMs < minInterval.Milliseconds() {
		util.LogDebug(fmt.Sprintf("Skipping %s notification, last one was under %s ago", notification.Type, minInterval))
		return
	}
	switch notification.Type {
	case TypeDailyBudget:
		if state.DailyFired {
			return
		}
	case TypeMonthlyBudget:
		if state.MonthlyFired {
			return
		}
	}

	if err := n.sink.Notify(notification); err != nil {
		util.LogError(fmt.Sprintf("Failed to deliver %s notification: %v", notification.Type, err))
		return
	}

	state.LastNotifiedMs = now.UnixMilli()
	switch notification.Type {
	case TypeDailyBudget:
		state.DailyFired = true
	case TypeMonthlyBudget:
		state.MonthlyFired = true
	}
	if err := n.state.Save(state); err != nil {
		util.LogError(fmt.Sprintf("Failed to persist notification state: %v", err))
	}
}

// rollPeriods clears the per-type flags when the day or month ticks over.
func (n *Notifier) rollPeriods(now time.Time) {
	state := n.state.Load()
	tp := util.GetTimeProvider()
	local := tp.In(now)

	dayStart := tp.StartOfDay(now).UnixMilli()
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, local.Location()).UnixMilli()

	changed := false
	if state.LastDailyResetMs != dayStart {
		state.DailyFired = false
		state.LastDailyResetMs = dayStart
		changed = true
	}
	if state.LastMonthResetMs != monthStart {
		state.MonthlyFired = false
		state.LastMonthResetMs = monthStart
		changed = true
	}
	if changed {
		if err := n.state.Save(state); err != nil {
			util.LogError(fmt.Sprintf("Failed to persist notification state: %v", err))
		}
	}
}
