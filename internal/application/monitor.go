// Package application orchestrates one dashboard refresh: fetch, extract,
// record, classify, notify.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/penwyp/cc-usage-monitor/internal/core/alert"
	"github.com/penwyp/cc-usage-monitor/internal/core/model"
	"github.com/penwyp/cc-usage-monitor/internal/core/worktime"
	"github.com/penwyp/cc-usage-monitor/internal/data/api"
	"github.com/penwyp/cc-usage-monitor/internal/data/store"
	"github.com/penwyp/cc-usage-monitor/internal/notify"
	"github.com/penwyp/cc-usage-monitor/internal/util"
)

// DashboardData is one fully evaluated refresh, ready for rendering.
type DashboardData struct {
	Metrics    model.Metrics    `json:"metrics"`
	WorkStatus worktime.Status  `json:"workStatus"`
	Assessment alert.Assessment `json:"assessment"`
	FetchedAt  int64            `json:"fetchedAt"` // epoch ms
	Settings   model.Settings   `json:"-"`
}

// Monitor drives the refresh cycle against the configured endpoint.
type Monitor struct {
	settings *store.SettingsStore
	history  *store.HistoryStore
	client   *api.Client
	notifier *notify.Notifier
}

func NewMonitor(settings *store.SettingsStore, history *store.HistoryStore, client *api.Client, notifier *notify.Notifier) *Monitor {
	return &Monitor{
		settings: settings,
		history:  history,
		client:   client,
		notifier: notifier,
	}
}

// ExtractMetrics resolves the four mapped fields out of a raw API response.
// Unmapped or non-numeric fields read as zero.
func ExtractMetrics(data map[string]interface{}, mapping model.Mapping) model.Metrics {
	return model.Metrics{
		DailyBudget:   api.NumericField(data, mapping.DailyBudget),
		DailySpent:    api.NumericField(data, mapping.DailySpent),
		MonthlyBudget: api.NumericField(data, mapping.MonthlyBudget),
		MonthlySpent:  api.NumericField(data, mapping.MonthlySpent),
	}
}

// Poll performs one refresh: fetch the endpoint, extract metrics through the
// field mapping, record the snapshot, evaluate the burn-rate alert and run
// budget notifications.
func (m *Monitor) Poll(ctx context.Context) (DashboardData, error) {
	settings := m.settings.Get()
	if !settings.HasCredentials() {
		return DashboardData{}, api.ErrNotConfigured
	}

	data, err := m.client.Fetch(ctx, settings.ApiUrl, settings.Token)
	if err != nil {
		return DashboardData{}, err
	}

	now := util.GetTimeProvider().Now()
	metrics := ExtractMetrics(data, settings.Mapping)

	if settings.HasUsableMapping() {
		if err := m.history.Append(metrics, now); err != nil {
			util.LogWarnf("Failed to record usage snapshot: %v", err)
		}
	}

	status := worktime.StatusAt(now, settings.WorkingHours.Start, settings.WorkingHours.End)
	assessment := alert.Classify(metrics.DailySpent, metrics.DailyBudget, status, settings.AlertThresholds)

	if m.notifier != nil {
		m.notifier.CheckBudgets(metrics, settings.Notifications, now)
	}

	return DashboardData{
		Metrics:    metrics,
		WorkStatus: status,
		Assessment: assessment,
		FetchedAt:  now.UnixMilli(),
		Settings:   settings,
	}, nil
}

// Watch polls on the configured query interval until ctx is cancelled. Each
// refresh result (or error) is handed to the callback; settings saves take
// effect on the next tick.
func (m *Monitor) Watch(ctx context.Context, onRefresh func(DashboardData, error)) error {
	interval := queryInterval(m.settings.Get())

	reload := make(chan time.Duration, 1)
	m.settings.Subscribe(func(s model.Settings) {
		select {
		case reload <- queryInterval(s):
		default:
		}
	})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	onRefresh(m.Poll(ctx))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case next := <-reload:
			if next != interval {
				util.LogInfo(fmt.Sprintf("Query interval changed to %s", next))
				interval = next
				ticker.Reset(interval)
			}
			onRefresh(m.Poll(ctx))
		case <-ticker.C:
			onRefresh(m.Poll(ctx))
		}
	}
}

// queryInterval clamps the configured interval to something sane.
func queryInterval(s model.Settings) time.Duration {
	minutes := s.Notifications.QueryInterval
	if minutes < 1 {
		minutes = model.DefaultSettings().Notifications.QueryInterval
	}
	return time.Duration(minutes) * time.Minute
}
