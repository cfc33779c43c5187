package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/penwyp/cc-usage-monitor/internal/util"
)

const notifyStateFile = "notify_state.json"

// NotifyState tracks which budget notifications already fired, so each type
// alerts at most once per period and notifications keep a minimum spacing.
type NotifyState struct {
	DailyFired       bool  `json:"dailyBudget"`
	MonthlyFired     bool  `json:"monthlyBudget"`
	LastNotifiedMs   int64 `json:"lastNotificationTime"`
	LastDailyResetMs int64 `json:"lastDailyReset"`
	LastMonthResetMs int64 `json:"lastMonthlyReset"`
}

// NotifyStateStore persists NotifyState between runs.
type NotifyStateStore struct {
	path string
	mu   sync.Mutex
}

func NewNotifyStateStore(dataDir string) (*NotifyStateStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &NotifyStateStore{path: filepath.Join(dataDir, notifyStateFile)}, nil
}

// Load reads the stored state; a missing or corrupt file yields the zero
// state.
func (n *NotifyStateStore) Load() NotifyState {
	n.mu.Lock()
	defer n.mu.Unlock()

	var state NotifyState
	raw, err := os.ReadFile(n.path)
	if err != nil {
		return state
	}
	if err := sonic.Unmarshal(raw, &state); err != nil {
		util.LogWarn(fmt.Sprintf("Failed to parse notify state file %s: %v", n.path, err))
		return NotifyState{}
	}
	return state
}

// Save persists the state.
func (n *NotifyStateStore) Save(state NotifyState) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return writeJSONFile(n.path, state)
}

// Reset clears the state file.
func (n *NotifyStateStore) Reset() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	err := os.Remove(n.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
