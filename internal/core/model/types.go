package model

// Snapshot is one timestamped reading of daily/monthly budget and spend.
// The persisted history keeps snapshots sorted ascending by Timestamp.
type Snapshot struct {
	Timestamp     int64   `json:"timestamp"` // epoch milliseconds
	DailyBudget   float64 `json:"dailyBudget"`
	DailySpent    float64 `json:"dailySpent"`
	MonthlyBudget float64 `json:"monthlyBudget"`
	MonthlySpent  float64 `json:"monthlySpent"`
}

// Metrics holds the four canonical values extracted from one API response.
type Metrics struct {
	DailyBudget   float64 `json:"dailyBudget"`
	DailySpent    float64 `json:"dailySpent"`
	MonthlyBudget float64 `json:"monthlyBudget"`
	MonthlySpent  float64 `json:"monthlySpent"`
}

// History is the persisted historical-data record.
type History struct {
	Data        []Snapshot `json:"data"`
	LastUpdated int64      `json:"lastUpdated"` // epoch milliseconds
}

// Mapping binds the four target metrics to (possibly dotted-path) source
// field names in the upstream API response.
type Mapping struct {
	MonthlyBudget string `json:"monthlyBudget"`
	MonthlySpent  string `json:"monthlySpent"`
	DailyBudget   string `json:"dailyBudget"`
	DailySpent    string `json:"dailySpent"`
}

// WorkingHours is the daily work window in whole hours, [Start, End).
type WorkingHours struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// NotificationThresholds are usage percentages that trigger a budget warning.
type NotificationThresholds struct {
	DailyBudget   float64 `json:"dailyBudget"`
	MonthlyBudget float64 `json:"monthlyBudget"`
}

// Notifications configures the periodic budget check.
type Notifications struct {
	Enabled       bool                   `json:"enabled"`
	QueryInterval int                    `json:"queryInterval"` // minutes
	Thresholds    NotificationThresholds `json:"thresholds"`
}

// AlertThresholds are the burn-rate ratio bands for alert classification.
// Expected ordering Danger >= Warning >= Caution >= NormalMin is the
// caller's responsibility; classification just applies the bands in order.
type AlertThresholds struct {
	Danger    float64 `json:"danger"`
	Warning   float64 `json:"warning"`
	Caution   float64 `json:"caution"`
	NormalMin float64 `json:"normalMin"`
}

// Settings is the single persisted settings record.
type Settings struct {
	ApiUrl          string          `json:"apiUrl"`
	Token           string          `json:"token"`
	WorkingHours    WorkingHours    `json:"workingHours"`
	Mapping         Mapping         `json:"mapping"`
	Notifications   Notifications   `json:"notifications"`
	AlertThresholds AlertThresholds `json:"alertThresholds"`
}

/// DefaultSettings returns the documented defaults: working hours 9-24,
// notification thresholds 80%/90%, alert bands 1.5/1.2/1.0/0.8, five-minute
// query interval.
func DefaultSettings() Settings {
	return Settings{
		WorkingHours: WorkingHours{Start: 9, End: 24},
		Notifications: Notifications{
			Enabled:       false,
			QueryInterval: 5,
			Thresholds: NotificationThresholds{
				DailyBudget:   80,
				MonthlyBudget: 90,
			},
		},
		AlertThresholds: AlertThresholds{
			Danger:    1.5,
			Warning:   1.2,
			Caution:   1.0,
			NormalMin: 0.8,
		},
	}
}

// HasCredentials reports whether the API endpoint is configured.
func (s Settings) HasCredentials() bool {
	return s.ApiUrl != "" && s.Token != ""
}

// HasUsableMapping reports whether at least one spent field and one budget
// field are mapped, which is the minimum for a meaningful dashboard.
func (s Settings) HasUsableMapping() bool {
	hasSpent := s.Mapping.DailySpent != "" || s.Mapping.MonthlySpent != ""
	hasBudget := s.Mapping.DailyBudget != "" || s.Mapping.MonthlyBudget != ""
	return hasSpent && hasBudget
}
