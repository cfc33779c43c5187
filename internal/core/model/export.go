package model

// ExportVersion is the backup envelope format version.
const ExportVersion = "1.0.0"

// DateRange delimits the exported history as ISO timestamps.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ExportMetadata describes the exported data set.
type ExportMetadata struct {
	TotalDataPoints int       `json:"totalDataPoints"`
	DateRange       DateRange `json:"dateRange"`
	ExportedAt      int64     `json:"exportedAt"` // epoch milliseconds
}

// ExportEnvelope is the versioned backup file format. It is created on
// export and validated structurally on import; otherwise opaque.
type ExportEnvelope struct {
	ExportVersion  string         `json:"exportVersion"`
	ExportDate     string         `json:"exportDate"` // ISO date
	Settings       Settings       `json:"settings"`
	HistoricalData []Snapshot     `json:"historicalData"`
	Metadata       ExportMetadata `json:"metadata"`
}
