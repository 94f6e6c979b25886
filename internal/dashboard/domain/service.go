package domain

import (
	"context"
	"time"
)

type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type Summary struct {
	GeneratedAt       time.Time               `json:"generated_at"`
	CorrectiveActions CorrectiveActionSummary `json:"corrective_actions"`
	Temperature       TemperatureSummary      `json:"temperature"`
	CuringInProgress  int64                   `json:"curing_in_progress"`
	BatchesInProgress int64                   `json:"production_in_progress"`
	ReceptionsToday   int64                   `json:"receptions_today"`
}

// CorrectiveActionSummary counts actions that are not yet completed.
type CorrectiveActionSummary struct {
	Open       int64            `json:"open"`
	Overdue    int64            `json:"overdue"`
	ByPriority map[string]int64 `json:"by_priority"`
}

type TemperatureSummary struct {
	ReadingsLast24h     int64                 `json:"readings_last_24h"`
	NonCompliantLast24h int64                 `json:"non_compliant_last_24h"`
	RecentNonCompliant  []NonCompliantReading `json:"recent_non_compliant"`
}

type NonCompliantReading struct {
	ID          string    `json:"id"`
	PointName   string    `json:"point_name"`
	Temperature float64   `json:"temperature"`
	MinTemp     float64   `json:"min_temp"`
	MaxTemp     float64   `json:"max_temp"`
	MeasuredAt  time.Time `json:"measured_at"`
}
