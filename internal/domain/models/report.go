package models

import "time"

// PeriodReport is an archived snapshot of a period summary.
type PeriodReport struct {
	Label     string        `bson:"label" json:"label"`
	Summary   PeriodSummary `bson:"summary" json:"summary"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}
