// Package store persists canonical telemetry and run logs in MongoDB and
// serves the read-only vehicle reference data the collector polls against.
package store

import (
	"context"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
)

// TelemetrySink accepts canonical records and run logs. WriteBatch is not
// all-or-nothing: the returned count is how many records actually landed.
type TelemetrySink interface {
	WriteBatch(ctx context.Context, records []models.TelemetryRecord) (int, error)
	WriteRunLog(ctx context.Context, runLog *models.RunLog) error
}

// RunLogReader serves the inspection surface.
type RunLogReader interface {
	RecentRunLogs(ctx context.Context, jobName string, limit int) ([]models.RunLog, error)
	JobStatistics(ctx context.Context) ([]JobStatistics, error)
}

// JobStatistics aggregates run outcomes for one job.
type JobStatistics struct {
	JobName            string  `bson:"_id" json:"job_name"`
	TotalRuns          int     `bson:"total_runs" json:"total_runs"`
	SuccessfulRuns     int     `bson:"successful_runs" json:"successful_runs"`
	FailedRuns         int     `bson:"failed_runs" json:"failed_runs"`
	AvgDurationSeconds float64 `bson:"avg_duration_seconds" json:"avg_duration_seconds"`
	AvgSuccessRate     float64 `bson:"avg_success_rate" json:"avg_success_rate"`
}

// VehicleStore exposes the vehicle reference data. The collector only ever
// reads active vehicles; writes exist for seeding.
type VehicleStore interface {
	ActiveRefs(ctx context.Context) ([]models.VehicleRef, error)
	InsertVehicle(ctx context.Context, vehicle models.Vehicle) error
}
