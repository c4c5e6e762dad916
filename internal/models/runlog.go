package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VehicleError is a per-vehicle failure summary kept on a run log. The list
// on a run log is bounded; only the first few failures are retained.
type VehicleError struct {
	VIN   string `bson:"vin" json:"vin"`
	Error string `bson:"error" json:"error"`
}

// RunLog is the record of one collection job execution. It is written once
// at job completion and expires per the run-log retention horizon.
type RunLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RunID      string             `bson:"run_id" json:"run_id"`
	JobName    string             `bson:"job_name" json:"job_name"`
	ReportType ReportType         `bson:"report_type" json:"report_type"`
	StartTime  time.Time          `bson:"start_time" json:"start_time"`
	EndTime    time.Time          `bson:"end_time" json:"end_time"`
	Status     IngestionStatus    `bson:"status" json:"status"`
	Processed  int                `bson:"processed" json:"processed"`
	Succeeded  int                `bson:"succeeded" json:"succeeded"`
	Failed     int                `bson:"failed" json:"failed"`
	Errors     []VehicleError     `bson:"errors,omitempty" json:"errors,omitempty"`
	Metadata   map[string]int     `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// DurationSeconds is the wall-clock length of the run.
func (r *RunLog) DurationSeconds() float64 {
	if r.EndTime.IsZero() {
		return 0
	}
	return r.EndTime.Sub(r.StartTime).Seconds()
}

// SuccessRate is the fraction of processed vehicles that succeeded, as a
// percentage. Zero processed yields zero.
func (r *RunLog) SuccessRate() float64 {
	if r.Processed == 0 {
		return 0
	}
	return float64(r.Succeeded) / float64(r.Processed) * 100
}
