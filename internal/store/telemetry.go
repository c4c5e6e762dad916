package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
)

// MongoTelemetryStore is the MongoDB-backed TelemetrySink and RunLogReader.
type MongoTelemetryStore struct {
	Telemetry *mongo.Collection
	RunLogs   *mongo.Collection
}

// NewMongoTelemetryStore wires the store to its two collections.
func NewMongoTelemetryStore(db *mongo.Database, telemetryColl, runLogColl string) *MongoTelemetryStore {
	return &MongoTelemetryStore{
		Telemetry: db.Collection(telemetryColl),
		RunLogs:   db.Collection(runLogColl),
	}
}

// EnsureIndexes creates the query indexes and the TTL indexes that enforce
// the retention horizons. Safe to call on every startup.
func (s *MongoTelemetryStore) EnsureIndexes(ctx context.Context, telemetryRetention, runLogRetention time.Duration) error {
	if s.Telemetry == nil || s.RunLogs == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	telemetryIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "vin", Value: 1}, {Key: "recorded_at", Value: -1}}},
		{Keys: bson.D{{Key: "metadata.report_type", Value: 1}, {Key: "recorded_at", Value: -1}}},
		{Keys: bson.D{{Key: "event_type", Value: 1}, {Key: "recorded_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(telemetryRetention.Seconds())),
		},
	}
	if _, err := s.Telemetry.Indexes().CreateMany(ctx, telemetryIndexes); err != nil {
		return fmt.Errorf("create telemetry indexes: %w", err)
	}

	runLogIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "job_name", Value: 1}, {Key: "start_time", Value: -1}}},
		{
			Keys:    bson.D{{Key: "start_time", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(runLogRetention.Seconds())),
		},
	}
	if _, err := s.RunLogs.Indexes().CreateMany(ctx, runLogIndexes); err != nil {
		return fmt.Errorf("create run log indexes: %w", err)
	}

	log.Info("Database indexes ensured")
	return nil
}

// WriteBatch inserts records unordered so one bad document does not sink the
// rest. The returned count reflects what actually landed.
func (s *MongoTelemetryStore) WriteBatch(ctx context.Context, records []models.TelemetryRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	if s.Telemetry == nil {
		return 0, fmt.Errorf("mongo collection is nil")
	}

	docs := make([]interface{}, len(records))
	for i := range records {
		docs[i] = records[i]
	}

	result, err := s.Telemetry.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	written := 0
	if result != nil {
		written = len(result.InsertedIDs)
	}
	if err != nil {
		var bulkErr mongo.BulkWriteException
		if errors.As(err, &bulkErr) && written > 0 {
			// Partial write: report the count, still surface the error.
			return written, fmt.Errorf("partial batch write (%d/%d): %w", written, len(records), err)
		}
		return written, fmt.Errorf("batch write failed: %w", err)
	}
	return written, nil
}

// WriteRunLog persists one run log.
func (s *MongoTelemetryStore) WriteRunLog(ctx context.Context, runLog *models.RunLog) error {
	if s.RunLogs == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	if _, err := s.RunLogs.InsertOne(ctx, runLog); err != nil {
		return fmt.Errorf("run log write failed: %w", err)
	}
	return nil
}

// RecentRunLogs returns the latest run logs for a job, newest first.
func (s *MongoTelemetryStore) RecentRunLogs(ctx context.Context, jobName string, limit int) ([]models.RunLog, error) {
	if s.RunLogs == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: -1}}).SetLimit(int64(limit))
	cursor, err := s.RunLogs.Find(ctx, bson.M{"job_name": jobName}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var logs []models.RunLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// JobStatistics aggregates run counts, average duration and average success
// rate per job.
func (s *MongoTelemetryStore) JobStatistics(ctx context.Context) ([]JobStatistics, error) {
	if s.RunLogs == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}

	pipeline := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{
			"duration_seconds": bson.M{"$divide": bson.A{bson.M{"$subtract": bson.A{"$end_time", "$start_time"}}, 1000}},
			"success_rate": bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$processed", 0}},
				bson.M{"$multiply": bson.A{bson.M{"$divide": bson.A{"$succeeded", "$processed"}}, 100}},
				0,
			}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":        "$job_name",
			"total_runs": bson.M{"$sum": 1},
			"successful_runs": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", string(models.IngestionSuccess)}}, 1, 0},
			}},
			"failed_runs": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$status", string(models.IngestionFailed)}}, 1, 0},
			}},
			"avg_duration_seconds": bson.M{"$avg": "$duration_seconds"},
			"avg_success_rate":     bson.M{"$avg": "$success_rate"},
		}}},
	}

	cursor, err := s.RunLogs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stats []JobStatistics
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
