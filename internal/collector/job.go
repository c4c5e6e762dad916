// Package collector implements the scheduled collection pipeline: one job
// per report type that fans out rate-limited, retried provider calls across
// the active fleet and writes normalized records through the telemetry sink.
package collector

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
	"github.com/ukydev/gps-telemetry-collector/internal/normalize"
	"github.com/ukydev/gps-telemetry-collector/internal/provider"
	"github.com/ukydev/gps-telemetry-collector/internal/store"
)

// maxErrorSummaries bounds the per-vehicle error list kept on a run log.
const maxErrorSummaries = 10

// VehicleSource is the read-only slice of the vehicle store a job needs.
type VehicleSource interface {
	ActiveRefs(ctx context.Context) ([]models.VehicleRef, error)
}

// RecordPublisher receives each persisted record. Publishing is best-effort
// and never affects run accounting.
type RecordPublisher interface {
	Publish(record *models.TelemetryRecord)
}

// Job collects one report type across the active fleet.
type Job struct {
	Name           string
	ReportType     models.ReportType
	Provider       provider.Client
	Normalizer     *normalize.Normalizer
	Sink           store.TelemetrySink
	Vehicles       VehicleSource
	Retry          *RetryExecutor
	BatchSize      int
	MaxConcurrency int64
	Publisher      RecordPublisher // optional
}

type vehicleOutcome struct {
	vin     string
	record  *models.TelemetryRecord
	retries int
	err     error
}

// Execute runs one collection pass and returns its run log. Per-vehicle
// failures are absorbed into accounting; only a vehicle-list load failure
// aborts the run. The run log is persisted before returning; a failure to
// persist it is logged but not raised.
func (j *Job) Execute(ctx context.Context) *models.RunLog {
	runLog := &models.RunLog{
		RunID:      uuid.NewString(),
		JobName:    j.Name,
		ReportType: j.ReportType,
		StartTime:  time.Now().UTC(),
		Metadata:   map[string]int{},
	}

	logger := log.WithFields(log.Fields{"job": j.Name, "run_id": runLog.RunID})

	refs, err := j.Vehicles.ActiveRefs(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to load active vehicles, aborting run")
		runLog.EndTime = time.Now().UTC()
		runLog.Status = models.IngestionFailed
		runLog.Errors = []models.VehicleError{{Error: "vehicle reference load failed: " + err.Error()}}
		j.persistRunLog(ctx, runLog, logger)
		return runLog
	}

	logger.WithField("vehicle_count", len(refs)).Info("Starting collection run")

	for start := 0; start < len(refs); start += j.BatchSize {
		end := start + j.BatchSize
		if end > len(refs) {
			end = len(refs)
		}
		j.processBatch(ctx, refs[start:end], runLog, logger)
	}

	runLog.EndTime = time.Now().UTC()
	runLog.Status = runStatus(runLog)

	logger.WithFields(log.Fields{
		"status":    runLog.Status,
		"processed": runLog.Processed,
		"succeeded": runLog.Succeeded,
		"failed":    runLog.Failed,
		"duration":  runLog.DurationSeconds(),
	}).Info("Collection run completed")

	j.persistRunLog(ctx, runLog, logger)
	return runLog
}

// processBatch fans the batch out across a bounded number of goroutines,
// then flushes the batch's write buffer in one sink call.
func (j *Job) processBatch(ctx context.Context, refs []models.VehicleRef, runLog *models.RunLog, logger *log.Entry) {
	sem := semaphore.NewWeighted(j.MaxConcurrency)
	outcomes := make([]vehicleOutcome, len(refs))
	var wg sync.WaitGroup

	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref models.VehicleRef) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				outcomes[i] = vehicleOutcome{vin: ref.VIN, err: err}
				return
			}
			defer sem.Release(1)
			outcomes[i] = j.processVehicle(ctx, ref)
		}(i, ref)
	}
	wg.Wait()

	// The write buffer is owned by this goroutine until handed to the sink.
	var buffer []models.TelemetryRecord
	for _, out := range outcomes {
		runLog.Processed++
		if out.err != nil {
			runLog.Failed++
			if len(runLog.Errors) < maxErrorSummaries {
				runLog.Errors = append(runLog.Errors, models.VehicleError{VIN: out.vin, Error: out.err.Error()})
			}
			logger.WithError(out.err).WithField("vin", out.vin).Warn("Vehicle processing failed")
			continue
		}
		if v := out.record.Payload.Voltage; v != nil && !v.IsHealthy {
			runLog.Metadata["low_voltage_alerts"]++
			logger.WithFields(log.Fields{"vin": out.vin, "voltage": v.Value}).Warn("Low voltage reading")
		}
		buffer = append(buffer, *out.record)
	}

	if len(buffer) == 0 {
		return
	}

	written, err := j.Sink.WriteBatch(ctx, buffer)
	if err != nil {
		// Write failures are reported, not retried. Anything that did not
		// land counts as failed.
		lost := len(buffer) - written
		runLog.Succeeded += written
		runLog.Failed += lost
		if len(runLog.Errors) < maxErrorSummaries {
			runLog.Errors = append(runLog.Errors, models.VehicleError{Error: "batch write failed: " + err.Error()})
		}
		logger.WithError(err).WithFields(log.Fields{"written": written, "lost": lost}).Error("Batch write failed")
		return
	}

	runLog.Succeeded += written
	if j.Publisher != nil {
		for i := range buffer {
			j.Publisher.Publish(&buffer[i])
		}
	}
}

// processVehicle fetches and normalizes one vehicle's report. The retry
// executor holds the shared rate limiter, so every attempt takes a token.
func (j *Job) processVehicle(ctx context.Context, ref models.VehicleRef) vehicleOutcome {
	raw, attempts, err := j.Retry.Fetch(ctx, j.Provider, ref.VIN, j.ReportType)
	if err != nil {
		return vehicleOutcome{vin: ref.VIN, retries: retryCount(attempts), err: err}
	}
	if raw.VehicleName == "" {
		raw.VehicleName = ref.VehicleName
	}

	record, err := j.Normalizer.Normalize(j.ReportType, raw)
	if err != nil {
		// Malformed payloads are accounted exactly like fetch failures.
		return vehicleOutcome{vin: ref.VIN, retries: retryCount(attempts), err: err}
	}
	record.Metadata.RetryCount = retryCount(attempts)

	return vehicleOutcome{vin: ref.VIN, record: record, retries: retryCount(attempts)}
}

// retryCount converts an attempt count into retries. A call that failed
// before the first attempt (limiter wait, cancelled context) made zero
// attempts and so zero retries.
func retryCount(attempts int) int {
	if attempts < 1 {
		return 0
	}
	return attempts - 1
}

func (j *Job) persistRunLog(ctx context.Context, runLog *models.RunLog, logger *log.Entry) {
	if err := j.Sink.WriteRunLog(ctx, runLog); err != nil {
		logger.WithError(err).Error("Failed to persist run log")
	}
}

func runStatus(runLog *models.RunLog) models.IngestionStatus {
	switch {
	case runLog.Failed == 0:
		return models.IngestionSuccess
	case runLog.Succeeded > 0:
		return models.IngestionPartialSuccess
	default:
		return models.IngestionFailed
	}
}
