// Package models defines the canonical telemetry document shapes persisted
// to MongoDB and the enumerations shared across the pipeline.
package models

// ReportType identifies which provider report a collection job requests.
type ReportType string

const (
	ReportPosition     ReportType = "position"
	ReportOdometer     ReportType = "odometer"
	ReportEngineStatus ReportType = "engine_status"
	ReportSpeed        ReportType = "speed"
	ReportIgnition     ReportType = "ignition"
	ReportTrip         ReportType = "trip"
	ReportParking      ReportType = "parking"
	ReportConsumption  ReportType = "consumption"
	ReportVoltage      ReportType = "voltage"
)

// AllReportTypes lists every collectable report type in scheduling order.
var AllReportTypes = []ReportType{
	ReportPosition,
	ReportOdometer,
	ReportEngineStatus,
	ReportSpeed,
	ReportIgnition,
	ReportTrip,
	ReportParking,
	ReportConsumption,
	ReportVoltage,
}

// Valid reports whether the value is a known report type.
func (r ReportType) Valid() bool {
	for _, known := range AllReportTypes {
		if r == known {
			return true
		}
	}
	return false
}

// EventType labels a persisted telemetry record by the kind of observation
// it carries.
type EventType string

const (
	EventPosition     EventType = "position_update"
	EventOdometer     EventType = "odometer_reading"
	EventEngineStatus EventType = "engine_status"
	EventSpeed        EventType = "speed_reading"
	EventIgnition     EventType = "ignition_status"
	EventTrip         EventType = "trip_summary"
	EventParking      EventType = "parking_report"
	EventConsumption  EventType = "consumption_data"
	EventVoltage      EventType = "voltage_reading"
)

var reportEventTypes = map[ReportType]EventType{
	ReportPosition:     EventPosition,
	ReportOdometer:     EventOdometer,
	ReportEngineStatus: EventEngineStatus,
	ReportSpeed:        EventSpeed,
	ReportIgnition:     EventIgnition,
	ReportTrip:         EventTrip,
	ReportParking:      EventParking,
	ReportConsumption:  EventConsumption,
	ReportVoltage:      EventVoltage,
}

// EventTypeFor maps a report type to the event type its records carry.
func EventTypeFor(r ReportType) EventType {
	return reportEventTypes[r]
}

// IngestionStatus is the outcome of an ingestion step, for a single record
// or a whole collection run.
type IngestionStatus string

const (
	IngestionSuccess        IngestionStatus = "success"
	IngestionPartialSuccess IngestionStatus = "partial_success"
	IngestionFailed         IngestionStatus = "failed"
)

// DataQuality grades how complete a normalized payload is. Sentinel or
// missing provider values degrade quality without failing the record.
type DataQuality string

const (
	QualityHigh        DataQuality = "high"
	QualityLow         DataQuality = "low"
	QualityUnavailable DataQuality = "unavailable"
)
