package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GeoLocation is a pair of decimal-degree coordinates with the time the
// position was recorded by the device.
type GeoLocation struct {
	Latitude  float64   `bson:"latitude" json:"latitude"`
	Longitude float64   `bson:"longitude" json:"longitude"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// OdometerReading is a cumulative distance measurement. Value is nil when
// the provider reported something unparseable.
type OdometerReading struct {
	Value     *float64  `bson:"value" json:"value"`
	Unit      string    `bson:"unit" json:"unit"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// SpeedReading is an instantaneous speed measurement.
type SpeedReading struct {
	Value     float64   `bson:"value" json:"value"`
	Unit      string    `bson:"unit" json:"unit"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// EngineStatusReading is the engine on/off state (0 = off, 1 = on). Status
// is nil when the provider value was not a recognized state.
type EngineStatusReading struct {
	Status    *int      `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// IgnitionReading is the ignition on/off state (0 = off, 1 = on).
type IgnitionReading struct {
	Status    int       `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// TripSummary aggregates a vehicle's trips over the reported window.
type TripSummary struct {
	Count                int      `bson:"count" json:"count"`
	TotalDurationSeconds *int     `bson:"total_duration_seconds,omitempty" json:"total_duration_seconds,omitempty"`
	TotalDistanceKm      *float64 `bson:"total_distance_km,omitempty" json:"total_distance_km,omitempty"`
}

// ParkingEvent is one parking interval. Location and times are nil when the
// provider reported sentinel values instead of data.
type ParkingEvent struct {
	DurationHours float64      `bson:"duration_hours" json:"duration_hours"`
	Location      *GeoLocation `bson:"location,omitempty" json:"location,omitempty"`
	StartTime     *time.Time   `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime       *time.Time   `bson:"end_time,omitempty" json:"end_time,omitempty"`
}

// ParkingReport is the list of parking events for one vehicle.
type ParkingReport struct {
	Events []ParkingEvent `bson:"events" json:"events"`
}

// ConsumptionData holds fuel/energy usage figures. All fields are nil when
// the provider reported no data for the window.
type ConsumptionData struct {
	DistanceKm            *float64 `bson:"distance_km,omitempty" json:"distance_km,omitempty"`
	TimeOnMovementSeconds *int     `bson:"time_on_movement_seconds,omitempty" json:"time_on_movement_seconds,omitempty"`
	CalculatedConsumption *float64 `bson:"calculated_consumption,omitempty" json:"calculated_consumption,omitempty"`
}

// VoltageReading is a device battery voltage sample. IsHealthy is computed
// against the configured minimum healthy voltage.
type VoltageReading struct {
	Value     float64   `bson:"value" json:"value"`
	Unit      string    `bson:"unit" json:"unit"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	IsHealthy bool      `bson:"is_healthy" json:"is_healthy"`
}

// Payload is the variant carried by a TelemetryRecord: exactly one field is
// non-nil, matching the record's EventType.
type Payload struct {
	Position     *GeoLocation         `bson:"position,omitempty" json:"position,omitempty"`
	Odometer     *OdometerReading     `bson:"odometer,omitempty" json:"odometer,omitempty"`
	EngineStatus *EngineStatusReading `bson:"engine_status,omitempty" json:"engine_status,omitempty"`
	Speed        *SpeedReading        `bson:"speed,omitempty" json:"speed,omitempty"`
	Ignition     *IgnitionReading     `bson:"ignition,omitempty" json:"ignition,omitempty"`
	Trip         *TripSummary         `bson:"trip,omitempty" json:"trip,omitempty"`
	Parking      *ParkingReport       `bson:"parking,omitempty" json:"parking,omitempty"`
	Consumption  *ConsumptionData     `bson:"consumption,omitempty" json:"consumption,omitempty"`
	Voltage      *VoltageReading      `bson:"voltage,omitempty" json:"voltage,omitempty"`
}

// Count returns how many variant fields are set.
func (p Payload) Count() int {
	n := 0
	for _, set := range []bool{
		p.Position != nil,
		p.Odometer != nil,
		p.EngineStatus != nil,
		p.Speed != nil,
		p.Ignition != nil,
		p.Trip != nil,
		p.Parking != nil,
		p.Consumption != nil,
		p.Voltage != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// IngestionMetadata records how a telemetry record entered the system.
type IngestionMetadata struct {
	ProviderName       string          `bson:"provider_name" json:"provider_name"`
	ReportType         ReportType      `bson:"report_type" json:"report_type"`
	IngestionTimestamp time.Time       `bson:"ingestion_timestamp" json:"ingestion_timestamp"`
	IngestionStatus    IngestionStatus `bson:"ingestion_status" json:"ingestion_status"`
	DataQuality        DataQuality     `bson:"data_quality" json:"data_quality"`
	RawData            bson.M          `bson:"raw_data,omitempty" json:"raw_data,omitempty"`
	ErrorMessage       string          `bson:"error_message,omitempty" json:"error_message,omitempty"`
	RetryCount         int             `bson:"retry_count" json:"retry_count"`
}

// TelemetryRecord is the canonical normalized observation for one vehicle
// and one report type. Records are written once and never mutated; the
// store expires them per the configured retention horizon.
type TelemetryRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VIN         string             `bson:"vin" json:"vin"`
	VehicleName string             `bson:"vehicle_name,omitempty" json:"vehicle_name,omitempty"`
	EventType   EventType          `bson:"event_type" json:"event_type"`
	Payload     Payload            `bson:"payload" json:"payload"`
	Metadata    IngestionMetadata  `bson:"metadata" json:"metadata"`
	RecordedAt  time.Time          `bson:"recorded_at" json:"recorded_at"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
