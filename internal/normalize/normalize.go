// Package normalize maps raw provider payloads into canonical telemetry
// records, one fixed mapping per report type.
package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
	"github.com/ukydev/gps-telemetry-collector/internal/provider"
)

// ErrEmptyPayload means the provider returned nothing at all for the vehicle.
var ErrEmptyPayload = errors.New("empty provider payload")

// ErrUnknownReportType means no mapping exists for the report type.
var ErrUnknownReportType = errors.New("unknown report type")

const providerTimeLayout = "2006-01-02T15:04:05.000"

// Normalizer converts raw reports into telemetry records. It is stateless
// apart from configuration; the same input always yields the same canonical
// payload.
type Normalizer struct {
	ProviderName string
	// VoltageHealthyMin is the lowest voltage still considered healthy.
	VoltageHealthyMin float64
	// Now supplies the ingestion clock. Defaults to time.Now (UTC).
	Now func() time.Time
}

// New builds a Normalizer for the named provider.
func New(providerName string, voltageHealthyMin float64) *Normalizer {
	return &Normalizer{
		ProviderName:      providerName,
		VoltageHealthyMin: voltageHealthyMin,
	}
}

func (n *Normalizer) now() time.Time {
	if n.Now != nil {
		return n.Now().UTC()
	}
	return time.Now().UTC()
}

// Normalize maps one raw report into one canonical record. It fails only
// when the payload is entirely absent or the report type is unrecognized;
// any subset of missing fields yields a record with degraded data quality
// instead of an error.
func (n *Normalizer) Normalize(reportType models.ReportType, raw *provider.RawReport) (*models.TelemetryRecord, error) {
	if raw == nil || len(raw.Fields) == 0 {
		return nil, ErrEmptyPayload
	}

	ingestedAt := n.now()

	var (
		payload    models.Payload
		quality    models.DataQuality
		recordedAt time.Time
	)

	switch reportType {
	case models.ReportPosition:
		payload, quality, recordedAt = n.position(raw.Fields, ingestedAt)
	case models.ReportOdometer:
		payload, quality, recordedAt = n.odometer(raw.Fields, ingestedAt)
	case models.ReportEngineStatus:
		payload, quality, recordedAt = n.engineStatus(raw.Fields, ingestedAt)
	case models.ReportSpeed:
		payload, quality, recordedAt = n.speed(raw.Fields, ingestedAt)
	case models.ReportIgnition:
		payload, quality, recordedAt = n.ignition(raw.Fields, ingestedAt)
	case models.ReportTrip:
		payload, quality, recordedAt = n.trip(raw.Fields, ingestedAt)
	case models.ReportParking:
		payload, quality, recordedAt = n.parking(raw.Fields, ingestedAt)
	case models.ReportConsumption:
		payload, quality, recordedAt = n.consumption(raw.Fields, ingestedAt)
	case models.ReportVoltage:
		payload, quality, recordedAt = n.voltage(raw.Fields, ingestedAt)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownReportType, reportType)
	}

	return &models.TelemetryRecord{
		VIN:         raw.VIN,
		VehicleName: raw.VehicleName,
		EventType:   models.EventTypeFor(reportType),
		Payload:     payload,
		Metadata: models.IngestionMetadata{
			ProviderName:       n.ProviderName,
			ReportType:         reportType,
			IngestionTimestamp: ingestedAt,
			IngestionStatus:    models.IngestionSuccess,
			DataQuality:        quality,
			RawData:            bson.M(raw.Fields),
		},
		RecordedAt: recordedAt,
		CreatedAt:  ingestedAt,
		UpdatedAt:  ingestedAt,
	}, nil
}

func (n *Normalizer) position(fields map[string]any, ingestedAt time.Time) (models.Payload, models.DataQuality, time.Time) {
	quality := models.QualityHigh
	recordedAt, ok := parseTime(stringField(fields, "t"))
	if !ok {
		recordedAt = ingestedAt
		quality = models.QualityLow
	}
	loc := &models.GeoLocation{
		Latitude:  floatField(fields, "y"),
		Longitude: floatField(fields, "x"),
		Timestamp: recordedAt,
	}
	return models.Payload{Position: loc}, quality, recordedAt
}

func (n *Normalizer) odometer(fields map[string]any, ingestedAt time.Time) (models.Payload, models.DataQuality, time.Time) {
	quality := models.QualityHigh
	value, ok := parseUnitValue(stringField(fields, "odo"))
	reading := &models.OdometerReading{Unit: "km", Timestamp: ingestedAt}
	if ok {
		reading.Value = &value
	} else {
		quality = models.QualityUnavailable
	}
	return models.Payload{Odometer: reading}, quality, ingestedAt
}

func (n *Normalizer) engineStatus(fields map[string]any, ingestedAt time.Time) (models.Payload, models.DataQuality, time.Time) {
	quality := models.QualityHigh
	reading := &models.EngineStatusReading{Timestamp: ingestedAt}
	switch stringField(fields, "engineStatus") {
	case "0":
		v := 0
		reading.Status = &v
	case "1":
		v := 1
		reading.Status = &v
	default:
		quality = models.QualityUnavailable
	}
	return models.Payload{EngineStatus: reading}, quality, ingestedAt
}

func (n *Normalizer) speed(fields map[string]any, ingestedAt time.Time) (models.Payload, models.DataQuality, time.Time) {
	quality := models.QualityHigh
	recordedAt, ok := parseTime(stringField(fields, "date"))
	if !ok {
		recordedAt = ingestedAt
		quality = models.QualityLow
	}
	value, ok := parseUnitValue(stringField(fields, "speed"))
	if !ok {
		value = 0
		quality = models.QualityLow
	}
	reading := &models.SpeedReading{Value: value, Unit: "km/h", Timestamp: recordedAt}
	return models.Payload{Speed: reading}, quality, recordedAt
}

func (n *Normalizer) ignition(fields map[string]any, ingestedAt time.Time) (models.Payload, models.DataQuality, time.Time) {
	quality := models.QualityHigh
	recordedAt, ok := parseTime(stringField(fields, "date"))
	if !ok {
		recordedAt = ingestedAt
		quality = models.QualityLow
	}
	status := 0
	if stringField(fields, "ignition") == "1" {
		status = 1
	}
	reading := &models.IgnitionReading{Status: status, Timestamp: recordedAt}
	return models.Payload{Ignition: reading}, quality, recordedAt
}

func (n *Normalizer) trip(fields map[string]any, ingestedAt time.Time) (models.Payload, models.DataQuality, time.Time) {
	quality := models.QualityHigh
	summary := &models.TripSummary{}
	if count, err := strconv.Atoi(stringField(fields, "count")); err == nil {
		summary.Count = count
	} else {
		quality = models.QualityLow
	}
	if seconds, ok := parseDuration(stringField(fields, "totalDuration")); ok {
		summary.TotalDurationSeconds = &seconds
	}
	if km, ok := parseUnitValue(stringField(fields, "totalKm")); ok {
		summary.TotalDistanceKm = &km
	}
	return models.Payload{Trip: summary}, quality, ingestedAt
}

func (n *Normalizer) parking(fields map[string]any, ingestedAt time.Time) (models.Payload, models.DataQuality, time.Time) {
	report := &models.ParkingReport{}
	rawEvents, _ := fields["events"].([]any)
	for _, re := range rawEvents {
		ev, ok := re.(map[string]any)
		if !ok {
			continue
		}
		parsed := models.ParkingEvent{}
		if hours, err := strconv.ParseFloat(stringField(ev, "duration"), 64); err == nil {
			parsed.DurationHours = hours
		}
		if start, ok := parseTime(stringField(ev, "t")); ok {
			parsed.StartTime = &start
		}
		lat, latOK := parseCoordinate(ev["y"])
		lon, lonOK := parseCoordinate(ev["x"])
		if latOK && lonOK {
			ts := ingestedAt
			if parsed.StartTime != nil {
				ts = *parsed.StartTime
			}
			parsed.Location = &models.GeoLocation{Latitude: lat, Longitude: lon, Timestamp: ts}
		}
		report.Events = append(report.Events, parsed)
	}

	quality := models.QualityHigh
	if allEventsSentinel(report.Events) {
		quality = models.QualityLow
	}
	if len(report.Events) == 0 {
		quality = models.QualityUnavailable
	}
	return models.Payload{Parking: report}, quality, ingestedAt
}

func (n *Normalizer) consumption(fields map[string]any, ingestedAt time.Time) (models.Payload, models.DataQuality, time.Time) {
	data := &models.ConsumptionData{}
	// An absent data flag means the provider had nothing for the window.
	flag := "noData"
	if _, ok := fields["data"]; ok {
		flag = stringField(fields, "data")
	}
	if flag == "noData" {
		return models.Payload{Consumption: data}, models.QualityUnavailable, ingestedAt
	}

	quality := models.QualityUnavailable
	if km, ok := parseUnitValue(stringField(fields, "km")); ok {
		data.DistanceKm = &km
		quality = models.QualityHigh
	}
	if seconds, ok := parseDuration(stringField(fields, "timeOnMovement")); ok {
		data.TimeOnMovementSeconds = &seconds
		quality = models.QualityHigh
	}
	if calc, err := strconv.ParseFloat(stringField(fields, "calculatedConsumption"), 64); err == nil {
		data.CalculatedConsumption = &calc
		quality = models.QualityHigh
	}
	return models.Payload{Consumption: data}, quality, ingestedAt
}

func (n *Normalizer) voltage(fields map[string]any, ingestedAt time.Time) (models.Payload, models.DataQuality, time.Time) {
	quality := models.QualityHigh
	recordedAt, ok := parseTime(stringField(fields, "timestamp"))
	if !ok {
		recordedAt = ingestedAt
		quality = models.QualityLow
	}
	reading := &models.VoltageReading{Unit: "V", Timestamp: recordedAt}
	if value, parsed := parseUnitValue(stringField(fields, "voltage")); parsed {
		reading.Value = value
		reading.IsHealthy = value >= n.VoltageHealthyMin
	} else {
		quality = models.QualityUnavailable
	}
	return models.Payload{Voltage: reading}, quality, recordedAt
}

func allEventsSentinel(events []models.ParkingEvent) bool {
	for _, ev := range events {
		if ev.Location != nil || ev.StartTime != nil {
			return false
		}
	}
	return len(events) > 0
}

// stringField reads a field as a string, tolerating numeric values.
func stringField(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func floatField(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// parseCoordinate parses a latitude/longitude that may be a number or a
// sentinel string.
func parseCoordinate(v any) (float64, bool) {
	switch c := v.(type) {
	case float64:
		return c, true
	case int:
		return float64(c), true
	case string:
		if isSentinel(c) {
			return 0, false
		}
		f, err := strconv.ParseFloat(c, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func isSentinel(s string) bool {
	return s == "noData" || s == "noDataInRange" || s == "checkDayBefore"
}

// parseTime parses the provider's timestamp format, treating sentinel
// strings as absent. Timestamps carry no zone and are taken as UTC.
func parseTime(s string) (time.Time, bool) {
	if s == "" || isSentinel(s) {
		return time.Time{}, false
	}
	if t, err := time.Parse(providerTimeLayout, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// parseUnitValue parses strings like "65 km/h" or "12.6 V" into the leading
// number. Thousands separators are tolerated.
func parseUnitValue(s string) (float64, bool) {
	if s == "" || isSentinel(s) {
		return 0, false
	}
	numeric := strings.SplitN(strings.TrimSpace(s), " ", 2)[0]
	numeric = strings.ReplaceAll(numeric, ",", "")
	v, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseDuration parses "H:MM:SS" into whole seconds.
func parseDuration(s string) (int, bool) {
	if s == "" || isSentinel(s) {
		return 0, false
	}
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	hours, err1 := strconv.Atoi(parts[0])
	minutes, err2 := strconv.Atoi(parts[1])
	seconds, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return hours*3600 + minutes*60 + seconds, true
}
