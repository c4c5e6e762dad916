package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
	"github.com/ukydev/gps-telemetry-collector/internal/provider"
)

func testNormalizer() *Normalizer {
	n := New("mock", 12.0)
	n.Now = func() time.Time { return time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC) }
	return n
}

func rawReport(fields map[string]any) *provider.RawReport {
	return &provider.RawReport{VIN: "3KPA24BC4NE453663", VehicleName: "1008", Fields: fields}
}

func TestNormalizePosition(t *testing.T) {
	record, err := testNormalizer().Normalize(models.ReportPosition, rawReport(map[string]any{
		"y": 19.340975, "x": -99.121057, "t": "2024-08-30T12:40:50.000",
	}))
	require.NoError(t, err)

	assert.Equal(t, models.EventPosition, record.EventType)
	require.NotNil(t, record.Payload.Position)
	assert.Equal(t, 19.340975, record.Payload.Position.Latitude)
	assert.Equal(t, -99.121057, record.Payload.Position.Longitude)
	assert.Equal(t, time.Date(2024, 8, 30, 12, 40, 50, 0, time.UTC), record.RecordedAt)
	assert.Equal(t, models.QualityHigh, record.Metadata.DataQuality)
	assert.Equal(t, 1, record.Payload.Count())
}

func TestNormalizePositionMissingTimestamp(t *testing.T) {
	n := testNormalizer()
	record, err := n.Normalize(models.ReportPosition, rawReport(map[string]any{
		"y": 19.0, "x": -99.0,
	}))
	require.NoError(t, err)

	assert.Equal(t, models.QualityLow, record.Metadata.DataQuality)
	assert.Equal(t, n.Now(), record.RecordedAt)
}

func TestNormalizeOdometer(t *testing.T) {
	record, err := testNormalizer().Normalize(models.ReportOdometer, rawReport(map[string]any{
		"odo": "70870 km",
	}))
	require.NoError(t, err)

	require.NotNil(t, record.Payload.Odometer)
	require.NotNil(t, record.Payload.Odometer.Value)
	assert.Equal(t, 70870.0, *record.Payload.Odometer.Value)
	assert.Equal(t, "km", record.Payload.Odometer.Unit)
	assert.Equal(t, models.QualityHigh, record.Metadata.DataQuality)
}

func TestNormalizeOdometerUnparseable(t *testing.T) {
	record, err := testNormalizer().Normalize(models.ReportOdometer, rawReport(map[string]any{
		"odo": "pending km",
	}))
	require.NoError(t, err)

	assert.Nil(t, record.Payload.Odometer.Value)
	assert.Equal(t, models.QualityUnavailable, record.Metadata.DataQuality)
}

func TestNormalizeEngineStatus(t *testing.T) {
	record, err := testNormalizer().Normalize(models.ReportEngineStatus, rawReport(map[string]any{
		"engineStatus": "1",
	}))
	require.NoError(t, err)
	require.NotNil(t, record.Payload.EngineStatus.Status)
	assert.Equal(t, 1, *record.Payload.EngineStatus.Status)

	record, err = testNormalizer().Normalize(models.ReportEngineStatus, rawReport(map[string]any{
		"engineStatus": "maybe",
	}))
	require.NoError(t, err)
	assert.Nil(t, record.Payload.EngineStatus.Status)
	assert.Equal(t, models.QualityUnavailable, record.Metadata.DataQuality)
}

func TestNormalizeSpeed(t *testing.T) {
	record, err := testNormalizer().Normalize(models.ReportSpeed, rawReport(map[string]any{
		"speed": "16 km/h", "date": "2024-08-30T12:46:48.000",
	}))
	require.NoError(t, err)

	require.NotNil(t, record.Payload.Speed)
	assert.Equal(t, 16.0, record.Payload.Speed.Value)
	assert.Equal(t, "km/h", record.Payload.Speed.Unit)
	assert.Equal(t, time.Date(2024, 8, 30, 12, 46, 48, 0, time.UTC), record.RecordedAt)
}

func TestNormalizeIgnitionSentinelDate(t *testing.T) {
	n := testNormalizer()
	record, err := n.Normalize(models.ReportIgnition, rawReport(map[string]any{
		"ignition": "1", "date": "noDataInRange",
	}))
	require.NoError(t, err)

	assert.Equal(t, 1, record.Payload.Ignition.Status)
	assert.Equal(t, n.Now(), record.RecordedAt)
	assert.Equal(t, models.QualityLow, record.Metadata.DataQuality)
}

func TestNormalizeTrip(t *testing.T) {
	record, err := testNormalizer().Normalize(models.ReportTrip, rawReport(map[string]any{
		"count": "14", "totalDuration": "3:51:42", "totalKm": "59 km",
	}))
	require.NoError(t, err)

	trip := record.Payload.Trip
	require.NotNil(t, trip)
	assert.Equal(t, 14, trip.Count)
	require.NotNil(t, trip.TotalDurationSeconds)
	assert.Equal(t, 3*3600+51*60+42, *trip.TotalDurationSeconds)
	require.NotNil(t, trip.TotalDistanceKm)
	assert.Equal(t, 59.0, *trip.TotalDistanceKm)
}

func TestNormalizeParkingSentinels(t *testing.T) {
	record, err := testNormalizer().Normalize(models.ReportParking, rawReport(map[string]any{
		"events": []any{
			map[string]any{"duration": "14", "t": "noData", "y": "checkDayBefore", "x": "checkDayBefore"},
		},
	}))
	require.NoError(t, err)

	require.Len(t, record.Payload.Parking.Events, 1)
	event := record.Payload.Parking.Events[0]
	assert.Equal(t, 14.0, event.DurationHours)
	assert.Nil(t, event.Location)
	assert.Nil(t, event.StartTime)
	assert.Equal(t, models.QualityLow, record.Metadata.DataQuality)
}

func TestNormalizeParkingWithCoordinates(t *testing.T) {
	record, err := testNormalizer().Normalize(models.ReportParking, rawReport(map[string]any{
		"events": []any{
			map[string]any{"duration": "2", "t": "2024-08-30T08:00:00.000", "y": 19.4, "x": -99.1},
		},
	}))
	require.NoError(t, err)

	event := record.Payload.Parking.Events[0]
	require.NotNil(t, event.Location)
	assert.Equal(t, 19.4, event.Location.Latitude)
	require.NotNil(t, event.StartTime)
	assert.Equal(t, models.QualityHigh, record.Metadata.DataQuality)
}

func TestNormalizeConsumptionNoData(t *testing.T) {
	record, err := testNormalizer().Normalize(models.ReportConsumption, rawReport(map[string]any{
		"km": "", "timeOnMovement": "", "calculatedConsumption": "", "data": "noData",
	}))
	require.NoError(t, err)

	consumption := record.Payload.Consumption
	require.NotNil(t, consumption)
	assert.Nil(t, consumption.DistanceKm)
	assert.Nil(t, consumption.TimeOnMovementSeconds)
	assert.Nil(t, consumption.CalculatedConsumption)
	assert.Equal(t, models.QualityUnavailable, record.Metadata.DataQuality)
	assert.Equal(t, models.IngestionSuccess, record.Metadata.IngestionStatus)
}

func TestNormalizeConsumptionMissingDataFlag(t *testing.T) {
	record, err := testNormalizer().Normalize(models.ReportConsumption, rawReport(map[string]any{
		"km": "42 km",
	}))
	require.NoError(t, err)

	consumption := record.Payload.Consumption
	require.NotNil(t, consumption)
	assert.Nil(t, consumption.DistanceKm)
	assert.Nil(t, consumption.TimeOnMovementSeconds)
	assert.Nil(t, consumption.CalculatedConsumption)
	assert.Equal(t, models.QualityUnavailable, record.Metadata.DataQuality)
}

func TestNormalizeConsumptionWithData(t *testing.T) {
	record, err := testNormalizer().Normalize(models.ReportConsumption, rawReport(map[string]any{
		"km": "42 km", "timeOnMovement": "1:30:00", "calculatedConsumption": "7.5", "data": "ok",
	}))
	require.NoError(t, err)

	consumption := record.Payload.Consumption
	require.NotNil(t, consumption.DistanceKm)
	assert.Equal(t, 42.0, *consumption.DistanceKm)
	require.NotNil(t, consumption.TimeOnMovementSeconds)
	assert.Equal(t, 5400, *consumption.TimeOnMovementSeconds)
	require.NotNil(t, consumption.CalculatedConsumption)
	assert.Equal(t, 7.5, *consumption.CalculatedConsumption)
	assert.Equal(t, models.QualityHigh, record.Metadata.DataQuality)
}

func TestNormalizeVoltageHealth(t *testing.T) {
	record, err := testNormalizer().Normalize(models.ReportVoltage, rawReport(map[string]any{
		"voltage": "12.6 V", "timestamp": "2024-08-30T12:30:45.000",
	}))
	require.NoError(t, err)
	assert.Equal(t, 12.6, record.Payload.Voltage.Value)
	assert.True(t, record.Payload.Voltage.IsHealthy)

	record, err = testNormalizer().Normalize(models.ReportVoltage, rawReport(map[string]any{
		"voltage": "11.8 V", "timestamp": "2024-08-01T13:55:27.000",
	}))
	require.NoError(t, err)
	assert.False(t, record.Payload.Voltage.IsHealthy)
}

func TestNormalizeEmptyPayload(t *testing.T) {
	_, err := testNormalizer().Normalize(models.ReportPosition, nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = testNormalizer().Normalize(models.ReportPosition, rawReport(map[string]any{}))
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestNormalizeUnknownReportType(t *testing.T) {
	_, err := testNormalizer().Normalize(models.ReportType("sinMov"), rawReport(map[string]any{"a": "b"}))
	assert.ErrorIs(t, err, ErrUnknownReportType)
}

func TestNormalizeCopiesRawPayload(t *testing.T) {
	fields := map[string]any{"odo": "70870 km"}
	record, err := testNormalizer().Normalize(models.ReportOdometer, rawReport(fields))
	require.NoError(t, err)
	assert.Equal(t, "70870 km", record.Metadata.RawData["odo"])
}

// Normalization is deterministic: the same raw payload always yields a
// byte-identical canonical payload.
func TestNormalizeIdempotent(t *testing.T) {
	fields := map[string]any{"y": 19.340975, "x": -99.121057, "t": "2024-08-30T12:40:50.000"}

	first, err := testNormalizer().Normalize(models.ReportPosition, rawReport(fields))
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first.Payload)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		next, err := testNormalizer().Normalize(models.ReportPosition, rawReport(fields))
		require.NoError(t, err)
		nextJSON, err := json.Marshal(next.Payload)
		require.NoError(t, err)
		assert.Equal(t, firstJSON, nextJSON)
	}
}

func TestParseDuration(t *testing.T) {
	seconds, ok := parseDuration("3:02:43")
	assert.True(t, ok)
	assert.Equal(t, 3*3600+2*60+43, seconds)

	_, ok = parseDuration("noData")
	assert.False(t, ok)
	_, ok = parseDuration("12:00")
	assert.False(t, ok)
}

func TestParseUnitValue(t *testing.T) {
	v, ok := parseUnitValue("111,214 km")
	assert.True(t, ok)
	assert.Equal(t, 111214.0, v)

	_, ok = parseUnitValue("")
	assert.False(t, ok)
	_, ok = parseUnitValue("checkDayBefore")
	assert.False(t, ok)
}
