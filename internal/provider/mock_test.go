package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
)

func TestMockFetchKnownVIN(t *testing.T) {
	m := NewMock(MockOptions{})

	report, err := m.FetchByVIN(context.Background(), "3KPA24BC4NE453663", models.ReportOdometer)
	require.NoError(t, err)

	assert.Equal(t, "3KPA24BC4NE453663", report.VIN)
	assert.Equal(t, "1008", report.VehicleName)
	assert.Equal(t, "70870 km", report.Fields["odo"])
}

func TestMockUnknownVINWithoutSynthesis(t *testing.T) {
	m := NewMock(MockOptions{SynthesizeUnknown: false})

	_, err := m.FetchByVIN(context.Background(), "UNKNOWNVIN0000001", models.ReportPosition)
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestMockUnknownVINSynthesized(t *testing.T) {
	m := NewMock(MockOptions{SynthesizeUnknown: true})

	for _, reportType := range models.AllReportTypes {
		report, err := m.FetchByVIN(context.Background(), "UNKNOWNVIN0000001", reportType)
		require.NoError(t, err, "report type %s", reportType)
		assert.Equal(t, "UNKNOWNVIN0000001", report.VIN)
		assert.NotEmpty(t, report.Fields, "report type %s", reportType)
	}
}

func TestMockCannedFleetCoversAllReportTypes(t *testing.T) {
	m := NewMock(MockOptions{})

	for _, reportType := range models.AllReportTypes {
		report, err := m.FetchByVIN(context.Background(), "LSGHD52H9ND045496", reportType)
		require.NoError(t, err, "report type %s", reportType)
		assert.Equal(t, "1006", report.VehicleName)
	}
}

func TestMockFetchBulk(t *testing.T) {
	m := NewMock(MockOptions{})

	reports, err := m.FetchBulk(context.Background(), models.ReportPosition)
	require.NoError(t, err)

	assert.Len(t, reports, 5)
	for vin, report := range reports {
		assert.Equal(t, vin, report.VIN)
	}
}

func TestMockSentinelPayloads(t *testing.T) {
	m := NewMock(MockOptions{})

	report, err := m.FetchByVIN(context.Background(), "3KPA24BC2NE460675", models.ReportIgnition)
	require.NoError(t, err)
	assert.Equal(t, "noDataInRange", report.Fields["date"])

	report, err = m.FetchByVIN(context.Background(), "LSGHD52H9ND045496", models.ReportConsumption)
	require.NoError(t, err)
	assert.Equal(t, "noData", report.Fields["data"])
}

func TestMockHealthCheck(t *testing.T) {
	m := NewMock(MockOptions{})
	assert.True(t, m.HealthCheck(context.Background()))
	assert.Equal(t, "mock", m.Name())
}

func TestErrorRetryable(t *testing.T) {
	assert.False(t, (&Error{Kind: KindAuth}).Retryable())
	assert.True(t, (&Error{Kind: KindTimeout}).Retryable())
	assert.True(t, (&Error{Kind: KindTransient}).Retryable())
}
