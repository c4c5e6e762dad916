package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReportTypeValid(t *testing.T) {
	for _, rt := range AllReportTypes {
		assert.True(t, rt.Valid(), "%s", rt)
	}
	assert.False(t, ReportType("sinMov").Valid())
	assert.False(t, ReportType("").Valid())
}

func TestEventTypeFor(t *testing.T) {
	assert.Equal(t, EventPosition, EventTypeFor(ReportPosition))
	assert.Equal(t, EventVoltage, EventTypeFor(ReportVoltage))
	assert.Empty(t, EventTypeFor(ReportType("sinMov")))

	// Every report type has an event type.
	for _, rt := range AllReportTypes {
		assert.NotEmpty(t, EventTypeFor(rt), "%s", rt)
	}
}

func TestPayloadCount(t *testing.T) {
	assert.Zero(t, Payload{}.Count())

	one := Payload{Speed: &SpeedReading{Value: 10}}
	assert.Equal(t, 1, one.Count())

	two := Payload{Speed: &SpeedReading{}, Voltage: &VoltageReading{}}
	assert.Equal(t, 2, two.Count())
}

func TestRunLogDurationSeconds(t *testing.T) {
	start := time.Date(2024, 8, 30, 12, 0, 0, 0, time.UTC)
	r := &RunLog{StartTime: start, EndTime: start.Add(90 * time.Second)}
	assert.Equal(t, 90.0, r.DurationSeconds())

	open := &RunLog{StartTime: start}
	assert.Zero(t, open.DurationSeconds())
}

func TestRunLogSuccessRate(t *testing.T) {
	r := &RunLog{Processed: 5, Succeeded: 3, Failed: 2}
	assert.Equal(t, 60.0, r.SuccessRate())

	empty := &RunLog{}
	assert.Zero(t, empty.SuccessRate())
}
