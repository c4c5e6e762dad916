package provider

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
)

// MockOptions tune the mock provider's behavior.
type MockOptions struct {
	// SynthesizeUnknown controls what happens for a VIN outside the canned
	// fleet: true generates a randomized payload within realistic bounds,
	// false returns ErrVehicleNotFound.
	SynthesizeUnknown bool
	// SimulateLatency adds a random 100ms-2s delay per call. Keep off in
	// tests.
	SimulateLatency bool
}

// Mock is a provider client backed by canned payloads for a known fleet.
// It satisfies the same interface as a live provider so the pipeline can be
// validated end to end without an upstream.
type Mock struct {
	opts MockOptions
	data map[models.ReportType]map[string]cannedVehicle
	rng  *rand.Rand
}

type cannedVehicle struct {
	name   string
	fields map[string]any
}

// NewMock builds the mock with the canned fleet payloads.
func NewMock(opts MockOptions) *Mock {
	return &Mock{
		opts: opts,
		data: cannedData(),
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *Mock) Name() string { return "mock" }

// HealthCheck always succeeds; the mock has no upstream to lose.
func (m *Mock) HealthCheck(_ context.Context) bool { return true }

// FetchByVIN returns the canned payload for a known VIN. Unknown VINs either
// synthesize a randomized payload or fail, per MockOptions.
func (m *Mock) FetchByVIN(ctx context.Context, vin string, reportType models.ReportType) (*RawReport, error) {
	if err := m.delay(ctx); err != nil {
		return nil, err
	}

	vehicles, ok := m.data[reportType]
	if !ok {
		return nil, ErrVehicleNotFound
	}
	for cannedVIN, v := range vehicles {
		if cannedVIN == vin {
			return &RawReport{VIN: vin, VehicleName: v.name, Fields: v.fields}, nil
		}
	}

	if !m.opts.SynthesizeUnknown {
		return nil, ErrVehicleNotFound
	}

	log.WithFields(log.Fields{"vin": vin, "report_type": reportType}).
		Debug("VIN not in canned fleet, synthesizing payload")
	return &RawReport{
		VIN:         vin,
		VehicleName: fmt.Sprintf("rand_%04d", 2000+m.rng.Intn(8000)),
		Fields:      m.synthesize(reportType),
	}, nil
}

// FetchBulk returns the whole canned fleet for one report type.
func (m *Mock) FetchBulk(ctx context.Context, reportType models.ReportType) (map[string]*RawReport, error) {
	if err := m.delay(ctx); err != nil {
		return nil, err
	}

	out := make(map[string]*RawReport)
	for vin, v := range m.data[reportType] {
		out[vin] = &RawReport{VIN: vin, VehicleName: v.name, Fields: v.fields}
	}
	return out, nil
}

func (m *Mock) delay(ctx context.Context) error {
	if !m.opts.SimulateLatency {
		return nil
	}
	d := 100*time.Millisecond + time.Duration(m.rng.Int63n(int64(1900*time.Millisecond)))
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return &Error{Kind: KindTimeout, Err: ctx.Err()}
	}
}

// synthesize produces a randomized payload shaped like the real provider's
// response for the report type.
func (m *Mock) synthesize(reportType models.ReportType) map[string]any {
	now := time.Now().UTC().Format("2006-01-02T15:04:05.000")
	switch reportType {
	case models.ReportPosition:
		return map[string]any{
			"y": 19.0 + m.rng.Float64(),
			"x": -99.0 - m.rng.Float64(),
			"t": now,
		}
	case models.ReportOdometer:
		return map[string]any{"odo": fmt.Sprintf("%d km", 10000+m.rng.Intn(150000))}
	case models.ReportEngineStatus:
		return map[string]any{"engineStatus": fmt.Sprintf("%d", m.rng.Intn(2))}
	case models.ReportSpeed:
		return map[string]any{
			"date":  now,
			"speed": fmt.Sprintf("%d km/h", m.rng.Intn(120)),
		}
	case models.ReportIgnition:
		return map[string]any{
			"date":     now,
			"ignition": fmt.Sprintf("%d", m.rng.Intn(2)),
		}
	case models.ReportTrip:
		return map[string]any{
			"count":         fmt.Sprintf("%d", m.rng.Intn(15)),
			"totalDuration": fmt.Sprintf("%d:%02d:%02d", m.rng.Intn(9), m.rng.Intn(60), m.rng.Intn(60)),
			"totalKm":       fmt.Sprintf("%d km", m.rng.Intn(300)),
		}
	case models.ReportParking:
		return map[string]any{
			"events": []any{
				map[string]any{
					"duration": fmt.Sprintf("%d", m.rng.Intn(24)),
					"t":        "noData",
					"y":        "checkDayBefore",
					"x":        "checkDayBefore",
				},
			},
		}
	case models.ReportConsumption:
		return map[string]any{
			"km":                    "",
			"timeOnMovement":        "",
			"calculatedConsumption": "",
			"data":                  "noData",
		}
	case models.ReportVoltage:
		return map[string]any{
			"voltage":   fmt.Sprintf("%.1f V", 11.5+m.rng.Float64()*1.5),
			"timestamp": now,
		}
	}
	return map[string]any{}
}

// cannedData mirrors the payload shapes the live provider returns, one table
// per report type for the five-vehicle sample fleet.
func cannedData() map[models.ReportType]map[string]cannedVehicle {
	return map[models.ReportType]map[string]cannedVehicle{
		models.ReportPosition: {
			"LSGHD52H9ND045496": {"1006", map[string]any{"y": 19.899827, "x": -99.222737, "t": "2024-08-30T12:30:45.000"}},
			"3KPA24BC4NE453663": {"1008", map[string]any{"y": 19.340975, "x": -99.121057, "t": "2024-08-30T12:40:50.000"}},
			"3KPA24BC2NE460675": {"1009", map[string]any{"y": 19.365197, "x": -99.265575, "t": "2024-08-01T13:55:27.000"}},
			"MEX5B2605NT017117": {"1010", map[string]any{"y": 19.64507, "x": -99.17114, "t": "2024-08-30T12:41:04.000"}},
			"MEX5B2602NT012229": {"1011", map[string]any{"y": 19.397855, "x": -99.235578, "t": "2024-08-30T12:40:54.000"}},
		},
		models.ReportOdometer: {
			"LSGHD52H9ND045496": {"1006", map[string]any{"odo": "111214 km"}},
			"3KPA24BC4NE453663": {"1008", map[string]any{"odo": "70870 km"}},
			"3KPA24BC2NE460675": {"1009", map[string]any{"odo": "117964 km"}},
			"MEX5B2605NT017117": {"1010", map[string]any{"odo": "45115 km"}},
			"MEX5B2602NT012229": {"1011", map[string]any{"odo": "96691 km"}},
		},
		models.ReportEngineStatus: {
			"LSGHD52H9ND045496": {"1006", map[string]any{"engineStatus": "0"}},
			"3KPA24BC4NE453663": {"1008", map[string]any{"engineStatus": "0"}},
			"3KPA24BC2NE460675": {"1009", map[string]any{"engineStatus": "0"}},
			"MEX5B2605NT017117": {"1010", map[string]any{"engineStatus": "0"}},
			"MEX5B2602NT012229": {"1011", map[string]any{"engineStatus": "0"}},
		},
		models.ReportSpeed: {
			"LSGHD52H9ND045496": {"1006", map[string]any{"date": "2024-08-30T12:30:45.000", "speed": "0 km/h"}},
			"3KPA24BC4NE453663": {"1008", map[string]any{"date": "2024-08-30T12:47:58.000", "speed": "0 km/h"}},
			"3KPA24BC2NE460675": {"1009", map[string]any{"date": "2024-08-01T13:55:27.000", "speed": "0 km/h"}},
			"MEX5B2605NT017117": {"1010", map[string]any{"date": "2024-08-30T12:46:38.000", "speed": "0 km/h"}},
			"MEX5B2602NT012229": {"1011", map[string]any{"date": "2024-08-30T12:46:48.000", "speed": "16 km/h"}},
		},
		models.ReportIgnition: {
			"LSGHD52H9ND045496": {"1006", map[string]any{"date": "2024-08-30T12:30:45.000", "ignition": "0"}},
			"3KPA24BC4NE453663": {"1008", map[string]any{"date": "2024-08-30T12:39:50.000", "ignition": "1"}},
			"3KPA24BC2NE460675": {"1009", map[string]any{"date": "noDataInRange", "ignition": "0"}},
			"MEX5B2605NT017117": {"1010", map[string]any{"date": "2024-08-30T12:39:42.000", "ignition": "0"}},
			"MEX5B2602NT012229": {"1011", map[string]any{"date": "2024-08-30T12:39:47.000", "ignition": "1"}},
		},
		models.ReportTrip: {
			"LSGHD52H9ND045496": {"1006", map[string]any{"count": "3", "totalDuration": "3:02:43", "totalKm": "100 km"}},
			"3KPA24BC4NE453663": {"1008", map[string]any{"count": "14", "totalDuration": "3:51:42", "totalKm": "59 km"}},
			"3KPA24BC2NE460675": {"1009", map[string]any{"count": "0", "totalDuration": "0:00:00", "totalKm": "0.00 km"}},
			"MEX5B2605NT017117": {"1010", map[string]any{"count": "11", "totalDuration": "0:00:00", "totalKm": "0.00 km"}},
			"MEX5B2602NT012229": {"1011", map[string]any{"count": "12", "totalDuration": "8:04:33", "totalKm": "155 km"}},
		},
		models.ReportParking: {
			"LSGHD52H9ND045496": {"1006", map[string]any{"events": []any{map[string]any{"duration": "4", "t": "noData", "y": "checkDayBefore", "x": "checkDayBefore"}}}},
			"3KPA24BC4NE453663": {"1008", map[string]any{"events": []any{map[string]any{"duration": "14", "t": "noData", "y": "checkDayBefore", "x": "checkDayBefore"}}}},
			"3KPA24BC2NE460675": {"1009", map[string]any{"events": []any{map[string]any{"duration": "0", "t": "noData", "y": "checkDayBefore", "x": "checkDayBefore"}}}},
			"MEX5B2605NT017117": {"1010", map[string]any{"events": []any{map[string]any{"duration": "12", "t": "noData", "y": "checkDayBefore", "x": "checkDayBefore"}}}},
		},
		models.ReportConsumption: {
			"LSGHD52H9ND045496": {"1006", map[string]any{"km": "", "timeOnMovement": "", "calculatedConsumption": "", "data": "noData"}},
			"3KPA24BC4NE453663": {"1008", map[string]any{"km": "", "timeOnMovement": "", "calculatedConsumption": "", "data": "noData"}},
			"3KPA24BC2NE460675": {"1009", map[string]any{"km": "", "timeOnMovement": "", "calculatedConsumption": "", "data": "noData"}},
		},
		models.ReportVoltage: {
			"LSGHD52H9ND045496": {"1006", map[string]any{"voltage": "12.6 V", "timestamp": "2024-08-30T12:30:45.000"}},
			"3KPA24BC4NE453663": {"1008", map[string]any{"voltage": "12.4 V", "timestamp": "2024-08-30T12:40:50.000"}},
			"3KPA24BC2NE460675": {"1009", map[string]any{"voltage": "11.8 V", "timestamp": "2024-08-01T13:55:27.000"}},
		},
	}
}
