// Package provider defines the vehicle-tracking provider boundary and the
// mock implementation used when no live upstream is configured.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
)

// ErrVehicleNotFound is returned when the provider has no payload at all for
// the requested VIN. It is not retryable.
var ErrVehicleNotFound = errors.New("vehicle not found at provider")

// ErrorKind classifies provider failures for retry decisions.
type ErrorKind string

const (
	KindTimeout   ErrorKind = "timeout"
	KindAuth      ErrorKind = "auth"
	KindTransient ErrorKind = "transient"
)

// Error is a classified provider failure.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s error: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt could succeed. Auth failures
// never do.
func (e *Error) Retryable() bool {
	return e.Kind != KindAuth
}

// RawReport is the provider's response for one (vehicle, report type) pair.
// Fields is opaque and report-type specific; values may be sentinel strings
// like "noData" rather than data.
type RawReport struct {
	VIN         string
	VehicleName string
	Fields      map[string]any
}

// Client is the capability a collection job needs from a tracking provider.
// The job never knows which implementation is behind it.
type Client interface {
	FetchByVIN(ctx context.Context, vin string, reportType models.ReportType) (*RawReport, error)
	FetchBulk(ctx context.Context, reportType models.ReportType) (map[string]*RawReport, error)
	HealthCheck(ctx context.Context) bool
	Name() string
}
