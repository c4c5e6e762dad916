package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Vehicle is a tracked fleet vehicle. The collector only reads these; the
// fleet-management side owns their lifecycle.
type Vehicle struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VIN          string             `bson:"vin" json:"vin"`
	VehicleName  string             `bson:"vehicle_name,omitempty" json:"vehicle_name,omitempty"` // provider's internal identifier, e.g. "1008"
	Make         string             `bson:"make,omitempty" json:"make,omitempty"`
	Model        string             `bson:"model,omitempty" json:"model,omitempty"`
	Year         int                `bson:"year,omitempty" json:"year,omitempty"`
	LicensePlate string             `bson:"license_plate,omitempty" json:"license_plate,omitempty"`
	FleetID      string             `bson:"fleet_id,omitempty" json:"fleet_id,omitempty"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// VehicleRef is the slice of a vehicle the collection pipeline needs to
// address it at the provider.
type VehicleRef struct {
	VIN         string `bson:"vin" json:"vin"`
	VehicleName string `bson:"vehicle_name,omitempty" json:"vehicle_name,omitempty"`
	IsActive    bool   `bson:"is_active" json:"is_active"`
}
