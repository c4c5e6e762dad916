// Seeds the vehicle reference collection with the mock provider's sample
// fleet so the collector has something to poll in development.
package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ukydev/gps-telemetry-collector/internal/config"
	"github.com/ukydev/gps-telemetry-collector/internal/models"
	"github.com/ukydev/gps-telemetry-collector/internal/store"
)

var sampleFleet = []models.Vehicle{
	{VIN: "LSGHD52H9ND045496", VehicleName: "1006", Make: "Buick", Model: "Envision", Year: 2022, IsActive: true},
	{VIN: "3KPA24BC4NE453663", VehicleName: "1008", Make: "Kia", Model: "Rio", Year: 2022, IsActive: true},
	{VIN: "3KPA24BC2NE460675", VehicleName: "1009", Make: "Kia", Model: "Rio", Year: 2022, IsActive: true},
	{VIN: "MEX5B2605NT017117", VehicleName: "1010", Make: "Nissan", Model: "Versa", Year: 2022, IsActive: true},
	{VIN: "MEX5B2602NT012229", VehicleName: "1011", Make: "Nissan", Model: "Versa", Year: 2022, IsActive: true},
}

func main() {
	_ = godotenv.Load()

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("load settings: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := store.Connect(ctx, settings.MongoURI)
	if err != nil {
		log.Fatalf("connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	collection := client.Database(settings.MongoDBName).Collection(settings.VehicleCollection)
	vehicleStore := &store.MongoVehicleStore{Collection: collection}

	seeded := 0
	for _, vehicle := range sampleFleet {
		count, err := collection.CountDocuments(ctx, bson.M{"vin": vehicle.VIN}, options.Count().SetLimit(1))
		if err != nil {
			log.Fatalf("check existing vehicle %s: %v", vehicle.VIN, err)
		}
		if count > 0 {
			log.WithField("vin", vehicle.VIN).Info("Vehicle already seeded, skipping")
			continue
		}
		if err := vehicleStore.InsertVehicle(ctx, vehicle); err != nil {
			log.Fatalf("insert vehicle %s: %v", vehicle.VIN, err)
		}
		seeded++
	}

	log.WithField("seeded", seeded).Info("Vehicle seeding complete")
}
