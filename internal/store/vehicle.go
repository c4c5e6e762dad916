package store

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
)

// MongoVehicleStore reads and seeds the vehicle reference collection.
type MongoVehicleStore struct {
	Collection *mongo.Collection
}

// NewMongoVehicleStore wires the store to its collection.
func NewMongoVehicleStore(db *mongo.Database, collection string) *MongoVehicleStore {
	return &MongoVehicleStore{Collection: db.Collection(collection)}
}

// ActiveRefs returns the refs of every actively tracked vehicle.
func (s *MongoVehicleStore) ActiveRefs(ctx context.Context) ([]models.VehicleRef, error) {
	if s.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	cursor, err := s.Collection.Find(ctx, bson.M{"is_active": true})
	if err != nil {
		return nil, fmt.Errorf("vehicle query failed: %w", err)
	}
	defer cursor.Close(ctx)

	var refs []models.VehicleRef
	if err := cursor.All(ctx, &refs); err != nil {
		return nil, fmt.Errorf("vehicle decode failed: %w", err)
	}
	return refs, nil
}

// InsertVehicle adds one vehicle. Used by the seeding utility only.
func (s *MongoVehicleStore) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if s.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()
	_, err := s.Collection.InsertOne(ctx, vehicle)
	return err
}

const vehicleRefsCacheKey = "active_vehicle_refs"

// CachedVehicleStore is a read-through cache in front of a VehicleStore so
// frequent job runs don't hammer the reference collection.
type CachedVehicleStore struct {
	inner VehicleStore
	cache *gocache.Cache
}

// NewCachedVehicleStore caches ActiveRefs results for ttl.
func NewCachedVehicleStore(inner VehicleStore, ttl time.Duration) *CachedVehicleStore {
	return &CachedVehicleStore{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// ActiveRefs serves from cache when fresh, otherwise reads through. A load
// failure is never masked by a stale cache entry.
func (s *CachedVehicleStore) ActiveRefs(ctx context.Context) ([]models.VehicleRef, error) {
	if cached, found := s.cache.Get(vehicleRefsCacheKey); found {
		return cached.([]models.VehicleRef), nil
	}
	refs, err := s.inner.ActiveRefs(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(vehicleRefsCacheKey, refs)
	return refs, nil
}

// InsertVehicle writes through and drops the cached list.
func (s *CachedVehicleStore) InsertVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if err := s.inner.InsertVehicle(ctx, vehicle); err != nil {
		return err
	}
	s.cache.Delete(vehicleRefsCacheKey)
	return nil
}
