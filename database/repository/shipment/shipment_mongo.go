package shipmentRepo

import (
	"context"
	"fmt"
	"time"

	"droply/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoShipmentRepo implements ShipmentRepository using MongoDB.
type MongoShipmentRepo struct {
	coll *mongo.Collection
}

// NewMongoShipmentRepo creates a new instance of ShipmentRepository using MongoDB.
func NewMongoShipmentRepo() ShipmentRepository {
	coll := database.GetDatabase().Collection("shipments")
	repo := &MongoShipmentRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// NewMongoShipmentRepoWithCollection wires the repo to an explicit
// collection. Used by seeding tools.
func NewMongoShipmentRepoWithCollection(coll *mongo.Collection) ShipmentRepository {
	return &MongoShipmentRepo{coll: coll}
}

// newContext creates a context with the given timeout.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoShipmentRepo) ensureIndexes() error {
	ctx, cancel := newContext(nil, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "ownerId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
