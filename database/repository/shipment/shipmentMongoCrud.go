package shipmentRepo

import (
	"context"
	"fmt"
	"time"

	"droply/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new shipment document at version 1.
func (r *MongoShipmentRepo) Create(ctx context.Context, s *models.Shipment) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	s.Version = 1
	if s.Bids == nil {
		s.Bids = []models.Bid{}
	}

	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to create shipment: %w", err)
	}
	return nil
}

// GetByID retrieves a shipment by its unique ID.
func (r *MongoShipmentRepo) GetByID(ctx context.Context, id string) (*models.Shipment, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var s models.Shipment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch shipment with id %s: %w", id, err)
	}
	return &s, nil
}

// ListByOwner retrieves every shipment posted by the given shipper.
func (r *MongoShipmentRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Shipment, error) {
	return r.list(ctx, bson.M{"ownerId": ownerID})
}

// ListOpen retrieves shipments still accepting bids.
func (r *MongoShipmentRepo) ListOpen(ctx context.Context) ([]models.Shipment, error) {
	return r.list(ctx, bson.M{"status": bson.M{"$in": []string{
		models.ShipmentStatusOpen, models.ShipmentStatusBidAccepted,
	}}})
}

func (r *MongoShipmentRepo) list(ctx context.Context, filter bson.M) ([]models.Shipment, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve shipments: %w", err)
	}
	defer cursor.Close(ctx)

	var shipments []models.Shipment
	for cursor.Next(ctx) {
		var s models.Shipment
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode shipment: %w", err)
		}
		shipments = append(shipments, s)
	}
	return shipments, nil
}

// ReplaceCAS replaces the whole document guarded by the version it was read
// at. A MatchedCount of zero means either the shipment vanished or another
// writer committed first; the two cases are told apart with a follow-up read.
func (r *MongoShipmentRepo) ReplaceCAS(ctx context.Context, s *models.Shipment) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	readVersion := s.Version
	s.Version = readVersion + 1
	s.UpdatedAt = time.Now()

	filter := bson.M{"id": s.ID, "version": readVersion}
	result, err := r.coll.ReplaceOne(ctx, filter, s)
	if err != nil {
		s.Version = readVersion
		return fmt.Errorf("failed to update shipment with id %s: %w", s.ID, err)
	}
	if result.MatchedCount == 0 {
		s.Version = readVersion
		count, err := r.coll.CountDocuments(ctx, bson.M{"id": s.ID})
		if err == nil && count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// Delete removes a shipment document by its ID.
func (r *MongoShipmentRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete shipment with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
