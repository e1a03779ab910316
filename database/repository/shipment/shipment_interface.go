package shipmentRepo

import (
	"context"
	"errors"

	"droply/models"
)

// Sentinel errors surfaced to the service layer.
var (
	// ErrNotFound is returned when no shipment matches the given id.
	ErrNotFound = errors.New("shipment not found")
	// ErrVersionConflict is returned when a ReplaceCAS write lost the race:
	// the document changed since it was read. Callers re-read and re-validate.
	ErrVersionConflict = errors.New("shipment version conflict")
)

// ShipmentRepository defines data access for the shipment aggregate. The
// whole document (shipment, bids, delivery progress) is the unit of storage;
// every mutation goes through ReplaceCAS so concurrent writers are
// linearized by the version field.
type ShipmentRepository interface {
	// Create inserts a new shipment document at version 1.
	Create(ctx context.Context, s *models.Shipment) error
	// GetByID retrieves a shipment by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Shipment, error)
	// ListByOwner retrieves every shipment posted by the given shipper.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Shipment, error)
	// ListOpen retrieves shipments still accepting bids.
	ListOpen(ctx context.Context) ([]models.Shipment, error)
	// ReplaceCAS replaces the document if its stored version still equals
	// s.Version, then bumps the version. Returns ErrVersionConflict on a
	// lost race.
	ReplaceCAS(ctx context.Context, s *models.Shipment) error
	// Delete removes a shipment document by its ID.
	Delete(ctx context.Context, id string) error
}
