package delivery

import (
	"context"
	"errors"

	shipmentRepo "droply/database/repository/shipment"
	"droply/models"
	"droply/services/directory"
	"droply/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// casRetryLimit bounds how often a mutation re-reads after losing a version
// race before giving up with Conflict.
const casRetryLimit = 5

// mutateShipment runs a read-validate-write cycle against one shipment
// aggregate. fn sees a freshly read document on every attempt, so its
// precondition checks and the final write are linearized: any state another
// writer committed in between is observed before this mutation lands.
func mutateShipment(ctx context.Context, repo shipmentRepo.ShipmentRepository, id string, fn func(s *models.Shipment) error) (*models.Shipment, error) {
	for attempt := 0; attempt < casRetryLimit; attempt++ {
		s, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, shipmentRepo.ErrNotFound) {
				return nil, NewError(CodeNotFound, "shipment %s not found", id)
			}
			return nil, err
		}

		if err := fn(s); err != nil {
			return nil, err
		}

		err = repo.ReplaceCAS(ctx, s)
		if err == nil {
			return s, nil
		}
		if errors.Is(err, shipmentRepo.ErrVersionConflict) {
			continue
		}
		if errors.Is(err, shipmentRepo.ErrNotFound) {
			return nil, NewError(CodeNotFound, "shipment %s not found", id)
		}
		return nil, err
	}
	return nil, NewError(CodeConflict, "shipment %s is being modified concurrently", id)
}

// ExpiryScheduler queues a deferred expiry check for a freshly posted
// shipment. Scheduling failures are logged, not surfaced: a shipment that
// never expires is acceptable, a shipment that fails to post is not.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, shipmentID string) error
}

// DefaultShipmentService implements ShipmentService.
type DefaultShipmentService struct {
	Repo      shipmentRepo.ShipmentRepository
	Directory directory.Client
	Notifier  notification.Notifier
	Expiry    ExpiryScheduler
	Logger    *zap.Logger
}

// CreateShipment posts a new parcel or order, open for bids.
func (s *DefaultShipmentService) CreateShipment(ctx context.Context, input CreateShipmentInput) (*models.Shipment, error) {
	if input.Kind != models.ShipmentKindParcel && input.Kind != models.ShipmentKindOrder {
		return nil, NewError(CodeInvalidArgument, "unknown shipment kind %q", input.Kind)
	}
	if input.Title == "" {
		return nil, NewError(CodeInvalidArgument, "title is required")
	}
	if input.DeclaredValue < 0 {
		return nil, NewError(CodeInvalidArgument, "declared value cannot be negative")
	}
	if input.PickupAddrID == "" || input.DropAddrID == "" {
		return nil, NewError(CodeInvalidArgument, "pickup and drop addresses are required")
	}

	// Both location references must resolve before the shipment is posted.
	if s.Directory != nil {
		if _, err := s.Directory.ResolveAddress(ctx, input.PickupAddrID); err != nil {
			return nil, NewError(CodeInvalidArgument, "pickup address %s could not be resolved", input.PickupAddrID)
		}
		if _, err := s.Directory.ResolveAddress(ctx, input.DropAddrID); err != nil {
			return nil, NewError(CodeInvalidArgument, "drop address %s could not be resolved", input.DropAddrID)
		}
	}

	shipment := &models.Shipment{
		ID:            uuid.New().String(),
		Kind:          input.Kind,
		OwnerID:       input.OwnerID,
		Title:         input.Title,
		DeclaredValue: input.DeclaredValue,
		WeightClass:   input.WeightClass,
		PickupAddrID:  input.PickupAddrID,
		DropAddrID:    input.DropAddrID,
		Status:        models.ShipmentStatusOpen,
		PayoutStatus:  models.PayoutStatusPending,
		Bids:          []models.Bid{},
	}
	if err := s.Repo.Create(ctx, shipment); err != nil {
		return nil, err
	}

	if s.Expiry != nil {
		if err := s.Expiry.ScheduleExpiry(ctx, shipment.ID); err != nil {
			s.Logger.Warn("failed to schedule shipment expiry",
				zap.String("shipmentId", shipment.ID), zap.Error(err))
		}
	}

	s.Logger.Info("shipment posted",
		zap.String("shipmentId", shipment.ID),
		zap.String("kind", shipment.Kind),
		zap.String("ownerId", shipment.OwnerID))
	return shipment, nil
}

// GetShipment retrieves one shipment aggregate.
func (s *DefaultShipmentService) GetShipment(ctx context.Context, id string) (*models.Shipment, error) {
	shipment, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, shipmentRepo.ErrNotFound) {
			return nil, NewError(CodeNotFound, "shipment %s not found", id)
		}
		return nil, err
	}
	return shipment, nil
}

// ListOpenShipments returns shipments still accepting bids.
func (s *DefaultShipmentService) ListOpenShipments(ctx context.Context) ([]models.Shipment, error) {
	return s.Repo.ListOpen(ctx)
}

// ListShipmentsByOwner returns everything the shipper has posted.
func (s *DefaultShipmentService) ListShipmentsByOwner(ctx context.Context, ownerID string) ([]models.Shipment, error) {
	return s.Repo.ListByOwner(ctx, ownerID)
}

// CancelShipment aborts an unsettled shipment and cancels every pending bid.
// A paid shipment can no longer be cancelled through this path.
func (s *DefaultShipmentService) CancelShipment(ctx context.Context, shipmentID, requesterID string) error {
	var dropped []models.Bid

	_, err := mutateShipment(ctx, s.Repo, shipmentID, func(sh *models.Shipment) error {
		dropped = dropped[:0]

		if sh.OwnerID != requesterID {
			return NewError(CodeForbidden, "only the shipment owner may cancel it")
		}
		if sh.PayoutStatus == models.PayoutStatusCompleted {
			return NewError(CodeConflict, "shipment %s is already paid", shipmentID)
		}
		if sh.Status == models.ShipmentStatusCancelled {
			return NewError(CodeConflict, "shipment %s is already cancelled", shipmentID)
		}

		sh.Status = models.ShipmentStatusCancelled
		for i := range sh.Bids {
			if sh.Bids[i].Status != models.BidStatusCancelled {
				sh.Bids[i].Status = models.BidStatusCancelled
				dropped = append(dropped, sh.Bids[i])
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, bid := range dropped {
		s.notify(ctx, models.Event{
			Type:       models.EventBidCancelled,
			ShipmentID: shipmentID,
			UserID:     bid.CourierID,
			Payload:    map[string]string{"reason": "shipment cancelled"},
		})
	}

	s.Logger.Info("shipment cancelled",
		zap.String("shipmentId", shipmentID),
		zap.Int("bidsCancelled", len(dropped)))
	return nil
}

// ExpireShipment closes out a shipment that sat too long without settling.
// It is a no-op unless the shipment is still unpaid and either open or
// bid-accepted, so a late-firing expiry task can never clobber a settled or
// delivered shipment.
func (s *DefaultShipmentService) ExpireShipment(ctx context.Context, shipmentID string) error {
	var dropped []models.Bid
	expired := false

	_, err := mutateShipment(ctx, s.Repo, shipmentID, func(sh *models.Shipment) error {
		dropped = dropped[:0]
		expired = false

		if sh.PayoutStatus == models.PayoutStatusCompleted {
			return nil
		}
		if sh.Status != models.ShipmentStatusOpen && sh.Status != models.ShipmentStatusBidAccepted {
			return nil
		}

		sh.Status = models.ShipmentStatusCancelled
		expired = true
		for i := range sh.Bids {
			if sh.Bids[i].Status != models.BidStatusCancelled {
				sh.Bids[i].Status = models.BidStatusCancelled
				dropped = append(dropped, sh.Bids[i])
			}
		}
		return nil
	})
	if err != nil {
		if IsCode(err, CodeNotFound) {
			return nil
		}
		return err
	}
	if !expired {
		return nil
	}

	for _, bid := range dropped {
		s.notify(ctx, models.Event{
			Type:       models.EventBidCancelled,
			ShipmentID: shipmentID,
			UserID:     bid.CourierID,
			Payload:    map[string]string{"reason": "shipment expired"},
		})
	}

	s.Logger.Info("shipment expired",
		zap.String("shipmentId", shipmentID),
		zap.Int("bidsCancelled", len(dropped)))
	return nil
}

func (s *DefaultShipmentService) notify(ctx context.Context, event models.Event) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Publish(ctx, event); err != nil {
		s.Logger.Warn("failed to publish event",
			zap.String("type", event.Type), zap.Error(err))
	}
}
