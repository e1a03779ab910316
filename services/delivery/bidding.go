package delivery

import (
	"context"
	"errors"
	"time"

	shipmentRepo "droply/database/repository/shipment"
	"droply/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBidLedger implements BidLedger. Bids live inside the shipment
// document in submission order; one courier gets at most one live bid per
// shipment.
type DefaultBidLedger struct {
	Repo   shipmentRepo.ShipmentRepository
	Logger *zap.Logger
}

// SubmitBid appends a new bid. The shipment's first bid moves it from open
// to bid-accepted.
func (l *DefaultBidLedger) SubmitBid(ctx context.Context, input SubmitBidInput) (*models.Bid, error) {
	if input.Price <= 0 {
		return nil, NewError(CodeInvalidArgument, "bid price must be positive")
	}
	var tentative time.Time
	if input.TentativeTime != "" {
		parsed, err := time.Parse(time.RFC3339, input.TentativeTime)
		if err != nil {
			return nil, NewError(CodeInvalidArgument, "tentative time must be RFC 3339")
		}
		tentative = parsed
	}

	var submitted models.Bid

	_, err := mutateShipment(ctx, l.Repo, input.ShipmentID, func(s *models.Shipment) error {
		if s.OwnerID == input.CourierID {
			return NewError(CodeConflict, "a shipper cannot bid on their own shipment")
		}
		if s.Status != models.ShipmentStatusOpen && s.Status != models.ShipmentStatusBidAccepted {
			return NewError(CodeInvalidState, "shipment %s is no longer accepting bids", s.ID)
		}
		if existing := s.BidByCourier(input.CourierID); existing != nil && existing.Status != models.BidStatusCancelled {
			return NewError(CodeConflict, "courier %s already has a bid on shipment %s", input.CourierID, s.ID)
		}

		submitted = models.Bid{
			ID:            uuid.New().String(),
			CourierID:     input.CourierID,
			Vehicle:       input.Vehicle,
			TentativeTime: tentative,
			Price:         input.Price,
			Status:        models.BidStatusAccepted,
			CreatedAt:     time.Now(),
		}
		s.Bids = append(s.Bids, submitted)

		if s.Status == models.ShipmentStatusOpen {
			s.Status = models.ShipmentStatusBidAccepted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Logger.Info("bid submitted",
		zap.String("shipmentId", input.ShipmentID),
		zap.String("courierId", input.CourierID),
		zap.Float64("price", input.Price))
	return &submitted, nil
}

// UpdateBidPrice changes a pending bid's price. Allowed for the bidding
// courier and for the shipment owner (who may negotiate it down).
func (l *DefaultBidLedger) UpdateBidPrice(ctx context.Context, shipmentID, courierID string, newPrice float64, requesterID string) error {
	if newPrice <= 0 {
		return NewError(CodeInvalidArgument, "bid price must be positive")
	}

	_, err := mutateShipment(ctx, l.Repo, shipmentID, func(s *models.Shipment) error {
		if requesterID != courierID && requesterID != s.OwnerID {
			return NewError(CodeForbidden, "only the bidding courier or the shipment owner may change a bid price")
		}
		bid := s.BidByCourier(courierID)
		if bid == nil {
			return NewError(CodeNotFound, "courier %s has no bid on shipment %s", courierID, shipmentID)
		}
		if s.PayoutStatus == models.PayoutStatusCompleted {
			return NewError(CodeConflict, "shipment %s is already paid", shipmentID)
		}
		if bid.Status == models.BidStatusCancelled {
			return NewError(CodeConflict, "bid from courier %s was cancelled", courierID)
		}

		bid.Price = newPrice
		return nil
	})
	if err != nil {
		return err
	}

	l.Logger.Info("bid price updated",
		zap.String("shipmentId", shipmentID),
		zap.String("courierId", courierID),
		zap.Float64("newPrice", newPrice))
	return nil
}

// ListBids returns the shipment's bids in submission order.
func (l *DefaultBidLedger) ListBids(ctx context.Context, shipmentID string) ([]models.Bid, error) {
	s, err := l.Repo.GetByID(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, shipmentRepo.ErrNotFound) {
			return nil, NewError(CodeNotFound, "shipment %s not found", shipmentID)
		}
		return nil, err
	}

	bids := make([]models.Bid, len(s.Bids))
	copy(bids, s.Bids)
	return bids, nil
}
