package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"droply/database"
	shipmentRepo "droply/database/repository/shipment"
	"droply/models"
	"droply/services/notification"
	"droply/services/wallet"

	"go.uber.org/zap"
)

// DefaultSettlementCoordinator implements SettlementCoordinator. Confirm is
// the only writer of PaymentRecord, payoutStatus and confirmedBidId, and the
// only place a bid reaches in-transit.
type DefaultSettlementCoordinator struct {
	Repo     shipmentRepo.ShipmentRepository
	Wallet   wallet.WalletService
	Txn      database.TxnRunner
	Notifier notification.Notifier
	Logger   *zap.Logger

	// GatewaySecret signs gateway payments; Surcharge is the flat delivery
	// fee added on top of the winning bid.
	GatewaySecret string
	Surcharge     float64
	// TestPaymentMode skips signature verification. Injected from config at
	// construction; never derived from request content.
	TestPaymentMode bool
}

// Confirm settles the shipment on the chosen courier's bid: verifies (or
// wallet-debits) the payment, writes the payment record, moves shipment and
// bid to in-transit and cancels every competing bid, all under the
// shipment's version guard. A second confirmation of the same shipment
// observes payoutStatus=completed and fails with Conflict.
func (c *DefaultSettlementCoordinator) Confirm(ctx context.Context, input ConfirmInput) (*models.Shipment, error) {
	if input.Method != PaymentMethodGateway && input.Method != PaymentMethodWallet {
		return nil, NewError(CodeInvalidArgument, "unsupported payment method %q", input.Method)
	}
	if input.Method == PaymentMethodGateway &&
		(input.GatewayOrderID == "" || input.GatewayPaymentID == "" || (input.Signature == "" && !c.TestPaymentMode)) {
		return nil, NewError(CodeInvalidArgument, "gateway payments require order id, payment id and signature")
	}

	var (
		settled   *models.Shipment
		cancelled []models.Bid
		amount    float64
	)

	mutate := func(s *models.Shipment) error {
		cancelled = cancelled[:0]

		// Preconditions, first failure wins. The already-paid check comes
		// before the bid lookup: a settlement cancels every losing bid, so
		// couriers racing a confirmation must see Conflict, not NotFound.
		if s.OwnerID != input.RequesterID {
			return NewError(CodeForbidden, "only the shipment owner may confirm a bid")
		}
		if s.PayoutStatus == models.PayoutStatusCompleted {
			return NewError(CodeConflict, "shipment %s is already paid", s.ID)
		}
		bid := s.BidByCourier(input.CourierID)
		if bid == nil || bid.Status == models.BidStatusCancelled {
			return NewError(CodeNotFound, "courier %s has no active bid on shipment %s", input.CourierID, s.ID)
		}
		if len(s.Bids) == 0 {
			return NewError(CodeInvalidState, "shipment %s has no bids", s.ID)
		}
		if s.Status == models.ShipmentStatusCancelled {
			return NewError(CodeInvalidState, "shipment %s is cancelled", s.ID)
		}

		amount = bid.Price + c.Surcharge

		if input.Method == PaymentMethodGateway {
			if c.TestPaymentMode {
				c.Logger.Warn("TEST PAYMENT MODE: gateway signature verification skipped",
					zap.String("shipmentId", s.ID))
			} else if !VerifySignature(c.GatewaySecret, input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
				return NewError(CodePaymentVerificationFailed, "gateway signature mismatch for shipment %s", s.ID)
			}
		}

		s.Payment = &models.PaymentRecord{
			GatewayOrderID:   input.GatewayOrderID,
			GatewayPaymentID: input.GatewayPaymentID,
			Signature:        input.Signature,
			Method:           input.Method,
			Amount:           amount,
			PaidAt:           time.Now(),
		}
		s.PayoutStatus = models.PayoutStatusCompleted
		s.Status = models.ShipmentStatusInTransit
		s.ConfirmedBidID = bid.ID
		bid.Status = models.BidStatusInTransit
		bid.Progress.DeliveryStatus = models.BidStatusInTransit

		for i := range s.Bids {
			if s.Bids[i].ID != bid.ID && s.Bids[i].Status != models.BidStatusCancelled {
				s.Bids[i].Status = models.BidStatusCancelled
				cancelled = append(cancelled, s.Bids[i])
			}
		}
		return nil
	}

	var err error
	switch input.Method {
	case PaymentMethodWallet:
		// The debit and the shipment write commit or roll back together:
		// a debited-but-unconfirmed shipment is an invariant violation,
		// not a recoverable state.
		err = c.Txn.Run(ctx, func(txCtx context.Context) error {
			// Peek at the aggregate first so an unauthorized or already
			// paid confirmation never reaches the wallet.
			preview, precheckErr := c.precheck(txCtx, input)
			if precheckErr != nil {
				return precheckErr
			}
			debit := preview.BidByCourier(input.CourierID).Price + c.Surcharge

			debitErr := c.Wallet.Debit(txCtx, input.RequesterID, debit, wallet.TxnMeta{
				Method:      PaymentMethodWallet,
				ReferenceID: input.ShipmentID,
				Description: fmt.Sprintf("delivery payment for shipment %s", input.ShipmentID),
			})
			if errors.Is(debitErr, wallet.ErrInsufficientFunds) {
				return NewError(CodeInsufficientFunds, "wallet balance too low for amount %.2f", debit)
			}
			if debitErr != nil {
				return debitErr
			}

			settled, err = mutateShipment(txCtx, c.Repo, input.ShipmentID, mutate)
			return err
		})
	case PaymentMethodGateway:
		settled, err = mutateShipment(ctx, c.Repo, input.ShipmentID, mutate)
	}
	if err != nil {
		return nil, err
	}

	for _, bid := range cancelled {
		c.notify(ctx, models.Event{
			Type:       models.EventBidCancelled,
			ShipmentID: settled.ID,
			UserID:     bid.CourierID,
			Payload:    map[string]string{"reason": "another bid was confirmed"},
		})
	}
	c.notify(ctx, models.Event{
		Type:       models.EventShipmentSettled,
		ShipmentID: settled.ID,
		UserID:     input.CourierID,
		Payload:    map[string]string{"method": input.Method, "amount": fmt.Sprintf("%.2f", amount)},
	})

	c.Logger.Info("shipment settled",
		zap.String("shipmentId", settled.ID),
		zap.String("courierId", input.CourierID),
		zap.String("method", input.Method),
		zap.Float64("amount", amount),
		zap.Int("bidsCancelled", len(cancelled)))
	return settled, nil
}

// precheck runs the settlement preconditions without mutating anything, so
// wallet debits are only attempted for confirmations that stand a chance.
// The authoritative recheck still happens under the version guard.
func (c *DefaultSettlementCoordinator) precheck(ctx context.Context, input ConfirmInput) (*models.Shipment, error) {
	s, err := c.Repo.GetByID(ctx, input.ShipmentID)
	if err != nil {
		if errors.Is(err, shipmentRepo.ErrNotFound) {
			return nil, NewError(CodeNotFound, "shipment %s not found", input.ShipmentID)
		}
		return nil, err
	}
	if s.OwnerID != input.RequesterID {
		return nil, NewError(CodeForbidden, "only the shipment owner may confirm a bid")
	}
	if s.PayoutStatus == models.PayoutStatusCompleted {
		return nil, NewError(CodeConflict, "shipment %s is already paid", s.ID)
	}
	bid := s.BidByCourier(input.CourierID)
	if bid == nil || bid.Status == models.BidStatusCancelled {
		return nil, NewError(CodeNotFound, "courier %s has no active bid on shipment %s", input.CourierID, s.ID)
	}
	if len(s.Bids) == 0 {
		return nil, NewError(CodeInvalidState, "shipment %s has no bids", s.ID)
	}
	return s, nil
}

func (c *DefaultSettlementCoordinator) notify(ctx context.Context, event models.Event) {
	if c.Notifier == nil {
		return
	}
	if err := c.Notifier.Publish(ctx, event); err != nil {
		c.Logger.Warn("failed to publish event",
			zap.String("type", event.Type), zap.Error(err))
	}
}
