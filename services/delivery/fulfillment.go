package delivery

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"droply/database"
	shipmentRepo "droply/database/repository/shipment"
	"droply/models"
	"droply/services/notification"
	"droply/services/wallet"
	"droply/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultFulfillmentEngine implements FulfillmentEngine. Every mutation
// re-reads the bid's status under the version guard, so an operation racing
// a cancellation (another courier just got confirmed) fails with Conflict
// instead of landing on a dead bid.
type DefaultFulfillmentEngine struct {
	Repo     shipmentRepo.ShipmentRepository
	Wallet   wallet.WalletService
	Txn      database.TxnRunner
	Notifier notification.Notifier
	Logger   *zap.Logger
}

// confirmedBid authorizes the caller and returns their bid. allowDelivered
// widens the valid states for operations that remain legal after delivery.
func confirmedBid(s *models.Shipment, courierID string, allowDelivered bool) (*models.Bid, error) {
	bid := s.BidByCourier(courierID)
	if bid == nil {
		return nil, NewError(CodeNotFound, "courier %s has no bid on shipment %s", courierID, s.ID)
	}
	switch bid.Status {
	case models.BidStatusCancelled:
		return nil, NewError(CodeConflict, "bid from courier %s was cancelled", courierID)
	case models.BidStatusAccepted:
		return nil, NewError(CodeInvalidState, "bid from courier %s has not been confirmed", courierID)
	case models.BidStatusDelivered:
		if !allowDelivered {
			return nil, NewError(CodeInvalidState, "shipment %s is already delivered", s.ID)
		}
	}
	return bid, nil
}

// UpdateLocation overwrites the courier's reported position; last wins.
func (e *DefaultFulfillmentEngine) UpdateLocation(ctx context.Context, shipmentID, courierID string, lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return NewError(CodeInvalidArgument, "coordinates (%f, %f) out of range", lat, lng)
	}

	_, err := mutateShipment(ctx, e.Repo, shipmentID, func(s *models.Shipment) error {
		bid, err := confirmedBid(s, courierID, false)
		if err != nil {
			return err
		}
		bid.Progress.CurrentLocation = &models.GeoPoint{
			Lat:        lat,
			Lng:        lng,
			ReportedAt: time.Now(),
		}
		return nil
	})
	return err
}

// UploadDeliveryImage stores a proof photo reference. The barcode-flagged
// image also marks the barcode as scanned if it wasn't already, recording a
// generated scan entry.
func (e *DefaultFulfillmentEngine) UploadDeliveryImage(ctx context.Context, shipmentID, courierID, imageRef string, withBarcode bool) error {
	if imageRef == "" {
		return NewError(CodeInvalidArgument, "image reference is required")
	}

	_, err := mutateShipment(ctx, e.Repo, shipmentID, func(s *models.Shipment) error {
		bid, err := confirmedBid(s, courierID, true)
		if err != nil {
			return err
		}
		if withBarcode {
			bid.Progress.DeliveryImageWithBC = imageRef
			if !bid.Progress.BarcodeScanned {
				bid.Progress.BarcodeScanned = true
				bid.Progress.BarcodeData = "scan-" + uuid.New().String()
			}
		} else {
			bid.Progress.DeliveryImage = imageRef
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.Logger.Info("delivery image stored",
		zap.String("shipmentId", shipmentID),
		zap.String("courierId", courierID),
		zap.Bool("withBarcode", withBarcode))
	return nil
}

// SetRecipient records the recipient's mobile number and issues a fresh
// 6-digit OTP for them. Re-setting the recipient reissues the code and
// resets the attempt counter.
func (e *DefaultFulfillmentEngine) SetRecipient(ctx context.Context, shipmentID, courierID, recipientMobile string) error {
	if !utils.ValidRecipientMobile(recipientMobile) {
		return NewError(CodeInvalidArgument, "recipient mobile must be a %d-digit number", utils.RecipientMobileLength)
	}

	otp, err := utils.GenerateNumericOTP(utils.OTPLength)
	if err != nil {
		return fmt.Errorf("failed to generate OTP: %w", err)
	}

	_, err = mutateShipment(ctx, e.Repo, shipmentID, func(s *models.Shipment) error {
		bid, bidErr := confirmedBid(s, courierID, false)
		if bidErr != nil {
			return bidErr
		}
		bid.Progress.RecipientMobile = recipientMobile
		bid.Progress.OtpCode = otp
		bid.Progress.OtpVerified = false
		bid.Progress.OtpAttempts = 0
		return nil
	})
	if err != nil {
		return err
	}

	// The code travels to the recipient out of band; it is never returned
	// to the courier.
	e.notify(ctx, models.Event{
		Type:       models.EventOTPDispatch,
		ShipmentID: shipmentID,
		Payload: map[string]string{
			"mobile": recipientMobile,
			"otp":    otp,
		},
	})

	e.Logger.Info("recipient OTP issued",
		zap.String("shipmentId", shipmentID),
		zap.String("courierId", courierID))
	return nil
}

// VerifyOTP compares the submitted code against the one issued for this
// courier's bid. A match is the single authoritative delivered transition:
// it sets otpVerified, deliveredAt, bid and shipment status, and credits the
// courier's earnings, all in one transaction. A mismatch bumps otpAttempts
// and fails with InvalidOtp.
func (e *DefaultFulfillmentEngine) VerifyOTP(ctx context.Context, shipmentID, courierID, submittedOTP string) (*models.Shipment, error) {
	if !utils.ValidOTPFormat(submittedOTP) {
		return nil, NewError(CodeInvalidArgument, "OTP must be a %d-digit number", utils.OTPLength)
	}

	var (
		settled  *models.Shipment
		earnings float64
		mismatch bool
	)

	err := e.Txn.Run(ctx, func(txCtx context.Context) error {
		var err error
		settled, err = mutateShipment(txCtx, e.Repo, shipmentID, func(s *models.Shipment) error {
			mismatch = false

			bid, bidErr := confirmedBid(s, courierID, false)
			if bidErr != nil {
				return bidErr
			}
			if bid.Progress.OtpCode == "" {
				return NewError(CodeInvalidState, "no OTP has been issued for shipment %s", s.ID)
			}

			if subtle.ConstantTimeCompare([]byte(bid.Progress.OtpCode), []byte(submittedOTP)) != 1 {
				// Persist the failed attempt, then report InvalidOtp.
				bid.Progress.OtpAttempts++
				mismatch = true
				return nil
			}

			now := time.Now()
			bid.Progress.OtpVerified = true
			bid.Progress.DeliveryStatus = models.BidStatusDelivered
			bid.Progress.DeliveredAt = &now
			bid.Status = models.BidStatusDelivered
			s.Status = models.ShipmentStatusDelivered
			earnings = bid.Price
			return nil
		})
		if err != nil || mismatch {
			return err
		}

		return e.Wallet.Credit(txCtx, courierID, earnings, wallet.TxnMeta{
			Method:      "wallet",
			ReferenceID: shipmentID,
			Description: fmt.Sprintf("delivery earnings for shipment %s", shipmentID),
		})
	})
	if err != nil {
		return nil, err
	}
	if mismatch {
		return nil, NewError(CodeInvalidOtp, "submitted OTP does not match")
	}

	e.notify(ctx, models.Event{
		Type:       models.EventShipmentDelivered,
		ShipmentID: shipmentID,
		UserID:     settled.OwnerID,
		Payload:    map[string]string{"courierId": courierID},
	})

	e.Logger.Info("shipment delivered",
		zap.String("shipmentId", shipmentID),
		zap.String("courierId", courierID),
		zap.Float64("earnings", earnings))
	return settled, nil
}

// DeliveryRequirements reports which of the proof-of-delivery gates have
// been satisfied. Advisory only; never mutates state.
func (e *DefaultFulfillmentEngine) DeliveryRequirements(ctx context.Context, shipmentID, courierID, requesterID string) (*DeliveryRequirements, error) {
	progress, err := e.GetProgress(ctx, shipmentID, courierID, requesterID)
	if err != nil {
		return nil, err
	}

	req := &DeliveryRequirements{
		DeliveryImage:            progress.DeliveryImage != "",
		DeliveryImageWithBarcode: progress.DeliveryImageWithBC != "",
		OtpVerified:              progress.OtpVerified,
	}
	req.Met = req.DeliveryImage && req.DeliveryImageWithBarcode && req.OtpVerified
	return req, nil
}

// GetProgress returns a copy of the bid's delivery progress. The courier
// holding the bid and the shipment owner may read; nobody else.
func (e *DefaultFulfillmentEngine) GetProgress(ctx context.Context, shipmentID, courierID, requesterID string) (*models.DeliveryProgress, error) {
	s, err := e.Repo.GetByID(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, shipmentRepo.ErrNotFound) {
			return nil, NewError(CodeNotFound, "shipment %s not found", shipmentID)
		}
		return nil, err
	}
	if requesterID != courierID && requesterID != s.OwnerID {
		return nil, NewError(CodeForbidden, "only the courier or the shipment owner may view delivery progress")
	}

	bid := s.BidByCourier(courierID)
	if bid == nil {
		return nil, NewError(CodeNotFound, "courier %s has no bid on shipment %s", courierID, shipmentID)
	}

	progress := bid.Progress
	progress.OtpCode = "" // never leaves the aggregate
	return &progress, nil
}

func (e *DefaultFulfillmentEngine) notify(ctx context.Context, event models.Event) {
	if e.Notifier == nil {
		return
	}
	if err := e.Notifier.Publish(ctx, event); err != nil {
		e.Logger.Warn("failed to publish event",
			zap.String("type", event.Type), zap.Error(err))
	}
}
