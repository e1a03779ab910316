package delivery

import (
	"context"
	"testing"

	"droply/database"
	"droply/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(repo *memShipmentRepo, w *fakeWallet, n *captureNotifier) *DefaultFulfillmentEngine {
	return &DefaultFulfillmentEngine{
		Repo:     repo,
		Wallet:   w,
		Txn:      database.NoTxnRunner{},
		Notifier: n,
		Logger:   zap.NewNop(),
	}
}

// seedSettledShipment stores a shipment whose courier-1 bid has been
// confirmed and is in transit, with courier-2's bid cancelled.
func seedSettledShipment(t *testing.T, repo *memShipmentRepo) *models.Shipment {
	t.Helper()
	return seedShipment(t, repo, &models.Shipment{
		ID:             "ship-1",
		OwnerID:        "shipper-1",
		Status:         models.ShipmentStatusInTransit,
		PayoutStatus:   models.PayoutStatusCompleted,
		ConfirmedBidID: "bid-1",
		Bids: []models.Bid{
			{
				ID: "bid-1", CourierID: "courier-1", Price: 100,
				Status:   models.BidStatusInTransit,
				Progress: models.DeliveryProgress{DeliveryStatus: models.BidStatusInTransit},
			},
			{ID: "bid-2", CourierID: "courier-2", Price: 95, Status: models.BidStatusCancelled},
		},
	})
}

func storedBid(t *testing.T, repo *memShipmentRepo, shipmentID, courierID string) *models.Bid {
	t.Helper()
	s, err := repo.GetByID(context.Background(), shipmentID)
	require.NoError(t, err)
	bid := s.BidByCourier(courierID)
	require.NotNil(t, bid)
	return bid
}

func TestUpdateLocationLastWriteWins(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	engine := newTestEngine(repo, newFakeWallet(0), &captureNotifier{})
	ctx := context.Background()

	require.NoError(t, engine.UpdateLocation(ctx, "ship-1", "courier-1", 12.9716, 77.5946))
	require.NoError(t, engine.UpdateLocation(ctx, "ship-1", "courier-1", 12.9352, 77.6245))

	bid := storedBid(t, repo, "ship-1", "courier-1")
	require.NotNil(t, bid.Progress.CurrentLocation)
	require.Equal(t, 12.9352, bid.Progress.CurrentLocation.Lat)
	require.Equal(t, 77.6245, bid.Progress.CurrentLocation.Lng)
	require.False(t, bid.Progress.CurrentLocation.ReportedAt.IsZero())
}

func TestUpdateLocationRejectsOutOfRange(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	engine := newTestEngine(repo, newFakeWallet(0), &captureNotifier{})

	err := engine.UpdateLocation(context.Background(), "ship-1", "courier-1", 91, 0)
	require.True(t, IsCode(err, CodeInvalidArgument))

	err = engine.UpdateLocation(context.Background(), "ship-1", "courier-1", 0, -181)
	require.True(t, IsCode(err, CodeInvalidArgument))
}

func TestFulfillmentRejectsCancelledBid(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	engine := newTestEngine(repo, newFakeWallet(0), &captureNotifier{})
	ctx := context.Background()

	// courier-2 lost the settlement; every fulfillment call must bounce.
	err := engine.UpdateLocation(ctx, "ship-1", "courier-2", 12.9, 77.6)
	require.True(t, IsCode(err, CodeConflict))

	err = engine.UploadDeliveryImage(ctx, "ship-1", "courier-2", "img-1", false)
	require.True(t, IsCode(err, CodeConflict))

	err = engine.SetRecipient(ctx, "ship-1", "courier-2", "9876543210")
	require.True(t, IsCode(err, CodeConflict))
}

func TestFulfillmentRejectsUnconfirmedBid(t *testing.T) {
	repo := newMemShipmentRepo()
	seedShipment(t, repo, &models.Shipment{
		ID:      "ship-1",
		OwnerID: "shipper-1",
		Status:  models.ShipmentStatusBidAccepted,
		Bids: []models.Bid{
			{ID: "bid-1", CourierID: "courier-1", Price: 100, Status: models.BidStatusAccepted},
		},
	})
	engine := newTestEngine(repo, newFakeWallet(0), &captureNotifier{})

	err := engine.UpdateLocation(context.Background(), "ship-1", "courier-1", 12.9, 77.6)
	require.True(t, IsCode(err, CodeInvalidState))
}

func TestUploadDeliveryImageWithBarcodeAutoScans(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	engine := newTestEngine(repo, newFakeWallet(0), &captureNotifier{})
	ctx := context.Background()

	require.NoError(t, engine.UploadDeliveryImage(ctx, "ship-1", "courier-1", "img-plain", false))
	require.NoError(t, engine.UploadDeliveryImage(ctx, "ship-1", "courier-1", "img-bc", true))

	bid := storedBid(t, repo, "ship-1", "courier-1")
	require.Equal(t, "img-plain", bid.Progress.DeliveryImage)
	require.Equal(t, "img-bc", bid.Progress.DeliveryImageWithBC)
	require.True(t, bid.Progress.BarcodeScanned)
	require.NotEmpty(t, bid.Progress.BarcodeData)

	// Re-uploading keeps the original scan record.
	firstScan := bid.Progress.BarcodeData
	require.NoError(t, engine.UploadDeliveryImage(ctx, "ship-1", "courier-1", "img-bc-2", true))
	bid = storedBid(t, repo, "ship-1", "courier-1")
	require.Equal(t, "img-bc-2", bid.Progress.DeliveryImageWithBC)
	require.Equal(t, firstScan, bid.Progress.BarcodeData)
}

func TestSetRecipientIssuesOTPAndDispatches(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	notifier := &captureNotifier{}
	engine := newTestEngine(repo, newFakeWallet(0), notifier)

	require.NoError(t, engine.SetRecipient(context.Background(), "ship-1", "courier-1", "9876543210"))

	bid := storedBid(t, repo, "ship-1", "courier-1")
	require.Equal(t, "9876543210", bid.Progress.RecipientMobile)
	require.Len(t, bid.Progress.OtpCode, 6)
	require.False(t, bid.Progress.OtpVerified)
	require.Zero(t, bid.Progress.OtpAttempts)

	dispatches := notifier.byType(models.EventOTPDispatch)
	require.Len(t, dispatches, 1)
	require.Equal(t, "9876543210", dispatches[0].Payload["mobile"])
	require.Equal(t, bid.Progress.OtpCode, dispatches[0].Payload["otp"])
}

func TestSetRecipientReissueResetsAttempts(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	engine := newTestEngine(repo, newFakeWallet(0), &captureNotifier{})
	ctx := context.Background()

	require.NoError(t, engine.SetRecipient(ctx, "ship-1", "courier-1", "9876543210"))
	first := storedBid(t, repo, "ship-1", "courier-1").Progress.OtpCode

	// Burn an attempt, then re-set the recipient.
	wrong := "000000"
	if wrong == first {
		wrong = "000001"
	}
	_, err := engine.VerifyOTP(ctx, "ship-1", "courier-1", wrong)
	require.True(t, IsCode(err, CodeInvalidOtp))
	require.Equal(t, 1, storedBid(t, repo, "ship-1", "courier-1").Progress.OtpAttempts)

	require.NoError(t, engine.SetRecipient(ctx, "ship-1", "courier-1", "9123456789"))
	bid := storedBid(t, repo, "ship-1", "courier-1")
	require.Zero(t, bid.Progress.OtpAttempts)
	require.Equal(t, "9123456789", bid.Progress.RecipientMobile)
}

func TestSetRecipientValidatesMobile(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	engine := newTestEngine(repo, newFakeWallet(0), &captureNotifier{})

	for _, mobile := range []string{"", "12345", "98765432100", "98765abcde"} {
		err := engine.SetRecipient(context.Background(), "ship-1", "courier-1", mobile)
		require.True(t, IsCode(err, CodeInvalidArgument), "mobile %q", mobile)
	}
}

func TestVerifyOTPDeliversAndCreditsCourier(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	wallet := newFakeWallet(0)
	notifier := &captureNotifier{}
	engine := newTestEngine(repo, wallet, notifier)
	ctx := context.Background()

	require.NoError(t, engine.SetRecipient(ctx, "ship-1", "courier-1", "9876543210"))
	otp := storedBid(t, repo, "ship-1", "courier-1").Progress.OtpCode

	settled, err := engine.VerifyOTP(ctx, "ship-1", "courier-1", otp)
	require.NoError(t, err)

	require.Equal(t, models.ShipmentStatusDelivered, settled.Status)
	bid := settled.BidByCourier("courier-1")
	require.Equal(t, models.BidStatusDelivered, bid.Status)
	require.True(t, bid.Progress.OtpVerified)
	require.Equal(t, models.BidStatusDelivered, bid.Progress.DeliveryStatus)
	require.NotNil(t, bid.Progress.DeliveredAt)

	// Courier earns the bid price, not the surcharged total.
	require.Len(t, wallet.credits, 1)
	require.Equal(t, "courier-1", wallet.credits[0].userID)
	require.Equal(t, 100.0, wallet.credits[0].amount)
	require.Equal(t, "ship-1", wallet.credits[0].ref)

	require.Len(t, notifier.byType(models.EventShipmentDelivered), 1)
}

func TestVerifyOTPMismatchPersistsAttempt(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	wallet := newFakeWallet(0)
	engine := newTestEngine(repo, wallet, &captureNotifier{})
	ctx := context.Background()

	require.NoError(t, engine.SetRecipient(ctx, "ship-1", "courier-1", "9876543210"))
	otp := storedBid(t, repo, "ship-1", "courier-1").Progress.OtpCode
	wrong := "999999"
	if wrong == otp {
		wrong = "999998"
	}

	for i := 1; i <= 3; i++ {
		_, err := engine.VerifyOTP(ctx, "ship-1", "courier-1", wrong)
		require.True(t, IsCode(err, CodeInvalidOtp))
		require.Equal(t, i, storedBid(t, repo, "ship-1", "courier-1").Progress.OtpAttempts)
	}

	require.Empty(t, wallet.credits)
	stored, _ := repo.GetByID(ctx, "ship-1")
	require.Equal(t, models.ShipmentStatusInTransit, stored.Status)

	// The right code still works after failed attempts.
	_, err := engine.VerifyOTP(ctx, "ship-1", "courier-1", otp)
	require.NoError(t, err)
}

func TestVerifyOTPWithoutIssuedCode(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	engine := newTestEngine(repo, newFakeWallet(0), &captureNotifier{})

	_, err := engine.VerifyOTP(context.Background(), "ship-1", "courier-1", "123456")
	require.True(t, IsCode(err, CodeInvalidState))
}

func TestVerifyOTPFormatValidation(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	engine := newTestEngine(repo, newFakeWallet(0), &captureNotifier{})

	for _, otp := range []string{"", "12345", "1234567", "12345a"} {
		_, err := engine.VerifyOTP(context.Background(), "ship-1", "courier-1", otp)
		require.True(t, IsCode(err, CodeInvalidArgument), "otp %q", otp)
	}
}

func TestVerifyOTPIsPerCourier(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	engine := newTestEngine(repo, newFakeWallet(0), &captureNotifier{})
	ctx := context.Background()

	require.NoError(t, engine.SetRecipient(ctx, "ship-1", "courier-1", "9876543210"))
	otp := storedBid(t, repo, "ship-1", "courier-1").Progress.OtpCode

	// The losing courier cannot verify with the winner's code.
	_, err := engine.VerifyOTP(ctx, "ship-1", "courier-2", otp)
	require.True(t, IsCode(err, CodeConflict))
}

func TestDeliveryRequirementsAdvisory(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	engine := newTestEngine(repo, newFakeWallet(0), &captureNotifier{})
	ctx := context.Background()

	req, err := engine.DeliveryRequirements(ctx, "ship-1", "courier-1", "courier-1")
	require.NoError(t, err)
	require.False(t, req.Met)

	require.NoError(t, engine.UploadDeliveryImage(ctx, "ship-1", "courier-1", "img1", false))
	require.NoError(t, engine.UploadDeliveryImage(ctx, "ship-1", "courier-1", "img2", true))
	require.NoError(t, engine.SetRecipient(ctx, "ship-1", "courier-1", "9876543210"))
	otp := storedBid(t, repo, "ship-1", "courier-1").Progress.OtpCode
	_, err = engine.VerifyOTP(ctx, "ship-1", "courier-1", otp)
	require.NoError(t, err)

	req, err = engine.DeliveryRequirements(ctx, "ship-1", "courier-1", "courier-1")
	require.NoError(t, err)
	require.True(t, req.DeliveryImage)
	require.True(t, req.DeliveryImageWithBarcode)
	require.True(t, req.OtpVerified)
	require.True(t, req.Met)
}

func TestGetProgressPermissionsAndRedaction(t *testing.T) {
	repo := newMemShipmentRepo()
	seedSettledShipment(t, repo)
	engine := newTestEngine(repo, newFakeWallet(0), &captureNotifier{})
	ctx := context.Background()

	require.NoError(t, engine.SetRecipient(ctx, "ship-1", "courier-1", "9876543210"))

	// The courier and the owner may read; the code never leaves.
	for _, requester := range []string{"courier-1", "shipper-1"} {
		progress, err := engine.GetProgress(ctx, "ship-1", "courier-1", requester)
		require.NoError(t, err)
		require.Empty(t, progress.OtpCode)
		require.Equal(t, "9876543210", progress.RecipientMobile)
	}

	_, err := engine.GetProgress(ctx, "ship-1", "courier-1", "courier-2")
	require.True(t, IsCode(err, CodeForbidden))
}
