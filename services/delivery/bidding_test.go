package delivery

import (
	"context"
	"testing"
	"time"

	"droply/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedShipment(t *testing.T, repo *memShipmentRepo, s *models.Shipment) *models.Shipment {
	t.Helper()
	if s.Status == "" {
		s.Status = models.ShipmentStatusOpen
	}
	if s.PayoutStatus == "" {
		s.PayoutStatus = models.PayoutStatusPending
	}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func newTestLedger(repo *memShipmentRepo) *DefaultBidLedger {
	return &DefaultBidLedger{Repo: repo, Logger: zap.NewNop()}
}

func TestSubmitBidFirstBidMovesShipmentToBidAccepted(t *testing.T) {
	repo := newMemShipmentRepo()
	seedShipment(t, repo, &models.Shipment{ID: "ship-1", OwnerID: "shipper-1", Title: "mugs"})
	ledger := newTestLedger(repo)

	bid, err := ledger.SubmitBid(context.Background(), SubmitBidInput{
		ShipmentID:    "ship-1",
		CourierID:     "courier-1",
		Vehicle:       "scooter",
		TentativeTime: time.Now().Add(2 * time.Hour).Format(time.RFC3339),
		Price:         120,
	})
	require.NoError(t, err)
	require.NotEmpty(t, bid.ID)
	require.Equal(t, models.BidStatusAccepted, bid.Status)

	stored, err := repo.GetByID(context.Background(), "ship-1")
	require.NoError(t, err)
	require.Equal(t, models.ShipmentStatusBidAccepted, stored.Status)
	require.Len(t, stored.Bids, 1)
}

func TestSubmitBidRejectsOwnShipment(t *testing.T) {
	repo := newMemShipmentRepo()
	seedShipment(t, repo, &models.Shipment{ID: "ship-1", OwnerID: "shipper-1"})
	ledger := newTestLedger(repo)

	_, err := ledger.SubmitBid(context.Background(), SubmitBidInput{
		ShipmentID: "ship-1",
		CourierID:  "shipper-1",
		Price:      50,
	})
	require.True(t, IsCode(err, CodeConflict))
}

func TestSubmitBidRejectsDuplicateLiveBid(t *testing.T) {
	repo := newMemShipmentRepo()
	seedShipment(t, repo, &models.Shipment{ID: "ship-1", OwnerID: "shipper-1"})
	ledger := newTestLedger(repo)

	_, err := ledger.SubmitBid(context.Background(), SubmitBidInput{ShipmentID: "ship-1", CourierID: "courier-1", Price: 100})
	require.NoError(t, err)

	_, err = ledger.SubmitBid(context.Background(), SubmitBidInput{ShipmentID: "ship-1", CourierID: "courier-1", Price: 90})
	require.True(t, IsCode(err, CodeConflict))
}

func TestSubmitBidAllowedAfterOwnBidCancelled(t *testing.T) {
	repo := newMemShipmentRepo()
	seedShipment(t, repo, &models.Shipment{
		ID:      "ship-1",
		OwnerID: "shipper-1",
		Status:  models.ShipmentStatusBidAccepted,
		Bids: []models.Bid{
			{ID: "bid-1", CourierID: "courier-1", Price: 100, Status: models.BidStatusCancelled},
		},
	})
	ledger := newTestLedger(repo)

	bid, err := ledger.SubmitBid(context.Background(), SubmitBidInput{ShipmentID: "ship-1", CourierID: "courier-1", Price: 80})
	require.NoError(t, err)
	require.NotEqual(t, "bid-1", bid.ID)

	stored, _ := repo.GetByID(context.Background(), "ship-1")
	require.Len(t, stored.Bids, 2)
}

func TestSubmitBidRejectsSettledShipment(t *testing.T) {
	repo := newMemShipmentRepo()
	seedShipment(t, repo, &models.Shipment{ID: "ship-1", OwnerID: "shipper-1", Status: models.ShipmentStatusInTransit})
	ledger := newTestLedger(repo)

	_, err := ledger.SubmitBid(context.Background(), SubmitBidInput{ShipmentID: "ship-1", CourierID: "courier-1", Price: 100})
	require.True(t, IsCode(err, CodeInvalidState))
}

func TestSubmitBidInputValidation(t *testing.T) {
	repo := newMemShipmentRepo()
	seedShipment(t, repo, &models.Shipment{ID: "ship-1", OwnerID: "shipper-1"})
	ledger := newTestLedger(repo)

	_, err := ledger.SubmitBid(context.Background(), SubmitBidInput{ShipmentID: "ship-1", CourierID: "courier-1", Price: 0})
	require.True(t, IsCode(err, CodeInvalidArgument))

	_, err = ledger.SubmitBid(context.Background(), SubmitBidInput{
		ShipmentID: "ship-1", CourierID: "courier-1", Price: 100, TentativeTime: "tomorrow-ish",
	})
	require.True(t, IsCode(err, CodeInvalidArgument))
}

func TestSubmitBidRetriesAfterVersionConflict(t *testing.T) {
	repo := newMemShipmentRepo()
	seedShipment(t, repo, &models.Shipment{ID: "ship-1", OwnerID: "shipper-1"})
	ledger := newTestLedger(repo)

	// A concurrent writer wins the first version race; the ledger must
	// re-read and still succeed.
	repo.failNextCAS = 1

	_, err := ledger.SubmitBid(context.Background(), SubmitBidInput{ShipmentID: "ship-1", CourierID: "courier-1", Price: 100})
	require.NoError(t, err)
}

func TestUpdateBidPricePermissions(t *testing.T) {
	repo := newMemShipmentRepo()
	seedShipment(t, repo, &models.Shipment{
		ID:      "ship-1",
		OwnerID: "shipper-1",
		Status:  models.ShipmentStatusBidAccepted,
		Bids: []models.Bid{
			{ID: "bid-1", CourierID: "courier-1", Price: 100, Status: models.BidStatusAccepted},
		},
	})
	ledger := newTestLedger(repo)
	ctx := context.Background()

	// The courier may reprice their own bid.
	require.NoError(t, ledger.UpdateBidPrice(ctx, "ship-1", "courier-1", 90, "courier-1"))

	// The shipment owner may negotiate it too.
	require.NoError(t, ledger.UpdateBidPrice(ctx, "ship-1", "courier-1", 85, "shipper-1"))

	// Anyone else may not.
	err := ledger.UpdateBidPrice(ctx, "ship-1", "courier-1", 10, "courier-2")
	require.True(t, IsCode(err, CodeForbidden))

	stored, _ := repo.GetByID(ctx, "ship-1")
	require.Equal(t, 85.0, stored.Bids[0].Price)
}

func TestUpdateBidPriceRejectsPaidShipment(t *testing.T) {
	repo := newMemShipmentRepo()
	seedShipment(t, repo, &models.Shipment{
		ID:           "ship-1",
		OwnerID:      "shipper-1",
		Status:       models.ShipmentStatusInTransit,
		PayoutStatus: models.PayoutStatusCompleted,
		Bids: []models.Bid{
			{ID: "bid-1", CourierID: "courier-1", Price: 100, Status: models.BidStatusInTransit},
		},
	})
	ledger := newTestLedger(repo)

	err := ledger.UpdateBidPrice(context.Background(), "ship-1", "courier-1", 90, "courier-1")
	require.True(t, IsCode(err, CodeConflict))
}

func TestListBidsReturnsCopyInOrder(t *testing.T) {
	repo := newMemShipmentRepo()
	seedShipment(t, repo, &models.Shipment{
		ID:      "ship-1",
		OwnerID: "shipper-1",
		Bids: []models.Bid{
			{ID: "bid-1", CourierID: "courier-1", Price: 100, Status: models.BidStatusAccepted},
			{ID: "bid-2", CourierID: "courier-2", Price: 95, Status: models.BidStatusAccepted},
		},
	})
	ledger := newTestLedger(repo)

	bids, err := ledger.ListBids(context.Background(), "ship-1")
	require.NoError(t, err)
	require.Equal(t, []string{"bid-1", "bid-2"}, []string{bids[0].ID, bids[1].ID})

	bids[0].Price = 1
	stored, _ := repo.GetByID(context.Background(), "ship-1")
	require.Equal(t, 100.0, stored.Bids[0].Price)
}
