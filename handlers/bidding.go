package handlers

import (
	"net/http"

	"droply/middleware"
	"droply/services/delivery"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BidHandler exposes the bid ledger endpoints.
type BidHandler struct {
	Ledger delivery.BidLedger
	Logger *zap.Logger
}

func NewBidHandler(ledger delivery.BidLedger, logger *zap.Logger) *BidHandler {
	return &BidHandler{Ledger: ledger, Logger: logger}
}

// SubmitBidHandler lets a courier offer a price and time for a shipment.
func (h *BidHandler) SubmitBidHandler(c *gin.Context) {
	var input delivery.SubmitBidInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	input.ShipmentID = c.Param("id")
	input.CourierID = middleware.CallerID(c)

	bid, err := h.Ledger.SubmitBid(c.Request.Context(), input)
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bid)
}

// UpdateBidPriceHandler changes a pending bid's price. The bidding courier
// adjusts their own bid by omitting courierId; the owner targets a specific
// courier's bid.
func (h *BidHandler) UpdateBidPriceHandler(c *gin.Context) {
	var input struct {
		CourierID string  `json:"courierId"`
		NewPrice  float64 `json:"newPrice"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	requesterID := middleware.CallerID(c)
	courierID := input.CourierID
	if courierID == "" {
		courierID = requesterID
	}

	err := h.Ledger.UpdateBidPrice(c.Request.Context(), c.Param("id"), courierID, input.NewPrice, requesterID)
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated", "newPrice": input.NewPrice})
}

// ListBidsHandler returns a shipment's bids in submission order.
func (h *BidHandler) ListBidsHandler(c *gin.Context) {
	bids, err := h.Ledger.ListBids(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bids": bids})
}
