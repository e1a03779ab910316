package handlers

import (
	"net/http"

	"droply/middleware"
	"droply/services/delivery"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SettlementHandler exposes payment intent creation and the confirm-and-pay
// operation.
type SettlementHandler struct {
	Coordinator delivery.SettlementCoordinator
	Gateway     delivery.PaymentGateway
	Logger      *zap.Logger
}

func NewSettlementHandler(coordinator delivery.SettlementCoordinator, gateway delivery.PaymentGateway, logger *zap.Logger) *SettlementHandler {
	return &SettlementHandler{Coordinator: coordinator, Gateway: gateway, Logger: logger}
}

// CreateIntentHandler opens a payment intent at the gateway for the given
// amount, ahead of a gateway-funded confirmation.
func (h *SettlementHandler) CreateIntentHandler(c *gin.Context) {
	var input struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}
	if input.Currency == "" {
		input.Currency = "inr"
	}

	orderID, err := h.Gateway.CreateIntent(c.Request.Context(), input.Amount, input.Currency)
	if err != nil {
		h.Logger.Error("failed to create payment intent", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment gateway unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"gatewayOrderId": orderID})
}

// ConfirmHandler settles the shipment on the chosen courier's bid.
func (h *SettlementHandler) ConfirmHandler(c *gin.Context) {
	var input delivery.ConfirmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	input.ShipmentID = c.Param("id")
	input.RequesterID = middleware.CallerID(c)

	shipment, err := h.Coordinator.Confirm(c.Request.Context(), input)
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}
