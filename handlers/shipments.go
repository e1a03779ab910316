package handlers

import (
	"net/http"

	"droply/middleware"
	"droply/services/delivery"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShipmentHandler exposes shipment posting and lifecycle endpoints.
type ShipmentHandler struct {
	Service delivery.ShipmentService
	Logger  *zap.Logger
}

func NewShipmentHandler(svc delivery.ShipmentService, logger *zap.Logger) *ShipmentHandler {
	return &ShipmentHandler{Service: svc, Logger: logger}
}

// CreateShipmentHandler posts a new parcel or order for bidding.
func (h *ShipmentHandler) CreateShipmentHandler(c *gin.Context) {
	var input delivery.CreateShipmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	input.OwnerID = middleware.CallerID(c)

	shipment, err := h.Service.CreateShipment(c.Request.Context(), input)
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shipment)
}

// GetShipmentHandler returns one shipment aggregate.
func (h *ShipmentHandler) GetShipmentHandler(c *gin.Context) {
	shipment, err := h.Service.GetShipment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

// ListOpenShipmentsHandler returns shipments still accepting bids.
func (h *ShipmentHandler) ListOpenShipmentsHandler(c *gin.Context) {
	shipments, err := h.Service.ListOpenShipments(c.Request.Context())
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipments": shipments})
}

// ListMyShipmentsHandler returns everything the caller has posted.
func (h *ShipmentHandler) ListMyShipmentsHandler(c *gin.Context) {
	shipments, err := h.Service.ListShipmentsByOwner(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipments": shipments})
}

// CancelShipmentHandler aborts an unsettled shipment.
func (h *ShipmentHandler) CancelShipmentHandler(c *gin.Context) {
	shipmentID := c.Param("id")
	if err := h.Service.CancelShipment(c.Request.Context(), shipmentID, middleware.CallerID(c)); err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled", "shipmentId": shipmentID})
}
