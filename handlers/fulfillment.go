package handlers

import (
	"net/http"

	"droply/middleware"
	"droply/services/delivery"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FulfillmentHandler exposes the proof-of-delivery endpoints. Every mutating
// route acts on behalf of the authenticated courier; reads are also open to
// the shipment owner.
type FulfillmentHandler struct {
	Engine delivery.FulfillmentEngine
	Logger *zap.Logger
}

func NewFulfillmentHandler(engine delivery.FulfillmentEngine, logger *zap.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{Engine: engine, Logger: logger}
}

// UpdateLocationHandler records the courier's current position.
func (h *FulfillmentHandler) UpdateLocationHandler(c *gin.Context) {
	var input struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	err := h.Engine.UpdateLocation(c.Request.Context(), c.Param("id"), middleware.CallerID(c), input.Lat, input.Lng)
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "location updated"})
}

// UploadImageHandler stores a proof photo reference against the bid.
func (h *FulfillmentHandler) UploadImageHandler(c *gin.Context) {
	var input struct {
		ImageRef    string `json:"imageRef"`
		WithBarcode bool   `json:"withBarcode"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	err := h.Engine.UploadDeliveryImage(c.Request.Context(), c.Param("id"), middleware.CallerID(c), input.ImageRef, input.WithBarcode)
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "image stored", "withBarcode": input.WithBarcode})
}

// SetRecipientHandler records the recipient's mobile and issues their OTP.
func (h *FulfillmentHandler) SetRecipientHandler(c *gin.Context) {
	var input struct {
		RecipientMobile string `json:"recipientMobile"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	err := h.Engine.SetRecipient(c.Request.Context(), c.Param("id"), middleware.CallerID(c), input.RecipientMobile)
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "OTP sent to recipient"})
}

// VerifyOTPHandler submits the recipient's code; a match completes delivery.
func (h *FulfillmentHandler) VerifyOTPHandler(c *gin.Context) {
	var input struct {
		Otp string `json:"otp"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	shipment, err := h.Engine.VerifyOTP(c.Request.Context(), c.Param("id"), middleware.CallerID(c), input.Otp)
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

// RequirementsHandler reports which proof-of-delivery gates are satisfied.
func (h *FulfillmentHandler) RequirementsHandler(c *gin.Context) {
	courierID := c.Query("courierId")
	requesterID := middleware.CallerID(c)
	if courierID == "" {
		courierID = requesterID
	}

	req, err := h.Engine.DeliveryRequirements(c.Request.Context(), c.Param("id"), courierID, requesterID)
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// ProgressHandler returns the bid's delivery progress.
func (h *FulfillmentHandler) ProgressHandler(c *gin.Context) {
	courierID := c.Query("courierId")
	requesterID := middleware.CallerID(c)
	if courierID == "" {
		courierID = requesterID
	}

	progress, err := h.Engine.GetProgress(c.Request.Context(), c.Param("id"), courierID, requesterID)
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
