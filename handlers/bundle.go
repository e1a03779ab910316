// File: droply/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct for route
// registration.
type HandlerBundle struct {
	// Shipment endpoints
	CreateShipmentHandler    gin.HandlerFunc
	GetShipmentHandler       gin.HandlerFunc
	ListOpenShipmentsHandler gin.HandlerFunc
	ListMyShipmentsHandler   gin.HandlerFunc
	CancelShipmentHandler    gin.HandlerFunc

	// Bid ledger endpoints
	SubmitBidHandler      gin.HandlerFunc
	UpdateBidPriceHandler gin.HandlerFunc
	ListBidsHandler       gin.HandlerFunc

	// Settlement endpoints
	CreateIntentHandler gin.HandlerFunc
	ConfirmHandler      gin.HandlerFunc

	// Fulfillment endpoints
	UpdateLocationHandler gin.HandlerFunc
	UploadImageHandler    gin.HandlerFunc
	SetRecipientHandler   gin.HandlerFunc
	VerifyOTPHandler      gin.HandlerFunc
	RequirementsHandler   gin.HandlerFunc
	ProgressHandler       gin.HandlerFunc

	// Wallet endpoints
	GetWalletHandler      gin.HandlerFunc
	WithdrawHandler       gin.HandlerFunc
	SetBankAccountHandler gin.HandlerFunc
	SetUPIHandleHandler   gin.HandlerFunc

	// Storage endpoints
	UploadProofHandler gin.HandlerFunc
	ProofLinkHandler   gin.HandlerFunc
	DeleteProofHandler gin.HandlerFunc
}
