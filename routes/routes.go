package routes

import (
	"net/http"
	"time"

	"droply/handlers"
	"droply/middleware"
	"droply/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterShipmentRoutes registers shipment posting and lifecycle endpoints.
func RegisterShipmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/shipments")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("", hb.CreateShipmentHandler)
		api.GET("/open", hb.ListOpenShipmentsHandler)
		api.GET("/mine", hb.ListMyShipmentsHandler)
		api.GET("/:id", hb.GetShipmentHandler)
		api.DELETE("/:id", hb.CancelShipmentHandler)

		// Bid ledger.
		api.POST("/:id/bids", hb.SubmitBidHandler)
		api.GET("/:id/bids", hb.ListBidsHandler)
		api.PATCH("/:id/bids/price", hb.UpdateBidPriceHandler)

		// Settlement.
		api.POST("/:id/confirm", hb.ConfirmHandler)

		// Fulfillment.
		api.PUT("/:id/location", hb.UpdateLocationHandler)
		api.POST("/:id/delivery-image", hb.UploadImageHandler)
		api.POST("/:id/recipient", hb.SetRecipientHandler)
		api.POST("/:id/verify-otp", hb.VerifyOTPHandler)
		api.GET("/:id/requirements", hb.RequirementsHandler)
		api.GET("/:id/progress", hb.ProgressHandler)
	}
}

// RegisterPaymentRoutes registers gateway intent creation.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/payments")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/intent", hb.CreateIntentHandler)
	}
}

// RegisterWalletRoutes registers balance, withdrawal and payout endpoints.
func RegisterWalletRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/wallet")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.GET("", hb.GetWalletHandler)
		api.POST("/withdraw", hb.WithdrawHandler)
		api.PUT("/bank-account", hb.SetBankAccountHandler)
		api.PUT("/upi-handle", hb.SetUPIHandleHandler)
	}
}

// RegisterStorageRoutes registers proof photo upload, signed links and
// cleanup.
func RegisterStorageRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/storage")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/proof-photo", hb.UploadProofHandler)
		api.GET("/proof-photo/link", hb.ProofLinkHandler)
		api.DELETE("/proof-photo", hb.DeleteProofHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterShipmentRoutes(r, hb)
	RegisterPaymentRoutes(r, hb)
	RegisterWalletRoutes(r, hb)
	RegisterStorageRoutes(r, hb)
}
