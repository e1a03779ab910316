// File: droply/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"droply/config"
	"droply/cron"
	"droply/database"
	shipmentRepoPkg "droply/database/repository/shipment"
	walletRepoPkg "droply/database/repository/wallet"
	"droply/handlers"
	"droply/middleware"
	"droply/routes"
	"droply/services/delivery"
	"droply/services/directory"
	"droply/services/notification"
	"droply/services/storage"
	"droply/services/wallet"
	"droply/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	storageService, err := storage.NewCloudinaryStorageFromParams(
		config.AppConfig.CloudinaryCloudName,
		config.AppConfig.CloudinaryAPIKey,
		config.AppConfig.CloudinaryAPISecret,
	)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize proof photo storage: %v", err)
	}

	// Notifications are best effort: without a broker the marketplace still
	// settles and delivers, it just doesn't tell anyone out of band.
	var notifier notification.Notifier
	rabbit, err := notification.NewRabbitNotifier(config.AppConfig.RabbitMQURL, logger)
	if err != nil {
		logger.Sugar().Warnf("main: RabbitMQ unavailable, events will be dropped: %v", err)
		notifier = notification.NoopNotifier{}
	} else {
		notifier = rabbit
		defer rabbit.Close()
	}

	probes := map[string]utils.Probe{
		"mongo":     func(ctx context.Context) error { return database.MongoClient.Ping(ctx, nil) },
		"cache":     func(ctx context.Context) error { return utils.GetCacheClient().Ping(ctx).Err() },
		"authCache": func(ctx context.Context) error { return utils.GetAuthCacheClient().Ping(ctx).Err() },
	}
	if rabbit != nil {
		probes["events"] = rabbit.Healthy
	}
	utils.StartHealthMonitor(probes)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// Repositories.
	shipmentRepo := shipmentRepoPkg.NewMongoShipmentRepo()
	walletRepo := walletRepoPkg.NewMongoWalletRepo()
	txnRunner := database.NewMongoTxnRunner(database.MongoClient)

	// Services.
	directoryClient := directory.NewHTTPDirectory(
		config.AppConfig.DirectoryBaseURL,
		utils.GetCacheClient(),
		logger,
	)
	walletService := wallet.NewWalletService(walletRepo, logger, config.AppConfig.MinWithdrawal)

	shipmentService := &delivery.DefaultShipmentService{
		Repo:      shipmentRepo,
		Directory: directoryClient,
		Notifier:  notifier,
		Expiry:    cron.NewExpiryScheduler(),
		Logger:    logger,
	}
	cron.InitExpiryWorker(shipmentService)
	bidLedger := &delivery.DefaultBidLedger{
		Repo:   shipmentRepo,
		Logger: logger,
	}
	gateway := &delivery.StripeGateway{Logger: logger}
	coordinator := &delivery.DefaultSettlementCoordinator{
		Repo:            shipmentRepo,
		Wallet:          walletService,
		Txn:             txnRunner,
		Notifier:        notifier,
		Logger:          logger,
		GatewaySecret:   config.AppConfig.PaymentGatewaySecret,
		Surcharge:       config.AppConfig.DeliverySurcharge,
		TestPaymentMode: config.AppConfig.TestPaymentMode,
	}
	fulfillment := &delivery.DefaultFulfillmentEngine{
		Repo:     shipmentRepo,
		Wallet:   walletService,
		Txn:      txnRunner,
		Notifier: notifier,
		Logger:   logger,
	}

	shipmentHandler := handlers.NewShipmentHandler(shipmentService, logger)
	bidHandler := handlers.NewBidHandler(bidLedger, logger)
	settlementHandler := handlers.NewSettlementHandler(coordinator, gateway, logger)
	fulfillmentHandler := handlers.NewFulfillmentHandler(fulfillment, logger)
	walletHandler := handlers.NewWalletHandler(walletService, logger)
	storageHandler := handlers.NewStorageHandler(storageService, logger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		CreateShipmentHandler:    shipmentHandler.CreateShipmentHandler,
		GetShipmentHandler:       shipmentHandler.GetShipmentHandler,
		ListOpenShipmentsHandler: shipmentHandler.ListOpenShipmentsHandler,
		ListMyShipmentsHandler:   shipmentHandler.ListMyShipmentsHandler,
		CancelShipmentHandler:    shipmentHandler.CancelShipmentHandler,

		SubmitBidHandler:      bidHandler.SubmitBidHandler,
		UpdateBidPriceHandler: bidHandler.UpdateBidPriceHandler,
		ListBidsHandler:       bidHandler.ListBidsHandler,

		CreateIntentHandler: settlementHandler.CreateIntentHandler,
		ConfirmHandler:      settlementHandler.ConfirmHandler,

		UpdateLocationHandler: fulfillmentHandler.UpdateLocationHandler,
		UploadImageHandler:    fulfillmentHandler.UploadImageHandler,
		SetRecipientHandler:   fulfillmentHandler.SetRecipientHandler,
		VerifyOTPHandler:      fulfillmentHandler.VerifyOTPHandler,
		RequirementsHandler:   fulfillmentHandler.RequirementsHandler,
		ProgressHandler:       fulfillmentHandler.ProgressHandler,

		GetWalletHandler:      walletHandler.GetWalletHandler,
		WithdrawHandler:       walletHandler.WithdrawHandler,
		SetBankAccountHandler: walletHandler.SetBankAccountHandler,
		SetUPIHandleHandler:   walletHandler.SetUPIHandleHandler,

		UploadProofHandler: storageHandler.UploadProofHandler,
		ProofLinkHandler:   storageHandler.ProofLinkHandler,
		DeleteProofHandler: storageHandler.DeleteProofHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
