package delivery

import (
	"context"

	"droply/models"
)

// CreateShipmentInput is the shipper's posting of a parcel or shop order.
type CreateShipmentInput struct {
	Kind          string  `json:"kind"`
	OwnerID       string  `json:"-"`
	Title         string  `json:"title"`
	DeclaredValue float64 `json:"declaredValue"`
	WeightClass   string  `json:"weightClass"`
	PickupAddrID  string  `json:"pickupAddrId"`
	DropAddrID    string  `json:"dropAddrId"`
}

// SubmitBidInput is a courier's offer against an open shipment.
type SubmitBidInput struct {
	ShipmentID    string  `json:"-"`
	CourierID     string  `json:"-"`
	Vehicle       string  `json:"vehicle"`
	TentativeTime string  `json:"tentativeTime"` // RFC 3339
	Price         float64 `json:"price"`
}

// Payment methods accepted by the settlement coordinator.
const (
	PaymentMethodGateway = "gateway"
	PaymentMethodWallet  = "wallet"
)

// ConfirmInput settles a shipment on exactly one bid. For gateway payments
// the caller supplies the gateway's ids and signature; for wallet payments
// the shipper's wallet is debited instead.
type ConfirmInput struct {
	ShipmentID       string `json:"-"`
	RequesterID      string `json:"-"`
	CourierID        string `json:"courierId"`
	Method           string `json:"method"`
	GatewayOrderID   string `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string `json:"gatewayPaymentId,omitempty"`
	Signature        string `json:"signature,omitempty"`
}

// DeliveryRequirements is the advisory readiness snapshot for a confirmed
// bid. Computing it never mutates state.
type DeliveryRequirements struct {
	DeliveryImage            bool `json:"deliveryImage"`
	DeliveryImageWithBarcode bool `json:"deliveryImageWithBarcode"`
	OtpVerified              bool `json:"otpVerified"`
	Met                      bool `json:"deliveryRequirementsMet"`
}

// ShipmentService covers shipment-level CRUD around the bidding core.
type ShipmentService interface {
	CreateShipment(ctx context.Context, input CreateShipmentInput) (*models.Shipment, error)
	GetShipment(ctx context.Context, id string) (*models.Shipment, error)
	ListOpenShipments(ctx context.Context) ([]models.Shipment, error)
	ListShipmentsByOwner(ctx context.Context, ownerID string) ([]models.Shipment, error)
	CancelShipment(ctx context.Context, shipmentID, requesterID string) error
	ExpireShipment(ctx context.Context, shipmentID string) error
}

// BidLedger owns the ordered collection of competing bids on a shipment.
type BidLedger interface {
	SubmitBid(ctx context.Context, input SubmitBidInput) (*models.Bid, error)
	UpdateBidPrice(ctx context.Context, shipmentID, courierID string, newPrice float64, requesterID string) error
	ListBids(ctx context.Context, shipmentID string) ([]models.Bid, error)
}

// SettlementCoordinator is the atomic confirm-and-pay operation: exactly one
// bid wins, is paid, and every other bid is cancelled.
type SettlementCoordinator interface {
	Confirm(ctx context.Context, input ConfirmInput) (*models.Shipment, error)
}

// FulfillmentEngine advances a confirmed bid through the proof-of-delivery
// sequence. Every call rechecks the bid's status so an upload racing a
// cancellation fails instead of landing on a dead bid.
type FulfillmentEngine interface {
	UpdateLocation(ctx context.Context, shipmentID, courierID string, lat, lng float64) error
	UploadDeliveryImage(ctx context.Context, shipmentID, courierID, imageRef string, withBarcode bool) error
	SetRecipient(ctx context.Context, shipmentID, courierID, recipientMobile string) error
	VerifyOTP(ctx context.Context, shipmentID, courierID, submittedOTP string) (*models.Shipment, error)
	DeliveryRequirements(ctx context.Context, shipmentID, courierID, requesterID string) (*DeliveryRequirements, error)
	GetProgress(ctx context.Context, shipmentID, courierID, requesterID string) (*models.DeliveryProgress, error)
}
