package models

import "time"

// Shipment kinds. A parcel is a standalone item posted for delivery; an order
// is a shop purchase that needs transporting. Both run through the same
// bidding and fulfillment engine.
const (
	ShipmentKindParcel = "parcel"
	ShipmentKindOrder  = "order"
)

// Shipment status values.
const (
	ShipmentStatusOpen        = "open"
	ShipmentStatusBidAccepted = "bid-accepted"
	ShipmentStatusInTransit   = "in-transit"
	ShipmentStatusDelivered   = "delivered"
	ShipmentStatusCancelled   = "cancelled"
)

// Payout status values.
const (
	PayoutStatusPending   = "pending"
	PayoutStatusCompleted = "completed"
)

// Bid status values.
const (
	BidStatusAccepted  = "accepted"
	BidStatusInTransit = "in-transit"
	BidStatusDelivered = "delivered"
	BidStatusCancelled = "cancelled"
)

// Shipment is the aggregate root: one document embedding all its bids, each
// bid embedding its delivery progress. All mutations replace the document
// through a version-guarded write.
type Shipment struct {
	ID             string         `bson:"id" json:"id"`
	Kind           string         `bson:"kind" json:"kind"` // "parcel" or "order"
	OwnerID        string         `bson:"ownerId" json:"ownerId"`
	Title          string         `bson:"title" json:"title"`
	DeclaredValue  float64        `bson:"declaredValue" json:"declaredValue"`
	WeightClass    string         `bson:"weightClass" json:"weightClass"` // e.g. "small", "medium", "heavy"
	PickupAddrID   string         `bson:"pickupAddrId" json:"pickupAddrId"`
	DropAddrID     string         `bson:"dropAddrId" json:"dropAddrId"`
	Status         string         `bson:"status" json:"status"`
	PayoutStatus   string         `bson:"payoutStatus" json:"payoutStatus"`
	ConfirmedBidID string         `bson:"confirmedBidId,omitempty" json:"confirmedBidId,omitempty"`
	Payment        *PaymentRecord `bson:"payment,omitempty" json:"payment,omitempty"`
	Bids           []Bid          `bson:"bids" json:"bids"`
	Version        int64          `bson:"version" json:"-"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// Bid is one courier's offer against a shipment. Bids are never removed, only
// transitioned to cancelled.
type Bid struct {
	ID            string           `bson:"id" json:"id"`
	CourierID     string           `bson:"courierId" json:"courierId"`
	Vehicle       string           `bson:"vehicle" json:"vehicle"`
	TentativeTime time.Time        `bson:"tentativeTime" json:"tentativeTime"`
	Price         float64          `bson:"price" json:"price"`
	Status        string           `bson:"status" json:"status"`
	Progress      DeliveryProgress `bson:"progress" json:"progress"`
	CreatedAt     time.Time        `bson:"createdAt" json:"createdAt"`
}

// GeoPoint is a coordinate pair with the time it was reported.
type GeoPoint struct {
	Lat        float64   `bson:"lat" json:"lat"`
	Lng        float64   `bson:"lng" json:"lng"`
	ReportedAt time.Time `bson:"reportedAt" json:"reportedAt"`
}

// DeliveryProgress tracks the proof-of-delivery sequence for a confirmed bid.
type DeliveryProgress struct {
	DeliveryStatus      string     `bson:"deliveryStatus,omitempty" json:"deliveryStatus,omitempty"`
	CurrentLocation     *GeoPoint  `bson:"currentLocation,omitempty" json:"currentLocation,omitempty"`
	DeliveryImage       string     `bson:"deliveryImage,omitempty" json:"deliveryImage,omitempty"`
	DeliveryImageWithBC string     `bson:"deliveryImageWithBarcode,omitempty" json:"deliveryImageWithBarcode,omitempty"`
	BarcodeScanned      bool       `bson:"barcodeScanned" json:"barcodeScanned"`
	BarcodeData         string     `bson:"barcodeData,omitempty" json:"barcodeData,omitempty"`
	RecipientMobile     string     `bson:"recipientMobile,omitempty" json:"recipientMobile,omitempty"`
	OtpCode             string     `bson:"otpCode,omitempty" json:"-"`
	OtpVerified         bool       `bson:"otpVerified" json:"otpVerified"`
	OtpAttempts         int        `bson:"otpAttempts" json:"otpAttempts"`
	DeliveredAt         *time.Time `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
}

// PaymentRecord is written once by the settlement coordinator and never
// mutated afterwards.
type PaymentRecord struct {
	GatewayOrderID   string    `bson:"gatewayOrderId" json:"gatewayOrderId"`
	GatewayPaymentID string    `bson:"gatewayPaymentId" json:"gatewayPaymentId"`
	Signature        string    `bson:"signature" json:"signature"`
	Method           string    `bson:"method" json:"method"` // "gateway" or "wallet"
	Amount           float64   `bson:"amount" json:"amount"`
	PaidAt           time.Time `bson:"paidAt" json:"paidAt"`
}

// BidByCourier returns the bid placed by the given courier, or nil.
func (s *Shipment) BidByCourier(courierID string) *Bid {
	for i := range s.Bids {
		if s.Bids[i].CourierID == courierID {
			return &s.Bids[i]
		}
	}
	return nil
}

// ConfirmedBid returns the settled bid, or nil if the shipment is unsettled.
func (s *Shipment) ConfirmedBid() *Bid {
	if s.ConfirmedBidID == "" {
		return nil
	}
	for i := range s.Bids {
		if s.Bids[i].ID == s.ConfirmedBidID {
			return &s.Bids[i]
		}
	}
	return nil
}
