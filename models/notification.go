package models

import "time"

// Notification event types published to the fanout exchange.
const (
	EventBidCancelled      = "bid_cancelled"
	EventShipmentSettled   = "shipment_settled"
	EventShipmentDelivered = "shipment_delivered"
	EventOTPDispatch       = "otp_dispatch"
)

// Event is the envelope for every message published by the notification
// service. Payload keys depend on the event type.
type Event struct {
	Type       string            `json:"type"`
	ShipmentID string            `json:"shipmentId"`
	UserID     string            `json:"userId,omitempty"`
	Payload    map[string]string `json:"payload,omitempty"`
	EmittedAt  time.Time         `json:"emittedAt"`
}
