package delivery

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

// PaymentGateway creates payment intents at the external gateway. The core
// never trusts anything the gateway reports about a payment's validity; the
// caller-supplied signature is verified independently in Confirm.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount float64, currency string) (gatewayOrderID string, err error)
}

// StripeGateway implements PaymentGateway on Stripe PaymentIntents.
// stripe.Key is set globally at startup.
type StripeGateway struct {
	Logger *zap.Logger
}

// CreateIntent opens a payment intent for the given amount and returns its id.
func (g *StripeGateway) CreateIntent(ctx context.Context, amount float64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(amount * 100)), // smallest currency unit
		Currency: stripe.String(currency),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create payment intent: %w", err)
	}

	g.Logger.Info("payment intent created",
		zap.String("intentId", pi.ID),
		zap.Float64("amount", amount),
		zap.String("currency", currency))
	return pi.ID, nil
}
