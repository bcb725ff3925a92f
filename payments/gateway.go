// Package payments talks to the card payment gateway.
package payments

import (
	"context"
	"errors"
	"fmt"

	"restaurant-ordering-api/logger"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// IntentSucceeded is the only gateway status that settles a payment.
const IntentSucceeded = "succeeded"

var ErrGatewayAPI = errors.New("payment gateway error")

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64 // minor units
	Currency     string
}

type Refund struct {
	ID     string
	Amount int64
	Status string
}

// Gateway is an external processor that works in minor units and opaque
// transaction ids.
type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
	Refund(ctx context.Context, intentID string, amount int64) (*Refund, error)
}

// StripeGateway handles integration with Stripe
type StripeGateway struct {
	client *client.API
	log    *logger.Logger
}

func NewStripeGateway(secretKey string, log *logger.Logger) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("%w: STRIPE_SECRET_KEY not set", ErrGatewayAPI)
	}
	return newStripeGateway(client.New(secretKey, nil), log), nil
}

func newStripeGateway(api *client.API, log *logger.Logger) *StripeGateway {
	return &StripeGateway{client: api, log: log}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: metadata,
	}

	pi, err := g.client.PaymentIntents.New(params)
	if err != nil {
		g.log.Error("stripe_create_intent", "", "failed to create payment intent", err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayAPI, err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) RetrieveIntent(ctx context.Context, id string) (*Intent, error) {
	pi, err := g.client.PaymentIntents.Get(id, &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		g.log.Error("stripe_retrieve_intent", "", "failed to retrieve payment intent", err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayAPI, err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) Refund(ctx context.Context, intentID string, amount int64) (*Refund, error) {
	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(intentID),
		Amount:        stripe.Int64(amount),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}

	r, err := g.client.Refunds.New(params)
	if err != nil {
		g.log.Error("stripe_refund", "", "refund failed", err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayAPI, err)
	}
	return &Refund{ID: r.ID, Amount: r.Amount, Status: string(r.Status)}, nil
}

func toIntent(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}
}
