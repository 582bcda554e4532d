package services

import (
	"context"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider implements PaymentProvider against the Stripe API.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider creates a Stripe-backed payment provider
func NewStripeProvider(apiKey string) *StripeProvider {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &StripeProvider{api: api}
}

// CreateCheckout runs the product -> price -> session chain. Amounts are
// converted to minor units as Stripe expects.
func (s *StripeProvider) CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutResult, error) {
	productParams := &stripe.ProductParams{
		Name: stripe.String(params.ProductName),
	}
	productParams.Context = ctx

	product, err := s.api.Products.New(productParams)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to create product: %w", err)
	}

	priceParams := &stripe.PriceParams{
		Product:    stripe.String(product.ID),
		UnitAmount: stripe.Int64(int64(math.Round(params.Amount * 100))),
		Currency:   stripe.String(string(stripe.CurrencyUSD)),
	}
	priceParams.Context = ctx

	price, err := s.api.Prices.New(priceParams)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to create price: %w", err)
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(price.ID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	sessionParams.Context = ctx

	session, err := s.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	return &CheckoutResult{
		ProductID:  product.ID,
		PriceID:    price.ID,
		SessionID:  session.ID,
		PaymentURL: session.URL,
	}, nil
}

// SessionPaid retrieves the checkout session and reports payment state
func (s *StripeProvider) SessionPaid(ctx context.Context, sessionID string) (bool, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	session, err := s.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return false, fmt.Errorf("stripe: failed to retrieve session %s: %w", sessionID, err)
	}

	return session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid, nil
}
