package services

import "context"

// CheckoutParams describes what a checkout session is created for.
type CheckoutParams struct {
	ProductName string
	Amount      float64
	SuccessURL  string
	CancelURL   string
}

// CheckoutResult carries the provider identifiers that get persisted
// alongside the payment record.
type CheckoutResult struct {
	ProductID  string
	PriceID    string
	SessionID  string
	PaymentURL string
}

// PaymentProvider abstracts the payment gateway so the payment service
// can be tested without hitting the network.
type PaymentProvider interface {
	// CreateCheckout creates a product, a price and a hosted checkout
	// session for it, returning all provider identifiers.
	CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutResult, error)

	// SessionPaid reports whether the checkout session has been paid.
	SessionPaid(ctx context.Context, sessionID string) (bool, error)
}
