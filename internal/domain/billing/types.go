// Package billing holds payment types exchanged with the payment processor.
package billing

import (
	"errors"
	"strings"
)

// IntentStatusSucceeded is the processor status for a captured payment.
const IntentStatusSucceeded = "succeeded"

// MetadataUserID is the intent metadata key binding a payment to a profile.
const MetadataUserID = "user_id"

// ErrIntentNotFound is returned by gateways when the processor does not know an intent id.
var ErrIntentNotFound = errors.New("payment intent not found")

// Price is a one-time charge in minor units.
type Price struct {
	Amount   int64
	Currency string
}

// PaymentIntent is the subset of a processor payment intent we rely on.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64 // minor units
	Currency     string
	UserID       string // from metadata
}

// Succeeded reports whether the processor captured the payment.
func (p PaymentIntent) Succeeded() bool { return p.Status == IntentStatusSucceeded }

// Covers reports whether the intent paid at least price in the same currency.
func (p PaymentIntent) Covers(price Price) bool {
	return p.Amount >= price.Amount && strings.EqualFold(p.Currency, price.Currency)
}

// CreateIntentInput describes a new one-time charge.
type CreateIntentInput struct {
	UserID   string
	Amount   int64
	Currency string
}
