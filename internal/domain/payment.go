package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentState is the orchestrator's current position in a paid
// booking attempt.
type PaymentState string

const (
	PaymentStateIdle                  PaymentState = "IDLE"
	PaymentStateFetchingIntent        PaymentState = "FETCHING_INTENT"
	PaymentStateAwaitingPaymentMethod PaymentState = "AWAITING_PAYMENT_METHOD"
	PaymentStateConfirming            PaymentState = "CONFIRMING"
	PaymentStateSucceeded             PaymentState = "SUCCEEDED"
	PaymentStateFailed                PaymentState = "FAILED"
	PaymentStateCanceled              PaymentState = "CANCELED"
)

// ExecutionContext selects how the payment method is collected.
type ExecutionContext string

const (
	// ContextEmbedded drives an in-app payment sheet. The confirm step
	// happens inside the sheet, so the client reports the outcome back.
	ContextEmbedded ExecutionContext = "EMBEDDED"

	// ContextRedirect sends the attendee to the provider's hosted page
	// and finishes through the return endpoint.
	ContextRedirect ExecutionContext = "REDIRECT"
)

// PaymentAttempt tracks one paid booking attempt across requests.
type PaymentAttempt struct {
	ID      uint `json:"id"`
	EventID uint `json:"event_id"`
	UserID  uint `json:"user_id"`

	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`

	State   PaymentState     `json:"state"`
	Context ExecutionContext `json:"context"`

	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"-"`

	// FailureMessage holds the provider's message when State is FAILED.
	FailureMessage string `json:"failure_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether the attempt can no longer move.
func (a PaymentAttempt) Terminal() bool {
	switch a.State {
	case PaymentStateSucceeded, PaymentStateFailed, PaymentStateCanceled:
		return true
	}
	return false
}
