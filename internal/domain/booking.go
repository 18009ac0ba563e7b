package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID      uint `json:"id"`
	EventID uint `json:"event_id"`
	UserID  uint `json:"user_id"`

	Quantity int           `json:"quantity"`
	Status   BookingStatus `json:"status"`

	// TotalPrice is what the attendee actually paid, in the event's
	// currency. Zero for free events and reservations. FeePaid is the
	// processing-fee portion of it.
	PricePerItem decimal.Decimal `json:"price_per_item"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	FeePaid      decimal.Decimal `json:"fee_paid"`
	Currency     string          `json:"currency"`

	// ConfirmationCode is the six digit code shown at the door.
	ConfirmationCode string `json:"confirmation_code"`
	CheckedIn        bool   `json:"checked_in"`

	// PaymentIntentID links a paid booking back to its payment. Empty
	// for free bookings.
	PaymentIntentID string `json:"payment_intent_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingConfirmation is what the client renders after a successful
// booking, including where to navigate next.
type BookingConfirmation struct {
	Booking Booking `json:"booking"`
	Event   Event   `json:"event"`

	// Destination tells the client which screen to land on. Always the
	// bookings list so the back stack cannot return to the payment flow.
	Destination string `json:"destination"`
}

const DestinationBookingsList = "bookings"
