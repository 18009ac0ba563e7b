package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingType string

const (
	BookingTypeTicketed    BookingType = "TICKETED"
	BookingTypeReservation BookingType = "RESERVATION"
	BookingTypeInfoOnly    BookingType = "INFO_ONLY"
)

type Event struct {
	ID          uint        `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Country     string      `json:"country"`
	StartsAt    time.Time   `json:"starts_at"`
	BookingType BookingType `json:"booking_type"`

	// Price is the per-attendee price in the event's currency.
	// Nil or zero means the event is free to book.
	Price    *decimal.Decimal `json:"price"`
	Currency string           `json:"currency"`

	// PassFeeToUser adds the processing fee on top of the price the
	// attendee pays. When false the organizer absorbs it.
	PassFeeToUser bool `json:"pass_fee_to_user"`

	// AttendeeLimit caps confirmed attendees. Nil means unlimited,
	// zero means the event is closed to new bookings.
	AttendeeLimit *int `json:"attendee_limit"`

	Images []string `json:"images"`

	Artists []string `json:"artists"`
	Genres  []string `json:"genres"`
	Songs   []string `json:"songs"`

	OrganizerID uint      `json:"organizer_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TransactionFee is the flat processing fee, in the event's currency,
// charged once per paid booking when the organizer passes it on.
var TransactionFee = decimal.NewFromFloat(0.50)

// IsPaid reports whether booking this event requires a payment.
// Only ticketed events with a positive price go through the payment flow.
func (e Event) IsPaid() bool {
	return e.BookingType == BookingTypeTicketed && e.Price != nil && e.Price.IsPositive()
}

// ProcessingFee is the fee the attendee pays on top of the ticket
// price. Zero for free events and for organizers who absorb it.
func (e Event) ProcessingFee() decimal.Decimal {
	if e.IsPaid() && e.PassFeeToUser {
		return TransactionFee
	}

	return decimal.Zero
}

// Total is what a booking of qty attendees costs, fee included.
func (e Event) Total(qty int) decimal.Decimal {
	if e.Price == nil {
		return decimal.Zero
	}

	return e.Price.Mul(decimal.NewFromInt(int64(qty))).Add(e.ProcessingFee())
}

// Availability is the result of a capacity check against confirmed bookings.
type Availability struct {
	// Spots left for new attendees. Nil means unlimited.
	Remaining *int `json:"remaining"`
	Closed    bool `json:"closed"`
}

// Allows reports whether qty more attendees fit.
func (a Availability) Allows(qty int) bool {
	if a.Closed {
		return false
	}
	if a.Remaining == nil {
		return true
	}
	return qty <= *a.Remaining
}
