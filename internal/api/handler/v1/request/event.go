package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

type CreateEventRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Country     string `json:"country"`
	StartsAt    string `json:"starts_at"` // RFC 3339
	BookingType string `json:"booking_type"`

	Price         *decimal.Decimal `json:"price"`
	Currency      string           `json:"currency"`
	PassFeeToUser *bool            `json:"pass_fee_to_user"` // defaults to true

	AttendeeLimit *int `json:"attendee_limit"`

	Images  []string `json:"images"`
	Artists []string `json:"artists"`
	Genres  []string `json:"genres"`
	Songs   []string `json:"songs"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.StartsAt, validation.Required, validation.Date(time.RFC3339)),
		validation.Field(&req.BookingType, validation.Required, validation.In("TICKETED", "RESERVATION", "INFO_ONLY")),
		validation.Field(&req.Country, validation.Required),
		validation.Field(&req.Currency, validation.Length(3, 3)),
	)
}
