package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type ConfirmReservationRequest struct {
	OrganizerID uint   `json:"organizer_id"`
	Slot        string `json:"slot"` // RFC 3339
	Guests      int    `json:"guests"`
}

func (req *ConfirmReservationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.OrganizerID, validation.Required),
		validation.Field(&req.Slot, validation.Required, validation.Date(time.RFC3339)),
		validation.Field(&req.Guests, validation.Required, validation.Min(1)),
	)
}

type SaveOpeningHoursRequest struct {
	Weekday  int    `json:"weekday"`
	OpensAt  string `json:"opens_at"`
	ClosesAt string `json:"closes_at"`
}

func (req *SaveOpeningHoursRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Weekday, validation.Min(0), validation.Max(6)),
		validation.Field(&req.OpensAt, validation.Required, validation.Date("15:04")),
		validation.Field(&req.ClosesAt, validation.Required, validation.Date("15:04")),
	)
}
