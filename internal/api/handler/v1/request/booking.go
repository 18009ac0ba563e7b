package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type StartBookingRequest struct {
	EventID  uint   `json:"event_id"`
	Quantity int    `json:"quantity"`
	Context  string `json:"context"`
}

func (req *StartBookingRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.EventID, validation.Required),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&req.Context, validation.Required, validation.In("EMBEDDED", "REDIRECT")),
	)
}

// CompletePaymentRequest reports the outcome an embedded payment sheet
// observed. Message carries the provider's error text on failure.
type CompletePaymentRequest struct {
	IntentID string `json:"intent_id"`
	Outcome  string `json:"outcome"`
	Message  string `json:"message"`
}

func (req *CompletePaymentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.IntentID, validation.Required),
		validation.Field(&req.Outcome, validation.Required, validation.In("succeeded", "canceled", "failed")),
	)
}
