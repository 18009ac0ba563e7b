package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/monitoring"
	"github.com/vybr/booking-api/internal/repository"
)

var (
	ErrBookingExists     = repository.ErrBookingExists
	ErrBookingNotFound   = repository.ErrBookingNotFound
	ErrBookingNotAllowed = errors.New("event does not allow booking")
	ErrAttemptInFlight   = errors.New("a booking attempt is already in flight")
)

// CapacityError rejects a booking attempt for lack of remaining spots.
// Closed means the event takes no bookings at all regardless of
// quantity.
type CapacityError struct {
	Closed    bool
	Remaining int
	Unit      string
}

func (e *CapacityError) Error() string {
	if e.Closed {
		return "Sorry, this event is currently unavailable."
	}

	return fmt.Sprintf("Sorry, only %d %s(s) remaining.", e.Remaining, e.Unit)
}

// PostPaymentWriteError is the most severe booking failure: the
// payment settled but the booking row could not be written.
type PostPaymentWriteError struct {
	EventID uint
}

func (e *PostPaymentWriteError) Error() string {
	return fmt.Sprintf(
		"Your payment may have already been taken, but we could not record your booking. Please contact support and quote event %d.",
		e.EventID)
}

// BookingUsage is the best-effort usage report sent after a booking.
type BookingUsage struct {
	EventID  uint   `json:"event_id"`
	UserID   uint   `json:"user_id"`
	Quantity int    `json:"quantity"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// UsageReporter delivers usage reports to the metering backend.
// Failures are logged, never surfaced.
type UsageReporter interface {
	ReportBookingUsage(ctx context.Context, usage BookingUsage) error
}

type BookingEventRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking domain.Booking) (domain.Booking, error)
	CreateGuarded(ctx context.Context, booking domain.Booking, limit *int) (domain.Booking, error)
	SumConfirmedQuantity(ctx context.Context, eventID uint) (int, error)
	FindByIntentID(ctx context.Context, intentID string) (domain.Booking, error)
	FindByUser(ctx context.Context, userID uint) ([]domain.Booking, error)
}

// PaymentOrchestrator is the slice of the payment service the booking
// flow drives.
type PaymentOrchestrator interface {
	Start(ctx context.Context, event domain.Event, userID uint, quantity int, execContext domain.ExecutionContext) (domain.PaymentAttempt, SheetConfig, error)
	Cancel(ctx context.Context, intentID string) (domain.PaymentAttempt, error)
	Fail(ctx context.Context, intentID, providerMessage string) (domain.PaymentAttempt, error)
	ConfirmSucceeded(ctx context.Context, intentID string) (domain.PaymentAttempt, error)
	GetAttempt(ctx context.Context, intentID string) (domain.PaymentAttempt, error)
}

// StartBookingResult is either an immediate confirmation (free path)
// or a pending payment attempt (paid path).
type StartBookingResult struct {
	Paid         bool                        `json:"paid"`
	Confirmation *domain.BookingConfirmation `json:"confirmation,omitempty"`
	Attempt      *domain.PaymentAttempt      `json:"attempt,omitempty"`
	Sheet        *SheetConfig                `json:"sheet,omitempty"`
}

type BookingService struct {
	events   BookingEventRepository
	bookings BookingRepository
	payments PaymentOrchestrator
	guard    AttemptGuard
	metering UsageReporter
}

func NewBookingService(events BookingEventRepository, bookings BookingRepository, payments PaymentOrchestrator, guard AttemptGuard, metering UsageReporter) *BookingService {
	return &BookingService{
		events:   events,
		bookings: bookings,
		payments: payments,
		guard:    guard,
		metering: metering,
	}
}

// StartBooking runs the top of the booking flow: re-entrancy guard,
// free/paid branch, and either an immediate confirmed booking or a
// parked payment attempt. Paid attempts keep the guard until they
// finalize.
func (s *BookingService) StartBooking(ctx context.Context, userID, eventID uint, quantity int, execContext domain.ExecutionContext) (StartBookingResult, error) {
	acquired, err := s.guard.Acquire(ctx, userID, eventID)
	if err != nil {
		return StartBookingResult{}, fmt.Errorf("s.guard.Acquire -> %w", err)
	}
	if !acquired {
		return StartBookingResult{}, ErrAttemptInFlight
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		s.guard.Release(ctx, userID, eventID)
		return StartBookingResult{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	if event.BookingType == domain.BookingTypeInfoOnly {
		s.guard.Release(ctx, userID, eventID)
		return StartBookingResult{}, ErrBookingNotAllowed
	}

	if !event.IsPaid() {
		defer s.guard.Release(ctx, userID, eventID)

		confirmation, err := s.bookFree(ctx, event, userID, quantity)
		if err != nil {
			return StartBookingResult{}, err
		}

		return StartBookingResult{Confirmation: &confirmation}, nil
	}

	attempt, sheet, err := s.payments.Start(ctx, event, userID, quantity, execContext)
	if err != nil {
		s.guard.Release(ctx, userID, eventID)
		monitoring.BookingOutcome("intent_fetch_failed")
		return StartBookingResult{}, err
	}

	return StartBookingResult{
		Paid:    true,
		Attempt: &attempt,
		Sheet:   &sheet,
	}, nil
}

// bookFree is the free path: a fresh availability read for the
// user-facing message, then a capacity-guarded insert so concurrent
// bookings cannot oversell.
func (s *BookingService) bookFree(ctx context.Context, event domain.Event, userID uint, quantity int) (domain.BookingConfirmation, error) {
	availability, err := s.checkAvailability(ctx, event)
	if err != nil {
		return domain.BookingConfirmation{}, err
	}

	if !availability.Allows(quantity) {
		monitoring.BookingOutcome("capacity_exceeded")
		return domain.BookingConfirmation{}, s.capacityError(event, availability)
	}

	booking, err := s.bookings.CreateGuarded(ctx, domain.Booking{
		EventID:          event.ID,
		UserID:           userID,
		Quantity:         quantity,
		Status:           domain.BookingStatusConfirmed,
		Currency:         event.Currency,
		ConfirmationCode: generateBookingCode(),
	}, event.AttendeeLimit)
	if err != nil {
		if errors.Is(err, repository.ErrBookingExists) {
			monitoring.BookingOutcome("duplicate")
			return domain.BookingConfirmation{}, ErrBookingExists
		}
		if errors.Is(err, repository.ErrNoCapacity) {
			monitoring.BookingOutcome("capacity_exceeded")

			fresh, availErr := s.checkAvailability(ctx, event)
			if availErr != nil {
				fresh = domain.Availability{Closed: true}
			}

			return domain.BookingConfirmation{}, s.capacityError(event, fresh)
		}

		return domain.BookingConfirmation{}, fmt.Errorf("s.bookings.CreateGuarded -> %w", err)
	}

	monitoring.BookingOutcome("confirmed_free")
	s.reportUsage(booking)

	return domain.BookingConfirmation{
		Booking:     booking,
		Event:       event,
		Destination: domain.DestinationBookingsList,
	}, nil
}

// CompleteEmbedded closes out an embedded-sheet attempt from the
// outcome the client observed in the sheet.
func (s *BookingService) CompleteEmbedded(ctx context.Context, userID uint, intentID, outcome, providerMessage string) (domain.BookingConfirmation, error) {
	attempt, err := s.payments.GetAttempt(ctx, intentID)
	if err != nil {
		return domain.BookingConfirmation{}, fmt.Errorf("s.payments.GetAttempt -> %w", err)
	}
	defer s.guard.Release(ctx, attempt.UserID, attempt.EventID)

	switch outcome {
	case "canceled":
		if _, err := s.payments.Cancel(ctx, intentID); err != nil {
			return domain.BookingConfirmation{}, fmt.Errorf("s.payments.Cancel -> %w", err)
		}

		monitoring.BookingOutcome("payment_canceled")
		return domain.BookingConfirmation{}, ErrPaymentCanceled
	case "failed":
		if _, err := s.payments.Fail(ctx, intentID, providerMessage); err != nil {
			return domain.BookingConfirmation{}, fmt.Errorf("s.payments.Fail -> %w", err)
		}

		monitoring.BookingOutcome("payment_failed")
		return domain.BookingConfirmation{}, fmt.Errorf("%w: %s", ErrPaymentFailed, providerMessage)
	default:
		return s.finalizePaid(ctx, intentID)
	}
}

// FinalizeRedirect handles the provider redirect return. A stale
// reload after the attempt has finalized resolves to the existing
// booking instead of writing a second one.
func (s *BookingService) FinalizeRedirect(ctx context.Context, intentID string, paymentSuccess bool) (domain.BookingConfirmation, error) {
	attempt, err := s.payments.GetAttempt(ctx, intentID)
	if err != nil {
		return domain.BookingConfirmation{}, fmt.Errorf("s.payments.GetAttempt -> %w", err)
	}
	defer s.guard.Release(ctx, attempt.UserID, attempt.EventID)

	if !paymentSuccess {
		if _, err := s.payments.Cancel(ctx, intentID); err != nil &&
			!errors.Is(err, repository.ErrAttemptFinalized) {
			return domain.BookingConfirmation{}, fmt.Errorf("s.payments.Cancel -> %w", err)
		}

		monitoring.BookingOutcome("payment_canceled")
		return domain.BookingConfirmation{}, ErrPaymentCanceled
	}

	return s.finalizePaid(ctx, intentID)
}

// finalizePaid is the single convergence point for all paid-success
// entry points. It wins (or loses) the finalize-once race, then writes
// the booking.
func (s *BookingService) finalizePaid(ctx context.Context, intentID string) (domain.BookingConfirmation, error) {
	attempt, err := s.payments.ConfirmSucceeded(ctx, intentID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAttemptFinalized):
			return s.resolveFinalized(ctx, intentID)
		case errors.Is(err, ErrPaymentCanceled):
			monitoring.BookingOutcome("payment_canceled")
			return domain.BookingConfirmation{}, err
		case errors.Is(err, ErrPaymentFailed):
			monitoring.BookingOutcome("payment_failed")
			return domain.BookingConfirmation{}, err
		}

		return domain.BookingConfirmation{}, fmt.Errorf("s.payments.ConfirmSucceeded -> %w", err)
	}

	event, err := s.events.FindByID(ctx, attempt.EventID)
	if err != nil {
		return domain.BookingConfirmation{}, &PostPaymentWriteError{EventID: attempt.EventID}
	}

	pricePerItem := decimal.Zero
	if event.Price != nil {
		pricePerItem = *event.Price
	}

	booking, err := s.bookings.Create(ctx, domain.Booking{
		EventID:          attempt.EventID,
		UserID:           attempt.UserID,
		Quantity:         attempt.Quantity,
		Status:           domain.BookingStatusConfirmed,
		PricePerItem:     pricePerItem,
		TotalPrice:       attempt.Amount,
		FeePaid:          event.ProcessingFee(),
		Currency:         attempt.Currency,
		ConfirmationCode: generateBookingCode(),
		PaymentIntentID:  attempt.IntentID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrBookingExists) {
			monitoring.BookingOutcome("duplicate")
			return domain.BookingConfirmation{}, ErrBookingExists
		}

		zap.L().Error("booking write failed after successful payment",
			zap.Uint("event_id", attempt.EventID),
			zap.Uint("user_id", attempt.UserID),
			zap.String("intent_id", attempt.IntentID),
			zap.Error(err))

		monitoring.BookingOutcome("post_payment_write_failed")
		return domain.BookingConfirmation{}, &PostPaymentWriteError{EventID: attempt.EventID}
	}

	monitoring.BookingOutcome("confirmed_paid")
	s.reportUsage(booking)

	return domain.BookingConfirmation{
		Booking:     booking,
		Event:       event,
		Destination: domain.DestinationBookingsList,
	}, nil
}

// resolveFinalized serves repeats of an already finalized attempt,
// e.g. a redirect page reload with stale query parameters.
func (s *BookingService) resolveFinalized(ctx context.Context, intentID string) (domain.BookingConfirmation, error) {
	attempt, err := s.payments.GetAttempt(ctx, intentID)
	if err != nil {
		return domain.BookingConfirmation{}, fmt.Errorf("s.payments.GetAttempt -> %w", err)
	}

	switch attempt.State {
	case domain.PaymentStateCanceled:
		return domain.BookingConfirmation{}, ErrPaymentCanceled
	case domain.PaymentStateFailed:
		return domain.BookingConfirmation{}, fmt.Errorf("%w: %s", ErrPaymentFailed, attempt.FailureMessage)
	}

	booking, err := s.bookings.FindByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return domain.BookingConfirmation{}, &PostPaymentWriteError{EventID: attempt.EventID}
		}

		return domain.BookingConfirmation{}, fmt.Errorf("s.bookings.FindByIntentID -> %w", err)
	}

	event, err := s.events.FindByID(ctx, booking.EventID)
	if err != nil {
		return domain.BookingConfirmation{}, fmt.Errorf("s.events.FindByID -> %w", err)
	}

	return domain.BookingConfirmation{
		Booking:     booking,
		Event:       event,
		Destination: domain.DestinationBookingsList,
	}, nil
}

func (s *BookingService) ListMyBookings(ctx context.Context, userID uint) ([]domain.Booking, error) {
	bookings, err := s.bookings.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.bookings.FindByUser -> %w", err)
	}

	return bookings, nil
}

func (s *BookingService) checkAvailability(ctx context.Context, event domain.Event) (domain.Availability, error) {
	if event.AttendeeLimit == nil {
		return domain.Availability{}, nil
	}

	if *event.AttendeeLimit == 0 {
		return domain.Availability{Closed: true}, nil
	}

	taken, err := s.bookings.SumConfirmedQuantity(ctx, event.ID)
	if err != nil {
		return domain.Availability{}, fmt.Errorf("s.bookings.SumConfirmedQuantity -> %w", err)
	}

	remaining := *event.AttendeeLimit - taken
	if remaining < 0 {
		remaining = 0
	}

	return domain.Availability{Remaining: &remaining}, nil
}

func (s *BookingService) capacityError(event domain.Event, availability domain.Availability) error {
	if availability.Closed {
		return &CapacityError{Closed: true, Unit: capacityUnit(event)}
	}

	remaining := 0
	if availability.Remaining != nil {
		remaining = *availability.Remaining
	}

	return &CapacityError{Remaining: remaining, Unit: capacityUnit(event)}
}

func capacityUnit(event domain.Event) string {
	if event.BookingType == domain.BookingTypeReservation {
		return "spot"
	}

	return "ticket"
}

// reportUsage is fire-and-forget: metering failures are logged and
// never block or reverse the booking.
func (s *BookingService) reportUsage(booking domain.Booking) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := s.metering.ReportBookingUsage(ctx, BookingUsage{
			EventID:  booking.EventID,
			UserID:   booking.UserID,
			Quantity: booking.Quantity,
			Amount:   booking.TotalPrice.String(),
			Currency: booking.Currency,
		})
		if err != nil {
			zap.L().Warn("usage report failed",
				zap.Uint("event_id", booking.EventID),
				zap.Uint("booking_id", booking.ID),
				zap.Error(err))
		}
	}()
}

// generateBookingCode returns the six digit display code attendees
// quote at the door. Uniqueness is not enforced.
func generateBookingCode() string {
	return fmt.Sprintf("%d", rand.Intn(900000)+100000)
}
