package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/repository"
)

type fakeBookingEventRepo struct {
	events map[uint]domain.Event
	err    error
}

func (f *fakeBookingEventRepo) FindByID(_ context.Context, id uint) (domain.Event, error) {
	if f.err != nil {
		return domain.Event{}, f.err
	}

	event, ok := f.events[id]
	if !ok {
		return domain.Event{}, repository.ErrEventNotFound
	}
	return event, nil
}

type fakeBookingRepo struct {
	mu sync.Mutex

	confirmedSum int
	created      []domain.Booking
	byIntentID   map[string]domain.Booking

	createErr        error
	createGuardedErr error
	nextID           uint
}

func (f *fakeBookingRepo) Create(_ context.Context, booking domain.Booking) (domain.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return domain.Booking{}, f.createErr
	}

	f.nextID++
	booking.ID = f.nextID
	f.created = append(f.created, booking)
	return booking, nil
}

func (f *fakeBookingRepo) CreateGuarded(ctx context.Context, booking domain.Booking, _ *int) (domain.Booking, error) {
	if f.createGuardedErr != nil {
		return domain.Booking{}, f.createGuardedErr
	}

	return f.Create(ctx, booking)
}

func (f *fakeBookingRepo) SumConfirmedQuantity(_ context.Context, _ uint) (int, error) {
	return f.confirmedSum, nil
}

func (f *fakeBookingRepo) FindByIntentID(_ context.Context, intentID string) (domain.Booking, error) {
	booking, ok := f.byIntentID[intentID]
	if !ok {
		return domain.Booking{}, repository.ErrBookingNotFound
	}
	return booking, nil
}

func (f *fakeBookingRepo) FindByUser(_ context.Context, _ uint) ([]domain.Booking, error) {
	return f.created, nil
}

type fakePaymentOrchestrator struct {
	attempt domain.PaymentAttempt
	sheet   SheetConfig

	startErr   error
	confirmErr error

	cancelCalls  int
	failCalls    int
	confirmCalls int
}

func (f *fakePaymentOrchestrator) Start(_ context.Context, event domain.Event, userID uint, quantity int, execContext domain.ExecutionContext) (domain.PaymentAttempt, SheetConfig, error) {
	if f.startErr != nil {
		return domain.PaymentAttempt{}, SheetConfig{}, f.startErr
	}

	attempt := f.attempt
	attempt.EventID = event.ID
	attempt.UserID = userID
	attempt.Quantity = quantity
	attempt.Context = execContext
	return attempt, f.sheet, nil
}

func (f *fakePaymentOrchestrator) Cancel(_ context.Context, _ string) (domain.PaymentAttempt, error) {
	f.cancelCalls++
	return f.attempt, nil
}

func (f *fakePaymentOrchestrator) Fail(_ context.Context, _, message string) (domain.PaymentAttempt, error) {
	f.failCalls++
	f.attempt.FailureMessage = message
	return f.attempt, nil
}

func (f *fakePaymentOrchestrator) ConfirmSucceeded(_ context.Context, _ string) (domain.PaymentAttempt, error) {
	f.confirmCalls++
	if f.confirmErr != nil {
		return domain.PaymentAttempt{}, f.confirmErr
	}
	return f.attempt, nil
}

func (f *fakePaymentOrchestrator) GetAttempt(_ context.Context, _ string) (domain.PaymentAttempt, error) {
	return f.attempt, nil
}

type fakeUsageReporter struct {
	mu      sync.Mutex
	reports []BookingUsage
	err     error
}

func (f *fakeUsageReporter) ReportBookingUsage(_ context.Context, usage BookingUsage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.reports = append(f.reports, usage)
	return f.err
}

func (f *fakeUsageReporter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.reports)
}

func intPtr(n int) *int { return &n }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newBookingFixture(event domain.Event) (*BookingService, *fakeBookingRepo, *fakePaymentOrchestrator, *fakeUsageReporter) {
	events := &fakeBookingEventRepo{events: map[uint]domain.Event{event.ID: event}}
	bookings := &fakeBookingRepo{byIntentID: map[string]domain.Booking{}}
	payments := &fakePaymentOrchestrator{
		attempt: domain.PaymentAttempt{
			EventID:  event.ID,
			UserID:   1,
			Quantity: 2,
			Amount:   decimal.NewFromInt(50),
			Currency: "USD",
			State:    domain.PaymentStateAwaitingPaymentMethod,
			IntentID: "pi_123",
		},
	}
	metering := &fakeUsageReporter{}

	svc := NewBookingService(events, bookings, payments, NewLocalAttemptGuard(), metering)
	return svc, bookings, payments, metering
}

func TestStartBooking_FreeEventRoundTrip(t *testing.T) {
	event := domain.Event{
		ID:            10,
		Title:         "Open Mic",
		BookingType:   domain.BookingTypeTicketed,
		AttendeeLimit: intPtr(50),
		Currency:      "USD",
	}
	svc, bookings, _, metering := newBookingFixture(event)

	result, err := svc.StartBooking(context.Background(), 1, 10, 2, domain.ContextEmbedded)
	require.NoError(t, err)

	require.False(t, result.Paid)
	require.NotNil(t, result.Confirmation)

	booking := result.Confirmation.Booking
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
	assert.False(t, booking.CheckedIn)
	assert.True(t, booking.TotalPrice.IsZero())
	assert.Len(t, booking.ConfirmationCode, 6)
	assert.Equal(t, domain.DestinationBookingsList, result.Confirmation.Destination)
	assert.Equal(t, event.ID, result.Confirmation.Event.ID)

	require.Len(t, bookings.created, 1)

	// Metering is fire-and-forget; exactly one report arrives.
	require.Eventually(t, func() bool {
		return metering.count() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestStartBooking_MeteringFailureDoesNotAffectBooking(t *testing.T) {
	event := domain.Event{ID: 10, BookingType: domain.BookingTypeTicketed}
	svc, _, _, metering := newBookingFixture(event)
	metering.err = errors.New("broker down")

	result, err := svc.StartBooking(context.Background(), 1, 10, 1, domain.ContextEmbedded)
	require.NoError(t, err)
	assert.NotNil(t, result.Confirmation)
}

func TestStartBooking_ClosedEvent(t *testing.T) {
	event := domain.Event{
		ID:            10,
		BookingType:   domain.BookingTypeTicketed,
		AttendeeLimit: intPtr(0),
	}
	svc, _, _, _ := newBookingFixture(event)

	_, err := svc.StartBooking(context.Background(), 1, 10, 1, domain.ContextEmbedded)

	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.True(t, capErr.Closed)
	assert.Equal(t, "Sorry, this event is currently unavailable.", capErr.Error())
}

func TestStartBooking_PartialAvailabilityMessage(t *testing.T) {
	event := domain.Event{
		ID:            10,
		BookingType:   domain.BookingTypeTicketed,
		AttendeeLimit: intPtr(10),
	}
	svc, bookings, _, _ := newBookingFixture(event)
	bookings.confirmedSum = 7

	_, err := svc.StartBooking(context.Background(), 1, 10, 5, domain.ContextEmbedded)

	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.False(t, capErr.Closed)
	assert.Equal(t, "Sorry, only 3 ticket(s) remaining.", capErr.Error())
}

func TestStartBooking_ReservationUsesSpotUnit(t *testing.T) {
	event := domain.Event{
		ID:            10,
		BookingType:   domain.BookingTypeReservation,
		AttendeeLimit: intPtr(4),
	}
	svc, bookings, _, _ := newBookingFixture(event)
	bookings.confirmedSum = 2

	_, err := svc.StartBooking(context.Background(), 1, 10, 4, domain.ContextEmbedded)

	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "Sorry, only 2 spot(s) remaining.", capErr.Error())
}

func TestStartBooking_UnlimitedCapacity(t *testing.T) {
	event := domain.Event{ID: 10, BookingType: domain.BookingTypeTicketed}
	svc, _, _, _ := newBookingFixture(event)

	result, err := svc.StartBooking(context.Background(), 1, 10, 500, domain.ContextEmbedded)
	require.NoError(t, err)
	assert.NotNil(t, result.Confirmation)
}

func TestStartBooking_DuplicateBooking(t *testing.T) {
	event := domain.Event{ID: 10, BookingType: domain.BookingTypeTicketed}
	svc, bookings, _, metering := newBookingFixture(event)
	bookings.createGuardedErr = repository.ErrBookingExists

	_, err := svc.StartBooking(context.Background(), 1, 10, 1, domain.ContextEmbedded)

	assert.ErrorIs(t, err, ErrBookingExists)
	assert.Equal(t, 0, metering.count())
}

func TestStartBooking_InfoOnlyEventRejected(t *testing.T) {
	event := domain.Event{ID: 10, BookingType: domain.BookingTypeInfoOnly}
	svc, _, _, _ := newBookingFixture(event)

	_, err := svc.StartBooking(context.Background(), 1, 10, 1, domain.ContextEmbedded)

	assert.ErrorIs(t, err, ErrBookingNotAllowed)
}

func TestStartBooking_SecondAttemptInFlight(t *testing.T) {
	event := domain.Event{
		ID:          10,
		BookingType: domain.BookingTypeTicketed,
		Price:       decPtr("25"),
		Currency:    "USD",
	}
	svc, _, _, _ := newBookingFixture(event)

	first, err := svc.StartBooking(context.Background(), 1, 10, 1, domain.ContextEmbedded)
	require.NoError(t, err)
	require.True(t, first.Paid)

	// The paid attempt holds the guard until it finalizes.
	_, err = svc.StartBooking(context.Background(), 1, 10, 1, domain.ContextEmbedded)
	assert.ErrorIs(t, err, ErrAttemptInFlight)
}

func TestStartBooking_GuardReleasedAfterFreeBooking(t *testing.T) {
	event := domain.Event{ID: 10, BookingType: domain.BookingTypeTicketed}
	svc, bookings, _, _ := newBookingFixture(event)

	_, err := svc.StartBooking(context.Background(), 1, 10, 1, domain.ContextEmbedded)
	require.NoError(t, err)

	// A later attempt is gated by the duplicate check, not the guard.
	bookings.createGuardedErr = repository.ErrBookingExists
	_, err = svc.StartBooking(context.Background(), 1, 10, 1, domain.ContextEmbedded)
	assert.ErrorIs(t, err, ErrBookingExists)
}

func TestStartBooking_PaidPathReturnsSheet(t *testing.T) {
	event := domain.Event{
		ID:          10,
		BookingType: domain.BookingTypeTicketed,
		Price:       decPtr("25"),
		Currency:    "USD",
	}
	svc, bookings, payments, _ := newBookingFixture(event)
	payments.sheet = SheetConfig{ClientSecret: "cs_test", MerchantDisplayName: "Vybr"}

	result, err := svc.StartBooking(context.Background(), 1, 10, 2, domain.ContextEmbedded)
	require.NoError(t, err)

	assert.True(t, result.Paid)
	assert.Nil(t, result.Confirmation)
	require.NotNil(t, result.Sheet)
	assert.Equal(t, "cs_test", result.Sheet.ClientSecret)

	// No booking row until the payment settles.
	assert.Empty(t, bookings.created)
}

func TestStartBooking_IntentFetchFailureReleasesGuard(t *testing.T) {
	event := domain.Event{
		ID:          10,
		BookingType: domain.BookingTypeTicketed,
		Price:       decPtr("25"),
	}
	svc, _, payments, _ := newBookingFixture(event)
	payments.startErr = ErrIntentFetchFailed

	_, err := svc.StartBooking(context.Background(), 1, 10, 1, domain.ContextEmbedded)
	assert.ErrorIs(t, err, ErrIntentFetchFailed)

	// The guard must not leak after the failed attempt.
	payments.startErr = nil
	result, err := svc.StartBooking(context.Background(), 1, 10, 1, domain.ContextEmbedded)
	require.NoError(t, err)
	assert.True(t, result.Paid)
}

func TestCompleteEmbedded_CanceledWritesNoBooking(t *testing.T) {
	event := domain.Event{
		ID:          10,
		BookingType: domain.BookingTypeTicketed,
		Price:       decPtr("25"),
	}
	svc, bookings, payments, metering := newBookingFixture(event)

	_, err := svc.CompleteEmbedded(context.Background(), 1, "pi_123", "canceled", "")

	assert.ErrorIs(t, err, ErrPaymentCanceled)
	assert.Equal(t, 1, payments.cancelCalls)
	assert.Empty(t, bookings.created)
	assert.Equal(t, 0, metering.count())
}

func TestCompleteEmbedded_FailedKeepsProviderMessage(t *testing.T) {
	event := domain.Event{
		ID:          10,
		BookingType: domain.BookingTypeTicketed,
		Price:       decPtr("25"),
	}
	svc, bookings, payments, _ := newBookingFixture(event)

	_, err := svc.CompleteEmbedded(context.Background(), 1, "pi_123", "failed", "Your card was declined.")

	assert.ErrorIs(t, err, ErrPaymentFailed)
	assert.Contains(t, err.Error(), "Your card was declined.")
	assert.Equal(t, 1, payments.failCalls)
	assert.Empty(t, bookings.created)
}

func TestCompleteEmbedded_SucceededWritesBooking(t *testing.T) {
	event := domain.Event{
		ID:          10,
		Title:       "Club Night",
		BookingType: domain.BookingTypeTicketed,
		Price:       decPtr("25"),
		Currency:    "USD",
	}
	svc, bookings, _, metering := newBookingFixture(event)

	confirmation, err := svc.CompleteEmbedded(context.Background(), 1, "pi_123", "succeeded", "")
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusConfirmed, confirmation.Booking.Status)
	assert.Equal(t, "pi_123", confirmation.Booking.PaymentIntentID)
	assert.True(t, decimal.NewFromInt(50).Equal(confirmation.Booking.TotalPrice))
	assert.True(t, decimal.NewFromInt(25).Equal(confirmation.Booking.PricePerItem))
	assert.True(t, confirmation.Booking.FeePaid.IsZero())
	require.Len(t, bookings.created, 1)

	require.Eventually(t, func() bool {
		return metering.count() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestFinalizePaid_PostPaymentWriteFailureNamesEvent(t *testing.T) {
	event := domain.Event{
		ID:          10,
		BookingType: domain.BookingTypeTicketed,
		Price:       decPtr("25"),
	}
	svc, bookings, _, _ := newBookingFixture(event)
	bookings.createErr = errors.New("connection reset")

	_, err := svc.CompleteEmbedded(context.Background(), 1, "pi_123", "succeeded", "")

	var writeErr *PostPaymentWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, uint(10), writeErr.EventID)
	assert.Contains(t, err.Error(), "event 10")
	assert.Contains(t, err.Error(), "payment may have already been taken")
}

func TestFinalizeRedirect_CancelIsNotAnError(t *testing.T) {
	event := domain.Event{
		ID:          10,
		BookingType: domain.BookingTypeTicketed,
		Price:       decPtr("25"),
	}
	svc, bookings, payments, _ := newBookingFixture(event)

	_, err := svc.FinalizeRedirect(context.Background(), "pi_123", false)

	assert.ErrorIs(t, err, ErrPaymentCanceled)
	assert.Equal(t, 1, payments.cancelCalls)
	assert.Empty(t, bookings.created)
}

func TestFinalizeRedirect_StaleReloadResolvesExistingBooking(t *testing.T) {
	event := domain.Event{
		ID:          10,
		BookingType: domain.BookingTypeTicketed,
		Price:       decPtr("25"),
	}
	svc, bookings, payments, _ := newBookingFixture(event)

	existing := domain.Booking{
		ID:              7,
		EventID:         10,
		UserID:          1,
		Status:          domain.BookingStatusConfirmed,
		PaymentIntentID: "pi_123",
	}
	bookings.byIntentID["pi_123"] = existing

	// The attempt already finalized; the confirm step loses the race.
	payments.confirmErr = ErrAttemptFinalized
	payments.attempt.State = domain.PaymentStateSucceeded

	confirmation, err := svc.FinalizeRedirect(context.Background(), "pi_123", true)
	require.NoError(t, err)

	assert.Equal(t, uint(7), confirmation.Booking.ID)
	assert.Empty(t, bookings.created, "a stale reload must not write a second booking")
}

func TestFinalizeRedirect_FinalizedCanceledAttempt(t *testing.T) {
	event := domain.Event{
		ID:          10,
		BookingType: domain.BookingTypeTicketed,
		Price:       decPtr("25"),
	}
	svc, _, payments, _ := newBookingFixture(event)

	payments.confirmErr = ErrAttemptFinalized
	payments.attempt.State = domain.PaymentStateCanceled

	_, err := svc.FinalizeRedirect(context.Background(), "pi_123", true)
	assert.ErrorIs(t, err, ErrPaymentCanceled)
}
