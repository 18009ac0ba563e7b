package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/repository"
)

var (
	// ErrCriticalBackendMissing means the reservation backend cannot
	// work at all; no user retry will fix it.
	ErrCriticalBackendMissing = errors.New("reservation backend unavailable, please contact support (ref RSV-FN-404)")

	ErrSlotUnavailable = errors.New("the selected time is not available")
)

// reservationWindowDays bounds how far ahead a reservation can be made.
const reservationWindowDays = 28

const slotLength = 30 * time.Minute

type ReservationRepository interface {
	FindConfig(ctx context.Context, organizerID uint, from, to time.Time) (domain.ReservationConfig, error)
	GetOrCreateDailyEvent(ctx context.Context, organizerID uint, date time.Time, currency string) (uint, error)
	SaveHours(ctx context.Context, hours domain.OpeningHours) (domain.OpeningHours, error)
}

// SettlementCurrencySource picks the currency the daily reservation
// event is denominated in.
type SettlementCurrencySource interface {
	OrganizerCurrency(ctx context.Context, organizerID uint) (string, error)
}

// ReservationBookingFlow is the hand-off into the free booking path.
type ReservationBookingFlow interface {
	StartBooking(ctx context.Context, userID, eventID uint, quantity int, execContext domain.ExecutionContext) (StartBookingResult, error)
}

type ReservationService struct {
	repo     ReservationRepository
	booking  ReservationBookingFlow
	currency SettlementCurrencySource

	// now is swappable for tests.
	now func() time.Time
}

func NewReservationService(repo ReservationRepository, booking ReservationBookingFlow, currency SettlementCurrencySource) *ReservationService {
	return &ReservationService{
		repo:     repo,
		booking:  booking,
		currency: currency,
		now:      time.Now,
	}
}

// ListDays returns every date in the booking window with its open
// slots. Blocked dates and closed weekdays come back disabled so the
// client can grey them out.
func (s *ReservationService) ListDays(ctx context.Context, organizerID uint) ([]domain.ReservationDay, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	last := today.AddDate(0, 0, reservationWindowDays)

	conf, err := s.repo.FindConfig(ctx, organizerID, today, last)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindConfig -> %w", err)
	}

	hoursByWeekday := make(map[int][]domain.OpeningHours)
	for _, h := range conf.Hours {
		hoursByWeekday[h.Weekday] = append(hoursByWeekday[h.Weekday], h)
	}

	blocked := make(map[string]struct{}, len(conf.UnavailableDates))
	for _, d := range conf.UnavailableDates {
		blocked[d] = struct{}{}
	}

	days := make([]domain.ReservationDay, 0, reservationWindowDays+1)
	for date := today; !date.After(last); date = date.AddDate(0, 0, 1) {
		day := domain.ReservationDay{Date: date}

		if _, isBlocked := blocked[date.Format("2006-01-02")]; isBlocked {
			day.Disabled = true
			days = append(days, day)
			continue
		}

		day.Slots = expandSlots(hoursByWeekday[int(date.Weekday())], date, now)
		if len(day.Slots) == 0 {
			day.Disabled = true
		}

		days = append(days, day)
	}

	return days, nil
}

// ListSlots returns the open slots for one date inside the window.
func (s *ReservationService) ListSlots(ctx context.Context, organizerID uint, date time.Time) ([]domain.TimeSlot, error) {
	slots, _, err := s.slotsForDate(ctx, organizerID, date)
	return slots, err
}

func (s *ReservationService) slotsForDate(ctx context.Context, organizerID uint, date time.Time) ([]domain.TimeSlot, domain.ReservationConfig, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, now.Location())

	if day.Before(today) || day.After(today.AddDate(0, 0, reservationWindowDays)) {
		return nil, domain.ReservationConfig{}, ErrSlotUnavailable
	}

	conf, err := s.repo.FindConfig(ctx, organizerID, day, day)
	if err != nil {
		return nil, domain.ReservationConfig{}, fmt.Errorf("s.repo.FindConfig -> %w", err)
	}

	for _, blocked := range conf.UnavailableDates {
		if blocked == day.Format("2006-01-02") {
			return nil, conf, ErrSlotUnavailable
		}
	}

	var dayHours []domain.OpeningHours
	for _, h := range conf.Hours {
		if h.Weekday == int(day.Weekday()) {
			dayHours = append(dayHours, h)
		}
	}

	return expandSlots(dayHours, day, now), conf, nil
}

// Confirm books a reservation for the given date/slot: it resolves the
// daily reservation event idempotently, validates the party against
// the remaining capacity, and hands off into the free booking path.
func (s *ReservationService) Confirm(ctx context.Context, userID, organizerID uint, date time.Time, guests int) (domain.BookingConfirmation, error) {
	slots, conf, err := s.slotsForDate(ctx, organizerID, date)
	if err != nil {
		return domain.BookingConfirmation{}, err
	}

	found := false
	for _, slot := range slots {
		if slot.Start.Equal(date) {
			found = true
			break
		}
	}
	if !found {
		return domain.BookingConfirmation{}, ErrSlotUnavailable
	}

	if conf.PartyLimit != nil && guests > *conf.PartyLimit {
		return domain.BookingConfirmation{}, &CapacityError{Remaining: *conf.PartyLimit, Unit: "spot"}
	}

	currency, err := s.currency.OrganizerCurrency(ctx, organizerID)
	if err != nil {
		return domain.BookingConfirmation{}, fmt.Errorf("s.currency.OrganizerCurrency -> %w", err)
	}

	eventID, err := s.repo.GetOrCreateDailyEvent(ctx, organizerID, date, currency)
	if err != nil {
		if errors.Is(err, repository.ErrDailyEventFunctionMissing) {
			return domain.BookingConfirmation{}, ErrCriticalBackendMissing
		}

		return domain.BookingConfirmation{}, fmt.Errorf("s.repo.GetOrCreateDailyEvent -> %w", err)
	}

	result, err := s.booking.StartBooking(ctx, userID, eventID, guests, domain.ContextEmbedded)
	if err != nil {
		return domain.BookingConfirmation{}, err
	}

	return *result.Confirmation, nil
}

func (s *ReservationService) SaveHours(ctx context.Context, hours domain.OpeningHours) (domain.OpeningHours, error) {
	saved, err := s.repo.SaveHours(ctx, hours)
	if err != nil {
		return domain.OpeningHours{}, fmt.Errorf("s.repo.SaveHours -> %w", err)
	}

	return saved, nil
}

// expandSlots turns the date's open ranges into 30 minute slots. The
// last slot starts strictly before closing time, and on the current
// day slots at or before now are dropped.
func expandSlots(hours []domain.OpeningHours, date, now time.Time) []domain.TimeSlot {
	var slots []domain.TimeSlot

	for _, h := range hours {
		opens, err := atTime(date, h.OpensAt)
		if err != nil {
			continue
		}
		closes, err := atTime(date, h.ClosesAt)
		if err != nil {
			continue
		}

		for t := opens; t.Before(closes); t = t.Add(slotLength) {
			if sameDay(date, now) && !t.After(now) {
				continue
			}

			slots = append(slots, domain.TimeSlot{
				Start: t,
				Label: t.Format("15:04"),
			})
		}
	}

	return slots
}

func atTime(date time.Time, hhmm string) (time.Time, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
