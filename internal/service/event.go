package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/repository"
)

var ErrEventNotFound = repository.ErrEventNotFound

type EventRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Event, error)
	Create(ctx context.Context, event domain.Event) (domain.Event, error)
	FindUpcoming(ctx context.Context, now time.Time) ([]domain.Event, error)
	FindByUserCountry(ctx context.Context, userID uint) ([]domain.Event, error)
}

type AvailabilityBookingRepository interface {
	SumConfirmedQuantity(ctx context.Context, eventID uint) (int, error)
}

// ViewerCountrySource resolves the viewer's home country for price display.
type ViewerCountrySource interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
}

type EventService struct {
	repo     EventRepository
	bookings AvailabilityBookingRepository
	users    ViewerCountrySource
	currency *CurrencyService
}

func NewEventService(repo EventRepository, bookings AvailabilityBookingRepository, users ViewerCountrySource, currency *CurrencyService) *EventService {
	return &EventService{
		repo:     repo,
		bookings: bookings,
		users:    users,
		currency: currency,
	}
}

func (s *EventService) GetEvent(ctx context.Context, id uint) (domain.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return domain.Event{}, ErrEventNotFound
		}

		return domain.Event{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return event, nil
}

func (s *EventService) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := s.repo.Create(ctx, event)
	if err != nil {
		return domain.Event{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	return created, nil
}

func (s *EventService) ListUpcoming(ctx context.Context) ([]domain.Event, error) {
	events, err := s.repo.FindUpcoming(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindUpcoming -> %w", err)
	}

	return events, nil
}

func (s *EventService) ListByUserCountry(ctx context.Context, userID uint) ([]domain.Event, error) {
	events, err := s.repo.FindByUserCountry(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByUserCountry -> %w", err)
	}

	return events, nil
}

// DisplayPrice renders the event price in the viewer's home currency.
// Conversion failures degrade to the event's own currency, never to an
// error the viewer would see.
func (s *EventService) DisplayPrice(ctx context.Context, event domain.Event, viewerID uint) string {
	if event.Price == nil {
		return ""
	}

	// The displayed ticket price includes the processing fee when the
	// organizer passes it on.
	amount := event.Price.Add(event.ProcessingFee())

	user, err := s.users.FindByID(ctx, viewerID)
	if err != nil {
		return FormatPrice(amount, event.Currency)
	}

	code := CurrencyForCountry(user.Country)
	if converted, ok := s.currency.Convert(ctx, amount, event.Currency, code); ok {
		return FormatPrice(converted, code)
	}

	return FormatPrice(amount, event.Currency)
}

// CheckAvailability computes the event's remaining capacity from a
// fresh read of the confirmed quantity sum. The read is not locked
// against concurrent bookings; the write path re-validates.
func (s *EventService) CheckAvailability(ctx context.Context, event domain.Event) (domain.Availability, error) {
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
