package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vybr/booking-api/internal/domain"
)

type fakeViewerSource struct {
	users map[uint]domain.User
}

func (f *fakeViewerSource) FindByID(_ context.Context, id uint) (domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return domain.User{}, errors.New("user not found")
	}

	return user, nil
}

func ticketedEvent(price string, passFee bool) domain.Event {
	p := decimal.RequireFromString(price)
	return domain.Event{
		ID:            1,
		BookingType:   domain.BookingTypeTicketed,
		Price:         &p,
		Currency:      "USD",
		PassFeeToUser: passFee,
	}
}

func TestDisplayPrice(t *testing.T) {
	viewers := &fakeViewerSource{users: map[uint]domain.User{
		1: {ID: 1, Country: "United States"},
	}}
	svc := NewEventService(nil, nil, viewers, NewCurrencyService("", &fakeEventCountrySource{}))

	t.Run("includes the processing fee when passed on", func(t *testing.T) {
		got := svc.DisplayPrice(context.Background(), ticketedEvent("25", true), 1)
		assert.Equal(t, "$25.50", got)
	})

	t.Run("excludes the fee when the organizer absorbs it", func(t *testing.T) {
		got := svc.DisplayPrice(context.Background(), ticketedEvent("25", false), 1)
		assert.Equal(t, "$25.00", got)
	})

	t.Run("empty for events without a price", func(t *testing.T) {
		event := domain.Event{ID: 2, BookingType: domain.BookingTypeReservation}
		assert.Empty(t, svc.DisplayPrice(context.Background(), event, 1))
	})

	t.Run("falls back to the event currency when the viewer is unknown", func(t *testing.T) {
		got := svc.DisplayPrice(context.Background(), ticketedEvent("10", true), 99)
		assert.Equal(t, "$10.50", got)
	})
}

func TestEventTotal(t *testing.T) {
	t.Run("fee charged once per booking", func(t *testing.T) {
		event := ticketedEvent("20", true)
		assert.True(t, decimal.RequireFromString("60.50").Equal(event.Total(3)))
	})

	t.Run("no fee when absorbed", func(t *testing.T) {
		event := ticketedEvent("20", false)
		assert.True(t, decimal.RequireFromString("60").Equal(event.Total(3)))
	})

	t.Run("free events total zero", func(t *testing.T) {
		event := domain.Event{BookingType: domain.BookingTypeReservation, PassFeeToUser: true}
		assert.True(t, event.Total(4).IsZero())
	})
}
