package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/repository"
)

type fakeReservationRepo struct {
	config domain.ReservationConfig

	dailyEventID  uint
	dailyEventErr error

	lastDailyCurrency string
	savedHours        []domain.OpeningHours
}

func (f *fakeReservationRepo) FindConfig(_ context.Context, organizerID uint, _, _ time.Time) (domain.ReservationConfig, error) {
	conf := f.config
	conf.OrganizerID = organizerID
	return conf, nil
}

func (f *fakeReservationRepo) GetOrCreateDailyEvent(_ context.Context, _ uint, _ time.Time, currency string) (uint, error) {
	if f.dailyEventErr != nil {
		return 0, f.dailyEventErr
	}

	f.lastDailyCurrency = currency
	return f.dailyEventID, nil
}

func (f *fakeReservationRepo) SaveHours(_ context.Context, hours domain.OpeningHours) (domain.OpeningHours, error) {
	f.savedHours = append(f.savedHours, hours)
	return hours, nil
}

type fakeBookingFlow struct {
	result StartBookingResult
	err    error

	lastEventID  uint
	lastQuantity int
}

func (f *fakeBookingFlow) StartBooking(_ context.Context, _, eventID uint, quantity int, _ domain.ExecutionContext) (StartBookingResult, error) {
	f.lastEventID = eventID
	f.lastQuantity = quantity
	return f.result, f.err
}

type fakeSettlementCurrency struct {
	currency string
}

func (f *fakeSettlementCurrency) OrganizerCurrency(_ context.Context, _ uint) (string, error) {
	return f.currency, nil
}

// mondayMorning is a Monday well inside the reservation window.
var mondayMorning = time.Date(2026, time.September, 7, 8, 0, 0, 0, time.UTC)

func newReservationFixture(repo *fakeReservationRepo, flow *fakeBookingFlow, now time.Time) *ReservationService {
	svc := NewReservationService(repo, flow, &fakeSettlementCurrency{currency: "SGD"})
	svc.now = func() time.Time { return now }
	return svc
}

func TestListSlots_MondayMorningHours(t *testing.T) {
	repo := &fakeReservationRepo{
		config: domain.ReservationConfig{
			Hours: []domain.OpeningHours{
				{Weekday: int(time.Monday), OpensAt: "09:00", ClosesAt: "12:00"},
			},
		},
	}
	svc := newReservationFixture(repo, &fakeBookingFlow{}, mondayMorning)

	slots, err := svc.ListSlots(context.Background(), 1, mondayMorning)
	require.NoError(t, err)

	// 09:00 through 11:30; the last slot starts strictly before close.
	require.Len(t, slots, 6)
	assert.Equal(t, "09:00", slots[0].Label)
	assert.Equal(t, "09:30", slots[1].Label)
	assert.Equal(t, "11:30", slots[5].Label)
}

func TestListSlots_TodayExcludesElapsedSlots(t *testing.T) {
	repo := &fakeReservationRepo{
		config: domain.ReservationConfig{
			Hours: []domain.OpeningHours{
				{Weekday: int(time.Monday), OpensAt: "09:00", ClosesAt: "12:00"},
			},
		},
	}

	// 11:15 on the same Monday: everything at or before now is gone.
	now := time.Date(2026, time.September, 7, 11, 15, 0, 0, time.UTC)
	svc := newReservationFixture(repo, &fakeBookingFlow{}, now)

	slots, err := svc.ListSlots(context.Background(), 1, now)
	require.NoError(t, err)

	require.Len(t, slots, 1)
	assert.Equal(t, "11:30", slots[0].Label)
}

func TestListSlots_OutsideWindow(t *testing.T) {
	repo := &fakeReservationRepo{
		config: domain.ReservationConfig{
			Hours: []domain.OpeningHours{
				{Weekday: int(time.Monday), OpensAt: "09:00", ClosesAt: "12:00"},
			},
		},
	}
	svc := newReservationFixture(repo, &fakeBookingFlow{}, mondayMorning)

	_, err := svc.ListSlots(context.Background(), 1, mondayMorning.AddDate(0, 0, 35))
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	_, err = svc.ListSlots(context.Background(), 1, mondayMorning.AddDate(0, 0, -7))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestListSlots_BlockedDate(t *testing.T) {
	repo := &fakeReservationRepo{
		config: domain.ReservationConfig{
			Hours: []domain.OpeningHours{
				{Weekday: int(time.Monday), OpensAt: "09:00", ClosesAt: "12:00"},
			},
			UnavailableDates: []string{"2026-09-07"},
		},
	}
	svc := newReservationFixture(repo, &fakeBookingFlow{}, mondayMorning)

	_, err := svc.ListSlots(context.Background(), 1, mondayMorning)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestListDays_DisablesBlockedAndClosedDays(t *testing.T) {
	repo := &fakeReservationRepo{
		config: domain.ReservationConfig{
			Hours: []domain.OpeningHours{
				{Weekday: int(time.Monday), OpensAt: "09:00", ClosesAt: "12:00"},
			},
			UnavailableDates: []string{"2026-09-14"},
		},
	}
	svc := newReservationFixture(repo, &fakeBookingFlow{}, mondayMorning)

	days, err := svc.ListDays(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, days, reservationWindowDays+1)

	byDate := make(map[string]domain.ReservationDay, len(days))
	for _, day := range days {
		byDate[day.Date.Format("2006-01-02")] = day
	}

	assert.False(t, byDate["2026-09-07"].Disabled)
	assert.Len(t, byDate["2026-09-07"].Slots, 6)

	// The following Monday is explicitly blocked.
	assert.True(t, byDate["2026-09-14"].Disabled)

	// Tuesdays have no opening hours at all.
	assert.True(t, byDate["2026-09-08"].Disabled)
}

func TestConfirm_HandsOffToBookingFlow(t *testing.T) {
	repo := &fakeReservationRepo{
		config: domain.ReservationConfig{
			Hours: []domain.OpeningHours{
				{Weekday: int(time.Monday), OpensAt: "09:00", ClosesAt: "12:00"},
			},
		},
		dailyEventID: 42,
	}
	flow := &fakeBookingFlow{
		result: StartBookingResult{
			Confirmation: &domain.BookingConfirmation{
				Booking:     domain.Booking{EventID: 42, Quantity: 4},
				Destination: domain.DestinationBookingsList,
			},
		},
	}
	svc := newReservationFixture(repo, flow, mondayMorning)

	slot := time.Date(2026, time.September, 7, 10, 0, 0, 0, time.UTC)
	confirmation, err := svc.Confirm(context.Background(), 1, 1, slot, 4)
	require.NoError(t, err)

	assert.Equal(t, uint(42), flow.lastEventID)
	assert.Equal(t, 4, flow.lastQuantity)
	assert.Equal(t, "SGD", repo.lastDailyCurrency)
	assert.Equal(t, domain.DestinationBookingsList, confirmation.Destination)
}

func TestConfirm_RejectsUnknownSlot(t *testing.T) {
	repo := &fakeReservationRepo{
		config: domain.ReservationConfig{
			Hours: []domain.OpeningHours{
				{Weekday: int(time.Monday), OpensAt: "09:00", ClosesAt: "12:00"},
			},
		},
	}
	svc := newReservationFixture(repo, &fakeBookingFlow{}, mondayMorning)

	// 10:15 is not on the half-hour grid.
	slot := time.Date(2026, time.September, 7, 10, 15, 0, 0, time.UTC)
	_, err := svc.Confirm(context.Background(), 1, 1, slot, 2)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestConfirm_PartyLimit(t *testing.T) {
	repo := &fakeReservationRepo{
		config: domain.ReservationConfig{
			PartyLimit: intPtr(6),
			Hours: []domain.OpeningHours{
				{Weekday: int(time.Monday), OpensAt: "09:00", ClosesAt: "12:00"},
			},
		},
	}
	svc := newReservationFixture(repo, &fakeBookingFlow{}, mondayMorning)

	slot := time.Date(2026, time.September, 7, 10, 0, 0, 0, time.UTC)
	_, err := svc.Confirm(context.Background(), 1, 1, slot, 8)

	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, "Sorry, only 6 spot(s) remaining.", capErr.Error())
}

func TestConfirm_MissingBackendFunction(t *testing.T) {
	repo := &fakeReservationRepo{
		config: domain.ReservationConfig{
			Hours: []domain.OpeningHours{
				{Weekday: int(time.Monday), OpensAt: "09:00", ClosesAt: "12:00"},
			},
		},
		dailyEventErr: repository.ErrDailyEventFunctionMissing,
	}
	svc := newReservationFixture(repo, &fakeBookingFlow{}, mondayMorning)

	slot := time.Date(2026, time.September, 7, 10, 0, 0, 0, time.UTC)
	_, err := svc.Confirm(context.Background(), 1, 1, slot, 2)

	assert.ErrorIs(t, err, ErrCriticalBackendMissing)
	assert.Contains(t, err.Error(), "RSV-FN-404")
}
