package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/repository/dao"
)

var ErrDailyEventFunctionMissing = dao.ErrDailyEventFunctionMissing

type ReservationDAO interface {
	FindHoursByOrganizer(ctx context.Context, organizerID uint) ([]dao.OpeningHours, error)
	FindUnavailableDates(ctx context.Context, organizerID uint, from, to time.Time) ([]dao.UnavailableDate, error)
	FindSettingByOrganizer(ctx context.Context, organizerID uint) (dao.ReservationSetting, error)
	UpsertHours(ctx context.Context, hours dao.OpeningHours) (dao.OpeningHours, error)
	GetOrCreateDailyEvent(ctx context.Context, organizerID uint, date time.Time, currency string) (uint, error)
}

type ReservationRepository struct {
	dao ReservationDAO
}

func NewReservationRepository(dao ReservationDAO) *ReservationRepository {
	return &ReservationRepository{
		dao: dao,
	}
}

// FindConfig loads everything the slot generator needs for one
// organizer over the given date range.
func (r *ReservationRepository) FindConfig(ctx context.Context, organizerID uint, from, to time.Time) (domain.ReservationConfig, error) {
	hours, err := r.dao.FindHoursByOrganizer(ctx, organizerID)
	if err != nil {
		return domain.ReservationConfig{}, fmt.Errorf("r.dao.FindHoursByOrganizer -> %w", err)
	}

	setting, err := r.dao.FindSettingByOrganizer(ctx, organizerID)
	if err != nil {
		return domain.ReservationConfig{}, fmt.Errorf("r.dao.FindSettingByOrganizer -> %w", err)
	}

	unavailable, err := r.dao.FindUnavailableDates(ctx, organizerID, from, to)
	if err != nil {
		return domain.ReservationConfig{}, fmt.Errorf("r.dao.FindUnavailableDates -> %w", err)
	}

	conf := domain.ReservationConfig{
		OrganizerID: organizerID,
		PartyLimit:  setting.PartyLimit,
	}
	for _, h := range hours {
		conf.Hours = append(conf.Hours, domain.OpeningHours{
			ID:          h.ID,
			OrganizerID: h.OrganizerID,
			Weekday:     h.Weekday,
			OpensAt:     h.OpensAt,
			ClosesAt:    h.ClosesAt,
		})
	}
	for _, d := range unavailable {
		conf.UnavailableDates = append(conf.UnavailableDates, d.Date.Format("2006-01-02"))
	}

	return conf, nil
}

func (r *ReservationRepository) SaveHours(ctx context.Context, hours domain.OpeningHours) (domain.OpeningHours, error) {
	saved, err := r.dao.UpsertHours(ctx, dao.OpeningHours{
		OrganizerID: hours.OrganizerID,
		Weekday:     hours.Weekday,
		OpensAt:     hours.OpensAt,
		ClosesAt:    hours.ClosesAt,
	})
	if err != nil {
		return domain.OpeningHours{}, fmt.Errorf("r.dao.UpsertHours -> %w", err)
	}

	return domain.OpeningHours{
		ID:          saved.ID,
		OrganizerID: saved.OrganizerID,
		Weekday:     saved.Weekday,
		OpensAt:     saved.OpensAt,
		ClosesAt:    saved.ClosesAt,
	}, nil
}

func (r *ReservationRepository) GetOrCreateDailyEvent(ctx context.Context, organizerID uint, date time.Time, currency string) (uint, error) {
	eventID, err := r.dao.GetOrCreateDailyEvent(ctx, organizerID, date, currency)
	if err != nil {
		return 0, fmt.Errorf("r.dao.GetOrCreateDailyEvent -> %w", err)
	}

	return eventID, nil
}
