package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/repository/dao"
)

var ErrEventNotFound = dao.ErrEventNotFound

type EventDAO interface {
	FindByID(ctx context.Context, id uint) (dao.Event, error)
	Insert(ctx context.Context, event dao.Event) (dao.Event, error)
	FindRecommendationCandidates(ctx context.Context, userID uint) ([]dao.Event, error)
	FindByUserCountry(ctx context.Context, userID uint) ([]dao.Event, error)
	FindCountriesByOrganizer(ctx context.Context, organizerID uint) ([]string, error)
	FindUpcoming(ctx context.Context, now time.Time) ([]dao.Event, error)
}

type EventRepository struct {
	dao EventDAO
}

func NewEventRepository(dao EventDAO) *EventRepository {
	return &EventRepository{
		dao: dao,
	}
}

func (r *EventRepository) FindByID(ctx context.Context, id uint) (domain.Event, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *EventRepository) Create(ctx context.Context, event domain.Event) (domain.Event, error) {
	created, err := r.dao.Insert(ctx, dao.Event{
		Title:         event.Title,
		Description:   event.Description,
		Location:      event.Location,
		Country:       event.Country,
		StartsAt:      event.StartsAt,
		BookingType:   string(event.BookingType),
		Price:         event.Price,
		Currency:      event.Currency,
		PassFeeToUser: event.PassFeeToUser,
		AttendeeLimit: event.AttendeeLimit,
		Images:        strings.Join(event.Images, ","),
		Artists:       strings.Join(event.Artists, ","),
		Genres:        strings.Join(event.Genres, ","),
		Songs:         strings.Join(event.Songs, ","),
		OrganizerID:   event.OrganizerID,
	})
	if err != nil {
		return domain.Event{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *EventRepository) FindRecommendationCandidates(ctx context.Context, userID uint) ([]domain.Event, error) {
	found, err := r.dao.FindRecommendationCandidates(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindRecommendationCandidates -> %w", err)
	}

	return r.daoToDomainList(found), nil
}

func (r *EventRepository) FindByUserCountry(ctx context.Context, userID uint) ([]domain.Event, error) {
	found, err := r.dao.FindByUserCountry(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUserCountry -> %w", err)
	}

	return r.daoToDomainList(found), nil
}

func (r *EventRepository) FindCountriesByOrganizer(ctx context.Context, organizerID uint) ([]string, error) {
	countries, err := r.dao.FindCountriesByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindCountriesByOrganizer -> %w", err)
	}

	return countries, nil
}

func (r *EventRepository) FindUpcoming(ctx context.Context, now time.Time) ([]domain.Event, error) {
	found, err := r.dao.FindUpcoming(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindUpcoming -> %w", err)
	}

	return r.daoToDomainList(found), nil
}

func (r *EventRepository) daoToDomainList(events []dao.Event) []domain.Event {
	result := make([]domain.Event, 0, len(events))
	for _, e := range events {
		result = append(result, r.daoToDomain(e))
	}

	return result
}

func (r *EventRepository) daoToDomain(e dao.Event) domain.Event {
	return domain.Event{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		Location:      e.Location,
		Country:       e.Country,
		StartsAt:      e.StartsAt,
		BookingType:   domain.BookingType(e.BookingType),
		Price:         e.Price,
		Currency:      e.Currency,
		PassFeeToUser: e.PassFeeToUser,
		AttendeeLimit: e.AttendeeLimit,
		Images:        splitList(e.Images),
		Artists:       splitList(e.Artists),
		Genres:        splitList(e.Genres),
		Songs:         splitList(e.Songs),
		OrganizerID:   e.OrganizerID,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
