package repository

import (
	"context"
	"fmt"

	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/repository/dao"
)

var (
	ErrBookingExists   = dao.ErrBookingExists
	ErrBookingNotFound = dao.ErrBookingNotFound
	ErrNoCapacity      = dao.ErrNoCapacity
)

type BookingDAO interface {
	Insert(ctx context.Context, booking dao.Booking) (dao.Booking, error)
	InsertGuarded(ctx context.Context, booking dao.Booking, limit *int) (dao.Booking, error)
	SumConfirmedQuantity(ctx context.Context, eventID uint) (int, error)
	FindByID(ctx context.Context, id uint) (dao.Booking, error)
	FindByEventAndUser(ctx context.Context, eventID, userID uint) (dao.Booking, error)
	FindByIntentID(ctx context.Context, intentID string) (dao.Booking, error)
	FindByUser(ctx context.Context, userID uint) ([]dao.Booking, error)
}

type BookingRepository struct {
	dao BookingDAO
}

func NewBookingRepository(dao BookingDAO) *BookingRepository {
	return &BookingRepository{
		dao: dao,
	}
}

func (r *BookingRepository) Create(ctx context.Context, booking domain.Booking) (domain.Booking, error) {
	created, err := r.dao.Insert(ctx, r.domainToDao(booking))
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

// CreateGuarded inserts a confirmed booking with the storage layer
// holding the capacity check and the insert in one transaction.
func (r *BookingRepository) CreateGuarded(ctx context.Context, booking domain.Booking, limit *int) (domain.Booking, error) {
	created, err := r.dao.InsertGuarded(ctx, r.domainToDao(booking), limit)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.InsertGuarded -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *BookingRepository) SumConfirmedQuantity(ctx context.Context, eventID uint) (int, error) {
	sum, err := r.dao.SumConfirmedQuantity(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("r.dao.SumConfirmedQuantity -> %w", err)
	}

	return sum, nil
}

func (r *BookingRepository) FindByEventAndUser(ctx context.Context, eventID, userID uint) (domain.Booking, error) {
	found, err := r.dao.FindByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.FindByEventAndUser -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *BookingRepository) FindByIntentID(ctx context.Context, intentID string) (domain.Booking, error) {
	found, err := r.dao.FindByIntentID(ctx, intentID)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("r.dao.FindByIntentID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

func (r *BookingRepository) FindByUser(ctx context.Context, userID uint) ([]domain.Booking, error) {
	found, err := r.dao.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindByUser -> %w", err)
	}

	result := make([]domain.Booking, 0, len(found))
	for _, b := range found {
		result = append(result, r.daoToDomain(b))
	}

	return result, nil
}

func (r *BookingRepository) domainToDao(b domain.Booking) dao.Booking {
	return dao.Booking{
		EventID:          b.EventID,
		UserID:           b.UserID,
		Quantity:         b.Quantity,
		Status:           string(b.Status),
		PricePerItem:     b.PricePerItem,
		TotalPrice:       b.TotalPrice,
		FeePaid:          b.FeePaid,
		Currency:         b.Currency,
		ConfirmationCode: b.ConfirmationCode,
		CheckedIn:        b.CheckedIn,
		PaymentIntentID:  b.PaymentIntentID,
	}
}

func (r *BookingRepository) daoToDomain(b dao.Booking) domain.Booking {
	return domain.Booking{
		ID:               b.ID,
		EventID:          b.EventID,
		UserID:           b.UserID,
		Quantity:         b.Quantity,
		Status:           domain.BookingStatus(b.Status),
		PricePerItem:     b.PricePerItem,
		TotalPrice:       b.TotalPrice,
		FeePaid:          b.FeePaid,
		Currency:         b.Currency,
		ConfirmationCode: b.ConfirmationCode,
		CheckedIn:        b.CheckedIn,
		PaymentIntentID:  b.PaymentIntentID,
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}
