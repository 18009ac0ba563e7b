package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrBookingExists   = errors.New("booking already exists")
	ErrBookingNotFound = errors.New("booking not found")
	ErrNoCapacity      = errors.New("event has no remaining capacity")
)

type Booking struct {
	ID uint `gorm:"primaryKey"`

	EventID uint `gorm:"not null;uniqueIndex:uni_bookings_event_user,priority:1"`
	UserID  uint `gorm:"not null;uniqueIndex:uni_bookings_event_user,priority:2"`

	Quantity int    `gorm:"not null"`
	Status   string `gorm:"not null;index"` // "CONFIRMED" or "CANCELLED"

	PricePerItem decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	TotalPrice   decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	FeePaid      decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	Currency     string

	ConfirmationCode string `gorm:"not null"`
	CheckedIn        bool   `gorm:"not null;default:false"`

	PaymentIntentID string `gorm:"index"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type BookingDAO struct {
	db *gorm.DB
}

func NewBookingDAO(db *gorm.DB) *BookingDAO {
	return &BookingDAO{
		db: db,
	}
}

func (d *BookingDAO) Insert(ctx context.Context, booking Booking) (Booking, error) {
	result := d.db.WithContext(ctx).Create(&booking)
	if result.Error != nil {
		if isDuplicateBooking(result.Error) {
			return Booking{}, ErrBookingExists
		}

		return Booking{}, result.Error
	}

	return booking, nil
}

// InsertGuarded inserts a confirmed booking while holding a per-event
// advisory lock, re-checking the confirmed quantity sum against the
// limit inside the same transaction. A nil limit means unlimited.
func (d *BookingDAO) InsertGuarded(ctx context.Context, booking Booking, limit *int) (Booking, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if limit != nil {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(booking.EventID)).Error; err != nil {
				return err
			}

			var taken int64
			err := tx.Model(&Booking{}).
				Where("event_id = ? AND status = ?", booking.EventID, "CONFIRMED").
				Select("COALESCE(SUM(quantity), 0)").
				Scan(&taken).Error
			if err != nil {
				return err
			}

			if taken+int64(booking.Quantity) > int64(*limit) {
				return ErrNoCapacity
			}
		}

		return tx.Create(&booking).Error
	})
	if err != nil {
		if isDuplicateBooking(err) {
			return Booking{}, ErrBookingExists
		}

		return Booking{}, err
	}

	return booking, nil
}

func (d *BookingDAO) SumConfirmedQuantity(ctx context.Context, eventID uint) (int, error) {
	var sum int64

	result := d.db.WithContext(ctx).Model(&Booking{}).
		Where("event_id = ? AND status = ?", eventID, "CONFIRMED").
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum)
	if result.Error != nil {
		return 0, result.Error
	}

	return int(sum), nil
}

func (d *BookingDAO) FindByID(ctx context.Context, id uint) (Booking, error) {
	var booking Booking

	result := d.db.WithContext(ctx).First(&booking, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Booking{}, ErrBookingNotFound
		}

		return Booking{}, result.Error
	}

	return booking, nil
}

func (d *BookingDAO) FindByEventAndUser(ctx context.Context, eventID, userID uint) (Booking, error) {
	var booking Booking

	result := d.db.WithContext(ctx).
		First(&booking, "event_id = ? AND user_id = ?", eventID, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Booking{}, ErrBookingNotFound
		}

		return Booking{}, result.Error
	}

	return booking, nil
}

func (d *BookingDAO) FindByIntentID(ctx context.Context, intentID string) (Booking, error) {
	var booking Booking

	result := d.db.WithContext(ctx).
		First(&booking, "payment_intent_id = ?", intentID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Booking{}, ErrBookingNotFound
		}

		return Booking{}, result.Error
	}

	return booking, nil
}

func (d *BookingDAO) FindByUser(ctx context.Context, userID uint) ([]Booking, error) {
	var bookings []Booking

	result := d.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings)
	if result.Error != nil {
		return nil, result.Error
	}

	return bookings, nil
}

func isDuplicateBooking(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
