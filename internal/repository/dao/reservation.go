package dao

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDailyEventFunctionMissing means the get_or_create stored function
// is not installed in the database. The booking backend is unusable
// for reservations until it is.
var ErrDailyEventFunctionMissing = errors.New("daily reservation event function missing")

type OpeningHours struct {
	ID uint `gorm:"primaryKey"`

	OrganizerID uint `gorm:"not null;uniqueIndex:uni_hours_organizer_weekday,priority:1"`
	Weekday     int  `gorm:"not null;uniqueIndex:uni_hours_organizer_weekday,priority:2"`

	OpensAt  string `gorm:"not null"` // "HH:MM"
	ClosesAt string `gorm:"not null"`
}

type UnavailableDate struct {
	ID uint `gorm:"primaryKey"`

	OrganizerID uint      `gorm:"not null;uniqueIndex:uni_unavail_organizer_date,priority:1"`
	Date        time.Time `gorm:"type:date;not null;uniqueIndex:uni_unavail_organizer_date,priority:2"`
}

type ReservationSetting struct {
	OrganizerID uint `gorm:"primaryKey"`

	PartyLimit *int

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type ReservationDAO struct {
	db *gorm.DB
}

func NewReservationDAO(db *gorm.DB) *ReservationDAO {
	return &ReservationDAO{
		db: db,
	}
}

func (d *ReservationDAO) FindHoursByOrganizer(ctx context.Context, organizerID uint) ([]OpeningHours, error) {
	var hours []OpeningHours

	result := d.db.WithContext(ctx).
		Where("organizer_id = ?", organizerID).
		Order("weekday ASC").
		Find(&hours)
	if result.Error != nil {
		return nil, result.Error
	}

	return hours, nil
}

func (d *ReservationDAO) FindUnavailableDates(ctx context.Context, organizerID uint, from, to time.Time) ([]UnavailableDate, error) {
	var dates []UnavailableDate

	result := d.db.WithContext(ctx).
		Where("organizer_id = ? AND date >= ? AND date <= ?", organizerID, from, to).
		Find(&dates)
	if result.Error != nil {
		return nil, result.Error
	}

	return dates, nil
}

func (d *ReservationDAO) FindSettingByOrganizer(ctx context.Context, organizerID uint) (ReservationSetting, error) {
	var setting ReservationSetting

	result := d.db.WithContext(ctx).First(&setting, "organizer_id = ?", organizerID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ReservationSetting{OrganizerID: organizerID}, nil
		}

		return ReservationSetting{}, result.Error
	}

	return setting, nil
}

func (d *ReservationDAO) UpsertHours(ctx context.Context, hours OpeningHours) (OpeningHours, error) {
	result := d.db.WithContext(ctx).
		Where("organizer_id = ? AND weekday = ?", hours.OrganizerID, hours.Weekday).
		Assign(OpeningHours{OpensAt: hours.OpensAt, ClosesAt: hours.ClosesAt}).
		FirstOrCreate(&hours)
	if result.Error != nil {
		return OpeningHours{}, result.Error
	}

	return hours, nil
}

// GetOrCreateDailyEvent resolves the per-day reservation event for an
// organizer and date, creating it when absent. The work lives in a
// stored function so concurrent callers converge on one row.
func (d *ReservationDAO) GetOrCreateDailyEvent(ctx context.Context, organizerID uint, date time.Time, currency string) (uint, error) {
	var eventID uint

	result := d.db.WithContext(ctx).
		Raw("SELECT get_or_create_daily_reservation_event(?, ?, ?)", organizerID, date.Format("2006-01-02"), currency).
		Scan(&eventID)
	if result.Error != nil {
		var pgErr *pgconn.PgError
		if errors.As(result.Error, &pgErr) && pgErr.Code == pgerrcode.UndefinedFunction {
			return 0, ErrDailyEventFunctionMissing
		}

		return 0, result.Error
	}

	return eventID, nil
}
