package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrEventNotFound = errors.New("event not found")

type Event struct {
	ID uint `gorm:"primaryKey"`

	Title       string `gorm:"not null"`
	Description string
	Location    string
	Country     string `gorm:"index"`

	StartsAt    time.Time `gorm:"not null"`
	BookingType string    `gorm:"not null"` // "TICKETED", "RESERVATION" or "INFO_ONLY"

	Price         *decimal.Decimal `gorm:"type:numeric(12,3)"`
	Currency      string
	PassFeeToUser bool `gorm:"not null;default:true"`

	AttendeeLimit *int

	// Comma separated lists, split at the repository boundary.
	Images  string
	Artists string
	Genres  string
	Songs   string

	OrganizerID uint `gorm:"index;uniqueIndex:uni_events_daily,priority:1"`

	// ReservationDate is set only on daily reservation events created
	// by get_or_create_daily_reservation_event.
	ReservationDate *time.Time `gorm:"type:date;uniqueIndex:uni_events_daily,priority:2"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type EventDAO struct {
	db *gorm.DB
}

func NewEventDAO(db *gorm.DB) *EventDAO {
	return &EventDAO{
		db: db,
	}
}

func (d *EventDAO) FindByID(ctx context.Context, id uint) (Event, error) {
	var event Event

	result := d.db.WithContext(ctx).First(&event, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Event{}, ErrEventNotFound
		}

		return Event{}, result.Error
	}

	return event, nil
}

func (d *EventDAO) Insert(ctx context.Context, event Event) (Event, error) {
	result := d.db.WithContext(ctx).Create(&event)
	if result.Error != nil {
		return Event{}, result.Error
	}

	return event, nil
}

// FindRecommendationCandidates calls the stored function that selects
// upcoming events eligible for recommendation to the given user.
func (d *EventDAO) FindRecommendationCandidates(ctx context.Context, userID uint) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Raw("SELECT * FROM get_recommended_events_for_user(?)", userID).
		Scan(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// FindByUserCountry calls the stored function that selects upcoming
// events in the user's country.
func (d *EventDAO) FindByUserCountry(ctx context.Context, userID uint) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Raw("SELECT * FROM get_events_by_user_country(?)", userID).
		Scan(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}

// FindCountriesByOrganizer returns the distinct non-empty countries of
// an organizer's events, used by the currency resolver.
func (d *EventDAO) FindCountriesByOrganizer(ctx context.Context, organizerID uint) ([]string, error) {
	var countries []string

	result := d.db.WithContext(ctx).Model(&Event{}).
		Where("organizer_id = ? AND country <> ''", organizerID).
		Distinct().
		Pluck("country", &countries)
	if result.Error != nil {
		return nil, result.Error
	}

	return countries, nil
}

func (d *EventDAO) FindUpcoming(ctx context.Context, now time.Time) ([]Event, error) {
	var events []Event

	result := d.db.WithContext(ctx).
		Where("starts_at > ? AND reservation_date IS NULL", now).
		Order("starts_at ASC").
		Find(&events)
	if result.Error != nil {
		return nil, result.Error
	}

	return events, nil
}
