package domain

import "time"

// OpeningHours is one weekday's open range for an organizer that takes
// reservations. Weekdays without a row are closed.
type OpeningHours struct {
	ID          uint `json:"id"`
	OrganizerID uint `json:"organizer_id"`

	// Weekday follows time.Weekday numbering (Sunday = 0).
	Weekday int `json:"weekday"`

	// OpensAt and ClosesAt are "HH:MM" in the organizer's local time.
	OpensAt  string `json:"opens_at"`
	ClosesAt string `json:"closes_at"`
}

// ReservationConfig is everything the reservation flow needs to offer
// dates and slots for one organizer.
type ReservationConfig struct {
	OrganizerID uint `json:"organizer_id"`

	// PartyLimit caps the size of a single reservation party. Nil
	// means unlimited.
	PartyLimit *int `json:"party_limit"`

	Hours []OpeningHours `json:"hours"`

	// UnavailableDates are days the organizer has blocked out, as
	// "YYYY-MM-DD" strings.
	UnavailableDates []string `json:"unavailable_dates"`
}

// TimeSlot is a single reservable 30 minute slot on a given day.
type TimeSlot struct {
	Start time.Time `json:"start"`
	Label string    `json:"label"`
}

// ReservationDay is one selectable date with its open slots. Dates
// inside the booking window that are blocked or closed come back with
// Disabled set so the client can grey them out.
type ReservationDay struct {
	Date     time.Time  `json:"date"`
	Disabled bool       `json:"disabled"`
	Slots    []TimeSlot `json:"slots"`
}

// DailyReservationEvent is the per-day event that reservation bookings
// attach to. It is created on demand, keyed (organizer, date).
type DailyReservationEvent struct {
	EventID     uint      `json:"event_id"`
	OrganizerID uint      `json:"organizer_id"`
	Date        time.Time `json:"date"`
}
