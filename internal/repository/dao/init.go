package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&MusicProfile{},
		&Event{},
		&Booking{},
		&PaymentAttempt{},
		&OpeningHours{},
		&UnavailableDate{},
		&ReservationSetting{},
	)
}
