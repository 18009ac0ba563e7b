package dao

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrAttemptNotFound  = errors.New("payment attempt not found")
	ErrAttemptFinalized = errors.New("payment attempt already finalized")
)

type PaymentAttempt struct {
	ID uint `gorm:"primaryKey"`

	EventID uint `gorm:"not null;index"`
	UserID  uint `gorm:"not null;index"`

	Quantity int             `gorm:"not null"`
	Amount   decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	Currency string          `gorm:"not null"`

	State   string `gorm:"not null;index"`
	Context string `gorm:"not null"` // "EMBEDDED" or "REDIRECT"

	IntentID     string `gorm:"uniqueIndex"`
	ClientSecret string

	FailureMessage string

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type PaymentAttemptDAO struct {
	db *gorm.DB
}

func NewPaymentAttemptDAO(db *gorm.DB) *PaymentAttemptDAO {
	return &PaymentAttemptDAO{
		db: db,
	}
}

func (d *PaymentAttemptDAO) Insert(ctx context.Context, attempt PaymentAttempt) (PaymentAttempt, error) {
	result := d.db.WithContext(ctx).Create(&attempt)
	if result.Error != nil {
		return PaymentAttempt{}, result.Error
	}

	return attempt, nil
}

func (d *PaymentAttemptDAO) FindByIntentID(ctx context.Context, intentID string) (PaymentAttempt, error) {
	var attempt PaymentAttempt

	result := d.db.WithContext(ctx).First(&attempt, "intent_id = ?", intentID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return PaymentAttempt{}, ErrAttemptNotFound
		}

		return PaymentAttempt{}, result.Error
	}

	return attempt, nil
}

func (d *PaymentAttemptDAO) Update(ctx context.Context, attempt PaymentAttempt) (PaymentAttempt, error) {
	result := d.db.WithContext(ctx).Save(&attempt)
	if result.Error != nil {
		return PaymentAttempt{}, result.Error
	}

	return attempt, nil
}

// Transition moves the attempt identified by intentID from one state
// to another. The conditional update makes finalization first-wins:
// a second caller finds zero rows affected and gets ErrAttemptFinalized.
func (d *PaymentAttemptDAO) Transition(ctx context.Context, intentID, from, to, failureMessage string) (PaymentAttempt, error) {
	result := d.db.WithContext(ctx).Model(&PaymentAttempt{}).
		Where("intent_id = ? AND state = ?", intentID, from).
		Updates(map[string]interface{}{
			"state":           to,
			"failure_message": failureMessage,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return PaymentAttempt{}, result.Error
	}

	if result.RowsAffected == 0 {
		if _, err := d.FindByIntentID(ctx, intentID); err != nil {
			return PaymentAttempt{}, err
		}

		return PaymentAttempt{}, ErrAttemptFinalized
	}

	return d.FindByIntentID(ctx, intentID)
}
