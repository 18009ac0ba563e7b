package repository

import (
	"context"
	"fmt"

	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/repository/dao"
)

var (
	ErrAttemptNotFound  = dao.ErrAttemptNotFound
	ErrAttemptFinalized = dao.ErrAttemptFinalized
)

type PaymentAttemptDAO interface {
	Insert(ctx context.Context, attempt dao.PaymentAttempt) (dao.PaymentAttempt, error)
	FindByIntentID(ctx context.Context, intentID string) (dao.PaymentAttempt, error)
	Update(ctx context.Context, attempt dao.PaymentAttempt) (dao.PaymentAttempt, error)
	Transition(ctx context.Context, intentID, from, to, failureMessage string) (dao.PaymentAttempt, error)
}

type PaymentAttemptRepository struct {
	dao PaymentAttemptDAO
}

func NewPaymentAttemptRepository(dao PaymentAttemptDAO) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{
		dao: dao,
	}
}

func (r *PaymentAttemptRepository) Create(ctx context.Context, attempt domain.PaymentAttempt) (domain.PaymentAttempt, error) {
	created, err := r.dao.Insert(ctx, dao.PaymentAttempt{
		EventID:      attempt.EventID,
		UserID:       attempt.UserID,
		Quantity:     attempt.Quantity,
		Amount:       attempt.Amount,
		Currency:     attempt.Currency,
		State:        string(attempt.State),
		Context:      string(attempt.Context),
		IntentID:     attempt.IntentID,
		ClientSecret: attempt.ClientSecret,
	})
	if err != nil {
		return domain.PaymentAttempt{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return r.daoToDomain(created), nil
}

func (r *PaymentAttemptRepository) FindByIntentID(ctx context.Context, intentID string) (domain.PaymentAttempt, error) {
	found, err := r.dao.FindByIntentID(ctx, intentID)
	if err != nil {
		return domain.PaymentAttempt{}, fmt.Errorf("r.dao.FindByIntentID -> %w", err)
	}

	return r.daoToDomain(found), nil
}

// Transition applies a conditional state change. Finalizing an already
// finalized attempt surfaces ErrAttemptFinalized.
func (r *PaymentAttemptRepository) Transition(ctx context.Context, intentID string, from, to domain.PaymentState, failureMessage string) (domain.PaymentAttempt, error) {
	updated, err := r.dao.Transition(ctx, intentID, string(from), string(to), failureMessage)
	if err != nil {
		return domain.PaymentAttempt{}, fmt.Errorf("r.dao.Transition -> %w", err)
	}

	return r.daoToDomain(updated), nil
}

func (r *PaymentAttemptRepository) daoToDomain(a dao.PaymentAttempt) domain.PaymentAttempt {
	return domain.PaymentAttempt{
		ID:             a.ID,
		EventID:        a.EventID,
		UserID:         a.UserID,
		Quantity:       a.Quantity,
		Amount:         a.Amount,
		Currency:       a.Currency,
		State:          domain.PaymentState(a.State),
		Context:        domain.ExecutionContext(a.Context),
		IntentID:       a.IntentID,
		ClientSecret:   a.ClientSecret,
		FailureMessage: a.FailureMessage,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}
