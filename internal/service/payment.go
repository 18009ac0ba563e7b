package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vybr/booking-api/internal/domain"
	"github.com/vybr/booking-api/internal/monitoring"
	"github.com/vybr/booking-api/internal/repository"
)

var (
	ErrIntentFetchFailed = errors.New("could not obtain a payment intent")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrPaymentCanceled   = errors.New("payment canceled")
	ErrPaymentNotSettled = errors.New("payment is not settled")
	ErrAttemptNotFound   = repository.ErrAttemptNotFound
	ErrAttemptFinalized  = repository.ErrAttemptFinalized
)

// Intent is the provider-issued payment intent backing one attempt.
type Intent struct {
	ID           string
	ClientSecret string
}

// IntentStatus is the provider's current view of an intent.
type IntentStatus struct {
	Succeeded bool
	Canceled  bool
	Message   string
}

// PaymentProvider abstracts the payment backend.
type PaymentProvider interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (Intent, error)
	GetIntentStatus(ctx context.Context, intentID string) (IntentStatus, error)
}

type PaymentAttemptRepository interface {
	Create(ctx context.Context, attempt domain.PaymentAttempt) (domain.PaymentAttempt, error)
	FindByIntentID(ctx context.Context, intentID string) (domain.PaymentAttempt, error)
	Transition(ctx context.Context, intentID string, from, to domain.PaymentState, failureMessage string) (domain.PaymentAttempt, error)
}

// SheetConfig is what an embedded client needs to present its payment
// sheet.
type SheetConfig struct {
	ClientSecret        string `json:"client_secret"`
	MerchantDisplayName string `json:"merchant_display_name"`
	ReturnURL           string `json:"return_url"`
}

type PaymentService struct {
	attempts PaymentAttemptRepository
	provider PaymentProvider

	merchantDisplayName string
	returnURL           string
}

func NewPaymentService(attempts PaymentAttemptRepository, provider PaymentProvider, merchantDisplayName, returnURL string) *PaymentService {
	return &PaymentService{
		attempts:            attempts,
		provider:            provider,
		merchantDisplayName: merchantDisplayName,
		returnURL:           returnURL,
	}
}

// Start opens a paid booking attempt: it fetches a payment intent for
// the total amount and parks the attempt in AWAITING_PAYMENT_METHOD.
// An intent fetch failure ends the attempt before any payment UI can
// be shown.
func (s *PaymentService) Start(ctx context.Context, event domain.Event, userID uint, quantity int, execContext domain.ExecutionContext) (domain.PaymentAttempt, SheetConfig, error) {
	amount := event.Total(quantity)

	intent, err := s.provider.CreateIntent(ctx, amount, event.Currency, map[string]string{
		"event_id": fmt.Sprintf("%d", event.ID),
		"user_id":  fmt.Sprintf("%d", userID),
		"quantity": fmt.Sprintf("%d", quantity),
	})
	if err != nil {
		zap.L().Error("payment intent creation failed",
			zap.Uint("event_id", event.ID),
			zap.Uint("user_id", userID),
			zap.Error(err))

		return domain.PaymentAttempt{}, SheetConfig{}, ErrIntentFetchFailed
	}

	attempt, err := s.attempts.Create(ctx, domain.PaymentAttempt{
		EventID:      event.ID,
		UserID:       userID,
		Quantity:     quantity,
		Amount:       amount,
		Currency:     event.Currency,
		State:        domain.PaymentStateAwaitingPaymentMethod,
		Context:      execContext,
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
	})
	if err != nil {
		return domain.PaymentAttempt{}, SheetConfig{}, fmt.Errorf("s.attempts.Create -> %w", err)
	}

	return attempt, SheetConfig{
		ClientSecret:        intent.ClientSecret,
		MerchantDisplayName: s.merchantDisplayName,
		ReturnURL:           s.returnURL,
	}, nil
}

// Cancel records a user-dismissed payment as CANCELED. Cancellation is
// a normal outcome, not an error.
func (s *PaymentService) Cancel(ctx context.Context, intentID string) (domain.PaymentAttempt, error) {
	attempt, err := s.attempts.Transition(ctx, intentID,
		domain.PaymentStateAwaitingPaymentMethod, domain.PaymentStateCanceled, "")
	if err != nil {
		return domain.PaymentAttempt{}, fmt.Errorf("s.attempts.Transition -> %w", err)
	}
	monitoring.PaymentTransition(string(domain.PaymentStateCanceled))

	return attempt, nil
}

// Fail records a provider-reported failure with its message kept
// verbatim for display.
func (s *PaymentService) Fail(ctx context.Context, intentID, providerMessage string) (domain.PaymentAttempt, error) {
	attempt, err := s.attempts.Transition(ctx, intentID,
		domain.PaymentStateAwaitingPaymentMethod, domain.PaymentStateFailed, providerMessage)
	if err != nil {
		return domain.PaymentAttempt{}, fmt.Errorf("s.attempts.Transition -> %w", err)
	}
	monitoring.PaymentTransition(string(domain.PaymentStateFailed))

	return attempt, nil
}

// ConfirmSucceeded verifies the intent with the provider and moves the
// attempt to SUCCEEDED. The AWAITING_PAYMENT_METHOD -> CONFIRMING
// transition is conditional, so exactly one caller wins; everyone else
// gets ErrAttemptFinalized. The synchronous-success path and the
// redirect-return path both land here.
func (s *PaymentService) ConfirmSucceeded(ctx context.Context, intentID string) (domain.PaymentAttempt, error) {
	if _, err := s.attempts.Transition(ctx, intentID,
		domain.PaymentStateAwaitingPaymentMethod, domain.PaymentStateConfirming, ""); err != nil {
		if errors.Is(err, repository.ErrAttemptFinalized) {
			return domain.PaymentAttempt{}, ErrAttemptFinalized
		}

		return domain.PaymentAttempt{}, fmt.Errorf("s.attempts.Transition -> %w", err)
	}

	status, err := s.provider.GetIntentStatus(ctx, intentID)
	if err != nil {
		// Roll back so a later retry can re-verify.
		if _, rbErr := s.attempts.Transition(ctx, intentID,
			domain.PaymentStateConfirming, domain.PaymentStateAwaitingPaymentMethod, ""); rbErr != nil {
			zap.L().Error("failed to roll back confirming attempt",
				zap.String("intent_id", intentID),
				zap.Error(rbErr))
		}

		return domain.PaymentAttempt{}, fmt.Errorf("s.provider.GetIntentStatus -> %w", err)
	}

	switch {
	case status.Succeeded:
		attempt, err := s.attempts.Transition(ctx, intentID,
			domain.PaymentStateConfirming, domain.PaymentStateSucceeded, "")
		if err != nil {
			return domain.PaymentAttempt{}, fmt.Errorf("s.attempts.Transition -> %w", err)
		}
		monitoring.PaymentTransition(string(domain.PaymentStateSucceeded))

		return attempt, nil
	case status.Canceled:
		if _, err := s.attempts.Transition(ctx, intentID,
			domain.PaymentStateConfirming, domain.PaymentStateCanceled, ""); err != nil {
			return domain.PaymentAttempt{}, fmt.Errorf("s.attempts.Transition -> %w", err)
		}
		monitoring.PaymentTransition(string(domain.PaymentStateCanceled))

		return domain.PaymentAttempt{}, ErrPaymentCanceled
	default:
		if _, err := s.attempts.Transition(ctx, intentID,
			domain.PaymentStateConfirming, domain.PaymentStateFailed, status.Message); err != nil {
			return domain.PaymentAttempt{}, fmt.Errorf("s.attempts.Transition -> %w", err)
		}
		monitoring.PaymentTransition(string(domain.PaymentStateFailed))

		return domain.PaymentAttempt{FailureMessage: status.Message}, ErrPaymentFailed
	}
}

func (s *PaymentService) GetAttempt(ctx context.Context, intentID string) (domain.PaymentAttempt, error) {
	attempt, err := s.attempts.FindByIntentID(ctx, intentID)
	if err != nil {
		return domain.PaymentAttempt{}, fmt.Errorf("s.attempts.FindByIntentID -> %w", err)
	}

	return attempt, nil
}
