// Package payment implements the payment provider on top of Stripe.
package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"

	"github.com/vybr/booking-api/internal/service"
)

// threeDecimalCurrencies charge in 1/1000 units on the wire.
var threeDecimalCurrencies = map[string]bool{
	"BHD": true,
	"IQD": true,
	"JOD": true,
	"KWD": true,
	"OMR": true,
}

// zeroDecimalCurrencies charge in whole units on the wire.
var zeroDecimalCurrencies = map[string]bool{
	"BIF": true,
	"CLP": true,
	"DJF": true,
	"GNF": true,
	"JPY": true,
	"KMF": true,
	"KRW": true,
	"MGA": true,
	"PYG": true,
	"RWF": true,
	"UGX": true,
	"VND": true,
	"VUV": true,
	"XAF": true,
	"XOF": true,
	"XPF": true,
}

type StripeProvider struct {
	api *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &StripeProvider{
		api: api,
	}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, metadata map[string]string) (service.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:   stripe.Int64(minorUnits(amount, currency)),
		Currency: stripe.String(strings.ToLower(currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return service.Intent{}, fmt.Errorf("p.api.PaymentIntents.New -> %w", err)
	}

	if intent.ClientSecret == "" {
		return service.Intent{}, fmt.Errorf("payment intent %s has no client secret", intent.ID)
	}

	return service.Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (p *StripeProvider) GetIntentStatus(ctx context.Context, intentID string) (service.IntentStatus, error) {
	intent, err := p.api.PaymentIntents.Get(intentID, &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
	})
	if err != nil {
		return service.IntentStatus{}, fmt.Errorf("p.api.PaymentIntents.Get -> %w", err)
	}

	status := service.IntentStatus{}
	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		status.Succeeded = true
	case stripe.PaymentIntentStatusCanceled:
		status.Canceled = true
	default:
		if intent.LastPaymentError != nil {
			status.Message = intent.LastPaymentError.Msg
		}
		if status.Message == "" {
			status.Message = fmt.Sprintf("payment is in state %s", intent.Status)
		}
	}

	return status, nil
}

// minorUnits converts a decimal amount to the currency's smallest
// chargeable unit.
func minorUnits(amount decimal.Decimal, currency string) int64 {
	upper := strings.ToUpper(currency)
	switch {
	case zeroDecimalCurrencies[upper]:
		return amount.Round(0).IntPart()
	case threeDecimalCurrencies[upper]:
		return amount.Mul(decimal.NewFromInt(1000)).Round(0).IntPart()
	default:
		return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	}
}
