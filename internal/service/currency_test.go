package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventCountrySource struct {
	countries []string
	err       error
}

func (f *fakeEventCountrySource) FindCountriesByOrganizer(_ context.Context, _ uint) ([]string, error) {
	return f.countries, f.err
}

func TestCurrencyForCountry(t *testing.T) {
	tests := []struct {
		country string
		want    string
	}{
		{"Singapore", "SGD"},
		{"Japan", "JPY"},
		{"United States", "USD"},
		{"France", "EUR"},
		{"Atlantis", "USD"}, // unmapped falls back to USD
		{"", "USD"},
	}

	for _, tc := range tests {
		t.Run(tc.country, func(t *testing.T) {
			assert.Equal(t, tc.want, CurrencyForCountry(tc.country))
		})
	}
}

func TestCurrencySymbol_UnknownCodeFallsBackToCode(t *testing.T) {
	assert.Equal(t, "$", CurrencySymbol("USD"))
	assert.Equal(t, "¥", CurrencySymbol("JPY"))
	assert.Equal(t, "XYZ", CurrencySymbol("XYZ"))
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		code   string
		want   string
	}{
		{"JPY drops decimals and groups thousands", "1000", "JPY", "¥1,000"},
		{"KWD keeps three decimals", "1.5", "KWD", "د.ك1.500"},
		{"USD rounds to two decimals", "9.999", "USD", "$10.00"},
		{"USD plain", "25", "USD", "$25.00"},
		{"KRW large amount", "1234567", "KRW", "₩1,234,567"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tc.amount)
			require.NoError(t, err)

			assert.Equal(t, tc.want, FormatPrice(amount, tc.code))
		})
	}
}

func TestConvert_IdentityWhenSameCurrency(t *testing.T) {
	svc := NewCurrencyService("http://unreachable.invalid/convert", &fakeEventCountrySource{})

	amount := decimal.NewFromInt(42)
	got, ok := svc.Convert(context.Background(), amount, "usd", "USD")

	assert.True(t, ok)
	assert.True(t, amount.Equal(got))
}

func TestConvert_RemoteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req convertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "USD", req.From)
		assert.Equal(t, "SGD", req.To)

		converted := decimal.NewFromFloat(13.5)
		json.NewEncoder(w).Encode(convertResponse{ConvertedAmount: &converted})
	}))
	defer server.Close()

	svc := NewCurrencyService(server.URL, &fakeEventCountrySource{})

	got, ok := svc.Convert(context.Background(), decimal.NewFromInt(10), "USD", "SGD")

	assert.True(t, ok)
	assert.True(t, decimal.NewFromFloat(13.5).Equal(got))
}

func TestConvert_RemoteFailureReturnsOriginalAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewCurrencyService(server.URL, &fakeEventCountrySource{})

	amount := decimal.NewFromInt(10)
	got, ok := svc.Convert(context.Background(), amount, "USD", "SGD")

	assert.False(t, ok)
	assert.True(t, amount.Equal(got))
}

func TestOrganizerCurrency(t *testing.T) {
	tests := []struct {
		name      string
		countries []string
		want      string
	}{
		{"no events falls back to SGD", nil, "SGD"},
		{"single country uses its currency", []string{"Japan"}, "JPY"},
		{"multi country settles in SGD", []string{"Japan", "France"}, "SGD"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewCurrencyService("", &fakeEventCountrySource{countries: tc.countries})

			got, err := svc.OrganizerCurrency(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
