package holdings

import (
	"errors"
	"math"
	"testing"

	"github.com/sambrennan/folio/internal/models"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		provider models.Provider
		want     string
		wantErr  bool
	}{
		{"uppercase passthrough", "AAPL", models.ProviderRobinhood, "AAPL", false},
		{"lowercase uppercased", "aapl", models.ProviderRobinhood, "AAPL", false},
		{"whitespace trimmed", "  MSFT ", models.ProviderSchwab, "MSFT", false},
		{"broker US suffix stripped", "AAPL.US", models.ProviderSchwab, "AAPL", false},
		{"broker NASDAQ suffix stripped", "TSLA.NASDAQ", models.ProviderRobinhood, "TSLA", false},
		{"bank exchange prefix stripped", "XNAS:AAPL", models.ProviderPlaid, "AAPL", false},
		{"bank nested prefix keeps last segment", "US:XNAS:GOOGL", models.ProviderAkoya, "GOOGL", false},
		{"bank symbol without prefix", "NVDA", models.ProviderPlaid, "NVDA", false},
		{"class share dot kept", "BRK.B", models.ProviderRobinhood, "BRK.B", false},
		{"empty symbol rejected", "", models.ProviderRobinhood, "", true},
		{"whitespace only rejected", "   ", models.ProviderPlaid, "", true},
		{"invalid characters rejected", "AA PL$", models.ProviderSchwab, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSymbol(tt.raw, tt.provider)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeSymbol(%q) expected error, got %q", tt.raw, got)
				}
				if !errors.Is(err, models.ErrInvalidSymbol) {
					t.Errorf("expected ErrInvalidSymbol, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeSymbol(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeHolding(t *testing.T) {
	account := &models.LinkedAccount{
		ID:       "acc-1",
		Name:     "Brokerage",
		Provider: models.ProviderRobinhood,
	}

	t.Run("valid holding", func(t *testing.T) {
		got, err := NormalizeHolding(models.RawHolding{
			Symbol:       "aapl",
			Quantity:     10.12345,
			AvgCost:      150.123456,
			CurrentPrice: 180.5,
		}, account)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Symbol != "AAPL" {
			t.Errorf("symbol = %q, want AAPL", got.Symbol)
		}
		if got.Quantity != 10.1235 {
			t.Errorf("quantity = %v, want 10.1235 (4 decimal places)", got.Quantity)
		}
		if got.AverageCost != 150.12 {
			t.Errorf("average cost = %v, want 150.12 (2 decimal places)", got.AverageCost)
		}
		if got.AccountID != "acc-1" {
			t.Errorf("account id = %q, want acc-1", got.AccountID)
		}
		if got.ID != "acc-1:AAPL" {
			t.Errorf("id = %q, want acc-1:AAPL", got.ID)
		}
		want := 10.1235 * 180.5
		if math.Abs(got.MarketValue-want) > 0.01 {
			t.Errorf("market value = %v, want about %v", got.MarketValue, want)
		}
	})

	malformed := []struct {
		name string
		raw  models.RawHolding
	}{
		{"NaN quantity", models.RawHolding{Symbol: "AAPL", Quantity: math.NaN(), AvgCost: 1, CurrentPrice: 1}},
		{"Inf price", models.RawHolding{Symbol: "AAPL", Quantity: 1, AvgCost: 1, CurrentPrice: math.Inf(1)}},
		{"negative quantity", models.RawHolding{Symbol: "AAPL", Quantity: -1, AvgCost: 1, CurrentPrice: 1}},
		{"negative cost", models.RawHolding{Symbol: "AAPL", Quantity: 1, AvgCost: -5, CurrentPrice: 1}},
		{"negative price", models.RawHolding{Symbol: "AAPL", Quantity: 1, AvgCost: 1, CurrentPrice: -2}},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeHolding(tt.raw, account)
			if !errors.Is(err, models.ErrMalformedHolding) {
				t.Errorf("expected ErrMalformedHolding, got %v", err)
			}
		})
	}

	t.Run("invalid symbol surfaces symbol error", func(t *testing.T) {
		_, err := NormalizeHolding(models.RawHolding{Symbol: "", Quantity: 1, AvgCost: 1, CurrentPrice: 1}, account)
		if !errors.Is(err, models.ErrInvalidSymbol) {
			t.Errorf("expected ErrInvalidSymbol, got %v", err)
		}
	})
}

func TestNormalizeHolding_BankCashPosition(t *testing.T) {
	account := &models.LinkedAccount{
		ID:       "acc-2",
		Name:     "Checking",
		Provider: models.ProviderPlaid,
	}

	got, err := NormalizeHolding(models.RawHolding{
		Symbol:       "USD",
		Quantity:     2500.50,
		AvgCost:      1,
		CurrentPrice: 1,
	}, account)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Symbol != "USD" {
		t.Errorf("symbol = %q, want USD", got.Symbol)
	}
	if got.MarketValue != 2500.50 {
		t.Errorf("market value = %v, want 2500.50", got.MarketValue)
	}
}
