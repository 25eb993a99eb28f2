package billing

import (
	"testing"

	"github.com/craftmarkt/craftmarkt/app/models"
)

func TestCostPerView(t *testing.T) {
	tests := []struct {
		bid     float64
		want    float64
		wantErr bool
	}{
		{bid: 1000, want: 10},
		{bid: 150, want: 1.5},
		{bid: 50, want: 0.5},
		{bid: 1, want: 0.01},
		{bid: 0, wantErr: true},
		{bid: -100, wantErr: true},
	}

	for _, tt := range tests {
		got, err := CostPerView(tt.bid)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("CostPerView(%v) expected error", tt.bid)
			}
			continue
		}
		if err != nil {
			t.Fatalf("CostPerView(%v) unexpected error: %v", tt.bid, err)
		}
		if got != tt.want {
			t.Fatalf("CostPerView(%v) = %v, want %v", tt.bid, got, tt.want)
		}
		if got <= 0 {
			t.Fatalf("CostPerView(%v) produced a non-positive cost", tt.bid)
		}
	}
}

func TestMinBidForTier(t *testing.T) {
	if MinBidForTier(models.TIER_STARTER) >= MinBidForTier(models.TIER_GROWTH) {
		t.Fatal("expected growth floor above starter")
	}
	if MinBidForTier(models.TIER_GROWTH) >= MinBidForTier(models.TIER_STANDARD) {
		t.Fatal("expected standard floor above growth")
	}
}

func TestValidateBid(t *testing.T) {
	if err := ValidateBid(models.TIER_STARTER, 50); err != nil {
		t.Fatalf("starter bid at the floor should pass: %v", err)
	}
	if err := ValidateBid(models.TIER_STANDARD, 75); err == nil {
		t.Fatal("standard tier bid below its floor should fail")
	}
	if err := ValidateBid(models.TIER_GROWTH, 0); err == nil {
		t.Fatal("zero bid should fail")
	}
}

func TestCreditPackages(t *testing.T) {
	packages := CreditPackages()
	if len(packages) == 0 {
		t.Fatal("expected a non-empty catalog")
	}

	var prev float64
	for _, p := range packages {
		if p.Credits <= 0 || p.PriceCents <= 0 {
			t.Fatalf("invalid package %+v", p)
		}
		if p.PricePerCredit <= 0 {
			t.Fatalf("package %v missing derived per-credit price", p.Credits)
		}
		if prev > 0 && p.PricePerCredit > prev {
			t.Fatalf("volume discount broken at %v credits", p.Credits)
		}
		prev = p.PricePerCredit
	}
}

func TestFindCreditPackage(t *testing.T) {
	pkg, err := FindCreditPackage(5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pkg.PriceCents != 4500 {
		t.Fatalf("5000-credit package price = %d, want 4500", pkg.PriceCents)
	}

	if _, err := FindCreditPackage(1234); err == nil {
		t.Fatal("expected ErrUnknownPackage")
	}
}
