package billing

import (
	"fmt"

	"github.com/craftmarkt/craftmarkt/app/models"
)

// Bids are expressed in credits per 100 views, so the per-view charge is
// always bid/100. The vendor tier never multiplies the charge; it only gates
// the minimum bid a vendor may set on a listing (enforced by the catalog
// layer through ValidateBid).

// CostPerView converts a listing bid into the per-view charge.
func CostPerView(bid float64) (float64, error) {
	if bid <= 0 {
		return 0, ErrInvalidBid
	}
	return bid / 100, nil
}

// MinBidForTier returns the lowest bid a vendor on the given tier may set.
func MinBidForTier(tier string) float64 {
	switch tier {
	case models.TIER_STANDARD:
		return 100
	case models.TIER_GROWTH:
		return 75
	default: // starter
		return 50
	}
}

// ValidateBid checks a vendor-chosen bid against the tier floor.
func ValidateBid(tier string, bid float64) error {
	if bid <= 0 {
		return ErrInvalidBid
	}
	if min := MinBidForTier(tier); bid < min {
		return fmt.Errorf("%w: tier %s requires at least %.0f credits per 100 views", ErrInvalidBid, tier, min)
	}
	return nil
}

// CreditPackage is one fixed entry of the purchase catalog.
type CreditPackage struct {
	Credits        float64 `json:"credits"`
	PriceCents     int64   `json:"price_cents"`
	PricePerCredit float64 `json:"price_per_credit"`
}

// creditPackages is the static purchase catalog. Prices are fixed, not
// computed; larger packages carry a volume discount.
var creditPackages = []CreditPackage{
	{Credits: 1000, PriceCents: 1000},
	{Credits: 5000, PriceCents: 4500},
	{Credits: 10000, PriceCents: 8000},
	{Credits: 25000, PriceCents: 17500},
	{Credits: 50000, PriceCents: 30000},
}

// CreditPackages returns the purchase catalog with derived per-credit prices.
func CreditPackages() []CreditPackage {
	out := make([]CreditPackage, len(creditPackages))
	for i, p := range creditPackages {
		p.PricePerCredit = float64(p.PriceCents) / 100 / p.Credits
		out[i] = p
	}
	return out
}

// FindCreditPackage resolves a catalog entry by credit amount.
func FindCreditPackage(credits float64) (*CreditPackage, error) {
	for _, p := range CreditPackages() {
		if p.Credits == credits {
			pkg := p
			return &pkg, nil
		}
	}
	return nil, ErrUnknownPackage
}
