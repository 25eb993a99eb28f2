package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	VENDOR_STATUS_PENDING   = "pending"
	VENDOR_STATUS_VERIFIED  = "verified"
	VENDOR_STATUS_SUSPENDED = "suspended"

	TIER_STARTER  = "starter"
	TIER_GROWTH   = "growth"
	TIER_STANDARD = "standard"
)

// Vendor is a marketplace seller with a prepaid view-credit balance.
// The balance and the cumulative counters are mutated only by the credit
// ledger; tier promotion is handled by account management.
type Vendor struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	DisplayName           string         `gorm:"type:varchar(150);not null" json:"display_name" validate:"required,min=2,max=150"`
	ContactEmail          string         `gorm:"type:varchar(200);uniqueIndex" json:"contact_email" validate:"required,email,max=200"`
	Status                string         `gorm:"type:varchar(20);default:'pending';index" json:"status" validate:"oneof=pending verified suspended"`
	Tier                  string         `gorm:"type:varchar(20);default:'starter'" json:"tier" validate:"oneof=starter growth standard"`
	ViewCredits           float64        `gorm:"type:decimal(12,4);not null;default:0" json:"view_credits"`
	TotalCreditsPurchased float64        `gorm:"type:decimal(14,4);not null;default:0" json:"total_credits_purchased"`
	TotalCreditsUsed      float64        `gorm:"type:decimal(14,4);not null;default:0" json:"total_credits_used"`
	TotalSpent            float64        `gorm:"type:decimal(14,4);not null;default:0" json:"total_spent"`
	DefaultBid            float64        `gorm:"type:decimal(10,4);not null;default:0" json:"default_bid" validate:"gte=0"`
	MaxDailyBudget        float64        `gorm:"type:decimal(12,4);not null;default:0" json:"max_daily_budget" validate:"gte=0"` // 0 = uncapped
	CurrentDailySpend     float64        `gorm:"type:decimal(12,4);not null;default:0" json:"current_daily_spend"`
	DailySpendDate        string         `gorm:"type:varchar(10);default:''" json:"daily_spend_date"` // YYYY-MM-DD (UTC), for lazy rollover
	ViewCount             uint           `gorm:"default:0" json:"view_count"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`
}

func (v *Vendor) Validate() error {
	val := validator.New()

	return val.Struct(v)
}

// IsVerified reports whether the vendor may receive billable views.
func (v *Vendor) IsVerified() bool {
	return v.Status == VENDOR_STATUS_VERIFIED
}

// CreateVendor builds a new, unverified vendor on the starter tier.
func CreateVendor(displayName, contactEmail string) (*Vendor, error) {
	v := &Vendor{
		DisplayName:  displayName,
		ContactEmail: contactEmail,
		Status:       VENDOR_STATUS_PENDING,
		Tier:         TIER_STARTER,
	}

	if err := v.Validate(); err != nil {
		return nil, err
	}

	return v, nil
}
