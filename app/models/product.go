package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	PRODUCT_STATUS_ACTIVE   = "active"
	PRODUCT_STATUS_PAUSED   = "paused"
	PRODUCT_STATUS_ARCHIVED = "archived"

	PLACEMENT_STANDARD = "standard"
	PLACEMENT_FEATURED = "featured"
	PLACEMENT_PREMIUM  = "premium"
)

// Product is a vendor listing. CurrentBid is the price in credits the vendor
// pays per 100 qualified views; BudgetSpent is incremented by the credit
// ledger as a side effect of charging.
type Product struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	VendorID      uint           `gorm:"not null;index" json:"vendor_id"`
	Vendor        *Vendor        `gorm:"foreignKey:VendorID" json:"-"`
	Title         string         `gorm:"type:varchar(200);not null" json:"title"`
	Status        string         `gorm:"type:varchar(20);default:'active';index" json:"status"`
	PlacementTier string         `gorm:"type:varchar(20);default:'standard'" json:"placement_tier"`
	CurrentBid    float64        `gorm:"type:decimal(10,4);not null;default:0" json:"current_bid"`  // credits per 100 views
	DailyBudget   float64        `gorm:"type:decimal(12,4);not null;default:0" json:"daily_budget"` // 0 = unset
	TotalBudget   float64        `gorm:"type:decimal(12,4);not null;default:0" json:"total_budget"` // 0 = unset
	BudgetSpent   float64        `gorm:"type:decimal(12,4);not null;default:0" json:"budget_spent"`
	ViewCount     uint           `gorm:"default:0" json:"view_count"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsActive reports whether the listing can receive views.
func (p *Product) IsActive() bool {
	return p.Status == PRODUCT_STATUS_ACTIVE
}
