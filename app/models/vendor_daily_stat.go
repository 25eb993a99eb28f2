package models

import "time"

// VendorDailyStat is the per-vendor per-day rollup used by reporting
// dashboards. It is maintained best-effort outside the ledger path and may
// lose rare increments; it is never used for billing decisions.
type VendorDailyStat struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	VendorID        uint      `gorm:"not null;uniqueIndex:ux_vendor_daily_stats_vendor_date" json:"vendor_id"`
	StatDate        string    `gorm:"type:varchar(10);not null;uniqueIndex:ux_vendor_daily_stats_vendor_date" json:"stat_date"` // YYYY-MM-DD (UTC)
	Views           int64     `gorm:"not null;default:0" json:"views"`
	QualifiedViews  int64     `gorm:"not null;default:0" json:"qualified_views"`
	ContactClicks   int64     `gorm:"not null;default:0" json:"contact_clicks"`
	CreditsSpent    float64   `gorm:"type:decimal(12,4);not null;default:0" json:"credits_spent"`
	ComparisonViews int64     `gorm:"not null;default:0" json:"comparison_views"`
	DirectViews     int64     `gorm:"not null;default:0" json:"direct_views"`
	SearchViews     int64     `gorm:"not null;default:0" json:"search_views"`
	CategoryViews   int64     `gorm:"not null;default:0" json:"category_views"`
	MobileViews     int64     `gorm:"not null;default:0" json:"mobile_views"`
	TabletViews     int64     `gorm:"not null;default:0" json:"tablet_views"`
	DesktopViews    int64     `gorm:"not null;default:0" json:"desktop_views"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// StatDateFor formats the rollup bucket for a point in time (UTC days).
func StatDateFor(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
