package statistics

import (
	"encoding/json"
	"time"

	"github.com/craftmarkt/craftmarkt/app/models"
	"github.com/craftmarkt/craftmarkt/internal/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RollupDelta is one increment against a vendor's daily rollup row. Deltas
// travel through the best-effort job queue; a lost delta skews a dashboard,
// never a balance.
type RollupDelta struct {
	VendorID        uint    `json:"vendor_id"`
	StatDate        string  `json:"stat_date"`
	Views           int64   `json:"views,omitempty"`
	QualifiedViews  int64   `json:"qualified_views,omitempty"`
	ContactClicks   int64   `json:"contact_clicks,omitempty"`
	CreditsSpent    float64 `json:"credits_spent,omitempty"`
	ComparisonViews int64   `json:"comparison_views,omitempty"`
	DirectViews     int64   `json:"direct_views,omitempty"`
	SearchViews     int64   `json:"search_views,omitempty"`
	CategoryViews   int64   `json:"category_views,omitempty"`
	MobileViews     int64   `json:"mobile_views,omitempty"`
	TabletViews     int64   `json:"tablet_views,omitempty"`
	DesktopViews    int64   `json:"desktop_views,omitempty"`
}

// DeltaForView maps a freshly recorded event to its rollup increment.
func DeltaForView(e *models.ViewEvent) RollupDelta {
	d := RollupDelta{
		VendorID: e.VendorID,
		StatDate: models.StatDateFor(time.Now()),
		Views:    1,
	}

	switch e.ViewType {
	case models.VIEW_TYPE_COMPARISON:
		d.ComparisonViews = 1
	case models.VIEW_TYPE_SEARCH:
		d.SearchViews = 1
	case models.VIEW_TYPE_CATEGORY:
		d.CategoryViews = 1
	default:
		d.DirectViews = 1
	}

	switch e.DeviceType {
	case models.DEVICE_MOBILE:
		d.MobileViews = 1
	case models.DEVICE_TABLET:
		d.TabletViews = 1
	default:
		d.DesktopViews = 1
	}
	return d
}

// DeltaForQualified counts a qualification (and contact click, if any).
func DeltaForQualified(e *models.ViewEvent) RollupDelta {
	d := RollupDelta{
		VendorID:       e.VendorID,
		StatDate:       models.StatDateFor(time.Now()),
		QualifiedViews: 1,
	}
	if e.ClickedContact {
		d.ContactClicks = 1
	}
	return d
}

// DeltaForCharge counts the credits debited for a charged view.
func DeltaForCharge(e *models.ViewEvent, cost float64) RollupDelta {
	return RollupDelta{
		VendorID:     e.VendorID,
		StatDate:     models.StatDateFor(time.Now()),
		CreditsSpent: cost,
	}
}

// ApplyDelta upserts the daily rollup row with additive increments. MySQL
// resolves the (vendor, date) conflict in a single round trip.
func ApplyDelta(db *gorm.DB, d RollupDelta) error {
	if d.VendorID == 0 || d.StatDate == "" {
		return nil
	}

	row := models.VendorDailyStat{
		VendorID:        d.VendorID,
		StatDate:        d.StatDate,
		Views:           d.Views,
		QualifiedViews:  d.QualifiedViews,
		ContactClicks:   d.ContactClicks,
		CreditsSpent:    d.CreditsSpent,
		ComparisonViews: d.ComparisonViews,
		DirectViews:     d.DirectViews,
		SearchViews:     d.SearchViews,
		CategoryViews:   d.CategoryViews,
		MobileViews:     d.MobileViews,
		TabletViews:     d.TabletViews,
		DesktopViews:    d.DesktopViews,
	}

	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vendor_id"}, {Name: "stat_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"views":            gorm.Expr("views + VALUES(views)"),
			"qualified_views":  gorm.Expr("qualified_views + VALUES(qualified_views)"),
			"contact_clicks":   gorm.Expr("contact_clicks + VALUES(contact_clicks)"),
			"credits_spent":    gorm.Expr("credits_spent + VALUES(credits_spent)"),
			"comparison_views": gorm.Expr("comparison_views + VALUES(comparison_views)"),
			"direct_views":     gorm.Expr("direct_views + VALUES(direct_views)"),
			"search_views":     gorm.Expr("search_views + VALUES(search_views)"),
			"category_views":   gorm.Expr("category_views + VALUES(category_views)"),
			"mobile_views":     gorm.Expr("mobile_views + VALUES(mobile_views)"),
			"tablet_views":     gorm.Expr("tablet_views + VALUES(tablet_views)"),
			"desktop_views":    gorm.Expr("desktop_views + VALUES(desktop_views)"),
		}),
	}).Create(&row).Error
}

// ProcessRollupJob is the jobqueue processor for stat_rollup jobs.
func ProcessRollupJob(payload []byte) error {
	var d RollupDelta
	if err := json.Unmarshal(payload, &d); err != nil {
		return err
	}
	return ApplyDelta(database.GetDB(), d)
}
