package repository

import (
	"fmt"
	"time"

	"github.com/craftmarkt/craftmarkt/app/models"
	"gorm.io/gorm"
)

// viewEventRepository implements the ViewEventRepository interface
type viewEventRepository struct {
	db *gorm.DB
}

// NewViewEventRepository creates a new view event repository instance
func NewViewEventRepository(db *gorm.DB) ViewEventRepository {
	return &viewEventRepository{db: db}
}

// GetByID retrieves a view event by its ID
func (r *viewEventRepository) GetByID(id uint) (*models.ViewEvent, error) {
	var event models.ViewEvent
	err := r.db.First(&event, id).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetByPublicID retrieves a view event by its public UUID
func (r *viewEventRepository) GetByPublicID(publicID string) (*models.ViewEvent, error) {
	var event models.ViewEvent
	err := r.db.Where("public_id = ?", publicID).First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetByProductID retrieves view events for a listing, newest first
func (r *viewEventRepository) GetByProductID(productID uint, offset, limit int) ([]models.ViewEvent, error) {
	var events []models.ViewEvent
	err := r.db.Where("product_id = ?", productID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&events).Error
	return events, err
}

// GetByVendorID retrieves view events for a vendor, newest first
func (r *viewEventRepository) GetByVendorID(vendorID uint, offset, limit int) ([]models.ViewEvent, error) {
	var events []models.ViewEvent
	err := r.db.Where("vendor_id = ?", vendorID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&events).Error
	return events, err
}

// HasRecentBySession reports whether the session already viewed the listing
// since the given time. The recorder uses this as the dedupe fallback when
// redis is unavailable.
func (r *viewEventRepository) HasRecentBySession(productID uint, sessionID string, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.ViewEvent{}).
		Where("product_id = ? AND session_id = ? AND created_at >= ?", productID, sessionID, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByStatus counts view events in a given lifecycle status
func (r *viewEventRepository) CountByStatus(status models.ViewEventStatus) (int64, error) {
	var count int64
	err := r.db.Model(&models.ViewEvent{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// CountChargedSince counts a vendor's charged views since the given time
func (r *viewEventRepository) CountChargedSince(vendorID uint, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.ViewEvent{}).
		Where("vendor_id = ? AND cpv_charged = ? AND charged_at >= ?", vendorID, true, since).
		Count(&count).Error
	return count, err
}

// GetStatusBreakdown returns event counts per lifecycle status for a date range
func (r *viewEventRepository) GetStatusBreakdown(startDate, endDate time.Time) (map[models.ViewEventStatus]int64, error) {
	var results []struct {
		Status models.ViewEventStatus
		Count  int64
	}

	err := r.db.Model(&models.ViewEvent{}).
		Select("status, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("status").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get status breakdown: %w", err)
	}

	breakdown := make(map[models.ViewEventStatus]int64, len(results))
	for _, result := range results {
		breakdown[result.Status] = result.Count
	}

	return breakdown, nil
}
