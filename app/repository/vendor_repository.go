package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/craftmarkt/craftmarkt/app/models"
	"gorm.io/gorm"
)

// vendorRepository implements the VendorRepository interface
type vendorRepository struct {
	db *gorm.DB
}

// NewVendorRepository creates a new vendor repository instance
func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db}
}

// Create creates a new vendor in the database
func (r *vendorRepository) Create(vendor *models.Vendor) error {
	return r.db.Create(vendor).Error
}

// GetByID retrieves a vendor by their ID
func (r *vendorRepository) GetByID(id uint) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.First(&vendor, id).Error
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// GetByEmail retrieves a vendor by their email address
func (r *vendorRepository) GetByEmail(email string) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.Where("contact_email = ?", email).First(&vendor).Error
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

// Update updates an existing vendor in the database
func (r *vendorRepository) Update(vendor *models.Vendor) error {
	return r.db.Save(vendor).Error
}

// Delete soft deletes a vendor by their ID
func (r *vendorRepository) Delete(id uint) error {
	return r.db.Delete(&models.Vendor{}, id).Error
}

// List retrieves a paginated list of vendors
func (r *vendorRepository) List(offset, limit int) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&vendors).Error
	return vendors, err
}

// Count returns the total number of vendors
func (r *vendorRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Vendor{}).Count(&count).Error
	return count, err
}

// Search searches for vendors by display name or contact email
func (r *vendorRepository) Search(query string) ([]models.Vendor, error) {
	var vendors []models.Vendor
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("display_name LIKE ? OR contact_email LIKE ?", searchPattern, searchPattern).Find(&vendors).Error
	return vendors, err
}

// GetWithSpend retrieves vendors with their lifetime spend aggregates
func (r *vendorRepository) GetWithSpend(offset, limit int) ([]VendorWithSpend, error) {
	var vendors []models.Vendor
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&vendors).Error
	if err != nil {
		return nil, err
	}

	var vendorsWithSpend []VendorWithSpend
	for _, vendor := range vendors {
		var charged int64
		err := r.db.Model(&models.ViewEvent{}).
			Where("vendor_id = ? AND cpv_charged = ?", vendor.ID, true).
			Count(&charged).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count charged views for vendor %d: %w", vendor.ID, err)
		}

		var spent float64
		err = r.db.Model(&models.Transaction{}).
			Where("vendor_id = ? AND transaction_type = ?", vendor.ID, models.TRANSACTION_DEDUCTION).
			Select("COALESCE(SUM(-credit_change), 0)").Row().Scan(&spent)
		if err != nil {
			return nil, fmt.Errorf("failed to sum spend for vendor %d: %w", vendor.ID, err)
		}

		var listings int64
		err = r.db.Model(&models.Product{}).
			Where("vendor_id = ? AND status = ?", vendor.ID, models.PRODUCT_STATUS_ACTIVE).
			Count(&listings).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count listings for vendor %d: %w", vendor.ID, err)
		}

		vendorsWithSpend = append(vendorsWithSpend, VendorWithSpend{
			Vendor:        vendor,
			ChargedViews:  charged,
			CreditsSpent:  spent,
			ActiveListing: listings,
		})
	}

	return vendorsWithSpend, nil
}

// GetLowBalance returns verified vendors whose credit balance fell under the threshold
func (r *vendorRepository) GetLowBalance(threshold float64) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.db.Where("status = ? AND view_credits < ?", models.VENDOR_STATUS_VERIFIED, threshold).
		Order("view_credits ASC").
		Find(&vendors).Error
	return vendors, err
}

// GetDailyStats returns daily vendor registration statistics for a date range
func (r *vendorRepository) GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	var results []struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}

	err := r.db.Model(&models.Vendor{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') as date, COUNT(*) as count").
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE_FORMAT(created_at, '%Y-%m-%d')").
		Order("date").
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get daily vendor stats: %w", err)
	}

	dailyStats := make([]models.DailyStats, len(results))
	for i, result := range results {
		dailyStats[i] = models.DailyStats{
			Date:  result.Date,
			Count: int(result.Count),
		}
	}

	return dailyStats, nil
}
