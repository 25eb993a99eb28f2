package repository

import (
	"strings"

	"github.com/craftmarkt/craftmarkt/app/models"
	"gorm.io/gorm"
)

// productRepository implements the ProductRepository interface
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository instance
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a new listing in the database
func (r *productRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// GetByID retrieves a listing by its ID
func (r *productRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByVendorID retrieves a vendor's listings, newest first
func (r *productRepository) GetByVendorID(vendorID uint, offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("vendor_id = ?", vendorID).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&products).Error
	return products, err
}

// GetActive retrieves active listings for the public catalog
func (r *productRepository) GetActive(offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("status = ?", models.PRODUCT_STATUS_ACTIVE).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&products).Error
	return products, err
}

// Update updates an existing listing in the database
func (r *productRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete soft deletes a listing by its ID
func (r *productRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

// Count returns the total number of listings
func (r *productRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Count(&count).Error
	return count, err
}

// CountByVendorID returns the number of listings for a vendor
func (r *productRepository) CountByVendorID(vendorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Where("vendor_id = ?", vendorID).Count(&count).Error
	return count, err
}

// Search searches listings by title
func (r *productRepository) Search(query string) ([]models.Product, error) {
	var products []models.Product
	searchPattern := "%" + strings.TrimSpace(query) + "%"
	err := r.db.Where("title LIKE ?", searchPattern).Find(&products).Error
	return products, err
}

// GetTopByViews returns the most viewed active listings
func (r *productRepository) GetTopByViews(limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("status = ?", models.PRODUCT_STATUS_ACTIVE).
		Order("view_count DESC").Limit(limit).
		Find(&products).Error
	return products, err
}

// GetOverBudget returns active listings whose lifetime spend reached their total budget
func (r *productRepository) GetOverBudget() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("status = ? AND total_budget > 0 AND budget_spent >= total_budget", models.PRODUCT_STATUS_ACTIVE).
		Find(&products).Error
	return products, err
}
