package repository

import (
	"time"

	"github.com/craftmarkt/craftmarkt/app/models"
	"gorm.io/gorm"
)

// VendorRepository defines the interface for vendor-related database operations
type VendorRepository interface {
	Create(vendor *models.Vendor) error
	GetByID(id uint) (*models.Vendor, error)
	GetByEmail(email string) (*models.Vendor, error)
	Update(vendor *models.Vendor) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Vendor, error)
	Count() (int64, error)
	Search(query string) ([]models.Vendor, error)
	GetWithSpend(offset, limit int) ([]VendorWithSpend, error)
	GetLowBalance(threshold float64) ([]models.Vendor, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// ProductRepository defines the interface for listing-related database operations
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id uint) (*models.Product, error)
	GetByVendorID(vendorID uint, offset, limit int) ([]models.Product, error)
	GetActive(offset, limit int) ([]models.Product, error)
	Update(product *models.Product) error
	Delete(id uint) error
	Count() (int64, error)
	CountByVendorID(vendorID uint) (int64, error)
	Search(query string) ([]models.Product, error)
	GetTopByViews(limit int) ([]models.Product, error)
	GetOverBudget() ([]models.Product, error)
}

// ViewEventRepository defines the interface for view event database operations
type ViewEventRepository interface {
	GetByID(id uint) (*models.ViewEvent, error)
	GetByPublicID(publicID string) (*models.ViewEvent, error)
	GetByProductID(productID uint, offset, limit int) ([]models.ViewEvent, error)
	GetByVendorID(vendorID uint, offset, limit int) ([]models.ViewEvent, error)
	HasRecentBySession(productID uint, sessionID string, since time.Time) (bool, error)
	CountByStatus(status models.ViewEventStatus) (int64, error)
	CountChargedSince(vendorID uint, since time.Time) (int64, error)
	GetStatusBreakdown(startDate, endDate time.Time) (map[models.ViewEventStatus]int64, error)
}

// TransactionRepository defines the interface for ledger read operations
type TransactionRepository interface {
	GetByID(id uint) (*models.Transaction, error)
	GetByVendorID(vendorID uint, offset, limit int) ([]models.Transaction, error)
	GetByType(vendorID uint, txType string, offset, limit int) ([]models.Transaction, error)
	CountByVendorID(vendorID uint) (int64, error)
	SumByType(vendorID uint, txType string) (float64, error)
	GetRevenueDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// QueueRepository defines the interface for inspecting the redis side of the
// billing pipeline (job backlog, dedupe windows, pending counters)
type QueueRepository interface {
	GetListLength(key string) (int64, error)
	GetTTL(key string) (time.Duration, error)
	FindKeysByPatterns(patterns []string) ([]string, error)
	DeleteKeys(keys []string) (int64, error)
	ClearDedupeWindows(productID uint) (int64, error)
}

// VendorWithSpend represents a vendor with lifetime spend aggregates
type VendorWithSpend struct {
	Vendor        models.Vendor
	ChargedViews  int64
	CreditsSpent  float64
	ActiveListing int64
}

// Repositories struct holds all repository instances
type Repositories struct {
	Vendor      VendorRepository
	Product     ProductRepository
	ViewEvent   ViewEventRepository
	Transaction TransactionRepository
	Queue       QueueRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Vendor:      NewVendorRepository(db),
		Product:     NewProductRepository(db),
		ViewEvent:   NewViewEventRepository(db),
		Transaction: NewTransactionRepository(db),
		Queue:       NewQueueRepository(),
	}
}
