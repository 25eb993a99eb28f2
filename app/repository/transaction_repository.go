package repository

import (
	"fmt"
	"time"

	"github.com/craftmarkt/craftmarkt/app/models"
	"gorm.io/gorm"
)

// transactionRepository implements the TransactionRepository interface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// GetByID retrieves a ledger entry by its ID
func (r *transactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.First(&tx, id).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// GetByVendorID retrieves a vendor's ledger entries, newest first
func (r *transactionRepository) GetByVendorID(vendorID uint, offset, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.Where("vendor_id = ?", vendorID).
		Order("created_at DESC, id DESC").Offset(offset).Limit(limit).
		Find(&txs).Error
	return txs, err
}

// GetByType retrieves a vendor's ledger entries of one type, newest first
func (r *transactionRepository) GetByType(vendorID uint, txType string, offset, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.Where("vendor_id = ? AND transaction_type = ?", vendorID, txType).
		Order("created_at DESC, id DESC").Offset(offset).Limit(limit).
		Find(&txs).Error
	return txs, err
}

// CountByVendorID returns the number of ledger entries for a vendor
func (r *transactionRepository) CountByVendorID(vendorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Transaction{}).Where("vendor_id = ?", vendorID).Count(&count).Error
	return count, err
}

// SumByType sums the credit changes of one transaction type for a vendor
func (r *transactionRepository) SumByType(vendorID uint, txType string) (float64, error) {
	var sum float64
	err := r.db.Model(&models.Transaction{}).
		Where("vendor_id = ? AND transaction_type = ?", vendorID, txType).
		Select("COALESCE(SUM(credit_change), 0)").Row().Scan(&sum)
	return sum, err
}

// GetRevenueDailyStats returns daily purchase revenue in cents for a date range
func (r *transactionRepository) GetRevenueDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error) {
	var results []struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}

	err := r.db.Model(&models.Transaction{}).
		Select("DATE_FORMAT(created_at, '%Y-%m-%d') as date, COALESCE(SUM(amount_cents), 0) as count").
		Where("transaction_type = ? AND created_at BETWEEN ? AND ?", models.TRANSACTION_PURCHASE, startDate, endDate).
		Group("DATE_FORMAT(created_at, '%Y-%m-%d')").
		Order("date").
		Find(&results).Error

	if err != nil {
		return nil, fmt.Errorf("failed to get daily revenue stats: %w", err)
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
