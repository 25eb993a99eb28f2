package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/craftmarkt/craftmarkt/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the persistence operations used by the billing
// service. ChargeView and CreditVendor are the only writers of vendor
// balances; both commit the balance mutation and the ledger row in one
// database transaction.
type Repository interface {
	GetViewEventByPublicID(publicID string) (*models.ViewEvent, error)
	SaveViewEvent(e *models.ViewEvent) error
	GetVendor(id uint) (*models.Vendor, error)
	GetProduct(id uint) (*models.Product, error)
	ChargeView(e *models.ViewEvent, bid, cost float64) (*ChargeReceipt, error)
	CreditVendor(vendorID uint, txType string, credits float64, opts CreditOptions) (*models.Transaction, error)
	FindTransactionByPaymentRef(ref string) (*models.Transaction, error)
	ListTransactions(vendorID uint, limit, offset int) ([]models.Transaction, error)
	CountTransactions(vendorID uint) (int64, error)
	SumCreditChanges(vendorID uint) (float64, error)
	ListVendorIDs() ([]uint, error)
	RepairVendorBalance(vendorID uint, expected, balance float64) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetViewEventByPublicID(publicID string) (*models.ViewEvent, error) {
	var e models.ViewEvent
	err := r.db.Where("public_id = ?", publicID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *gormRepository) SaveViewEvent(e *models.ViewEvent) error {
	return r.db.Save(e).Error
}

func (r *gormRepository) GetVendor(id uint) (*models.Vendor, error) {
	var v models.Vendor
	err := r.db.First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *gormRepository) GetProduct(id uint) (*models.Product, error) {
	var p models.Product
	err := r.db.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ChargeView debits the vendor for one qualified view. The whole unit runs
// in a single database transaction:
//
//  1. conditional flip of cpv_charged false->true, the single point of
//     truth for "already charged"; zero affected rows means another call won
//     the race and the method returns ErrAlreadyCharged,
//  2. vendor row locked FOR UPDATE, daily spend rolled over lazily, budget
//     re-evaluated on the locked values, balance debited with a >= cost
//     guard so view_credits can never go negative,
//  3. deduction ledger row appended with before/after snapshots (the unique
//     index on view_event_id is a second charge-exclusivity guard),
//  4. listing budget_spent incremented.
//
// Any failure rolls the entire unit back; a charge can never succeed without
// its ledger row.
func (r *gormRepository) ChargeView(e *models.ViewEvent, bid, cost float64) (*ChargeReceipt, error) {
	if cost <= 0 {
		return nil, ErrInvalidBid
	}

	now := time.Now()
	today := models.StatDateFor(now)
	var receipt *ChargeReceipt

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ViewEvent{}).
			Where("id = ? AND cpv_charged = ?", e.ID, false).
			Updates(map[string]interface{}{
				"cpv_charged":       true,
				"status":            string(models.ViewStatusCharged),
				"is_qualified_view": true,
				"cpv_amount":        cost,
				"bid_snapshot":      bid,
				"charged_at":        &now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCharged
		}

		var vendor models.Vendor
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&vendor, e.VendorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVendorNotFound
			}
			return err
		}

		dailySpend := vendor.CurrentDailySpend
		if vendor.DailySpendDate != today {
			dailySpend = 0
		}
		decision := EvaluateBudget(vendor.ViewCredits, dailySpend, vendor.MaxDailyBudget, cost)
		if !decision.Allowed {
			if decision.Reason == ReasonBudgetExceeded {
				return ErrBudgetExceeded
			}
			return ErrInsufficientCredits
		}

		before := vendor.ViewCredits
		res = tx.Model(&models.Vendor{}).
			Where("id = ? AND view_credits >= ?", vendor.ID, cost).
			Updates(map[string]interface{}{
				"view_credits":        gorm.Expr("view_credits - ?", cost),
				"total_credits_used":  gorm.Expr("total_credits_used + ?", cost),
				"total_spent":         gorm.Expr("total_spent + ?", cost),
				"current_daily_spend": dailySpend + cost,
				"daily_spend_date":    today,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientCredits
		}

		ledger := models.NewTransaction(vendor.ID, models.TRANSACTION_DEDUCTION, -cost, before)
		ledger.ViewEventID = &e.ID
		ledger.Description = fmt.Sprintf("CPV charge for view %s", e.PublicID)
		if err := tx.Create(ledger).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Product{}).Where("id = ?", e.ProductID).
			Update("budget_spent", gorm.Expr("budget_spent + ?", cost)).Error; err != nil {
			return err
		}

		receipt = &ChargeReceipt{
			TransactionID: ledger.ID,
			BalanceBefore: before,
			BalanceAfter:  before - cost,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Mirror the committed state on the in-memory event.
	e.Status = models.ViewStatusCharged
	e.CPVCharged = true
	e.IsQualifiedView = true
	e.CPVAmount = cost
	e.BidSnapshot = bid
	e.ChargedAt = &now
	return receipt, nil
}

// CreditVendor increases a vendor balance and appends the matching ledger
// row in one database transaction. Used for purchases, bonuses and refunds.
func (r *gormRepository) CreditVendor(vendorID uint, txType string, credits float64, opts CreditOptions) (*models.Transaction, error) {
	if credits <= 0 {
		return nil, ErrInvalidAmount
	}

	var ledger *models.Transaction
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var vendor models.Vendor
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&vendor, vendorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrVendorNotFound
			}
			return err
		}

		updates := map[string]interface{}{
			"view_credits": gorm.Expr("view_credits + ?", credits),
		}
		if txType == models.TRANSACTION_PURCHASE {
			updates["total_credits_purchased"] = gorm.Expr("total_credits_purchased + ?", credits)
		}
		if err := tx.Model(&models.Vendor{}).Where("id = ?", vendorID).Updates(updates).Error; err != nil {
			return err
		}

		ledger = models.NewTransaction(vendorID, txType, credits, vendor.ViewCredits)
		ledger.PaymentMethod = opts.PaymentMethod
		ledger.AmountCents = opts.AmountCents
		ledger.Description = opts.Description
		if opts.PaymentRef != "" {
			ref := opts.PaymentRef
			ledger.PaymentRef = &ref
		}
		return tx.Create(ledger).Error
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

func (r *gormRepository) FindTransactionByPaymentRef(ref string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.Where("payment_ref = ?", ref).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) ListTransactions(vendorID uint, limit, offset int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.Where("vendor_id = ?", vendorID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&txs).Error
	return txs, err
}

func (r *gormRepository) CountTransactions(vendorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Transaction{}).Where("vendor_id = ?", vendorID).Count(&count).Error
	return count, err
}

func (r *gormRepository) SumCreditChanges(vendorID uint) (float64, error) {
	var sum float64
	err := r.db.Model(&models.Transaction{}).
		Where("vendor_id = ?", vendorID).
		Select("COALESCE(SUM(credit_change), 0)").
		Scan(&sum).Error
	return sum, err
}

func (r *gormRepository) ListVendorIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Vendor{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// RepairVendorBalance overwrites a drifted balance, but only while it still
// holds the value the reconciler observed. A charge or credit committing in
// between leaves zero affected rows and the repair is reported as
// ErrBalanceMoved instead of clobbering the newer balance.
func (r *gormRepository) RepairVendorBalance(vendorID uint, expected, balance float64) error {
	res := r.db.Model(&models.Vendor{}).
		Where("id = ? AND view_credits = ?", vendorID, expected).
		Update("view_credits", balance)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBalanceMoved
	}
	return nil
}
