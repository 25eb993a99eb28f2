package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TRANSACTION_PURCHASE  = "purchase"
	TRANSACTION_DEDUCTION = "deduction"
	TRANSACTION_BONUS     = "bonus"
	TRANSACTION_REFUND    = "refund"

	// Every persisted entry is completed: rejected or failed charges write
	// no ledger row at all.
	TRANSACTION_STATUS_COMPLETED = "completed"
)

// Transaction is one immutable credit-ledger entry. Rows are append-only:
// they are never updated or deleted, archival anonymizes but does not remove
// them. The unique index on ViewEventID is the schema-level guarantee that a
// view event is charged at most once; PaymentRef plays the same role for
// externally submitted purchases.
type Transaction struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	PublicID            string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"public_id"`
	VendorID            uint      `gorm:"not null;index" json:"vendor_id"`
	TransactionType     string    `gorm:"type:varchar(20);not null;index" json:"transaction_type"`
	Status              string    `gorm:"type:varchar(20);not null;default:'completed'" json:"status"`
	CreditChange        float64   `gorm:"type:decimal(12,4);not null" json:"credit_change"`
	CreditBalanceBefore float64   `gorm:"type:decimal(12,4);not null" json:"credit_balance_before"`
	CreditBalanceAfter  float64   `gorm:"type:decimal(12,4);not null" json:"credit_balance_after"`
	ViewEventID         *uint     `gorm:"uniqueIndex:ux_transactions_view_event;default:null" json:"view_event_id,omitempty"`
	PaymentRef          *string   `gorm:"type:varchar(100);uniqueIndex:ux_transactions_payment_ref;default:null" json:"payment_ref,omitempty"`
	PaymentMethod       string    `gorm:"type:varchar(50);default:''" json:"payment_method,omitempty"`
	AmountCents         int64     `gorm:"not null;default:0" json:"amount_cents"` // money paid, purchases only
	Description         string    `gorm:"type:varchar(255);default:''" json:"description"`
	CreatedAt           time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// NewTransaction builds a ledger entry with balance snapshots taken by the
// caller inside the same database transaction as the balance mutation.
func NewTransaction(vendorID uint, txType string, change, before float64) *Transaction {
	return &Transaction{
		PublicID:            uuid.New().String(),
		VendorID:            vendorID,
		TransactionType:     txType,
		Status:              TRANSACTION_STATUS_COMPLETED,
		CreditChange:        change,
		CreditBalanceBefore: before,
		CreditBalanceAfter:  before + change,
	}
}

// Consistent reports whether the snapshot arithmetic holds.
func (t *Transaction) Consistent() bool {
	const epsilon = 1e-6
	diff := t.CreditBalanceAfter - (t.CreditBalanceBefore + t.CreditChange)
	return diff < epsilon && diff > -epsilon
}
