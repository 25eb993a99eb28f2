package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/craftmarkt/craftmarkt/app/models"
	"gorm.io/gorm"
)

// Rollups receives best-effort aggregate updates after billing events.
// Implementations must swallow their own failures; the charging path never
// waits on or fails because of them.
type Rollups interface {
	ViewQualified(e *models.ViewEvent)
	ViewCharged(e *models.ViewEvent, cost float64)
}

// Service is the credit ledger and qualification front door. All balance
// mutations in the system go through it.
type Service struct {
	repo    Repository
	rollups Rollups
}

// NewService creates a billing service from an injected repository. rollups
// may be nil when no aggregation sink is wired (tests, migrate tooling).
func NewService(repo Repository, rollups Rollups) *Service {
	return &Service{repo: repo, rollups: rollups}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, rollups Rollups) *Service {
	return NewService(NewRepository(db), rollups)
}

// PurchaseInput describes a credit purchase that has already been paid and
// verified upstream. PaymentRef is the external payment id and makes the
// purchase idempotent: resubmitting the same ref never credits twice.
type PurchaseInput struct {
	VendorID      uint
	Credits       float64
	AmountCents   int64
	PaymentMethod string
	PaymentRef    string
}

// Purchase credits a vendor balance and appends a purchase transaction.
func (s *Service) Purchase(ctx context.Context, in PurchaseInput) (*models.Transaction, error) {
	_ = ctx
	if in.Credits <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.repo.GetVendor(in.VendorID); err != nil {
		return nil, err
	}

	if in.PaymentRef != "" {
		if existing, err := s.repo.FindTransactionByPaymentRef(in.PaymentRef); err == nil {
			return existing, nil
		}
	}

	tx, err := s.repo.CreditVendor(in.VendorID, models.TRANSACTION_PURCHASE, in.Credits, CreditOptions{
		PaymentRef:    in.PaymentRef,
		PaymentMethod: in.PaymentMethod,
		AmountCents:   in.AmountCents,
		Description:   fmt.Sprintf("Purchase of %.0f view credits", in.Credits),
	})
	if err != nil && in.PaymentRef != "" {
		// A concurrent submission with the same payment ref may have won the
		// unique index race; the stored row is the authoritative outcome.
		if existing, ferr := s.repo.FindTransactionByPaymentRef(in.PaymentRef); ferr == nil {
			return existing, nil
		}
	}
	return tx, err
}

// PurchasePackage buys one fixed catalog package by credit amount.
func (s *Service) PurchasePackage(ctx context.Context, vendorID uint, credits float64, paymentMethod, paymentRef string) (*models.Transaction, error) {
	pkg, err := FindCreditPackage(credits)
	if err != nil {
		return nil, err
	}
	return s.Purchase(ctx, PurchaseInput{
		VendorID:      vendorID,
		Credits:       pkg.Credits,
		AmountCents:   pkg.PriceCents,
		PaymentMethod: paymentMethod,
		PaymentRef:    paymentRef,
	})
}

// GrantBonus credits a vendor without payment, admin-initiated.
func (s *Service) GrantBonus(ctx context.Context, vendorID uint, credits float64, description string) (*models.Transaction, error) {
	_ = ctx
	if credits <= 0 {
		return nil, ErrInvalidAmount
	}
	if description == "" {
		description = "Bonus credits"
	}
	return s.repo.CreditVendor(vendorID, models.TRANSACTION_BONUS, credits, CreditOptions{Description: description})
}

// Refund returns credits to a vendor, admin-initiated. No budget gate runs.
func (s *Service) Refund(ctx context.Context, vendorID uint, credits float64, description string) (*models.Transaction, error) {
	_ = ctx
	if credits <= 0 {
		return nil, ErrInvalidAmount
	}
	if description == "" {
		description = "Credit refund"
	}
	return s.repo.CreditVendor(vendorID, models.TRANSACTION_REFUND, credits, CreditOptions{Description: description})
}

// Statement returns a page of a vendor's ledger, newest first, plus the
// total row count for paging.
func (s *Service) Statement(ctx context.Context, vendorID uint, limit, offset int) ([]models.Transaction, int64, error) {
	_ = ctx
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if _, err := s.repo.GetVendor(vendorID); err != nil {
		return nil, 0, err
	}
	txs, err := s.repo.ListTransactions(vendorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.CountTransactions(vendorID)
	if err != nil {
		return nil, 0, err
	}
	return txs, count, nil
}

// Balance returns the current credit balance of a vendor.
func (s *Service) Balance(ctx context.Context, vendorID uint) (float64, error) {
	_ = ctx
	vendor, err := s.repo.GetVendor(vendorID)
	if err != nil {
		return 0, err
	}
	return vendor.ViewCredits, nil
}

// IsBusinessRejection reports whether err is a non-fatal ledger rejection
// the caller should translate into user messaging rather than a failure.
func IsBusinessRejection(err error) bool {
	return errors.Is(err, ErrInsufficientCredits) || errors.Is(err, ErrBudgetExceeded)
}
