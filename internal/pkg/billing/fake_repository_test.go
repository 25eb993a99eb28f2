package billing

import (
	"errors"
	"fmt"
	"time"

	"github.com/craftmarkt/craftmarkt/app/models"
	"gorm.io/gorm"
)

// fakeRepository emulates the gorm repository's transactional semantics in
// memory, including the cpv_charged compare-and-set and the guarded debit.
type fakeRepository struct {
	vendors   map[uint]*models.Vendor
	products  map[uint]*models.Product
	events    map[uint]*models.ViewEvent
	txs       []*models.Transaction
	nextTxID  uint
	chargeErr error // injected ledger persistence failure
	saveErr   error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		vendors:  make(map[uint]*models.Vendor),
		products: make(map[uint]*models.Product),
		events:   make(map[uint]*models.ViewEvent),
	}
}

func (f *fakeRepository) addVendor(v *models.Vendor) *models.Vendor {
	f.vendors[v.ID] = v
	return v
}

func (f *fakeRepository) addProduct(p *models.Product) *models.Product {
	f.products[p.ID] = p
	return p
}

func (f *fakeRepository) addEvent(e *models.ViewEvent) *models.ViewEvent {
	if e.ID == 0 {
		e.ID = uint(len(f.events) + 1)
	}
	f.events[e.ID] = e
	return e
}

func (f *fakeRepository) deductionsFor(eventID uint) []*models.Transaction {
	var out []*models.Transaction
	for _, tx := range f.txs {
		if tx.TransactionType == models.TRANSACTION_DEDUCTION && tx.ViewEventID != nil && *tx.ViewEventID == eventID {
			out = append(out, tx)
		}
	}
	return out
}

func (f *fakeRepository) GetViewEventByPublicID(publicID string) (*models.ViewEvent, error) {
	for _, e := range f.events {
		if e.PublicID == publicID {
			copied := *e
			return &copied, nil
		}
	}
	return nil, ErrEventNotFound
}

func (f *fakeRepository) SaveViewEvent(e *models.ViewEvent) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := *e
	f.events[e.ID] = &copied
	return nil
}

func (f *fakeRepository) GetVendor(id uint) (*models.Vendor, error) {
	v, ok := f.vendors[id]
	if !ok {
		return nil, ErrVendorNotFound
	}
	copied := *v
	return &copied, nil
}

func (f *fakeRepository) GetProduct(id uint) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeRepository) ChargeView(e *models.ViewEvent, bid, cost float64) (*ChargeReceipt, error) {
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}

	stored, ok := f.events[e.ID]
	if !ok {
		return nil, ErrEventNotFound
	}
	if stored.CPVCharged {
		return nil, ErrAlreadyCharged
	}

	vendor, ok := f.vendors[stored.VendorID]
	if !ok {
		return nil, ErrVendorNotFound
	}

	now := time.Now()
	today := models.StatDateFor(now)
	dailySpend := vendor.CurrentDailySpend
	if vendor.DailySpendDate != today {
		dailySpend = 0
	}
	decision := EvaluateBudget(vendor.ViewCredits, dailySpend, vendor.MaxDailyBudget, cost)
	if !decision.Allowed {
		if decision.Reason == ReasonBudgetExceeded {
			return nil, ErrBudgetExceeded
		}
		return nil, ErrInsufficientCredits
	}

	before := vendor.ViewCredits
	vendor.ViewCredits -= cost
	vendor.TotalCreditsUsed += cost
	vendor.TotalSpent += cost
	vendor.CurrentDailySpend = dailySpend + cost
	vendor.DailySpendDate = today

	stored.Status = models.ViewStatusCharged
	stored.CPVCharged = true
	stored.IsQualifiedView = true
	stored.CPVAmount = cost
	stored.BidSnapshot = bid
	stored.ChargedAt = &now

	f.nextTxID++
	ledger := models.NewTransaction(vendor.ID, models.TRANSACTION_DEDUCTION, -cost, before)
	ledger.ID = f.nextTxID
	ledger.ViewEventID = &stored.ID
	ledger.Description = fmt.Sprintf("CPV charge for view %s", stored.PublicID)
	f.txs = append(f.txs, ledger)

	if product, ok := f.products[stored.ProductID]; ok {
		product.BudgetSpent += cost
	}

	*e = *stored
	return &ChargeReceipt{TransactionID: ledger.ID, BalanceBefore: before, BalanceAfter: before - cost}, nil
}

func (f *fakeRepository) CreditVendor(vendorID uint, txType string, credits float64, opts CreditOptions) (*models.Transaction, error) {
	if credits <= 0 {
		return nil, ErrInvalidAmount
	}
	vendor, ok := f.vendors[vendorID]
	if !ok {
		return nil, ErrVendorNotFound
	}

	if opts.PaymentRef != "" {
		for _, tx := range f.txs {
			if tx.PaymentRef != nil && *tx.PaymentRef == opts.PaymentRef {
				return nil, errors.New("duplicate payment ref")
			}
		}
	}

	before := vendor.ViewCredits
	vendor.ViewCredits += credits
	if txType == models.TRANSACTION_PURCHASE {
		vendor.TotalCreditsPurchased += credits
	}

	f.nextTxID++
	ledger := models.NewTransaction(vendorID, txType, credits, before)
	ledger.ID = f.nextTxID
	ledger.PaymentMethod = opts.PaymentMethod
	ledger.AmountCents = opts.AmountCents
	ledger.Description = opts.Description
	if opts.PaymentRef != "" {
		ref := opts.PaymentRef
		ledger.PaymentRef = &ref
	}
	f.txs = append(f.txs, ledger)
	return ledger, nil
}

func (f *fakeRepository) FindTransactionByPaymentRef(ref string) (*models.Transaction, error) {
	for _, tx := range f.txs {
		if tx.PaymentRef != nil && *tx.PaymentRef == ref {
			return tx, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) ListTransactions(vendorID uint, limit, offset int) ([]models.Transaction, error) {
	var out []models.Transaction
	for i := len(f.txs) - 1; i >= 0; i-- {
		if f.txs[i].VendorID == vendorID {
			out = append(out, *f.txs[i])
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRepository) CountTransactions(vendorID uint) (int64, error) {
	var count int64
	for _, tx := range f.txs {
		if tx.VendorID == vendorID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) SumCreditChanges(vendorID uint) (float64, error) {
	var sum float64
	for _, tx := range f.txs {
		if tx.VendorID == vendorID {
			sum += tx.CreditChange
		}
	}
	return sum, nil
}

func (f *fakeRepository) ListVendorIDs() ([]uint, error) {
	var ids []uint
	for id := range f.vendors {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeRepository) RepairVendorBalance(vendorID uint, expected, balance float64) error {
	vendor, ok := f.vendors[vendorID]
	if !ok {
		return ErrVendorNotFound
	}
	if vendor.ViewCredits != expected {
		return ErrBalanceMoved
	}
	vendor.ViewCredits = balance
	return nil
}
