package billing

import (
	"errors"
	"time"
)

// nowFunc is swapped in tests to pin the daily-budget rollover date.
var nowFunc = time.Now

// Sentinel errors returned across the billing core. Validation failures are
// errors; business rejections (needs credits, budget exceeded) surface as
// ChargeOutcome values instead so callers can prompt a top-up.
var (
	ErrEventNotFound       = errors.New("view event not found")
	ErrVendorNotFound      = errors.New("vendor not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrAlreadyCharged      = errors.New("view event already charged")
	ErrInsufficientCredits = errors.New("insufficient view credits")
	ErrBudgetExceeded      = errors.New("daily budget exceeded")
	ErrInvalidBid          = errors.New("bid must be positive")
	ErrInvalidAmount       = errors.New("credit amount must be positive")
	ErrBalanceMoved        = errors.New("vendor balance changed during repair")
	ErrUnknownPackage      = errors.New("no credit package for that amount")
)

// ChargeOutcome is the machine-readable result of a qualification/charge
// attempt.
type ChargeOutcome string

const (
	OutcomeCharged        ChargeOutcome = "charged"
	OutcomeAlreadyCharged ChargeOutcome = "already_charged"
	OutcomeNotBillable    ChargeOutcome = "not_billable" // duplicate or bot, terminal
	OutcomeNotQualified   ChargeOutcome = "not_qualified"
	OutcomeNeedsCredits   ChargeOutcome = "needs_credits"
	OutcomeBudgetExceeded ChargeOutcome = "budget_exceeded"
)

// ChargeReceipt reports the ledger effect of a successful charge.
type ChargeReceipt struct {
	TransactionID uint
	BalanceBefore float64
	BalanceAfter  float64
}

// CreditOptions carries the optional metadata for purchase/bonus/refund
// ledger entries.
type CreditOptions struct {
	PaymentRef    string
	PaymentMethod string
	AmountCents   int64
	Description   string
}
