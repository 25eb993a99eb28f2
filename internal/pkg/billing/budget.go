package billing

// RejectReason tells the caller why a charge was denied.
type RejectReason string

const (
	ReasonNeedsCredits   RejectReason = "needs_credits"
	ReasonBudgetExceeded RejectReason = "budget_exceeded"
)

// BudgetDecision is the outcome of the budget gate. It carries no side
// effects; the credit ledger performs the actual mutation.
type BudgetDecision struct {
	Allowed bool
	Reason  RejectReason
}

// EvaluateBudget decides whether a vendor may be charged cost credits.
// maxDaily == 0 means the vendor has no daily cap. The decision is advisory
// outside a database transaction; the ledger re-evaluates it on locked rows.
func EvaluateBudget(balance, dailySpend, maxDaily, cost float64) BudgetDecision {
	if balance < cost {
		return BudgetDecision{Reason: ReasonNeedsCredits}
	}
	if maxDaily > 0 && dailySpend+cost > maxDaily {
		return BudgetDecision{Reason: ReasonBudgetExceeded}
	}
	return BudgetDecision{Allowed: true}
}
