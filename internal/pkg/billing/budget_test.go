package billing

import "testing"

func TestEvaluateBudget(t *testing.T) {
	tests := []struct {
		name       string
		balance    float64
		dailySpend float64
		maxDaily   float64
		cost       float64
		allowed    bool
		reason     RejectReason
	}{
		{"plain allow", 50, 0, 0, 10, true, ""},
		{"insufficient balance", 5, 0, 0, 10, false, ReasonNeedsCredits},
		{"balance exactly covers cost", 10, 0, 0, 10, true, ""},
		{"cap already reached", 500, 100, 100, 10, false, ReasonBudgetExceeded},
		{"charge fits exactly under cap", 500, 90, 100, 10, true, ""},
		{"charge crosses the cap", 500, 95, 100, 10, false, ReasonBudgetExceeded},
		{"zero cap means uncapped", 500, 10000, 0, 10, true, ""},
		{"balance check wins over cap check", 5, 100, 100, 10, false, ReasonNeedsCredits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := EvaluateBudget(tt.balance, tt.dailySpend, tt.maxDaily, tt.cost)
			if d.Allowed != tt.allowed {
				t.Fatalf("Allowed = %v, want %v", d.Allowed, tt.allowed)
			}
			if !tt.allowed && d.Reason != tt.reason {
				t.Fatalf("Reason = %q, want %q", d.Reason, tt.reason)
			}
		})
	}
}
