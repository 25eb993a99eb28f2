package billing

import (
	"context"
	"errors"

	"github.com/craftmarkt/craftmarkt/app/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
)

// MinQualifiedDuration is the dwell time (seconds, inclusive) an event needs
// to qualify for charging. Contact clicks are recorded but do not qualify an
// event by themselves.
const MinQualifiedDuration = 3.0

// QualifyInput carries the engagement signals reported after a view.
type QualifyInput struct {
	EventPublicID  string  `validate:"required,uuid4"`
	Duration       float64 `validate:"gte=0"` // seconds
	ScrollDepth    *int    `validate:"omitempty,gte=0,lte=100"`
	ClickedContact bool
}

// QualifyResult is the outcome of one qualification call.
type QualifyResult struct {
	Outcome    ChargeOutcome
	Qualified  bool
	Cost       float64
	NewBalance float64
}

// QualifyView evaluates engagement for a recorded view and, when the event
// qualifies and has not been billed, makes exactly one pricing -> budget ->
// ledger attempt. Calling it again on a charged event is a safe no-op; a
// rejected charge is terminal and is not retried here.
func (s *Service) QualifyView(ctx context.Context, in QualifyInput) (*QualifyResult, error) {
	if err := validator.New().Struct(in); err != nil {
		return nil, err
	}

	event, err := s.repo.GetViewEventByPublicID(in.EventPublicID)
	if err != nil {
		return nil, err
	}

	if event.CPVCharged {
		return &QualifyResult{Outcome: OutcomeAlreadyCharged, Qualified: true, Cost: event.CPVAmount}, nil
	}

	switch event.Status {
	case models.ViewStatusDuplicate, models.ViewStatusBot:
		// Terminal, never billed. Engagement is still recorded for analytics.
		s.recordEngagement(event, in)
		if err := s.repo.SaveViewEvent(event); err != nil {
			return nil, err
		}
		return &QualifyResult{Outcome: OutcomeNotBillable}, nil
	case models.ViewStatusNotQualified:
		return &QualifyResult{Outcome: OutcomeNotQualified}, nil
	case models.ViewStatusChargeRejected:
		return &QualifyResult{Outcome: rejectionOutcome(event.RejectReason), Qualified: true}, nil
	}

	s.recordEngagement(event, in)

	if event.Status == models.ViewStatusRecorded {
		next := models.ViewStatusNotQualified
		if in.Duration >= MinQualifiedDuration {
			next = models.ViewStatusQualified
		}
		if err := event.Transition(next); err != nil {
			return nil, err
		}
		if err := s.repo.SaveViewEvent(event); err != nil {
			return nil, err
		}
	}

	if event.Status == models.ViewStatusNotQualified {
		return &QualifyResult{Outcome: OutcomeNotQualified}, nil
	}

	// Qualified and unbilled: single charge attempt.
	result, err := s.chargeQualified(ctx, event)
	if err != nil {
		return nil, err
	}

	if result.Outcome == OutcomeCharged && s.rollups != nil {
		s.rollups.ViewQualified(event)
		s.rollups.ViewCharged(event, result.Cost)
	}
	return result, nil
}

func (s *Service) recordEngagement(event *models.ViewEvent, in QualifyInput) {
	event.ViewDuration = in.Duration
	if in.ScrollDepth != nil {
		event.ScrollDepth = in.ScrollDepth
	}
	if in.ClickedContact {
		event.ClickedContact = true
	}
}

// chargeQualified runs tier pricing, the budget gate and the ledger debit
// for a qualified event. Budget rejections transition the event to its
// terminal charge_rejected state; ledger persistence failures leave the
// event qualified-uncharged and fail closed.
func (s *Service) chargeQualified(ctx context.Context, event *models.ViewEvent) (*QualifyResult, error) {
	_ = ctx

	product, err := s.repo.GetProduct(event.ProductID)
	if err != nil {
		return nil, err
	}
	vendor, err := s.repo.GetVendor(event.VendorID)
	if err != nil {
		return nil, err
	}

	cost, err := CostPerView(product.CurrentBid)
	if err != nil {
		return nil, err
	}

	// Advisory pre-check; the ledger re-evaluates on locked rows.
	dailySpend := vendor.CurrentDailySpend
	if vendor.DailySpendDate != models.StatDateFor(nowFunc()) {
		dailySpend = 0
	}
	if decision := EvaluateBudget(vendor.ViewCredits, dailySpend, vendor.MaxDailyBudget, cost); !decision.Allowed {
		return s.rejectCharge(event, decision.Reason)
	}

	receipt, err := s.repo.ChargeView(event, product.CurrentBid, cost)
	switch {
	case err == nil:
		return &QualifyResult{
			Outcome:    OutcomeCharged,
			Qualified:  true,
			Cost:       cost,
			NewBalance: receipt.BalanceAfter,
		}, nil
	case errors.Is(err, ErrAlreadyCharged):
		return &QualifyResult{Outcome: OutcomeAlreadyCharged, Qualified: true, Cost: cost}, nil
	case errors.Is(err, ErrInsufficientCredits):
		return s.rejectCharge(event, ReasonNeedsCredits)
	case errors.Is(err, ErrBudgetExceeded):
		return s.rejectCharge(event, ReasonBudgetExceeded)
	default:
		return nil, err
	}
}

func (s *Service) rejectCharge(event *models.ViewEvent, reason RejectReason) (*QualifyResult, error) {
	if err := event.Transition(models.ViewStatusChargeRejected); err != nil {
		return nil, err
	}
	event.RejectReason = string(reason)
	if err := s.repo.SaveViewEvent(event); err != nil {
		log.Errorf("[Billing] failed to persist charge rejection for view %s: %v", event.PublicID, err)
		return nil, err
	}
	return &QualifyResult{Outcome: rejectionOutcome(string(reason)), Qualified: true}, nil
}

func rejectionOutcome(reason string) ChargeOutcome {
	if reason == string(ReasonBudgetExceeded) {
		return OutcomeBudgetExceeded
	}
	return OutcomeNeedsCredits
}
