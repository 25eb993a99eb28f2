package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ViewEventStatus is the explicit lifecycle state of a view event. The old
// scattered boolean flags (duplicate/bot/qualified/charged) are kept as
// queryable columns but are derived from the status by Transition and must
// never be written directly.
type ViewEventStatus string

const (
	ViewStatusRecorded       ViewEventStatus = "recorded"
	ViewStatusDuplicate      ViewEventStatus = "duplicate"
	ViewStatusBot            ViewEventStatus = "bot"
	ViewStatusQualified      ViewEventStatus = "qualified"
	ViewStatusNotQualified   ViewEventStatus = "not_qualified"
	ViewStatusCharged        ViewEventStatus = "charged"
	ViewStatusChargeRejected ViewEventStatus = "charge_rejected"
)

const (
	VIEW_TYPE_COMPARISON = "comparison"
	VIEW_TYPE_DIRECT     = "direct"
	VIEW_TYPE_SEARCH     = "search"
	VIEW_TYPE_CATEGORY   = "category"

	DEVICE_MOBILE  = "mobile"
	DEVICE_TABLET  = "tablet"
	DEVICE_DESKTOP = "desktop"
)

// viewTransitions is the only legal set of status moves. duplicate, bot,
// not_qualified, charged and charge_rejected are terminal.
var viewTransitions = map[ViewEventStatus][]ViewEventStatus{
	ViewStatusRecorded:  {ViewStatusQualified, ViewStatusNotQualified},
	ViewStatusQualified: {ViewStatusCharged, ViewStatusChargeRejected},
}

var ErrIllegalTransition = errors.New("illegal view event status transition")

// CanTransition reports whether moving from s to next is allowed.
func (s ViewEventStatus) CanTransition(next ViewEventStatus) bool {
	for _, allowed := range viewTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s ViewEventStatus) Terminal() bool {
	return len(viewTransitions[s]) == 0
}

// ViewEvent is one reported product-page view. Created once by the view
// recorder, evaluated at most once and never mutated again after charging.
type ViewEvent struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	PublicID        string          `gorm:"type:varchar(36);uniqueIndex;not null" json:"public_id"`
	ProductID       uint            `gorm:"not null;index:idx_view_events_product_session" json:"product_id"`
	VendorID        uint            `gorm:"not null;index" json:"vendor_id"`
	SessionID       string          `gorm:"type:varchar(100);not null;index:idx_view_events_product_session" json:"session_id"`
	UserID          *uint           `gorm:"default:null" json:"user_id,omitempty"`
	ViewType        string          `gorm:"type:varchar(20);not null" json:"view_type"`
	DeviceType      string          `gorm:"type:varchar(20);default:'desktop'" json:"device_type"`
	UserAgent       string          `gorm:"type:varchar(500)" json:"-"`
	Referrer        string          `gorm:"type:varchar(500)" json:"-"`
	IPAddress       string          `gorm:"type:varchar(45)" json:"-"`
	SearchQuery     string          `gorm:"type:varchar(255)" json:"search_query,omitempty"`
	Status          ViewEventStatus `gorm:"type:varchar(20);not null;default:'recorded';index" json:"status"`
	IsDuplicate     bool            `gorm:"not null;default:false" json:"is_duplicate"`
	IsBot           bool            `gorm:"not null;default:false" json:"is_bot"`
	IsQualifiedView bool            `gorm:"not null;default:false" json:"is_qualified_view"`
	CPVCharged      bool            `gorm:"column:cpv_charged;not null;default:false;index" json:"cpv_charged"`
	ClickedContact  bool            `gorm:"not null;default:false" json:"clicked_contact"`
	ViewDuration    float64         `gorm:"type:decimal(8,2);not null;default:0" json:"view_duration"` // seconds
	ScrollDepth     *int            `gorm:"default:null" json:"scroll_depth,omitempty"`                // percent
	RejectReason    string          `gorm:"type:varchar(30);default:''" json:"reject_reason,omitempty"`
	CPVAmount       float64         `gorm:"column:cpv_amount;type:decimal(10,4);not null;default:0" json:"cpv_amount"`
	BidSnapshot     float64         `gorm:"type:decimal(10,4);not null;default:0" json:"bid_snapshot"`
	ChargedAt       *time.Time      `gorm:"type:timestamp;default:null" json:"charged_at,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewViewEvent constructs an event in its initial state. duplicate and bot
// are decided at recording time and are terminal; anything else starts as
// recorded with zero duration.
func NewViewEvent(productID, vendorID uint, sessionID, viewType, deviceType string, duplicate, bot bool) (*ViewEvent, error) {
	if productID == 0 || vendorID == 0 || sessionID == "" {
		return nil, errors.New("product, vendor and session are required")
	}
	if duplicate && bot {
		// A crawler replay counts as bot first; duplicate implies a real session.
		duplicate = false
	}

	status := ViewStatusRecorded
	if bot {
		status = ViewStatusBot
	} else if duplicate {
		status = ViewStatusDuplicate
	}

	return &ViewEvent{
		PublicID:    uuid.New().String(),
		ProductID:   productID,
		VendorID:    vendorID,
		SessionID:   sessionID,
		ViewType:    viewType,
		DeviceType:  deviceType,
		Status:      status,
		IsDuplicate: duplicate,
		IsBot:       bot,
	}, nil
}

// Billable reports whether the event may ever be charged.
func (e *ViewEvent) Billable() bool {
	return !e.IsDuplicate && !e.IsBot
}

// Transition moves the event to next, keeping the flag columns consistent
// with the status. Illegal moves (including any move out of a terminal
// state, and charging a non-qualified event) return ErrIllegalTransition.
func (e *ViewEvent) Transition(next ViewEventStatus) error {
	if !e.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, e.Status, next)
	}

	e.Status = next
	switch next {
	case ViewStatusQualified:
		e.IsQualifiedView = true
	case ViewStatusNotQualified:
		e.IsQualifiedView = false
	case ViewStatusCharged:
		e.IsQualifiedView = true
		e.CPVCharged = true
	}
	return nil
}
