package views

import (
	"context"
	"errors"
	"time"

	"github.com/craftmarkt/craftmarkt/app/models"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
)

// DedupeWindow is the rolling span within which repeat views from the same
// session on the same product are flagged as duplicates.
const DedupeWindow = time.Hour

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product is not active")
	ErrVendorNotVerified = errors.New("vendor is not verified")
)

// Store provides the persistence the recorder needs. HasRecentView is the
// database fallback for the dedupe window when redis is unavailable.
type Store interface {
	GetProduct(id uint) (*models.Product, error)
	GetVendor(id uint) (*models.Vendor, error)
	CreateViewEvent(e *models.ViewEvent) error
	HasRecentView(productID uint, sessionID string, since time.Time) (bool, error)
}

// Deduper marks a (product, session) pair as seen and reports whether this
// is the first sighting inside the window.
type Deduper interface {
	FirstInWindow(productID uint, sessionID string, window time.Duration) (bool, error)
}

// Aggregates is the best-effort sink for counters and rollups. It must never
// block or fail the recording path; implementations log their own errors.
type Aggregates interface {
	AddProductView(productID uint)
	AddVendorView(vendorID uint)
	ViewRecorded(e *models.ViewEvent)
}

// Recorder validates and persists raw view events.
type Recorder struct {
	store      Store
	deduper    Deduper
	aggregates Aggregates
	validate   *validator.Validate
}

// NewRecorder builds a recorder. deduper and aggregates may be nil; without
// a deduper only the database fallback is used.
func NewRecorder(store Store, deduper Deduper, aggregates Aggregates) *Recorder {
	return &Recorder{
		store:      store,
		deduper:    deduper,
		aggregates: aggregates,
		validate:   validator.New(),
	}
}

// RecordInput is one reported product-page view as it arrives from the HTTP
// layer.
type RecordInput struct {
	ProductID   uint   `validate:"required"`
	SessionID   string `validate:"required,max=100"`
	UserID      *uint
	ViewType    string `validate:"required,oneof=comparison direct search category"`
	UserAgent   string `validate:"max=500"`
	Referrer    string `validate:"max=500"`
	IPAddress   string `validate:"omitempty,ip"`
	SearchQuery string `validate:"max=255"`
}

// RecordResult tells the caller what was stored, so it can decide whether
// reporting engagement for this event is worth a later call.
type RecordResult struct {
	EventID   uint   `json:"event_id"`
	PublicID  string `json:"public_id"`
	Duplicate bool   `json:"duplicate"`
	Bot       bool   `json:"bot"`
}

// Record validates the view, classifies it and persists it with zero
// duration. Counter and rollup updates are fire-and-forget: their failures
// are logged and never propagate.
func (r *Recorder) Record(ctx context.Context, in RecordInput) (*RecordResult, error) {
	_ = ctx
	if err := r.validate.Struct(in); err != nil {
		return nil, err
	}

	product, err := r.store.GetProduct(in.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, ErrProductInactive
	}

	vendor, err := r.store.GetVendor(product.VendorID)
	if err != nil {
		return nil, err
	}
	if !vendor.IsVerified() {
		return nil, ErrVendorNotVerified
	}

	duplicate := r.isDuplicate(in.ProductID, in.SessionID)
	bot := IsBot(in.UserAgent)
	device := DetectDevice(in.UserAgent)

	event, err := models.NewViewEvent(product.ID, vendor.ID, in.SessionID, in.ViewType, device, duplicate, bot)
	if err != nil {
		return nil, err
	}
	event.UserID = in.UserID
	event.UserAgent = in.UserAgent
	event.Referrer = in.Referrer
	event.IPAddress = in.IPAddress
	event.SearchQuery = in.SearchQuery

	if err := r.store.CreateViewEvent(event); err != nil {
		return nil, err
	}

	if r.aggregates != nil {
		r.aggregates.AddProductView(product.ID)
		r.aggregates.AddVendorView(vendor.ID)
		r.aggregates.ViewRecorded(event)
	}

	return &RecordResult{
		EventID:   event.ID,
		PublicID:  event.PublicID,
		Duplicate: event.IsDuplicate,
		Bot:       event.IsBot,
	}, nil
}

// isDuplicate consults the redis window first and falls back to a database
// lookup when redis is down. Errors on the fallback are logged and resolved
// as "not a duplicate": losing a dedupe mark only risks one extra billable
// view, while failing the call would drop the event entirely.
func (r *Recorder) isDuplicate(productID uint, sessionID string) bool {
	if r.deduper != nil {
		first, err := r.deduper.FirstInWindow(productID, sessionID, DedupeWindow)
		if err == nil {
			return !first
		}
		log.Warnf("[Views] dedupe window unavailable, falling back to database: %v", err)
	}

	seen, err := r.store.HasRecentView(productID, sessionID, time.Now().Add(-DedupeWindow))
	if err != nil {
		log.Errorf("[Views] dedupe fallback failed for product %d: %v", productID, err)
		return false
	}
	return seen
}
