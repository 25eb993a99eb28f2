package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/craftmarkt/craftmarkt/app/models"
	"github.com/craftmarkt/craftmarkt/internal/pkg/cache"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a recorder store backed by GORM.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) GetProduct(id uint) (*models.Product, error) {
	var p models.Product
	err := s.db.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *gormStore) GetVendor(id uint) (*models.Vendor, error) {
	var v models.Vendor
	err := s.db.First(&v, id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *gormStore) CreateViewEvent(e *models.ViewEvent) error {
	return s.db.Create(e).Error
}

func (s *gormStore) HasRecentView(productID uint, sessionID string, since time.Time) (bool, error) {
	var count int64
	err := s.db.Model(&models.ViewEvent{}).
		Where("product_id = ? AND session_id = ? AND created_at >= ?", productID, sessionID, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// dedupeClient is the slice of the redis API the rolling window needs.
type dedupeClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

type cacheDeduper struct {
	client dedupeClient
}

// NewCacheDeduper builds the redis-backed rolling dedupe window. The key is
// shared across processes, so the window holds when the recorder is scaled
// out.
func NewCacheDeduper() Deduper {
	return &cacheDeduper{client: cache.GetClient()}
}

// FirstInWindow marks the (product, session) pair as seen. The window rolls:
// a repeat view resets the TTL, so the pair stays marked until a full window
// passes with no views at all.
func (d *cacheDeduper) FirstInWindow(productID uint, sessionID string, window time.Duration) (bool, error) {
	ctx := context.Background()
	key := fmt.Sprintf("views:dedupe:%d:%s", productID, sessionID)

	first, err := d.client.SetNX(ctx, key, 1, window).Result()
	if err != nil {
		return false, err
	}
	if !first {
		if err := d.client.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return first, nil
}
