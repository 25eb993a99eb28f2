package statistics

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/craftmarkt/craftmarkt/app/models"
	"github.com/craftmarkt/craftmarkt/internal/pkg/cache"
	"github.com/craftmarkt/craftmarkt/internal/pkg/database"
	"github.com/gofiber/fiber/v2/log"
)

const (
	CacheKeyViewsDaily   = "statistics:views:daily:%s" // format with date YYYY-MM-DD
	CacheKeySpendDaily   = "statistics:spend:daily:%s"
	CacheKeyVendorsTotal = "statistics:vendors:total"
	CacheExpiration      = 30 * time.Minute
)

// StatisticsData holds the marketplace-wide numbers for the admin dashboard.
type StatisticsData struct {
	TodayViews        int
	TodayCreditsSpent float64
	TotalVendors      int
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// UpdateCacheIfNeeded refreshes the dashboard cache at most once per
// interval.
func UpdateCacheIfNeeded() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	if time.Since(lastCacheUpdate) <= cacheUpdateInterval {
		return
	}
	if err := UpdateStatisticsCache(); err != nil {
		log.Warnf("[Statistics] dashboard cache refresh failed: %v", err)
		return
	}
	lastCacheUpdate = time.Now()
}

// UpdateStatisticsCache recomputes the dashboard numbers from the rollup
// table and stores them in redis.
func UpdateStatisticsCache() error {
	db := database.GetDB()
	today := models.StatDateFor(time.Now())

	var views int64
	if err := db.Model(&models.VendorDailyStat{}).
		Where("stat_date = ?", today).
		Select("COALESCE(SUM(views), 0)").
		Scan(&views).Error; err != nil {
		return err
	}

	var spent float64
	if err := db.Model(&models.VendorDailyStat{}).
		Where("stat_date = ?", today).
		Select("COALESCE(SUM(credits_spent), 0)").
		Scan(&spent).Error; err != nil {
		return err
	}

	var vendors int64
	if err := db.Model(&models.Vendor{}).Count(&vendors).Error; err != nil {
		return err
	}

	if err := cache.Set(fmt.Sprintf(CacheKeyViewsDaily, today), strconv.FormatInt(views, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(fmt.Sprintf(CacheKeySpendDaily, today), strconv.FormatFloat(spent, 'f', 4, 64), CacheExpiration); err != nil {
		return err
	}
	return cache.Set(CacheKeyVendorsTotal, strconv.FormatInt(vendors, 10), CacheExpiration)
}

// GetTodayViews returns today's marketplace view count, cache first.
func GetTodayViews() int {
	today := models.StatDateFor(time.Now())
	key := fmt.Sprintf(CacheKeyViewsDaily, today)

	if val, err := cache.GetInt(key); err == nil {
		return val
	}

	var views int64
	if err := database.GetDB().Model(&models.VendorDailyStat{}).
		Where("stat_date = ?", today).
		Select("COALESCE(SUM(views), 0)").
		Scan(&views).Error; err != nil {
		log.Warnf("[Statistics] counting today's views failed: %v", err)
		return 0
	}
	if err := cache.Set(key, strconv.FormatInt(views, 10), CacheExpiration); err != nil {
		log.Warnf("[Statistics] caching today's views failed: %v", err)
	}
	return int(views)
}

// GetTodayCreditsSpent returns today's marketplace spend, cache first.
func GetTodayCreditsSpent() float64 {
	today := models.StatDateFor(time.Now())
	key := fmt.Sprintf(CacheKeySpendDaily, today)

	if val, err := cache.Get(key); err == nil {
		if spent, perr := strconv.ParseFloat(val, 64); perr == nil {
			return spent
		}
	}

	var spent float64
	if err := database.GetDB().Model(&models.VendorDailyStat{}).
		Where("stat_date = ?", today).
		Select("COALESCE(SUM(credits_spent), 0)").
		Scan(&spent).Error; err != nil {
		log.Warnf("[Statistics] summing today's spend failed: %v", err)
		return 0
	}
	if err := cache.Set(key, strconv.FormatFloat(spent, 'f', 4, 64), CacheExpiration); err != nil {
		log.Warnf("[Statistics] caching today's spend failed: %v", err)
	}
	return spent
}

// GetVendorDailyStats returns a vendor's rollup rows for a date range,
// newest first. Reporting dashboards read this directly.
func GetVendorDailyStats(vendorID uint, from, to time.Time) ([]models.VendorDailyStat, error) {
	var stats []models.VendorDailyStat
	err := database.GetDB().
		Where("vendor_id = ? AND stat_date BETWEEN ? AND ?", vendorID, models.StatDateFor(from), models.StatDateFor(to)).
		Order("stat_date DESC").
		Find(&stats).Error
	return stats, err
}

// GetStatisticsData returns the dashboard numbers, refreshing the cache
// when stale.
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	data := StatisticsData{
		TodayViews:        GetTodayViews(),
		TodayCreditsSpent: GetTodayCreditsSpent(),
	}
	if val, err := cache.GetInt(CacheKeyVendorsTotal); err == nil {
		data.TotalVendors = val
	}
	return data
}
