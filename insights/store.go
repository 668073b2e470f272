package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/insights_backend/config"
	"github.com/mmdatafocus/insights_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store persists the latest insight bundle per business and timeframe.
// Put supersedes any prior bundle; no history is retained. The medium is
// abstracted so the engine never cares whether it talks to MySQL, Redis or a
// test fake.
type Store interface {
	Put(ctx context.Context, bundle *models.InsightBundle, summaries []*models.InsightSummary) error
	Get(ctx context.Context, businessId string, timeframe models.Timeframe) (*models.InsightBundle, []*models.InsightSummary, error)
	// IsFresh is true iff a stored bundle exists and is younger than the
	// freshness window (strictly; a bundle aged exactly the window is stale).
	IsFresh(ctx context.Context, businessId string, timeframe models.Timeframe, asOf time.Time) bool
}

type dbStore struct {
	db        *gorm.DB
	logger    *logrus.Logger
	freshness time.Duration
}

func NewDBStore(db *gorm.DB, logger *logrus.Logger, freshness time.Duration) Store {
	return &dbStore{db: db, logger: logger, freshness: freshness}
}

type cachedInsights struct {
	Bundle    *models.InsightBundle    `json:"bundle"`
	Summaries []*models.InsightSummary `json:"summaries"`
}

func cacheKey(businessId string, timeframe models.Timeframe) string {
	return fmt.Sprintf("InsightBundle:%s:%d", businessId, timeframe.Days())
}

func (s *dbStore) Put(ctx context.Context, bundle *models.InsightBundle, summaries []*models.InsightSummary) error {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return err
	}

	record := models.InsightBundleRecord{
		Id:          bundle.Id,
		BusinessId:  bundle.BusinessId,
		Timeframe:   bundle.Timeframe.Days(),
		StoreId:     bundle.StoreId,
		GeneratedAt: bundle.GeneratedAt,
		PayloadJSON: payload,
	}

	summaryRecords := make([]models.InsightSummaryRecord, 0, len(summaries))
	for _, summary := range summaries {
		keyPoints, err := json.Marshal(summary.KeyPoints)
		if err != nil {
			return err
		}
		recommendations, err := json.Marshal(summary.Recommendations)
		if err != nil {
			return err
		}
		active := summary.IsActive
		summaryRecords = append(summaryRecords, models.InsightSummaryRecord{
			Id:                  summary.Id,
			BusinessId:          summary.BusinessId,
			BundleId:            summary.BundleId,
			Domain:              string(summary.Domain),
			Summary:             summary.Summary,
			KeyPointsJSON:       keyPoints,
			RecommendationsJSON: recommendations,
			Urgency:             string(summary.Urgency),
			IsActive:            &active,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var prior models.InsightBundleRecord
		lookupErr := tx.Select("id").
			Where("business_id = ? AND timeframe = ?", record.BusinessId, record.Timeframe).
			Take(&prior).Error
		if lookupErr == nil {
			if err := tx.Where("bundle_id = ?", prior.Id).Delete(&models.InsightSummaryRecord{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id = ?", prior.Id).Delete(&models.InsightBundleRecord{}).Error; err != nil {
				return err
			}
		} else if !errors.Is(lookupErr, gorm.ErrRecordNotFound) {
			return lookupErr
		}

		if err := tx.Create(&record).Error; err != nil {
			// Two instances can race past the lookup when the distributed
			// lock is degraded; the loser's bundle is equivalent, so a
			// duplicate on the (business, timeframe) index is benign.
			var mysqlErr *mysqldriver.MySQLError
			if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
				return nil
			}
			return err
		}
		if len(summaryRecords) > 0 {
			if err := tx.Create(&summaryRecords).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Cache write is best-effort; a cold cache just means the next read hits
	// the database. On a failed write, drop the key so a superseded bundle
	// can't be served from cache.
	cached := cachedInsights{Bundle: bundle, Summaries: summaries}
	key := cacheKey(bundle.BusinessId, bundle.Timeframe)
	if err := config.SetRedisObject(key, &cached, s.freshness); err != nil {
		config.LogWarn(s.logger, "insights", "Put", "cache write failed", err)
		if err := config.RemoveRedisKey(key); err != nil {
			config.LogWarn(s.logger, "insights", "Put", "cache invalidation failed", err)
		}
	}
	return nil
}

func (s *dbStore) Get(ctx context.Context, businessId string, timeframe models.Timeframe) (*models.InsightBundle, []*models.InsightSummary, error) {
	var cached cachedInsights
	hit, err := config.GetRedisObject(cacheKey(businessId, timeframe), &cached)
	if err != nil {
		config.LogWarn(s.logger, "insights", "Get", "cache read failed", err)
	}
	if hit && cached.Bundle != nil {
		return cached.Bundle, cached.Summaries, nil
	}

	var record models.InsightBundleRecord
	err = s.db.WithContext(ctx).
		Where("business_id = ? AND timeframe = ?", businessId, timeframe.Days()).
		Take(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var bundle models.InsightBundle
	if err := json.Unmarshal(record.PayloadJSON, &bundle); err != nil {
		return nil, nil, err
	}

	var summaryRecords []models.InsightSummaryRecord
	if err := s.db.WithContext(ctx).Where("bundle_id = ?", record.Id).Find(&summaryRecords).Error; err != nil {
		return nil, nil, err
	}

	summaries := make([]*models.InsightSummary, 0, len(summaryRecords))
	for _, sr := range summaryRecords {
		var keyPoints, recommendations []string
		if len(sr.KeyPointsJSON) > 0 {
			if err := json.Unmarshal(sr.KeyPointsJSON, &keyPoints); err != nil {
				return nil, nil, err
			}
		}
		if len(sr.RecommendationsJSON) > 0 {
			if err := json.Unmarshal(sr.RecommendationsJSON, &recommendations); err != nil {
				return nil, nil, err
			}
		}
		active := sr.IsActive != nil && *sr.IsActive
		summaries = append(summaries, &models.InsightSummary{
			Id:              sr.Id,
			BusinessId:      sr.BusinessId,
			BundleId:        sr.BundleId,
			Domain:          models.InsightDomain(sr.Domain),
			Summary:         sr.Summary,
			KeyPoints:       keyPoints,
			Recommendations: recommendations,
			Urgency:         models.UrgencyLevel(sr.Urgency),
			IsActive:        active,
		})
	}
	return &bundle, summaries, nil
}

func (s *dbStore) IsFresh(ctx context.Context, businessId string, timeframe models.Timeframe, asOf time.Time) bool {
	var record models.InsightBundleRecord
	err := s.db.WithContext(ctx).Select("generated_at").
		Where("business_id = ? AND timeframe = ?", businessId, timeframe.Days()).
		Take(&record).Error
	if err != nil {
		return false
	}
	return Fresh(record.GeneratedAt, asOf, s.freshness)
}

// Fresh is the single freshness rule: strictly younger than the window.
func Fresh(generatedAt, asOf time.Time, window time.Duration) bool {
	return asOf.Sub(generatedAt) < window
}
