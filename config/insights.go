package config

import "time"

// InsightTuning holds every threshold the insight pipeline classifies against.
// Defaults match the documented heuristics; each knob has an env override so
// operators can tune per deployment, and the struct is passed into the engine
// explicitly so tests (and future per-tenant overrides) can vary it.
type InsightTuning struct {
	// Inventory alerts.
	LowStockThreshold    int
	AssumedDailyVelocity float64
	AlertCap             int

	// Store freshness.
	FreshnessWindow time.Duration

	// Trend classification. A change within +/- TrendDeadBandPercent is
	// reported as stable. Single source of truth for every trend label.
	TrendDeadBandPercent float64

	// Seasonal note: months at or above this revenue are called out as strong.
	SeasonalStrongRevenue float64

	// Customer churn: no order within this many days counts as churned.
	ChurnWindowDays int

	// Fulfillment: unfulfilled orders older than this are delayed.
	DelayedOrderHours float64

	// Ranking.
	TopProductsCap int

	// Urgency boundaries. Strict comparisons; the boundary value itself
	// falls into the less urgent bucket.
	RevenueGrowthHighUrgency   float64
	RevenueGrowthMediumUrgency float64
	ChurnRateHighUrgency       float64
	RepeatRateMediumUrgency    float64
	DelayedRateHighUrgency     float64
	DelayedRateMediumUrgency   float64
	OutOfStockHighUrgency      int
	LowStockMediumUrgency      int

	// Recommendation rule thresholds.
	LowAvgOrderValue   float64
	LowRepeatRate      float64
	DelayedRateWarning float64

	// Conversion fallbacks. The upstream platform exposes no session or
	// checkout data, so these are industry averages and are always tagged
	// as estimates on the wire.
	EstCartAbandonmentRate    float64
	EstCheckoutConversionRate float64
	EstBounceRate             float64
}

func DefaultInsightTuning() InsightTuning {
	return InsightTuning{
		LowStockThreshold:    IntFromEnv("LOW_STOCK_THRESHOLD", 10),
		AssumedDailyVelocity: FloatFromEnv("ASSUMED_DAILY_VELOCITY", 2),
		AlertCap:             IntFromEnv("INVENTORY_ALERT_CAP", 10),

		FreshnessWindow: time.Duration(IntFromEnv("INSIGHT_FRESHNESS_MINUTES", 360)) * time.Minute,

		TrendDeadBandPercent:  FloatFromEnv("TREND_DEAD_BAND_PERCENT", 5),
		SeasonalStrongRevenue: FloatFromEnv("SEASONAL_STRONG_REVENUE", 10000),

		ChurnWindowDays:   IntFromEnv("CHURN_WINDOW_DAYS", 90),
		DelayedOrderHours: FloatFromEnv("DELAYED_ORDER_HOURS", 48),

		TopProductsCap: IntFromEnv("TOP_PRODUCTS_CAP", 10),

		RevenueGrowthHighUrgency:   FloatFromEnv("URGENCY_REVENUE_GROWTH_HIGH", -20),
		RevenueGrowthMediumUrgency: FloatFromEnv("URGENCY_REVENUE_GROWTH_MEDIUM", -10),
		ChurnRateHighUrgency:       FloatFromEnv("URGENCY_CHURN_RATE_HIGH", 30),
		RepeatRateMediumUrgency:    FloatFromEnv("URGENCY_REPEAT_RATE_MEDIUM", 15),
		DelayedRateHighUrgency:     FloatFromEnv("URGENCY_DELAYED_RATE_HIGH", 15),
		DelayedRateMediumUrgency:   FloatFromEnv("URGENCY_DELAYED_RATE_MEDIUM", 8),
		OutOfStockHighUrgency:      IntFromEnv("URGENCY_OUT_OF_STOCK_HIGH", 5),
		LowStockMediumUrgency:      IntFromEnv("URGENCY_LOW_STOCK_MEDIUM", 3),

		LowAvgOrderValue:   FloatFromEnv("RECO_LOW_AVG_ORDER_VALUE", 50),
		LowRepeatRate:      FloatFromEnv("RECO_LOW_REPEAT_RATE", 25),
		DelayedRateWarning: FloatFromEnv("RECO_DELAYED_RATE_WARNING", 5),

		EstCartAbandonmentRate:    FloatFromEnv("EST_CART_ABANDONMENT_RATE", 69.9),
		EstCheckoutConversionRate: FloatFromEnv("EST_CHECKOUT_CONVERSION_RATE", 2.9),
		EstBounceRate:             FloatFromEnv("EST_BOUNCE_RATE", 45),
	}
}
