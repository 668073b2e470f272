package models

import "fmt"

type FinancialStatus string

const (
	FinancialStatusPending           FinancialStatus = "pending"
	FinancialStatusAuthorized        FinancialStatus = "authorized"
	FinancialStatusPaid              FinancialStatus = "paid"
	FinancialStatusPartiallyPaid     FinancialStatus = "partially_paid"
	FinancialStatusRefunded          FinancialStatus = "refunded"
	FinancialStatusPartiallyRefunded FinancialStatus = "partially_refunded"
	FinancialStatusVoided            FinancialStatus = "voided"
)

// Refunded reports whether any money went back to the customer.
func (s FinancialStatus) Refunded() bool {
	return s == FinancialStatusRefunded || s == FinancialStatusPartiallyRefunded
}

type FulfillmentStatus string

const (
	FulfillmentStatusUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentStatusPartial     FulfillmentStatus = "partial"
	FulfillmentStatusFulfilled   FulfillmentStatus = "fulfilled"
)

// Timeframe is the reporting window length in days.
type Timeframe int

const (
	TimeframeWeek    Timeframe = 7
	TimeframeMonth   Timeframe = 30
	TimeframeQuarter Timeframe = 90
)

func (t Timeframe) Days() int { return int(t) }

func (t Timeframe) Valid() bool {
	return t == TimeframeWeek || t == TimeframeMonth || t == TimeframeQuarter
}

func ParseTimeframe(days int) (Timeframe, error) {
	t := Timeframe(days)
	if !t.Valid() {
		return 0, fmt.Errorf("invalid timeframe %d: must be 7, 30 or 90 days", days)
	}
	return t, nil
}

type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

type InsightDomain string

const (
	InsightDomainRevenue    InsightDomain = "revenue"
	InsightDomainCustomer   InsightDomain = "customer"
	InsightDomainOperations InsightDomain = "operations"
)

// AllInsightDomains is the fixed evaluation order; every pipeline run emits
// exactly one summary per domain.
var AllInsightDomains = []InsightDomain{
	InsightDomainRevenue,
	InsightDomainCustomer,
	InsightDomainOperations,
}

type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyHigh   UrgencyLevel = "high"
)
