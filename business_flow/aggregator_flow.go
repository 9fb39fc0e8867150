// Package businessflow contains the core business logic and use cases for the marketing operations workflows
package businessflow

import (
	"context"

	"github.com/AiiMS-Group/landbot/app/services"
)

// AdsAggregate is the summed spend and clicks across a set of ad accounts.
type AdsAggregate struct {
	Spend  float64
	Clicks int64
}

// AccountError records a single account whose metrics query failed inside
// an aggregation batch. Callers must treat these as "unknown", never as
// zero spend.
type AccountError struct {
	AccountID string
	Err       error
}

// MetricAggregator fans metric queries out across ad accounts and merges
// the results.
type MetricAggregator interface {
	Aggregate(ctx context.Context, accountIDs []string, dateKeyword string) (AdsAggregate, []AccountError)
}

// MetricAggregatorImpl implements MetricAggregator over the ads service.
type MetricAggregatorImpl struct {
	ads services.AdsService
}

// NewMetricAggregator creates a new metric aggregator
func NewMetricAggregator(ads services.AdsService) MetricAggregator {
	return &MetricAggregatorImpl{ads: ads}
}

type accountResult struct {
	accountID string
	metrics   services.AccountMetrics
	err       error
}

// Aggregate issues one metrics query per account concurrently and sums the
// results. A failing account does not abort the batch; it is returned as
// an AccountError alongside the partial total. Summation is commutative,
// so arrival order does not matter.
func (a *MetricAggregatorImpl) Aggregate(ctx context.Context, accountIDs []string, dateKeyword string) (AdsAggregate, []AccountError) {
	if len(accountIDs) == 0 {
		return AdsAggregate{}, nil
	}

	results := make(chan accountResult, len(accountIDs))
	for _, id := range accountIDs {
		go func(accountID string) {
			metrics, err := a.ads.QueryMetrics(ctx, accountID, dateKeyword)
			results <- accountResult{accountID: accountID, metrics: metrics, err: err}
		}(id)
	}

	var total AdsAggregate
	var failures []AccountError
	for range accountIDs {
		res := <-results
		if res.err != nil {
			failures = append(failures, AccountError{AccountID: res.accountID, Err: res.err})
			continue
		}
		total.Spend += res.metrics.Spend
		total.Clicks += res.metrics.Clicks
	}

	return total, failures
}

// The derived ratios below floor a zero divisor to 1 instead of returning
// a sentinel. This is deliberate business policy: "spend with no calls"
// reads as the spend itself, and ratios stay finite in chat output.

// CostPerEnquiry is total spend divided by total enquiries.
func CostPerEnquiry(spend float64, calls int64) float64 {
	if calls == 0 {
		calls = 1
	}
	return spend / float64(calls)
}

// CostPerCall is total spend divided by total calls.
func CostPerCall(spend float64, calls int64) float64 {
	if calls == 0 {
		calls = 1
	}
	return spend / float64(calls)
}

// ClickToCallPct is the percentage of ad clicks that became tracked calls.
func ClickToCallPct(calls, clicks int64) float64 {
	if clicks == 0 {
		clicks = 1
	}
	return float64(calls) / float64(clicks) * 100
}
