// Package businessflow contains the core business logic and use cases for the marketing operations workflows
package businessflow

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/AiiMS-Group/landbot/app/services"
	"github.com/AiiMS-Group/landbot/config"
	"github.com/AiiMS-Group/landbot/models"
	"github.com/AiiMS-Group/landbot/repository"
	"github.com/redis/go-redis/v9"
)

// StatisticsReport is the combined ads and call metric bundle for one
// account and date range. Formatted fields are what chat renders; the raw
// fields are what gets persisted.
type StatisticsReport struct {
	Name        string
	DateLabel   string
	Spend       float64
	Clicks      int64
	Answered    int64
	Missed      int64
	Calls       int64
	CostPerCall float64
	ClickToCall float64
	Warnings    []AccountError
}

// StatisticsFlow builds cross-platform metric reports.
type StatisticsFlow interface {
	Report(ctx context.Context, phone string, dateIndex int) (*StatisticsReport, error)
}

// StatisticsFlowImpl implements the statistics business flow
type StatisticsFlowImpl struct {
	crm        services.CRMService
	calls      services.CallsService
	aggregator MetricAggregator
	clientRepo repository.ClientRepository
	statRepo   repository.StatisticRepository
	rc         *redis.Client
	cacheCfg   config.CacheConfig
	location   *time.Location
	logger     *log.Logger
}

// NewStatisticsFlow creates a new statistics flow instance
func NewStatisticsFlow(
	crm services.CRMService,
	calls services.CallsService,
	aggregator MetricAggregator,
	clientRepo repository.ClientRepository,
	statRepo repository.StatisticRepository,
	rc *redis.Client,
	cacheCfg config.CacheConfig,
	location *time.Location,
	logger *log.Logger,
) StatisticsFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &StatisticsFlowImpl{
		crm:        crm,
		calls:      calls,
		aggregator: aggregator,
		clientRepo: clientRepo,
		statRepo:   statRepo,
		rc:         rc,
		cacheCfg:   cacheCfg,
		location:   location,
		logger:     logger,
	}
}

// Report resolves the account, fetches ads and call metrics for the named
// date range in parallel, derives the ratios, and persists the snapshot.
// A report needs both sides configured; accounts missing either get a
// configuration error instead of a half-empty report.
func (s *StatisticsFlowImpl) Report(ctx context.Context, phone string, dateIndex int) (*StatisticsReport, error) {
	account, err := resolveAccount(ctx, s.crm, s.rc, s.cacheCfg.AccountTTL, phone)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrPhoneRequired) {
			return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", err)
		}
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to look up account", err)
	}
	if !account.HasAdsAccounts() || !account.HasCallTracking() {
		return nil, NewBusinessError("ACCOUNT_NOT_CONFIGURED", "Account is missing ads or call tracking setup", ErrAccountNotConfigured)
	}

	dates := ResolveDateRange(dateIndex, time.Now().In(s.location))

	var (
		wg       sync.WaitGroup
		ads      AdsAggregate
		warnings []AccountError
		summary  services.CallSummary
		callsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		ads, warnings = s.aggregator.Aggregate(ctx, account.AdWordsIDs, dates.Keyword)
	}()
	go func() {
		defer wg.Done()
		summary, callsErr = s.fetchCalls(ctx, account.WildJarID, dates)
	}()
	wg.Wait()

	if callsErr != nil {
		return nil, NewBusinessError("CALL_FETCH_FAILED", "Failed to fetch call summary", callsErr)
	}

	missed := summary.Missed + summary.Abandoned
	calls := summary.Answered + missed

	report := &StatisticsReport{
		Name:        account.Name,
		DateLabel:   dates.Label,
		Spend:       ads.Spend,
		Clicks:      ads.Clicks,
		Answered:    summary.Answered,
		Missed:      missed,
		Calls:       calls,
		CostPerCall: CostPerCall(ads.Spend, calls),
		ClickToCall: ClickToCallPct(calls, ads.Clicks),
		Warnings:    warnings,
	}

	s.persist(ctx, account, dates, report)
	return report, nil
}

// fetchCalls sums call outcomes across the WildJar account and its
// children for the resolved range, evaluated in account-local time.
func (s *StatisticsFlowImpl) fetchCalls(ctx context.Context, wildJarID string, dates DateRange) (services.CallSummary, error) {
	accountIDs, err := s.calls.ListSubAccounts(ctx, wildJarID)
	if err != nil {
		return services.CallSummary{}, err
	}
	return s.calls.Summary(ctx, accountIDs, dates.Start, dates.End, s.location.String())
}

// persist stores the snapshot. Persistence failures are logged, not
// surfaced; the chat answer was already computed and losing a history row
// should not break it.
func (s *StatisticsFlowImpl) persist(ctx context.Context, account *services.SalesAccount, dates DateRange, report *StatisticsReport) {
	client, err := s.clientRepo.FirstOrCreate(ctx, account.ID, account.Name)
	if err != nil {
		s.logger.Printf("statistics: client resolve failed freshsales_id=%s: %v", account.ID, err)
		return
	}

	stat := &models.Statistic{
		ClientID:    client.ID,
		Spendings:   report.Spend,
		Clicks:      report.Clicks,
		Answered:    report.Answered,
		Missed:      report.Missed,
		CostPerCall: report.CostPerCall,
		ClickToCall: report.ClickToCall,
		DateName:    dates.Label,
		DateFrom:    dates.Start,
		DateTo:      dates.End,
	}
	if err := s.statRepo.Save(ctx, stat); err != nil {
		s.logger.Printf("statistics: snapshot save failed client_id=%d: %v", client.ID, err)
	}
}
