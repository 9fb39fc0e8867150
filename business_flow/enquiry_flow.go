// Package businessflow contains the core business logic and use cases for the marketing operations workflows
package businessflow

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/AiiMS-Group/landbot/app/services"
	"github.com/AiiMS-Group/landbot/config"
	"github.com/AiiMS-Group/landbot/utils"
)

// HourlyUpdatesFlag is the CRM custom field that opts an account into
// proactive enquiry notifications.
const HourlyUpdatesFlag = "cf_whatsapp_hourly_updates"

// EnquirySummary is one account's today-so-far enquiry snapshot.
type EnquirySummary struct {
	AccountName    string
	CustomerID     int64
	Spend          float64
	Enquiries      int64
	CostPerEnquiry float64
	SentAt         time.Time
}

// EnquiryFlow pushes hourly enquiry summaries to opted-in accounts.
type EnquiryFlow interface {
	// NotifyAll sweeps every opted-in account and sends each one a
	// summary. One account failing never stops the sweep; the returned
	// summaries cover the sends that succeeded.
	NotifyAll(ctx context.Context) ([]EnquirySummary, error)
	NotifyAccount(ctx context.Context, accountID string) (*EnquirySummary, error)
}

// EnquiryFlowImpl implements the enquiry notification business flow
type EnquiryFlowImpl struct {
	crm        services.CRMService
	calls      services.CallsService
	chat       services.ChatService
	aggregator MetricAggregator
	cfg        config.LandBotConfig
	location   *time.Location
	logger     *log.Logger
}

// NewEnquiryFlow creates a new enquiry flow instance
func NewEnquiryFlow(
	crm services.CRMService,
	calls services.CallsService,
	chat services.ChatService,
	aggregator MetricAggregator,
	cfg config.LandBotConfig,
	location *time.Location,
	logger *log.Logger,
) EnquiryFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &EnquiryFlowImpl{
		crm:        crm,
		calls:      calls,
		chat:       chat,
		aggregator: aggregator,
		cfg:        cfg,
		location:   location,
		logger:     logger,
	}
}

// NotifyAll finds every account flagged for hourly updates and notifies
// each in turn.
func (s *EnquiryFlowImpl) NotifyAll(ctx context.Context) ([]EnquirySummary, error) {
	refs, err := s.crm.FindFlaggedAccounts(ctx, HourlyUpdatesFlag)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to list opted-in accounts", err)
	}

	var sent []EnquirySummary
	for _, ref := range refs {
		summary, err := s.NotifyAccount(ctx, ref.ID)
		if err != nil {
			s.logger.Printf("enquiry: notify failed account=%s name=%q: %v", ref.ID, ref.Name, err)
			continue
		}
		sent = append(sent, *summary)
	}
	return sent, nil
}

// NotifyAccount builds and sends the today-so-far summary for one account.
func (s *EnquiryFlowImpl) NotifyAccount(ctx context.Context, accountID string) (*EnquirySummary, error) {
	account, err := s.crm.Account(ctx, accountID)
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to fetch account", err)
	}
	if account == nil {
		return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", ErrAccountNotFound)
	}
	if !account.HasAdsAccounts() || !account.HasCallTracking() {
		return nil, NewBusinessError("ACCOUNT_NOT_CONFIGURED", "Account is missing ads or call tracking setup", ErrAccountNotConfigured)
	}

	customer, err := s.chat.FindCustomerByPhone(ctx, NormalizePhone(account.WANumber))
	if err != nil {
		return nil, NewBusinessError("CUSTOMER_LOOKUP_FAILED", "Failed to look up chat customer", err)
	}
	if customer == nil {
		return nil, NewBusinessError("NO_OPTED_IN_CUSTOMER", "No opted-in chat customer for this account", ErrNoOptedInCustomer)
	}

	now := time.Now().In(s.location)
	dates := ResolveDateRange(DateToday, now)

	spend, enquiries, err := s.todayMetrics(ctx, account, dates)
	if err != nil {
		return nil, NewBusinessError("METRIC_FETCH_FAILED", "Failed to fetch today's metrics", err)
	}

	cpe := CostPerEnquiry(spend, enquiries)
	params := []string{
		customer.Name,
		now.Format("15:04"),
		utils.FormatCurrency(spend),
		strconv.FormatInt(enquiries, 10),
		utils.FormatCurrency(cpe),
	}
	if err := s.chat.SendTemplate(ctx, customer.ID, s.cfg.EnquiryTemplateID, s.cfg.TemplateLanguage, params); err != nil {
		// The params are the rendered message; keep them so a failed
		// send can be replayed by hand.
		s.logger.Printf("enquiry: delivery failed account=%s customer=%d params=%q: %v", accountID, customer.ID, params, err)
		return nil, NewBusinessError("DELIVERY_FAILED", "Failed to deliver enquiry summary", err)
	}

	return &EnquirySummary{
		AccountName:    account.Name,
		CustomerID:     customer.ID,
		Spend:          spend,
		Enquiries:      enquiries,
		CostPerEnquiry: cpe,
		SentAt:         now,
	}, nil
}

// todayMetrics fetches today's ad spend and total enquiry count. Per-ad-
// account fetch failures degrade the spend figure rather than failing the
// notification; the call side is a single roll-up and does fail hard.
func (s *EnquiryFlowImpl) todayMetrics(ctx context.Context, account *services.SalesAccount, dates DateRange) (float64, int64, error) {
	ads, warnings := s.aggregator.Aggregate(ctx, account.AdWordsIDs, dates.Keyword)
	for _, w := range warnings {
		s.logger.Printf("enquiry: spend fetch degraded account=%s: %v", w.AccountID, w.Err)
	}

	accountIDs, err := s.calls.ListSubAccounts(ctx, account.WildJarID)
	if err != nil {
		return 0, 0, err
	}
	summary, err := s.calls.Summary(ctx, accountIDs, dates.Start, dates.End, s.location.String())
	if err != nil {
		return 0, 0, err
	}

	return ads.Spend, summary.Total(), nil
}
