// Package businessflow contains the core business logic and use cases for the marketing operations workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/AiiMS-Group/landbot/app/services"
	"github.com/AiiMS-Group/landbot/config"
	"github.com/AiiMS-Group/landbot/models"
	"github.com/AiiMS-Group/landbot/repository"
	"github.com/AiiMS-Group/landbot/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// PausedBudgetSentinel is the budget a paused group is set to. One
// currency unit rather than zero, so a paused budget stays visually
// distinguishable from a never-configured one; listings treat anything at
// or below it as paused.
const PausedBudgetSentinel = 1.0

// RevertTimeOfDay is the local hour a scheduled revert fires at.
const RevertTimeOfDay = 9

// revertDateLayout renders the revert date for chat output,
// e.g. "Monday May 21, 2029 09:00am".
const revertDateLayout = "Monday Jan 02, 2006 03:04pm"

// BudgetGroup is the set of campaigns sharing one budget within an
// account, the atomic unit operators pause and resume.
type BudgetGroup struct {
	AccountID   string
	BudgetID    string
	Budget      float64
	MemberNames []string
	CampaignIDs []string
	Display     string
}

// ActiveCampaignsResult is the budget-grouped campaign list shown in chat.
type ActiveCampaignsResult struct {
	Name          string
	CurrentBudget float64
	Groups        []BudgetGroup
}

// PauseResult reports a successful pause and when it reverts.
type PauseResult struct {
	Name        string
	Paused      []string
	RevertAt    time.Time
	RevertLabel string
}

// SpendingResult is the summed spend answer for one account.
type SpendingResult struct {
	Name     string
	Spend    float64
	Warnings []AccountError
}

// MutationFlow handles operator-triggered budget and status changes with
// their scheduled reversions.
type MutationFlow interface {
	ActiveCampaigns(ctx context.Context, phone string) (*ActiveCampaignsResult, error)
	PauseBudget(ctx context.Context, phone string, campaignIndex, durationCode int) (*PauseResult, error)
	PauseAds(ctx context.Context, phone string, durationCode int) (*PauseResult, error)
	EnableAds(ctx context.Context, phone string) (string, error)
	Spending(ctx context.Context, phone string, dateIndex int) (*SpendingResult, error)
}

// MutationFlowImpl implements the mutation business flow
type MutationFlowImpl struct {
	crm        services.CRMService
	ads        services.AdsService
	aggregator MetricAggregator
	clientRepo repository.ClientRepository
	budgetRepo repository.BudgetMutationRepository
	statusRepo repository.StatusMutationRepository
	schedRepo  repository.ScheduledMutationRepository
	db         *gorm.DB
	rc         *redis.Client
	cacheCfg   config.CacheConfig
	location   *time.Location
	logger     *log.Logger
}

// NewMutationFlow creates a new mutation flow instance
func NewMutationFlow(
	crm services.CRMService,
	ads services.AdsService,
	aggregator MetricAggregator,
	clientRepo repository.ClientRepository,
	budgetRepo repository.BudgetMutationRepository,
	statusRepo repository.StatusMutationRepository,
	schedRepo repository.ScheduledMutationRepository,
	db *gorm.DB,
	rc *redis.Client,
	cacheCfg config.CacheConfig,
	location *time.Location,
	logger *log.Logger,
) MutationFlow {
	if logger == nil {
		logger = log.Default()
	}
	return &MutationFlowImpl{
		crm:        crm,
		ads:        ads,
		aggregator: aggregator,
		clientRepo: clientRepo,
		budgetRepo: budgetRepo,
		statusRepo: statusRepo,
		schedRepo:  schedRepo,
		db:         db,
		rc:         rc,
		cacheCfg:   cacheCfg,
		location:   location,
		logger:     logger,
	}
}

// ActiveCampaigns lists the account's budget groups that are not paused,
// grouped by budget ID in first-seen order so an ordinal index means the
// same group for the duration of one chat interaction.
func (s *MutationFlowImpl) ActiveCampaigns(ctx context.Context, phone string) (*ActiveCampaignsResult, error) {
	account, err := s.resolve(ctx, phone)
	if err != nil {
		return nil, err
	}
	if !account.BudgetRecommendation {
		return nil, NewBusinessError("FEATURE_NOT_ENABLED", "Budget management is not enabled on this account", ErrFeatureNotEnabled)
	}

	groups, err := s.fetchActiveBudgetGroups(ctx, account)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_FETCH_FAILED", "Failed to fetch campaigns", err)
	}

	var total float64
	for _, g := range groups {
		total += g.Budget
	}

	return &ActiveCampaignsResult{
		Name:          account.Name,
		CurrentBudget: total,
		Groups:        groups,
	}, nil
}

// PauseBudget sets the selected budget group to the paused sentinel and
// schedules a revert to the original amount at the mapped date.
func (s *MutationFlowImpl) PauseBudget(ctx context.Context, phone string, campaignIndex, durationCode int) (*PauseResult, error) {
	account, err := s.resolve(ctx, phone)
	if err != nil {
		return nil, err
	}
	if !account.BudgetRecommendation {
		return nil, NewBusinessError("FEATURE_NOT_ENABLED", "Budget management is not enabled on this account", ErrFeatureNotEnabled)
	}

	groups, err := s.fetchActiveBudgetGroups(ctx, account)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_FETCH_FAILED", "Failed to fetch campaigns", err)
	}
	if len(groups) == 0 {
		return nil, NewBusinessError("NO_ACTIVE_CAMPAIGNS", "No active campaigns to pause", ErrNoActiveCampaigns)
	}

	revertAt, dateName, err := s.revertTime(durationCode)
	if err != nil {
		return nil, err
	}

	// An index past the end of the displayed list pauses ALL groups. This
	// bulk fallback is the documented contract of the chat menu, where the
	// last option reads "all of the above".
	selected := groups
	if campaignIndex-1 < len(groups) && campaignIndex >= 1 {
		selected = groups[campaignIndex-1 : campaignIndex]
	}

	client, err := s.clientRepo.FirstOrCreate(ctx, account.ID, account.Name)
	if err != nil {
		return nil, NewBusinessError("CLIENT_LOOKUP_FAILED", "Failed to resolve client record", err)
	}

	var paused []string
	var lastErr error
	for _, group := range selected {
		if err := s.pauseGroup(ctx, client, group, revertAt, dateName); err != nil {
			s.logger.Printf("mutation: pause failed account=%s budget=%s: %v", group.AccountID, group.BudgetID, err)
			lastErr = err
			continue
		}
		paused = append(paused, group.Display)
	}

	if len(paused) == 0 {
		return nil, NewBusinessError("MUTATION_APPLY_FAILED", "Failed to pause campaign budget", lastErr)
	}

	return &PauseResult{
		Name:        account.Name,
		Paused:      paused,
		RevertAt:    revertAt,
		RevertLabel: revertAt.Format(revertDateLayout),
	}, nil
}

// pauseGroup applies the sentinel budget immediately and, only after the
// apply succeeded, persists the audit record and the durable revert task
// carrying the original budget captured at selection time.
func (s *MutationFlowImpl) pauseGroup(ctx context.Context, client *models.Client, group BudgetGroup, revertAt time.Time, dateName string) error {
	if err := s.ads.SetBudgetAmount(ctx, group.AccountID, group.BudgetID, PausedBudgetSentinel); err != nil {
		return fmt.Errorf("%w: %v", ErrMutationApply, err)
	}

	return s.inTx(ctx, func(txCtx context.Context) error {
		record := &models.BudgetMutation{
			ClientID:   client.ID,
			Campaign:   strings.Join(group.MemberNames, ", "),
			BudgetOld:  group.Budget,
			BudgetNew:  PausedBudgetSentinel,
			DateRevert: revertAt,
			DateName:   dateName,
		}
		if err := s.budgetRepo.Save(txCtx, record); err != nil {
			return err
		}

		budget := group.Budget
		budgetID := group.BudgetID
		revert := &models.ScheduledMutation{
			UUID:         uuid.New(),
			ClientID:     &client.ID,
			Kind:         models.MutationKindBudgetAmount,
			AccountID:    group.AccountID,
			BudgetID:     &budgetID,
			BudgetAmount: &budget,
			NotBefore:    revertAt,
			CreatedAt:    utils.UTCNow(),
			UpdatedAt:    utils.UTCNow(),
		}
		return s.schedRepo.Save(txCtx, revert)
	})
}

// PauseAds pauses every campaign across the account's ad accounts via the
// status mechanism and schedules a revert to ENABLED.
func (s *MutationFlowImpl) PauseAds(ctx context.Context, phone string, durationCode int) (*PauseResult, error) {
	account, err := s.resolve(ctx, phone)
	if err != nil {
		return nil, err
	}
	if !account.HasAdsAccounts() {
		return nil, NewBusinessError("ACCOUNT_NOT_CONFIGURED", "No ad accounts configured", ErrNoAdAccounts)
	}

	revertAt, dateName, err := s.revertTime(durationCode)
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FirstOrCreate(ctx, account.ID, account.Name)
	if err != nil {
		return nil, NewBusinessError("CLIENT_LOOKUP_FAILED", "Failed to resolve client record", err)
	}

	var paused []string
	var lastErr error
	for _, accountID := range account.AdWordsIDs {
		names, err := s.pauseAccountCampaigns(ctx, client, accountID, revertAt, dateName)
		if err != nil {
			s.logger.Printf("mutation: status pause failed account=%s: %v", accountID, err)
			lastErr = err
			continue
		}
		paused = append(paused, names...)
	}

	if len(paused) == 0 {
		return nil, NewBusinessError("MUTATION_APPLY_FAILED", "Failed to pause ads", lastErr)
	}

	return &PauseResult{
		Name:        account.Name,
		Paused:      paused,
		RevertAt:    revertAt,
		RevertLabel: revertAt.Format(revertDateLayout),
	}, nil
}

func (s *MutationFlowImpl) pauseAccountCampaigns(ctx context.Context, client *models.Client, accountID string, revertAt time.Time, dateName string) ([]string, error) {
	campaigns, err := s.ads.ListCampaigns(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var ids, names []string
	for _, c := range campaigns {
		if channelTypeBlacklisted(c.ChannelType) {
			continue
		}
		ids = append(ids, c.CampaignID)
		names = append(names, c.Name)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if err := s.ads.SetCampaignStatus(ctx, accountID, ids, models.AdsStatusPaused); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMutationApply, err)
	}

	err = s.inTx(ctx, func(txCtx context.Context) error {
		record := &models.StatusMutation{
			ClientID:   client.ID,
			Campaign:   strings.Join(names, ", "),
			StatusOld:  models.CampaignStatusActive,
			StatusNew:  models.CampaignStatusPaused,
			DateRevert: revertAt,
			DateName:   dateName,
		}
		if err := s.statusRepo.Save(txCtx, record); err != nil {
			return err
		}

		status := models.AdsStatusEnabled
		revert := &models.ScheduledMutation{
			UUID:        uuid.New(),
			ClientID:    &client.ID,
			Kind:        models.MutationKindCampaignStatus,
			AccountID:   accountID,
			CampaignIDs: pq.StringArray(ids),
			Status:      &status,
			NotBefore:   revertAt,
			CreatedAt:   utils.UTCNow(),
			UpdatedAt:   utils.UTCNow(),
		}
		return s.schedRepo.Save(txCtx, revert)
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// EnableAds re-enables every campaign immediately. No revert is scheduled;
// enabled is the normal state.
func (s *MutationFlowImpl) EnableAds(ctx context.Context, phone string) (string, error) {
	account, err := s.resolve(ctx, phone)
	if err != nil {
		return "", err
	}
	if !account.HasAdsAccounts() {
		return "", NewBusinessError("ACCOUNT_NOT_CONFIGURED", "No ad accounts configured", ErrNoAdAccounts)
	}

	for _, accountID := range account.AdWordsIDs {
		campaigns, err := s.ads.ListCampaigns(ctx, accountID)
		if err != nil {
			return "", NewBusinessError("CAMPAIGN_FETCH_FAILED", "Failed to fetch campaigns", err)
		}

		var ids []string
		for _, c := range campaigns {
			if channelTypeBlacklisted(c.ChannelType) {
				continue
			}
			ids = append(ids, c.CampaignID)
		}
		if err := s.ads.SetCampaignStatus(ctx, accountID, ids, models.AdsStatusEnabled); err != nil {
			return "", NewBusinessError("MUTATION_APPLY_FAILED", "Failed to enable ads", err)
		}
	}

	return account.Name, nil
}

// Spending sums the account's ad spend for the named date range.
func (s *MutationFlowImpl) Spending(ctx context.Context, phone string, dateIndex int) (*SpendingResult, error) {
	account, err := s.resolve(ctx, phone)
	if err != nil {
		return nil, err
	}
	if !account.HasAdsAccounts() {
		return nil, NewBusinessError("ACCOUNT_NOT_CONFIGURED", "No ad accounts configured", ErrNoAdAccounts)
	}

	dates := ResolveDateRange(dateIndex, time.Now().In(s.location))
	total, failures := s.aggregator.Aggregate(ctx, account.AdWordsIDs, dates.Keyword)

	return &SpendingResult{
		Name:     account.Name,
		Spend:    total.Spend,
		Warnings: failures,
	}, nil
}

// fetchActiveBudgetGroups lists campaigns across all the account's ad
// accounts, drops blacklisted channels and paused budgets, and groups the
// rest by budget ID preserving first-seen order.
func (s *MutationFlowImpl) fetchActiveBudgetGroups(ctx context.Context, account *services.SalesAccount) ([]BudgetGroup, error) {
	if !account.HasAdsAccounts() {
		return nil, ErrNoAdAccounts
	}

	index := make(map[string]int)
	var groups []BudgetGroup

	for _, accountID := range account.AdWordsIDs {
		campaigns, err := s.ads.ListCampaigns(ctx, accountID)
		if err != nil {
			return nil, err
		}
		for _, c := range campaigns {
			if channelTypeBlacklisted(c.ChannelType) {
				continue
			}
			if c.Budget <= PausedBudgetSentinel {
				continue
			}

			key := c.AccountID + "/" + c.BudgetID
			if i, ok := index[key]; ok {
				groups[i].MemberNames = append(groups[i].MemberNames, c.Name)
				groups[i].CampaignIDs = append(groups[i].CampaignIDs, c.CampaignID)
				continue
			}
			index[key] = len(groups)
			groups = append(groups, BudgetGroup{
				AccountID:   c.AccountID,
				BudgetID:    c.BudgetID,
				Budget:      c.Budget,
				MemberNames: []string{c.Name},
				CampaignIDs: []string{c.CampaignID},
			})
		}
	}

	for i := range groups {
		groups[i].Display = formatGroupDisplay(groups[i])
	}
	return groups, nil
}

// formatGroupDisplay renders the chat listing line for a budget group:
// "Name $100.00" for a single campaign, "(A)(B) $100.00" for a shared
// budget.
func formatGroupDisplay(g BudgetGroup) string {
	amount := utils.FormatCurrency(g.Budget)
	if len(g.MemberNames) == 1 {
		return g.MemberNames[0] + " " + amount
	}

	var b strings.Builder
	for _, name := range g.MemberNames {
		b.WriteString("(" + name + ")")
	}
	return b.String() + " " + amount
}

// revertTime maps a chat duration code onto the datetime the change is
// reverted: today plus {1, 2, 3, 7} days at 09:00 account-local time.
func (s *MutationFlowImpl) revertTime(durationCode int) (time.Time, string, error) {
	now := time.Now().In(s.location)
	today := time.Date(now.Year(), now.Month(), now.Day(), RevertTimeOfDay, 0, 0, 0, s.location)

	switch durationCode {
	case 1:
		return today.AddDate(0, 0, 1), "Today", nil
	case 2:
		return today.AddDate(0, 0, 2), "Today and Tomorrow", nil
	case 3:
		return today.AddDate(0, 0, 3), "Next 3 Days", nil
	case 4:
		return today.AddDate(0, 0, 7), "Next 7 Days", nil
	default:
		return time.Time{}, "", NewBusinessError("INVALID_DURATION", "Invalid pause duration", ErrInvalidDuration)
	}
}

// inTx runs fn inside a database transaction when a handle is present.
// Flows built over fake repositories carry no handle and run fn directly.
func (s *MutationFlowImpl) inTx(ctx context.Context, fn func(context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return repository.WithTransaction(ctx, s.db, fn)
}

func (s *MutationFlowImpl) resolve(ctx context.Context, phone string) (*services.SalesAccount, error) {
	account, err := resolveAccount(ctx, s.crm, s.rc, s.cacheCfg.AccountTTL, phone)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrPhoneRequired) {
			return nil, NewBusinessError("ACCOUNT_NOT_FOUND", "Account not found", err)
		}
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to look up account", err)
	}
	return account, nil
}
