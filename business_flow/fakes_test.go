// Package businessflow contains the core business logic and use cases for the marketing operations workflows
package businessflow

import (
	"context"
	"errors"
	"time"

	"github.com/AiiMS-Group/landbot/app/services"
	"github.com/AiiMS-Group/landbot/models"
)

// fakeAdsService scripts campaign listings, metric answers, and records
// every mutation call.
type fakeAdsService struct {
	campaigns map[string][]services.Campaign
	metrics   map[string]services.AccountMetrics
	listErr   map[string]error
	metricErr map[string]error
	mutateErr error

	budgetCalls []budgetCall
	statusCalls []statusCall
}

type budgetCall struct {
	accountID string
	budgetID  string
	amount    float64
}

type statusCall struct {
	accountID   string
	campaignIDs []string
	status      string
}

func newFakeAdsService() *fakeAdsService {
	return &fakeAdsService{
		campaigns: make(map[string][]services.Campaign),
		metrics:   make(map[string]services.AccountMetrics),
		listErr:   make(map[string]error),
		metricErr: make(map[string]error),
	}
}

func (f *fakeAdsService) ListCampaigns(_ context.Context, accountID string) ([]services.Campaign, error) {
	if err := f.listErr[accountID]; err != nil {
		return nil, err
	}
	return f.campaigns[accountID], nil
}

func (f *fakeAdsService) QueryMetrics(_ context.Context, accountID, _ string) (services.AccountMetrics, error) {
	if err := f.metricErr[accountID]; err != nil {
		return services.AccountMetrics{}, err
	}
	return f.metrics[accountID], nil
}

func (f *fakeAdsService) SetBudgetAmount(_ context.Context, accountID, budgetID string, amount float64) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.budgetCalls = append(f.budgetCalls, budgetCall{accountID: accountID, budgetID: budgetID, amount: amount})
	return nil
}

func (f *fakeAdsService) SetCampaignStatus(_ context.Context, accountID string, campaignIDs []string, status string) error {
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.statusCalls = append(f.statusCalls, statusCall{accountID: accountID, campaignIDs: campaignIDs, status: status})
	return nil
}

// fakeCRMService answers account lookups from a fixed map keyed by
// normalized phone.
type fakeCRMService struct {
	byPhone map[string]*services.SalesAccount
	byID    map[string]*services.SalesAccount
	flagged []services.AccountRef
}

func newFakeCRMService() *fakeCRMService {
	return &fakeCRMService{
		byPhone: make(map[string]*services.SalesAccount),
		byID:    make(map[string]*services.SalesAccount),
	}
}

func (f *fakeCRMService) FindFlaggedAccounts(_ context.Context, _ string) ([]services.AccountRef, error) {
	return f.flagged, nil
}

func (f *fakeCRMService) AccountByPhone(_ context.Context, phone string) (*services.SalesAccount, error) {
	return f.byPhone[phone], nil
}

func (f *fakeCRMService) Account(_ context.Context, id string) (*services.SalesAccount, error) {
	return f.byID[id], nil
}

type fakeCallsService struct {
	children map[string][]string
	summary  services.CallSummary
	err      error
}

func (f *fakeCallsService) ListSubAccounts(_ context.Context, rootID string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if children, ok := f.children[rootID]; ok {
		return children, nil
	}
	return []string{rootID}, nil
}

func (f *fakeCallsService) Summary(_ context.Context, _ []string, _, _ time.Time, _ string) (services.CallSummary, error) {
	if f.err != nil {
		return services.CallSummary{}, f.err
	}
	return f.summary, nil
}

type sentTemplate struct {
	customerID int64
	templateID int
	language   string
	params     []string
}

type fakeChatService struct {
	customers map[string]*services.Customer
	failFor   map[int64]error
	sent      []sentTemplate
}

func newFakeChatService() *fakeChatService {
	return &fakeChatService{customers: make(map[string]*services.Customer)}
}

func (f *fakeChatService) FindCustomerByPhone(_ context.Context, phone string) (*services.Customer, error) {
	return f.customers[phone], nil
}

func (f *fakeChatService) SendTemplate(_ context.Context, customerID int64, templateID int, language string, params []string) error {
	if err, ok := f.failFor[customerID]; ok {
		return err
	}
	f.sent = append(f.sent, sentTemplate{customerID: customerID, templateID: templateID, language: language, params: params})
	return nil
}

// In-memory repositories

type fakeClientRepo struct {
	nextID  uint
	clients map[string]*models.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{nextID: 1, clients: make(map[string]*models.Client)}
}

func (r *fakeClientRepo) ByID(_ context.Context, id uint) (*models.Client, error) {
	for _, c := range r.clients {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) ByFreshSalesID(_ context.Context, freshSalesID string) (*models.Client, error) {
	return r.clients[freshSalesID], nil
}

func (r *fakeClientRepo) FirstOrCreate(_ context.Context, freshSalesID, name string) (*models.Client, error) {
	if c, ok := r.clients[freshSalesID]; ok {
		return c, nil
	}
	c := &models.Client{ID: r.nextID, FreshSalesID: freshSalesID, Name: name}
	r.nextID++
	r.clients[freshSalesID] = c
	return c, nil
}

func (r *fakeClientRepo) Save(_ context.Context, client *models.Client) error {
	r.clients[client.FreshSalesID] = client
	return nil
}

type fakeBudgetMutationRepo struct {
	saved []*models.BudgetMutation
	err   error
}

func (r *fakeBudgetMutationRepo) Save(_ context.Context, m *models.BudgetMutation) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, m)
	return nil
}

type fakeStatusMutationRepo struct {
	saved []*models.StatusMutation
}

func (r *fakeStatusMutationRepo) Save(_ context.Context, m *models.StatusMutation) error {
	r.saved = append(r.saved, m)
	return nil
}

type fakeStatisticRepo struct {
	saved []*models.Statistic
}

func (r *fakeStatisticRepo) Save(_ context.Context, s *models.Statistic) error {
	r.saved = append(r.saved, s)
	return nil
}

type fakeScheduledMutationRepo struct {
	nextID uint
	tasks  []*models.ScheduledMutation
	err    error
}

func (r *fakeScheduledMutationRepo) Save(_ context.Context, m *models.ScheduledMutation) error {
	if r.err != nil {
		return r.err
	}
	r.nextID++
	m.ID = r.nextID
	r.tasks = append(r.tasks, m)
	return nil
}

func (r *fakeScheduledMutationRepo) Update(_ context.Context, m *models.ScheduledMutation) error {
	for i, existing := range r.tasks {
		if existing.ID == m.ID {
			r.tasks[i] = m
			return nil
		}
	}
	return errors.New("scheduled mutation not found")
}

func (r *fakeScheduledMutationRepo) ListDue(_ context.Context, now time.Time, limit int) ([]*models.ScheduledMutation, error) {
	var due []*models.ScheduledMutation
	for _, m := range r.tasks {
		if !m.IsPending() {
			continue
		}
		if m.NotBefore.After(now) {
			continue
		}
		if m.NextAttemptAt != nil && m.NextAttemptAt.After(now) {
			continue
		}
		due = append(due, m)
		if len(due) == limit {
			break
		}
	}
	return due, nil
}
