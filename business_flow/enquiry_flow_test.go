package businessflow

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/AiiMS-Group/landbot/app/services"
	"github.com/AiiMS-Group/landbot/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enquiryFixture struct {
	crm    *fakeCRMService
	ads    *fakeAdsService
	calls  *fakeCallsService
	chat   *fakeChatService
	logBuf bytes.Buffer
	flow   EnquiryFlow
}

func newEnquiryFixture(t *testing.T) *enquiryFixture {
	t.Helper()

	loc, err := time.LoadLocation("Australia/Sydney")
	require.NoError(t, err)

	f := &enquiryFixture{
		crm:   newFakeCRMService(),
		ads:   newFakeAdsService(),
		calls: &fakeCallsService{},
		chat:  newFakeChatService(),
	}
	cfg := config.LandBotConfig{EnquiryTemplateID: 1060, TemplateLanguage: "en"}
	f.flow = NewEnquiryFlow(f.crm, f.calls, f.chat, NewMetricAggregator(f.ads), cfg, loc, log.New(&f.logBuf, "", 0))
	return f
}

func optedInAccount() *services.SalesAccount {
	return &services.SalesAccount{
		ID:            "fs-1",
		Name:          "Acme Plumbing",
		AdWordsIDs:    []string{"111"},
		WildJarID:     "wj-1",
		WANumber:      "+61 400 123 456",
		HourlyUpdates: true,
	}
}

func TestNotifyAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("SendsEnquirySummaryTemplate", func(t *testing.T) {
		f := newEnquiryFixture(t)
		account := optedInAccount()
		f.crm.byID[account.ID] = account
		f.ads.metrics["111"] = services.AccountMetrics{Spend: 120, Clicks: 40}
		f.calls.summary = services.CallSummary{Answered: 10, Missed: 4, Abandoned: 1}
		f.chat.customers["61400123456"] = &services.Customer{ID: 77, Name: "Jane"}

		summary, err := f.flow.NotifyAccount(ctx, account.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(15), summary.Enquiries)
		assert.InDelta(t, 8.0, summary.CostPerEnquiry, 0.001)

		require.Len(t, f.chat.sent, 1)
		sent := f.chat.sent[0]
		assert.Equal(t, int64(77), sent.customerID)
		assert.Equal(t, 1060, sent.templateID)
		assert.Equal(t, "en", sent.language)
		require.Len(t, sent.params, 5)
		assert.Equal(t, "Jane", sent.params[0], "greeting uses the chat customer's name, not the account name")
		assert.Regexp(t, `^\d{2}:\d{2}$`, sent.params[1])
		assert.Equal(t, "$120.00", sent.params[2])
		assert.Equal(t, "15", sent.params[3])
		assert.Equal(t, "$8.00", sent.params[4])
	})

	t.Run("NoOptedInCustomerSkipsSend", func(t *testing.T) {
		f := newEnquiryFixture(t)
		account := optedInAccount()
		f.crm.byID[account.ID] = account

		_, err := f.flow.NotifyAccount(ctx, account.ID)
		assert.True(t, IsNoOptedInCustomer(err))
		assert.Empty(t, f.chat.sent)
	})

	t.Run("UnconfiguredAccountRejected", func(t *testing.T) {
		f := newEnquiryFixture(t)
		account := optedInAccount()
		account.AdWordsIDs = nil
		f.crm.byID[account.ID] = account

		_, err := f.flow.NotifyAccount(ctx, account.ID)
		assert.True(t, IsAccountNotConfigured(err))
	})
}

func TestNotifyAll(t *testing.T) {
	ctx := context.Background()

	t.Run("OneFailureDoesNotStopTheSweep", func(t *testing.T) {
		f := newEnquiryFixture(t)

		healthy := optedInAccount()
		f.crm.byID[healthy.ID] = healthy
		f.ads.metrics["111"] = services.AccountMetrics{Spend: 60}
		f.calls.summary = services.CallSummary{Answered: 6}
		f.chat.customers["61400123456"] = &services.Customer{ID: 77}

		broken := optedInAccount()
		broken.ID = "fs-2"
		broken.WANumber = "+61 400 999 999"
		f.crm.byID[broken.ID] = broken
		// no opted-in chat customer for fs-2

		f.crm.flagged = []services.AccountRef{
			{ID: broken.ID, Name: broken.Name},
			{ID: healthy.ID, Name: healthy.Name},
		}

		sent, err := f.flow.NotifyAll(ctx)
		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.Equal(t, int64(77), sent[0].CustomerID)
	})

	t.Run("DeliveryFailureIsRecordedAndSweepContinues", func(t *testing.T) {
		f := newEnquiryFixture(t)
		f.ads.metrics["111"] = services.AccountMetrics{Spend: 60}
		f.calls.summary = services.CallSummary{Answered: 6}

		flaky := optedInAccount()
		f.crm.byID[flaky.ID] = flaky
		f.chat.customers["61400123456"] = &services.Customer{ID: 77, Name: "Jane"}

		healthy := optedInAccount()
		healthy.ID = "fs-2"
		healthy.WANumber = "+61 400 999 999"
		f.crm.byID[healthy.ID] = healthy
		f.chat.customers["61400999999"] = &services.Customer{ID: 88, Name: "Sam"}

		f.chat.failFor = map[int64]error{77: errors.New("gateway timeout")}
		f.crm.flagged = []services.AccountRef{
			{ID: flaky.ID, Name: flaky.Name},
			{ID: healthy.ID, Name: healthy.Name},
		}

		sent, err := f.flow.NotifyAll(ctx)
		require.NoError(t, err)
		require.Len(t, sent, 1)
		assert.Equal(t, int64(88), sent[0].CustomerID)

		logged := f.logBuf.String()
		assert.Contains(t, logged, "delivery failed account=fs-1 customer=77")
		assert.Contains(t, logged, "$60.00", "the rendered params survive in the failure record")
		assert.Contains(t, logged, "gateway timeout")
	})
}
