// Package scheduler
package scheduler

import (
	"context"
	"log"
	"time"

	businessflow "github.com/AiiMS-Group/landbot/business_flow"
	"github.com/AiiMS-Group/landbot/config"
	"github.com/prometheus/client_golang/prometheus"
)

var notificationsSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "enquiry_notifications_sent_total",
	Help: "Proactive enquiry summaries delivered to chat customers.",
})

func init() {
	prometheus.MustRegister(notificationsSentTotal)
}

// EnquiryNotifier periodically sweeps opted-in accounts and pushes each
// one its enquiry summary for the day so far.
type EnquiryNotifier struct {
	flow     businessflow.EnquiryFlow
	interval time.Duration
	logger   *log.Logger
}

func NewEnquiryNotifier(flow businessflow.EnquiryFlow, cfg config.SchedulerConfig, logCfg config.LoggingConfig) *EnquiryNotifier {
	interval := cfg.NotifierInterval
	if interval <= 0 {
		interval = time.Hour
	}
	return &EnquiryNotifier{
		flow:     flow,
		interval: interval,
		logger:   newSchedulerLogger("notifier ", logCfg),
	}
}

// Start launches the notifier loop in a background goroutine and returns a
// stop function. Unlike the revert loop it does not fire immediately;
// summaries align to the tick boundary.
func (n *EnquiryNotifier) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(n.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (n *EnquiryNotifier) runOnce(ctx context.Context) {
	sent, err := n.flow.NotifyAll(ctx)
	if err != nil {
		n.logger.Printf("notifier: sweep failed: %v", err)
		return
	}
	if len(sent) == 0 {
		return
	}
	notificationsSentTotal.Add(float64(len(sent)))
	n.logger.Printf("notifier: delivered %d enquiry summaries", len(sent))
}
