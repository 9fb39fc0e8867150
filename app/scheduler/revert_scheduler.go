// Package scheduler
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/AiiMS-Group/landbot/app/services"
	"github.com/AiiMS-Group/landbot/config"
	"github.com/AiiMS-Group/landbot/models"
	"github.com/AiiMS-Group/landbot/repository"
	"github.com/AiiMS-Group/landbot/utils"
	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	revertExecutedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "revert_mutations_executed_total",
		Help: "Scheduled revert mutations applied successfully, by kind.",
	}, []string{"kind"})
	revertFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "revert_mutations_failed_total",
		Help: "Scheduled revert mutation attempts that failed, by kind.",
	}, []string{"kind"})
	revertEscalatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "revert_mutations_escalated_total",
		Help: "Scheduled revert mutations abandoned after exhausting retries.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(revertExecutedTotal, revertFailedTotal, revertEscalatedTotal)
}

// RevertScheduler periodically polls the scheduled_mutations table and
// applies due budget and status reverts. The table is the source of truth;
// tasks written before a crash are picked up on the next poll after
// restart. Delivery is at least once, which is safe because both mutation
// kinds set absolute values.
type RevertScheduler struct {
	schedRepo repository.ScheduledMutationRepository
	ads       services.AdsService
	cfg       config.SchedulerConfig
	logCfg    config.LoggingConfig
	logger    *log.Logger
}

func NewRevertScheduler(
	schedRepo repository.ScheduledMutationRepository,
	ads services.AdsService,
	cfg config.SchedulerConfig,
	logCfg config.LoggingConfig,
) *RevertScheduler {
	if cfg.RevertPollInterval <= 0 {
		cfg.RevertPollInterval = time.Minute
	}
	if cfg.RevertBatchSize <= 0 {
		cfg.RevertBatchSize = 100
	}
	if cfg.RevertMaxAttempts <= 0 {
		cfg.RevertMaxAttempts = 8
	}
	if cfg.RevertBackoffBase <= 0 {
		cfg.RevertBackoffBase = time.Minute
	}

	s := &RevertScheduler{
		schedRepo: schedRepo,
		ads:       ads,
		cfg:       cfg,
		logCfg:    logCfg,
	}
	s.logger = newSchedulerLogger("revert ", logCfg)
	return s
}

// newSchedulerLogger builds a logger writing to stdout and a rotated file
// under the configured log directory.
func newSchedulerLogger(prefix string, logCfg config.LoggingConfig) *log.Logger {
	dir := logCfg.Dir
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		l := log.Default()
		l.Printf("scheduler: failed to create log dir %s: %v", dir, err)
		return l
	}

	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "scheduler.log"),
		MaxSize:    logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
		MaxAge:     logCfg.MaxAgeDays,
		Compress:   true,
	}
	mw := io.MultiWriter(os.Stdout, rotated)
	return log.New(mw, prefix, log.LstdFlags|log.Lmicroseconds|log.LUTC)
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *RevertScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.cfg.RevertPollInterval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *RevertScheduler) runOnce(ctx context.Context) {
	now := utils.UTCNow()
	due, err := s.schedRepo.ListDue(ctx, now, s.cfg.RevertBatchSize)
	if err != nil {
		s.logger.Printf("scheduler: list due mutations failed: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}
	s.logger.Printf("scheduler: %d mutations due", len(due))

	for _, m := range due {
		if ctx.Err() != nil {
			return
		}
		s.process(ctx, m)
	}
}

// process applies one due mutation and records the outcome. Failures get
// exponential backoff; after RevertMaxAttempts the task is escalated and
// never retried again, leaving the row for an operator to act on.
func (s *RevertScheduler) process(ctx context.Context, m *models.ScheduledMutation) {
	err := s.apply(ctx, m)
	if err == nil {
		now := utils.UTCNow()
		m.ExecutedAt = &now
		m.LastError = nil
		if uerr := s.schedRepo.Update(ctx, m); uerr != nil {
			s.logger.Printf("scheduler: mark executed failed uuid=%s: %v", m.UUID, uerr)
			return
		}
		revertExecutedTotal.WithLabelValues(m.Kind).Inc()
		s.logger.Printf("scheduler: mutation applied uuid=%s kind=%s account=%s attempts=%d", m.UUID, m.Kind, m.AccountID, m.Attempts+1)
		return
	}

	revertFailedTotal.WithLabelValues(m.Kind).Inc()
	m.Attempts++
	msg := err.Error()
	m.LastError = &msg

	if m.Attempts >= s.cfg.RevertMaxAttempts {
		now := utils.UTCNow()
		m.EscalatedAt = &now
		revertEscalatedTotal.WithLabelValues(m.Kind).Inc()
		s.logger.Printf("scheduler: CRITICAL mutation escalated uuid=%s kind=%s account=%s attempts=%d last_error=%q", m.UUID, m.Kind, m.AccountID, m.Attempts, msg)
	} else {
		next := utils.UTCNow().Add(backoff(s.cfg.RevertBackoffBase, m.Attempts))
		m.NextAttemptAt = &next
		s.logger.Printf("scheduler: mutation attempt failed uuid=%s kind=%s account=%s attempts=%d retry_at=%s: %v", m.UUID, m.Kind, m.AccountID, m.Attempts, next.Format(time.RFC3339), err)
	}

	if uerr := s.schedRepo.Update(ctx, m); uerr != nil {
		s.logger.Printf("scheduler: record attempt failed uuid=%s: %v", m.UUID, uerr)
	}
}

func (s *RevertScheduler) apply(ctx context.Context, m *models.ScheduledMutation) error {
	switch m.Kind {
	case models.MutationKindBudgetAmount:
		if m.BudgetID == nil || m.BudgetAmount == nil {
			return fmt.Errorf("budget mutation uuid=%s missing payload", m.UUID)
		}
		return s.ads.SetBudgetAmount(ctx, m.AccountID, *m.BudgetID, *m.BudgetAmount)
	case models.MutationKindCampaignStatus:
		if m.Status == nil || len(m.CampaignIDs) == 0 {
			return fmt.Errorf("status mutation uuid=%s missing payload", m.UUID)
		}
		return s.ads.SetCampaignStatus(ctx, m.AccountID, m.CampaignIDs, *m.Status)
	default:
		return fmt.Errorf("unknown mutation kind %q", m.Kind)
	}
}

// backoff doubles the base delay per completed attempt, capped at one hour.
func backoff(base time.Duration, attempts int) time.Duration {
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= time.Hour {
			return time.Hour
		}
	}
	return d
}
