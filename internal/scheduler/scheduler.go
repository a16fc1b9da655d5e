package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/config"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/pkg/billing"
	"github.com/SpacksD/dulmar1-sub001/pkg/schedule"

	"github.com/robfig/cron/v3"
)

// jobTimeout bounds a single cron run.
const jobTimeout = 30 * time.Minute

type BillingRunner interface {
	GenerateInvoices(ctx context.Context, month, year int) (*billing.RunSummary, error)
	MarkOverdue(ctx context.Context) (*billing.OverdueResult, error)
}

type SessionRunner interface {
	ExpandAll(ctx context.Context) (*schedule.BulkResult, error)
}

// Scheduler runs the monthly billing cycle and the nightly maintenance
// (session expansion, overdue marking) on cron specs.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.CronConfig
	clock    clock.Clock
	billing  BillingRunner
	sessions SessionRunner
	logger   logger.ILogger
}

func New(cfg config.CronConfig, clk clock.Clock, billingRunner BillingRunner, sessions SessionRunner, log logger.ILogger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		cfg:      cfg,
		clock:    clk,
		billing:  billingRunner,
		sessions: sessions,
		logger:   log,
	}
}

// Start registers the jobs and starts the cron loop. A disabled scheduler
// returns nil without registering anything.
func (s *Scheduler) Start() error {
	if !s.cfg.Enabled {
		s.logger.Info("CRON", "Scheduler disabled", nil)
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.BillingSpec, func() { s.RunBilling(context.Background()) }); err != nil {
		return fmt.Errorf("billing cron spec %q: %w", s.cfg.BillingSpec, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.SessionsSpec, func() { s.RunNightly(context.Background()) }); err != nil {
		return fmt.Errorf("sessions cron spec %q: %w", s.cfg.SessionsSpec, err)
	}

	s.cron.Start()
	s.logger.Info("CRON", "Scheduler started", map[string]interface{}{
		"billing":  s.cfg.BillingSpec,
		"sessions": s.cfg.SessionsSpec,
	})
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// RunBilling generates the invoices of the current month.
func (s *Scheduler) RunBilling(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	now := s.clock.Now()
	summary, err := s.billing.GenerateInvoices(ctx, int(now.Month()), now.Year())
	if err != nil {
		s.logger.Error("CRON", "Billing run failed", map[string]interface{}{
			"period": billing.PeriodLabel(int(now.Month()), now.Year()),
			"error":  err.Error(),
		})
		return
	}
	s.logger.Info("CRON", "Billing run completed", map[string]interface{}{
		"generated":  summary.GeneratedCount,
		"emailsSent": summary.EmailsSent,
		"skipped":    len(summary.Skipped),
		"errors":     len(summary.Errors),
	})
}

// RunNightly extends session calendars and marks overdue invoices. The two
// steps are independent: a failure in one does not skip the other.
func (s *Scheduler) RunNightly(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	if res, err := s.sessions.ExpandAll(ctx); err != nil {
		s.logger.Error("CRON", "Session expansion failed", map[string]interface{}{"error": err.Error()})
	} else {
		s.logger.Info("CRON", "Session expansion completed", map[string]interface{}{
			"subscriptions": res.SubscriptionsProcessed,
			"created":       res.SessionsCreated,
			"errors":        len(res.Errors),
		})
	}

	if res, err := s.billing.MarkOverdue(ctx); err != nil {
		s.logger.Error("CRON", "Overdue marking failed", map[string]interface{}{"error": err.Error()})
	} else {
		s.logger.Info("CRON", "Overdue marking completed", map[string]interface{}{
			"marked": res.Marked,
			"errors": len(res.Errors),
		})
	}
}
