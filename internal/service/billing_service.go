package service

import (
	"context"
	"fmt"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/pkg/locker"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/pkg/billing"
)

// BillingRunTimeout bounds how long a period's run lock is held.
const BillingRunTimeout = 15 * time.Minute

type InvoiceGenerator interface {
	Generate(ctx context.Context, month, year int) (*billing.RunSummary, error)
	MarkOverdue(ctx context.Context) (*billing.OverdueResult, error)
}

// RunRegistry is satisfied by *memory.BillingRunRepository.
type RunRegistry interface {
	Save(summary *billing.RunSummary)
	Get(month, year int) (*billing.RunSummary, bool)
}

type IBillingService interface {
	GenerateInvoices(ctx context.Context, month, year int) (*billing.RunSummary, error)
	GetRun(ctx context.Context, month, year int) (*billing.RunSummary, error)
	MarkOverdue(ctx context.Context) (*billing.OverdueResult, error)
}

type billingService struct {
	generator InvoiceGenerator
	locker    locker.Locker
	registry  RunRegistry
	logger    logger.ILogger
}

func NewBillingService(generator InvoiceGenerator, lock locker.Locker, registry RunRegistry, logger logger.ILogger) IBillingService {
	return &billingService{
		generator: generator,
		locker:    lock,
		registry:  registry,
		logger:    logger,
	}
}

// GenerateInvoices runs the billing cycle for one period. A second run for
// the same period fails with ErrRunInProgress while the first holds the lock.
func (s *billingService) GenerateInvoices(ctx context.Context, month, year int) (*billing.RunSummary, error) {
	if err := billing.ValidatePeriod(month, year); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("billing:run:%04d-%02d", year, month)
	release, acquired, err := s.locker.Acquire(ctx, key, BillingRunTimeout)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrRunInProgress
	}
	defer release()

	summary, err := s.generator.Generate(ctx, month, year)
	if summary != nil {
		s.registry.Save(summary)
	}
	if err != nil {
		return summary, err
	}

	s.logger.Info("BILLING", "Billing run finished", map[string]interface{}{
		"period":    billing.PeriodLabel(month, year),
		"generated": summary.GeneratedCount,
		"skipped":   len(summary.Skipped),
		"errors":    len(summary.Errors),
	})
	return summary, nil
}

func (s *billingService) GetRun(ctx context.Context, month, year int) (*billing.RunSummary, error) {
	if err := billing.ValidatePeriod(month, year); err != nil {
		return nil, err
	}
	summary, ok := s.registry.Get(month, year)
	if !ok {
		return nil, ErrRunNotFound
	}
	return summary, nil
}

func (s *billingService) MarkOverdue(ctx context.Context) (*billing.OverdueResult, error) {
	return s.generator.MarkOverdue(ctx)
}
