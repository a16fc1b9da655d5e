package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/pkg/locker"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/memory"
	"github.com/SpacksD/dulmar1-sub001/pkg/billing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	calls   int
	summary *billing.RunSummary
	err     error
	overdue *billing.OverdueResult
}

func (g *stubGenerator) Generate(ctx context.Context, month, year int) (*billing.RunSummary, error) {
	g.calls++
	if g.summary != nil {
		return g.summary, g.err
	}
	return &billing.RunSummary{Month: month, Year: year, GeneratedCount: 3}, g.err
}

func (g *stubGenerator) MarkOverdue(ctx context.Context) (*billing.OverdueResult, error) {
	return g.overdue, nil
}

func TestBillingService_GenerateInvoicesRecordsRun(t *testing.T) {
	gen := &stubGenerator{}
	svc := NewBillingService(gen, locker.NewLocalLocker(), memory.NewBillingRunRepository(0), logger.NewNop())

	summary, err := svc.GenerateInvoices(context.Background(), 4, 2025)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.GeneratedCount)

	stored, err := svc.GetRun(context.Background(), 4, 2025)
	require.NoError(t, err)
	assert.Same(t, summary, stored)

	_, err = svc.GetRun(context.Background(), 5, 2025)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestBillingService_RejectsConcurrentRunForSamePeriod(t *testing.T) {
	gen := &stubGenerator{}
	lock := locker.NewLocalLocker()
	svc := NewBillingService(gen, lock, memory.NewBillingRunRepository(0), logger.NewNop())

	release, acquired, err := lock.Acquire(context.Background(), "billing:run:2025-04", time.Minute)
	require.NoError(t, err)
	require.True(t, acquired)

	_, err = svc.GenerateInvoices(context.Background(), 4, 2025)
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Zero(t, gen.calls)

	// other periods are independent
	_, err = svc.GenerateInvoices(context.Background(), 5, 2025)
	assert.NoError(t, err)

	release()
	_, err = svc.GenerateInvoices(context.Background(), 4, 2025)
	assert.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
}

func TestBillingService_ReleasesLockAfterFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("database unavailable")}
	svc := NewBillingService(gen, locker.NewLocalLocker(), memory.NewBillingRunRepository(0), logger.NewNop())

	summary, err := svc.GenerateInvoices(context.Background(), 4, 2025)
	require.Error(t, err)
	require.NotNil(t, summary)

	// the partial summary is still readable
	_, err = svc.GetRun(context.Background(), 4, 2025)
	assert.NoError(t, err)

	gen.err = nil
	_, err = svc.GenerateInvoices(context.Background(), 4, 2025)
	assert.NoError(t, err)
}

func TestBillingService_ValidatesPeriod(t *testing.T) {
	gen := &stubGenerator{}
	svc := NewBillingService(gen, locker.NewLocalLocker(), memory.NewBillingRunRepository(0), logger.NewNop())

	_, err := svc.GenerateInvoices(context.Background(), 13, 2025)
	assert.ErrorIs(t, err, billing.ErrInvalidPeriod)
	_, err = svc.GetRun(context.Background(), 0, 2025)
	assert.ErrorIs(t, err, billing.ErrInvalidPeriod)
	assert.Zero(t, gen.calls)
}

func TestBillingService_MarkOverdueDelegates(t *testing.T) {
	gen := &stubGenerator{overdue: &billing.OverdueResult{Marked: 2}}
	svc := NewBillingService(gen, locker.NewLocalLocker(), memory.NewBillingRunRepository(0), logger.NewNop())

	res, err := svc.MarkOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Marked)
}
