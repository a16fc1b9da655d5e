package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/config"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/pkg/billing"
	"github.com/SpacksD/dulmar1-sub001/pkg/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBilling struct {
	periods     [][2]int
	overdueRuns int
}

func (b *recordingBilling) GenerateInvoices(ctx context.Context, month, year int) (*billing.RunSummary, error) {
	b.periods = append(b.periods, [2]int{month, year})
	return &billing.RunSummary{Month: month, Year: year}, nil
}

func (b *recordingBilling) MarkOverdue(ctx context.Context) (*billing.OverdueResult, error) {
	b.overdueRuns++
	return &billing.OverdueResult{}, nil
}

type failingSessions struct{ calls int }

func (f *failingSessions) ExpandAll(ctx context.Context) (*schedule.BulkResult, error) {
	f.calls++
	return nil, errors.New("database unavailable")
}

func TestRunBilling_UsesCurrentPeriod(t *testing.T) {
	b := &recordingBilling{}
	clk := clock.NewFixed(time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC))
	s := New(config.CronConfig{}, clk, b, &failingSessions{}, logger.NewNop())

	s.RunBilling(context.Background())

	require.Len(t, b.periods, 1)
	assert.Equal(t, [2]int{6, 2025}, b.periods[0])
}

func TestRunNightly_OverdueRunsDespiteExpansionFailure(t *testing.T) {
	b := &recordingBilling{}
	sessions := &failingSessions{}
	s := New(config.CronConfig{}, clock.Real{}, b, sessions, logger.NewNop())

	s.RunNightly(context.Background())

	assert.Equal(t, 1, sessions.calls)
	assert.Equal(t, 1, b.overdueRuns)
}

func TestStart_RejectsBadSpec(t *testing.T) {
	cfg := config.CronConfig{Enabled: true, BillingSpec: "every month", SessionsSpec: "0 2 * * *"}
	s := New(cfg, clock.Real{}, &recordingBilling{}, &failingSessions{}, logger.NewNop())

	assert.Error(t, s.Start())
}

func TestStart_Disabled(t *testing.T) {
	s := New(config.CronConfig{Enabled: false}, clock.Real{}, &recordingBilling{}, &failingSessions{}, logger.NewNop())
	require.NoError(t, s.Start())
	s.Stop()
}
