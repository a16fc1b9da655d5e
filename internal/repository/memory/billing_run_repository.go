package memory

import (
	"fmt"
	"time"

	"github.com/SpacksD/dulmar1-sub001/pkg/billing"

	"github.com/patrickmn/go-cache"
)

// BillingRunRepository keeps the latest summary of each billing period for
// admin readback. Summaries are not persisted across restarts.
type BillingRunRepository struct {
	cache *cache.Cache
}

func NewBillingRunRepository(retention time.Duration) *BillingRunRepository {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	c := cache.New(retention, time.Hour)
	return &BillingRunRepository{
		cache: c,
	}
}

func runKey(month, year int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func (r *BillingRunRepository) Save(summary *billing.RunSummary) {
	r.cache.Set(runKey(summary.Month, summary.Year), summary, cache.DefaultExpiration)
}

func (r *BillingRunRepository) Get(month, year int) (*billing.RunSummary, bool) {
	if x, found := r.cache.Get(runKey(month, year)); found {
		return x.(*billing.RunSummary), true
	}
	return nil, false
}
