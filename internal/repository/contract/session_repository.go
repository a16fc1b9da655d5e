package contract

import (
	"context"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"

	"github.com/google/uuid"
)

type SessionRepository interface {
	// CreateIfNotExists inserts unless (subscription_id, session_date) is
	// taken. Reports whether a row was written.
	CreateIfNotExists(ctx context.Context, session *entity.Session) (bool, error)
	Update(ctx context.Context, session *entity.Session) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	MaxSessionNumber(ctx context.Context, subscriptionId uuid.UUID) (int, error)
	// ExistingDates returns the session dates (formatted 2006-01-02) the
	// subscription already has within [from, to].
	ExistingDates(ctx context.Context, subscriptionId uuid.UUID, from, to time.Time) (map[string]struct{}, error)
}
