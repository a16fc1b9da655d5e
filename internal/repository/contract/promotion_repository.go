package contract

import (
	"context"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"

	"github.com/google/uuid"
)

type PromotionRepository interface {
	Create(ctx context.Context, promotion *entity.Promotion) error
	Update(ctx context.Context, promotion *entity.Promotion) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Promotion, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Promotion, error)

	// Redeem increments used_count only while the promotion is active and
	// below max_uses. Returns ErrConditionFailed when no row qualified.
	Redeem(ctx context.Context, id uuid.UUID) error
	// Release decrements used_count, never below zero.
	Release(ctx context.Context, id uuid.UUID) error
}
