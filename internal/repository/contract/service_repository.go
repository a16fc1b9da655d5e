package contract

import (
	"context"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"
)

type ServiceRepository interface {
	Create(ctx context.Context, service *entity.Service) error
	Update(ctx context.Context, service *entity.Service) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Service, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Service, error)

	// Time slots
	CreateTimeSlot(ctx context.Context, slot *entity.TimeSlot) error
	FindOneTimeSlot(ctx context.Context, specs ...specification.Specification) (*entity.TimeSlot, error)
	FindAllTimeSlots(ctx context.Context, specs ...specification.Specification) ([]*entity.TimeSlot, error)
}
