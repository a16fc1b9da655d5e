package implementation

import (
	"context"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/mapper"
	"github.com/SpacksD/dulmar1-sub001/internal/model"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/contract"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &SessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SessionRepositoryImpl) CreateIfNotExists(ctx context.Context, session *entity.Session) (bool, error) {
	m := r.mapper.SessionToModel(session)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subscription_id"}, {Name: "session_date"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	*session = *r.mapper.SessionToEntity(m)
	return true, nil
}

func (r *SessionRepositoryImpl) Update(ctx context.Context, session *entity.Session) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return translateWriteError(err)
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *SessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	var models []*model.Session
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Session, len(models))
	for i, m := range models {
		entities[i] = r.mapper.SessionToEntity(m)
	}
	return entities, nil
}

func (r *SessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Session{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SessionRepositoryImpl) MaxSessionNumber(ctx context.Context, subscriptionId uuid.UUID) (int, error) {
	var maxNumber int
	err := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("subscription_id = ?", subscriptionId).
		Select("COALESCE(MAX(session_number), 0)").
		Scan(&maxNumber).Error
	return maxNumber, err
}

func (r *SessionRepositoryImpl) ExistingDates(ctx context.Context, subscriptionId uuid.UUID, from, to time.Time) (map[string]struct{}, error) {
	var dates []time.Time
	err := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("subscription_id = ? AND session_date BETWEEN ? AND ?", subscriptionId, from, to).
		Pluck("session_date", &dates).Error
	if err != nil {
		return nil, err
	}
	existing := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		existing[d.Format(time.DateOnly)] = struct{}{}
	}
	return existing, nil
}
