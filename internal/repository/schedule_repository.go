package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/studio-calendar/internal/model"
)

type ScheduleRepository interface {
	// Зафиксировать запуск генерации слотов.
	Create(ctx context.Context, schedule *model.SlotSchedule) error
	// Записать итоговое число созданных слотов.
	SetSlotCount(ctx context.Context, id uuid.UUID, count int) error
	// Последние запуски генерации.
	ListRecent(ctx context.Context, limit int) ([]model.SlotSchedule, error)
}

type GormScheduleRepository struct {
	db *gorm.DB
}

func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

func (r *GormScheduleRepository) Create(ctx context.Context, schedule *model.SlotSchedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *GormScheduleRepository) SetSlotCount(ctx context.Context, id uuid.UUID, count int) error {
	return r.db.WithContext(ctx).
		Model(&model.SlotSchedule{}).
		Where("id = ?", id).
		Update("slot_count", count).
		Error
}

func (r *GormScheduleRepository) ListRecent(ctx context.Context, limit int) ([]model.SlotSchedule, error) {
	var schedules []model.SlotSchedule
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}
