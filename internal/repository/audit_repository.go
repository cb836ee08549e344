package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/studio-calendar/internal/model"
)

type AuditRepository interface {
	// Записать событие аудита.
	Create(ctx context.Context, event *model.AuditEvent) error
	// Есть ли событие данного типа по объекту (targetID может быть nil).
	Exists(ctx context.Context, eventType model.AuditEventType, targetID *uuid.UUID, since *time.Time) (bool, error)
	// События по объекту, по возрастанию времени.
	ListByTarget(ctx context.Context, targetID uuid.UUID) ([]model.AuditEvent, error)
}

type GormAuditRepository struct {
	db *gorm.DB
}

func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) Create(ctx context.Context, event *model.AuditEvent) error {
	return r.db.WithContext(ctx).Omit("User").Create(event).Error
}

func (r *GormAuditRepository) Exists(
	ctx context.Context,
	eventType model.AuditEventType,
	targetID *uuid.UUID,
	since *time.Time,
) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&model.AuditEvent{}).
		Where("event_type = ?", eventType)
	if targetID != nil {
		q = q.Where("target_id = ?", *targetID)
	}
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormAuditRepository) ListByTarget(ctx context.Context, targetID uuid.UUID) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	err := r.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
