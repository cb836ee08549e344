package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/studio-calendar/internal/model"
)

type UserRepository interface {
	// Найти пользователя по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// Найти пользователя по email (без учёта регистра).
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// Первый по дате создания активный администратор — адресат уведомлений студии.
	FirstActiveAdmin(ctx context.Context) (*model.User, error)
	// Создать пользователя.
	Create(ctx context.Context, user *model.User) error
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "user")
	}
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		return nil, wrapNotFound(err, "user")
	}
	return &u, nil
}

func (r *GormUserRepository) FirstActiveAdmin(ctx context.Context) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", model.RoleAdmin, true).
		Order("created_at ASC").
		First(&u).Error
	if err != nil {
		return nil, wrapNotFound(err, "admin user")
	}
	return &u, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = normalizeEmail(user.Email)
	return r.db.WithContext(ctx).Create(user).Error
}
