package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/Leganyst/studio-calendar/internal/calendar"
	"github.com/Leganyst/studio-calendar/internal/model"
)

const tokenIssuer = "studio-calendar"

// TokenClaims — полезная нагрузка токена доступа. userId совпадает с
// именем поля в токенах основного приложения студии.
type TokenClaims struct {
	UserID string     `json:"userId"`
	Role   model.Role `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IdentityService выпускает и проверяет токены доступа (HS256) и
// превращает их в проверенного Caller.
type IdentityService struct {
	users  calendar.UserStore
	secret []byte
	ttl    time.Duration

	now func() time.Time
}

func NewIdentityService(users calendar.UserStore, secret string, ttl time.Duration) *IdentityService {
	return &IdentityService{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// IssueToken подписывает токен для пользователя. Используется при выдаче
// сервисных токенов и в тестах; вход по паролю здесь не реализуется.
func (s *IdentityService) IssueToken(user *model.User) (string, error) {
	if user == nil || user.ID == uuid.Nil {
		return "", fmt.Errorf("%w: user is required", calendar.ErrValidation)
	}
	now := s.now()
	claims := TokenClaims{
		UserID: user.ID.String(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate проверяет подпись и срок действия токена, затем загружает
// пользователя: роль берётся из БД, а не из токена.
func (s *IdentityService) Authenticate(ctx context.Context, token string) (*calendar.Caller, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, fmt.Errorf("%w: access token required", calendar.ErrUnauthorized)
	}

	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", calendar.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: invalid token", calendar.ErrUnauthorized)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token subject", calendar.ErrUnauthorized)
	}

	return calendar.ValidateCaller(ctx, s.users, userID)
}
