package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Leganyst/studio-calendar/internal/calendar"
)

// Authenticator проверяет bearer-токен из метаданных authorization.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*calendar.Caller, error)
}

type callerKey struct{}

func withCaller(ctx context.Context, c *calendar.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFromContext возвращает пользователя, проверенного AuthInterceptor.
func CallerFromContext(ctx context.Context) (calendar.Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(*calendar.Caller)
	if !ok || c == nil {
		return calendar.Caller{}, false
	}
	return *c, true
}

// AuthInterceptor требует токен для методов календаря; health и reflection открыты.
func AuthInterceptor(auth Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if !strings.HasPrefix(info.FullMethod, "/"+ServiceName+"/") {
			return handler(ctx, req)
		}

		md, _ := metadata.FromIncomingContext(ctx)
		var token string
		if values := md.Get("authorization"); len(values) > 0 {
			token = values[0]
		}
		if strings.TrimSpace(token) == "" {
			return nil, toStatus(fmt.Errorf("%w: access token required", calendar.ErrUnauthorized))
		}

		caller, err := auth.Authenticate(ctx, token)
		if err != nil {
			return nil, toStatus(err)
		}
		return handler(withCaller(ctx, caller), req)
	}
}

// LoggingInterceptor пишет метод, код ответа и длительность вызова.
func LoggingInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		level := slog.LevelInfo
		if code == codes.Internal || code == codes.Unknown {
			level = slog.LevelError
		}
		log.Log(ctx, level, "grpc call",
			"method", info.FullMethod, "code", code.String(), "latency", time.Since(start), "err", err)
		return resp, err
	}
}

var errorCodes = []struct {
	kind error
	code codes.Code
}{
	{calendar.ErrValidation, codes.InvalidArgument},
	{calendar.ErrUnauthorized, codes.Unauthenticated},
	{calendar.ErrForbidden, codes.PermissionDenied},
	{calendar.ErrNotFound, codes.NotFound},
	{calendar.ErrConflict, codes.FailedPrecondition},
	{calendar.ErrAlreadyBooked, codes.AlreadyExists},
}

// toStatus переводит ошибку движка в статус gRPC; неизвестные — Internal без подробностей.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, e := range errorCodes {
		if errors.Is(err, e.kind) {
			return status.Error(e.code, err.Error())
		}
	}
	return status.Error(codes.Internal, "internal error")
}
