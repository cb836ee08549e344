package grpcapi

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"gorm.io/gorm"

	"github.com/Leganyst/studio-calendar/internal/model"
	"github.com/Leganyst/studio-calendar/internal/repository"
	"github.com/Leganyst/studio-calendar/internal/service"
	"github.com/Leganyst/studio-calendar/internal/testdb"
)

type env struct {
	db          *gorm.DB
	conn        *grpc.ClientConn
	client      *SchedulingClient
	clientToken string
}

func setup(t *testing.T) *env {
	t.Helper()
	gdb := testdb.Open(t)
	users := repository.NewGormUserRepository(gdb)

	svc := service.NewSchedulingService(
		repository.NewGormEventRepository(gdb),
		repository.NewGormProjectRepository(gdb),
		users,
		repository.NewGormScheduleRepository(gdb),
		repository.NewGormAuditRepository(gdb),
		nil,
		nil,
		nil,
	)
	identity := service.NewIdentityService(users, "grpc-test-secret", time.Hour)

	user := testdb.CreateUser(t, gdb, model.RoleClient, "jane")
	token, err := identity.IssueToken(user)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv, _ := NewGRPCServer(svc, identity, nil)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &env{db: gdb, conn: conn, client: NewSchedulingClient(conn), clientToken: token}
}

func (e *env) authed(ctx context.Context) context.Context {
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+e.clientToken)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestListAndBookOverGRPC(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	slot := testdb.CreateEvent(t, e.db, "Available for Booking", "2026-02-02T09:00:00", "2026-02-02T13:00:00", true)

	resp, err := e.client.ListAvailableSlots(e.authed(ctx), mustStruct(t, map[string]any{
		"start": "2026-02-01T00:00:00",
		"end":   "2026-02-03T00:00:00",
	}))
	require.NoError(t, err)
	slots := resp.AsMap()["slots"].([]any)
	require.Len(t, slots, 1)
	assert.Equal(t, "2026-02-02T09:00:00", slots[0].(map[string]any)["start_datetime"])

	booked, err := e.client.BookSlot(e.authed(ctx), mustStruct(t, map[string]any{"slot_id": slot.ID.String()}))
	require.NoError(t, err)
	event := booked.AsMap()["event"].(map[string]any)
	assert.Equal(t, true, event["is_booked"])

	_, err = e.client.BookSlot(e.authed(ctx), mustStruct(t, map[string]any{"slot_id": slot.ID.String()}))
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestGRPCErrors(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.client.ListAvailableSlots(ctx, mustStruct(t, nil))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	bad := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer nope")
	_, err = e.client.ListAvailableSlots(bad, mustStruct(t, nil))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = e.client.BookSlot(e.authed(ctx), mustStruct(t, map[string]any{"slot_id": "123"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = e.client.BookSlot(e.authed(ctx), mustStruct(t, map[string]any{
		"slot_id": "7a4f6b8e-1c2d-4e5f-8a9b-0c1d2e3f4a5b",
	}))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = e.client.ListAvailableSlots(e.authed(ctx), mustStruct(t, map[string]any{"start": "soon"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestHealthIsOpen(t *testing.T) {
	e := setup(t)

	resp, err := healthpb.NewHealthClient(e.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
