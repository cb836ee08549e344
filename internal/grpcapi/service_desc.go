package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "studio.calendar.v1.SchedulingService"

	MethodListAvailableSlots = "/" + ServiceName + "/ListAvailableSlots"
	MethodBookSlot           = "/" + ServiceName + "/BookSlot"
)

// SchedulingServer — серверная сторона SchedulingService. Запросы и ответы
// передаются как google.protobuf.Struct, поэтому кодогенерация не нужна.
type SchedulingServer interface {
	ListAvailableSlots(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	BookSlot(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func RegisterSchedulingServer(s grpc.ServiceRegistrar, srv SchedulingServer) {
	s.RegisterService(&SchedulingServiceDesc, srv)
}

var SchedulingServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SchedulingServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListAvailableSlots", Handler: listAvailableSlotsHandler},
		{MethodName: "BookSlot", Handler: bookSlotHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "studio/calendar/v1/scheduling.proto",
}

func listAvailableSlotsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulingServer).ListAvailableSlots(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodListAvailableSlots}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulingServer).ListAvailableSlots(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func bookSlotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SchedulingServer).BookSlot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MethodBookSlot}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SchedulingServer).BookSlot(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// SchedulingClient — клиент для других сервисов студии.
type SchedulingClient struct {
	cc grpc.ClientConnInterface
}

func NewSchedulingClient(cc grpc.ClientConnInterface) *SchedulingClient {
	return &SchedulingClient{cc: cc}
}

func (c *SchedulingClient) ListAvailableSlots(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodListAvailableSlots, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SchedulingClient) BookSlot(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, MethodBookSlot, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
