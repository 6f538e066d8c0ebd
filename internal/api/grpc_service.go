package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// InventoryServiceName is the fully qualified gRPC service name.
const InventoryServiceName = "medinventory.v1.InventoryService"

const (
	methodGetMedicine       = "/" + InventoryServiceName + "/GetMedicine"
	methodListMedicines     = "/" + InventoryServiceName + "/ListMedicines"
	methodGetInventoryStats = "/" + InventoryServiceName + "/GetInventoryStats"
	methodGetCategory       = "/" + InventoryServiceName + "/GetCategory"
	methodListCategories    = "/" + InventoryServiceName + "/ListCategories"
)

// InventoryServiceServer is the read-only inventory API. Requests and replies
// are protobuf well-known types, so no generated stubs are needed.
type InventoryServiceServer interface {
	GetMedicine(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListMedicines(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetInventoryStats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCategory(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ListCategories(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterInventoryServiceServer registers srv on s.
func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&inventoryServiceDesc, srv)
}

var inventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: InventoryServiceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetMedicine", Handler: unaryHandler(methodGetMedicine, InventoryServiceServer.GetMedicine)},
		{MethodName: "ListMedicines", Handler: unaryHandler(methodListMedicines, InventoryServiceServer.ListMedicines)},
		{MethodName: "GetInventoryStats", Handler: unaryHandler(methodGetInventoryStats, InventoryServiceServer.GetInventoryStats)},
		{MethodName: "GetCategory", Handler: unaryHandler(methodGetCategory, InventoryServiceServer.GetCategory)},
		{MethodName: "ListCategories", Handler: unaryHandler(methodListCategories, InventoryServiceServer.ListCategories)},
	},
	Streams: []grpc.StreamDesc{},
}

// unaryHandler adapts a typed server method to grpc.MethodDesc, honouring interceptors
// the same way generated code does.
func unaryHandler[Req any, PReq interface{ *Req }](
	fullMethod string,
	call func(InventoryServiceServer, context.Context, PReq) (*structpb.Struct, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InventoryServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(InventoryServiceServer), ctx, req.(PReq))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// InventoryClient calls InventoryService over a client connection.
type InventoryClient struct {
	cc grpc.ClientConnInterface
}

func NewInventoryClient(cc grpc.ClientConnInterface) *InventoryClient {
	return &InventoryClient{cc: cc}
}

func (c *InventoryClient) GetMedicine(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGetMedicine, in, opts)
}

func (c *InventoryClient) ListMedicines(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodListMedicines, in, opts)
}

func (c *InventoryClient) GetInventoryStats(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGetInventoryStats, in, opts)
}

func (c *InventoryClient) GetCategory(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodGetCategory, in, opts)
}

func (c *InventoryClient) ListCategories(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, methodListCategories, in, opts)
}

func (c *InventoryClient) invoke(ctx context.Context, method string, in interface{}, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
