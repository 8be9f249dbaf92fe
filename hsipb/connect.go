package hsipb

import (
	"context"

	"google.golang.org/grpc"
)

// Full method names for the Connect service.
const (
	connectService = "tekhsi.Connect"

	MethodConnect                = "/tekhsi.Connect/Connect"
	MethodDisconnect             = "/tekhsi.Connect/Disconnect"
	MethodRequestAvailableNames  = "/tekhsi.Connect/RequestAvailableNames"
	MethodRequestNewSequence     = "/tekhsi.Connect/RequestNewSequence"
	MethodWaitForDataAccess      = "/tekhsi.Connect/WaitForDataAccess"
	MethodFinishedWithDataAccess = "/tekhsi.Connect/FinishedWithDataAccess"
)

// ConnectClient is the client API for the Connect service, which manages
// client registration and the data-access hold protocol.
type ConnectClient interface {
	Connect(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*ConnectReply, error)
	Disconnect(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*ConnectReply, error)
	RequestAvailableNames(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*AvailableNamesReply, error)
	RequestNewSequence(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*ConnectReply, error)
	WaitForDataAccess(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*ConnectReply, error)
	FinishedWithDataAccess(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*ConnectReply, error)
}

type connectClient struct {
	cc grpc.ClientConnInterface
}

// NewConnectClient returns a ConnectClient bound to cc.
func NewConnectClient(cc grpc.ClientConnInterface) ConnectClient {
	return &connectClient{cc}
}

func (c *connectClient) Connect(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*ConnectReply, error) {
	out := new(ConnectReply)
	if err := c.cc.Invoke(ctx, MethodConnect, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *connectClient) Disconnect(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*ConnectReply, error) {
	out := new(ConnectReply)
	if err := c.cc.Invoke(ctx, MethodDisconnect, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *connectClient) RequestAvailableNames(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*AvailableNamesReply, error) {
	out := new(AvailableNamesReply)
	if err := c.cc.Invoke(ctx, MethodRequestAvailableNames, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *connectClient) RequestNewSequence(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*ConnectReply, error) {
	out := new(ConnectReply)
	if err := c.cc.Invoke(ctx, MethodRequestNewSequence, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *connectClient) WaitForDataAccess(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*ConnectReply, error) {
	out := new(ConnectReply)
	if err := c.cc.Invoke(ctx, MethodWaitForDataAccess, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *connectClient) FinishedWithDataAccess(ctx context.Context, in *ConnectRequest, opts ...grpc.CallOption) (*ConnectReply, error) {
	out := new(ConnectReply)
	if err := c.cc.Invoke(ctx, MethodFinishedWithDataAccess, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ConnectServer is the server API for the Connect service.
type ConnectServer interface {
	Connect(context.Context, *ConnectRequest) (*ConnectReply, error)
	Disconnect(context.Context, *ConnectRequest) (*ConnectReply, error)
	RequestAvailableNames(context.Context, *ConnectRequest) (*AvailableNamesReply, error)
	RequestNewSequence(context.Context, *ConnectRequest) (*ConnectReply, error)
	WaitForDataAccess(context.Context, *ConnectRequest) (*ConnectReply, error)
	FinishedWithDataAccess(context.Context, *ConnectRequest) (*ConnectReply, error)
}

// RegisterConnectServer registers srv on s under the tekhsi.Connect
// service name.
func RegisterConnectServer(s grpc.ServiceRegistrar, srv ConnectServer) {
	s.RegisterService(&connectServiceDesc, srv)
}

func connectUnaryHandler(
	method string,
	call func(ConnectServer, context.Context, *ConnectRequest) (any, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(ConnectRequest)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ConnectServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ConnectServer), ctx, req.(*ConnectRequest))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var connectServiceDesc = grpc.ServiceDesc{
	ServiceName: connectService,
	HandlerType: (*ConnectServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Connect",
			Handler: connectUnaryHandler(MethodConnect, func(s ConnectServer, ctx context.Context, in *ConnectRequest) (any, error) {
				return s.Connect(ctx, in)
			}),
		},
		{
			MethodName: "Disconnect",
			Handler: connectUnaryHandler(MethodDisconnect, func(s ConnectServer, ctx context.Context, in *ConnectRequest) (any, error) {
				return s.Disconnect(ctx, in)
			}),
		},
		{
			MethodName: "RequestAvailableNames",
			Handler: connectUnaryHandler(MethodRequestAvailableNames, func(s ConnectServer, ctx context.Context, in *ConnectRequest) (any, error) {
				return s.RequestAvailableNames(ctx, in)
			}),
		},
		{
			MethodName: "RequestNewSequence",
			Handler: connectUnaryHandler(MethodRequestNewSequence, func(s ConnectServer, ctx context.Context, in *ConnectRequest) (any, error) {
				return s.RequestNewSequence(ctx, in)
			}),
		},
		{
			MethodName: "WaitForDataAccess",
			Handler: connectUnaryHandler(MethodWaitForDataAccess, func(s ConnectServer, ctx context.Context, in *ConnectRequest) (any, error) {
				return s.WaitForDataAccess(ctx, in)
			}),
		},
		{
			MethodName: "FinishedWithDataAccess",
			Handler: connectUnaryHandler(MethodFinishedWithDataAccess, func(s ConnectServer, ctx context.Context, in *ConnectRequest) (any, error) {
				return s.FinishedWithDataAccess(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tekhsi.proto",
}
