package hsipb

import (
	"context"

	"google.golang.org/grpc"
)

// Full method names for the data services.  NativeData returns samples in
// the instrument's native representation; NormalizedData returns floats.
// Both services share the same message shapes.
const (
	nativeDataService     = "tekhsi.NativeData"
	normalizedDataService = "tekhsi.NormalizedData"

	MethodNativeGetHeader       = "/tekhsi.NativeData/GetHeader"
	MethodNativeGetWaveform     = "/tekhsi.NativeData/GetWaveform"
	MethodNormalizedGetHeader   = "/tekhsi.NormalizedData/GetHeader"
	MethodNormalizedGetWaveform = "/tekhsi.NormalizedData/GetWaveform"
)

// DataClient is the client API shared by the NativeData and
// NormalizedData services.
type DataClient interface {
	GetHeader(ctx context.Context, in *WaveformRequest, opts ...grpc.CallOption) (*WaveformReply, error)
	GetWaveform(ctx context.Context, in *WaveformRequest, opts ...grpc.CallOption) (WaveformStreamClient, error)
}

// WaveformStreamClient receives the reply stream of a GetWaveform call.
type WaveformStreamClient interface {
	Recv() (*WaveformReply, error)
	grpc.ClientStream
}

type dataClient struct {
	cc                     grpc.ClientConnInterface
	getHeader, getWaveform string
}

// NewNativeDataClient returns a DataClient for the NativeData service.
func NewNativeDataClient(cc grpc.ClientConnInterface) DataClient {
	return &dataClient{
		cc:          cc,
		getHeader:   MethodNativeGetHeader,
		getWaveform: MethodNativeGetWaveform,
	}
}

// NewNormalizedDataClient returns a DataClient for the NormalizedData
// service.
func NewNormalizedDataClient(cc grpc.ClientConnInterface) DataClient {
	return &dataClient{
		cc:          cc,
		getHeader:   MethodNormalizedGetHeader,
		getWaveform: MethodNormalizedGetWaveform,
	}
}

func (c *dataClient) GetHeader(ctx context.Context, in *WaveformRequest, opts ...grpc.CallOption) (*WaveformReply, error) {
	out := new(WaveformReply)
	if err := c.cc.Invoke(ctx, c.getHeader, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dataClient) GetWaveform(ctx context.Context, in *WaveformRequest, opts ...grpc.CallOption) (WaveformStreamClient, error) {
	desc := &grpc.StreamDesc{
		StreamName:    "GetWaveform",
		ServerStreams: true,
	}
	stream, err := c.cc.NewStream(ctx, desc, c.getWaveform, opts...)
	if err != nil {
		return nil, err
	}
	x := &waveformStreamClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type waveformStreamClient struct {
	grpc.ClientStream
}

func (x *waveformStreamClient) Recv() (*WaveformReply, error) {
	m := new(WaveformReply)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// DataServer is the server API shared by NativeData and NormalizedData.
type DataServer interface {
	GetHeader(context.Context, *WaveformRequest) (*WaveformReply, error)
	GetWaveform(*WaveformRequest, WaveformStreamServer) error
}

// WaveformStreamServer sends the reply stream of a GetWaveform call.
type WaveformStreamServer interface {
	Send(*WaveformReply) error
	grpc.ServerStream
}

type waveformStreamServer struct {
	grpc.ServerStream
}

func (x *waveformStreamServer) Send(m *WaveformReply) error {
	return x.ServerStream.SendMsg(m)
}

// RegisterNativeDataServer registers srv as the tekhsi.NativeData service.
func RegisterNativeDataServer(s grpc.ServiceRegistrar, srv DataServer) {
	s.RegisterService(dataServiceDesc(nativeDataService, MethodNativeGetHeader), srv)
}

// RegisterNormalizedDataServer registers srv as the tekhsi.NormalizedData
// service.
func RegisterNormalizedDataServer(s grpc.ServiceRegistrar, srv DataServer) {
	s.RegisterService(dataServiceDesc(normalizedDataService, MethodNormalizedGetHeader), srv)
}

func dataServiceDesc(service, getHeaderMethod string) *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: service,
		HandlerType: (*DataServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetHeader",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := new(WaveformRequest)
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return srv.(DataServer).GetHeader(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getHeaderMethod}
					handler := func(ctx context.Context, req any) (any, error) {
						return srv.(DataServer).GetHeader(ctx, req.(*WaveformRequest))
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams: []grpc.StreamDesc{
			{
				StreamName: "GetWaveform",
				Handler: func(srv any, stream grpc.ServerStream) error {
					m := new(WaveformRequest)
					if err := stream.RecvMsg(m); err != nil {
						return err
					}
					return srv.(DataServer).GetWaveform(m, &waveformStreamServer{stream})
				},
				ServerStreams: true,
			},
		},
		Metadata: "tekhsi.proto",
	}
}
