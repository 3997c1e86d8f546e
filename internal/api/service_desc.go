package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "globequiz.v1.GlobeService"

// Method names, as they appear after the service in the full method path.
const (
	MethodToSphere          = "ToSphere"
	MethodFromSphere        = "FromSphere"
	MethodTargetRotation    = "TargetRotation"
	MethodDetectFrontFacing = "DetectFrontFacing"
	MethodListCountries     = "ListCountries"
	MethodGetGlobe          = "GetGlobe"
	MethodFocusCountry      = "FocusCountry"
	MethodSpinGlobe         = "SpinGlobe"
	MethodStartQuiz         = "StartQuiz"
	MethodNextQuestion      = "NextQuestion"
	MethodSubmitAnswer      = "SubmitAnswer"
	MethodEndQuiz           = "EndQuiz"
)

// FullMethod returns "/globequiz.v1.GlobeService/<method>".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// GlobeServiceServer is the server API. Every message is a
// google.protobuf.Struct whose fields are documented on GlobeService.
type GlobeServiceServer interface {
	ToSphere(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FromSphere(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TargetRotation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DetectFrontFacing(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListCountries(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGlobe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FocusCountry(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SpinGlobe(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartQuiz(context.Context, *structpb.Struct) (*structpb.Struct, error)
	NextQuestion(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitAnswer(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EndQuiz(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedGlobeServiceServer answers every method with Unimplemented.
type UnimplementedGlobeServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedGlobeServiceServer) ToSphere(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodToSphere)
}
func (UnimplementedGlobeServiceServer) FromSphere(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodFromSphere)
}
func (UnimplementedGlobeServiceServer) TargetRotation(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodTargetRotation)
}
func (UnimplementedGlobeServiceServer) DetectFrontFacing(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodDetectFrontFacing)
}
func (UnimplementedGlobeServiceServer) ListCountries(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodListCountries)
}
func (UnimplementedGlobeServiceServer) GetGlobe(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodGetGlobe)
}
func (UnimplementedGlobeServiceServer) FocusCountry(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodFocusCountry)
}
func (UnimplementedGlobeServiceServer) SpinGlobe(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodSpinGlobe)
}
func (UnimplementedGlobeServiceServer) StartQuiz(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodStartQuiz)
}
func (UnimplementedGlobeServiceServer) NextQuestion(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodNextQuestion)
}
func (UnimplementedGlobeServiceServer) SubmitAnswer(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodSubmitAnswer)
}
func (UnimplementedGlobeServiceServer) EndQuiz(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented(MethodEndQuiz)
}

type structCall func(GlobeServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call structCall) grpc.MethodHandler {
	fullMethod := FullMethod(method)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GlobeServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(GlobeServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// GlobeServiceDesc describes GlobeService for grpc.Server registration.
var GlobeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GlobeServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodToSphere, Handler: unaryHandler(MethodToSphere, GlobeServiceServer.ToSphere)},
		{MethodName: MethodFromSphere, Handler: unaryHandler(MethodFromSphere, GlobeServiceServer.FromSphere)},
		{MethodName: MethodTargetRotation, Handler: unaryHandler(MethodTargetRotation, GlobeServiceServer.TargetRotation)},
		{MethodName: MethodDetectFrontFacing, Handler: unaryHandler(MethodDetectFrontFacing, GlobeServiceServer.DetectFrontFacing)},
		{MethodName: MethodListCountries, Handler: unaryHandler(MethodListCountries, GlobeServiceServer.ListCountries)},
		{MethodName: MethodGetGlobe, Handler: unaryHandler(MethodGetGlobe, GlobeServiceServer.GetGlobe)},
		{MethodName: MethodFocusCountry, Handler: unaryHandler(MethodFocusCountry, GlobeServiceServer.FocusCountry)},
		{MethodName: MethodSpinGlobe, Handler: unaryHandler(MethodSpinGlobe, GlobeServiceServer.SpinGlobe)},
		{MethodName: MethodStartQuiz, Handler: unaryHandler(MethodStartQuiz, GlobeServiceServer.StartQuiz)},
		{MethodName: MethodNextQuestion, Handler: unaryHandler(MethodNextQuestion, GlobeServiceServer.NextQuestion)},
		{MethodName: MethodSubmitAnswer, Handler: unaryHandler(MethodSubmitAnswer, GlobeServiceServer.SubmitAnswer)},
		{MethodName: MethodEndQuiz, Handler: unaryHandler(MethodEndQuiz, GlobeServiceServer.EndQuiz)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "globequiz/v1/globe.proto",
}

// RegisterGlobeServiceServer registers srv with s.
func RegisterGlobeServiceServer(s grpc.ServiceRegistrar, srv GlobeServiceServer) {
	s.RegisterService(&GlobeServiceDesc, srv)
}

// GlobeServiceClient calls GlobeService over a client connection.
type GlobeServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewGlobeServiceClient wraps cc.
func NewGlobeServiceClient(cc grpc.ClientConnInterface) *GlobeServiceClient {
	return &GlobeServiceClient{cc: cc}
}

// Call invokes method with a request built from fields, which must be
// convertible by structpb.NewStruct.
func (c *GlobeServiceClient) Call(ctx context.Context, method string, fields map[string]any, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "encode request: %v", err)
	}
	return c.Invoke(ctx, method, in, opts...)
}

// Invoke sends a prepared Struct request.
func (c *GlobeServiceClient) Invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
