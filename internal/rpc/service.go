package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region service-desc
// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "affect.v1.AffectEngine"

const (
	analyzeMethod        = "/" + ServiceName + "/Analyze"
	analyzeSessionMethod = "/" + ServiceName + "/AnalyzeSession"
)

// AffectEngineServer is the server API. Payloads are google.protobuf.Struct
// values carrying the JSON form of the engine records.
type AffectEngineServer interface {
	Analyze(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AnalyzeSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes AffectEngine for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AffectEngineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Analyze", Handler: unaryHandler(analyzeMethod, AffectEngineServer.Analyze)},
		{MethodName: "AnalyzeSession", Handler: unaryHandler(analyzeSessionMethod, AffectEngineServer.AnalyzeSession)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "affect/v1/affect.proto",
}

type structMethod func(AffectEngineServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structMethod) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AffectEngineServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(AffectEngineServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
// #endregion service-desc
