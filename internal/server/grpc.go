package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alfredjeanlab/worldchart/internal/api"
	"github.com/alfredjeanlab/worldchart/internal/model"
)

// ChartServiceName is the fully qualified gRPC service name.
const ChartServiceName = "worldchart.v1.ChartService"

// Full method names of the chart service.
const (
	MethodHealth     = "/" + ChartServiceName + "/Health"
	MethodGetOptions = "/" + ChartServiceName + "/GetOptions"
	MethodGetChart   = "/" + ChartServiceName + "/GetChart"
)

// ChartServiceServer is the gRPC surface of the chart service. Requests and
// responses are google.protobuf.Struct messages carrying the JSON bodies of
// the HTTP API.
type ChartServiceServer interface {
	Health(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetOptions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetChart(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(ChartServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ChartServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ChartServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// chartServiceDesc describes ChartServiceServer to grpc.Server.
var chartServiceDesc = grpc.ServiceDesc{
	ServiceName: ChartServiceName,
	HandlerType: (*ChartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Health",
			Handler: unaryHandler(MethodHealth, func(s ChartServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.Health(ctx, in)
			}),
		},
		{
			MethodName: "GetOptions",
			Handler: unaryHandler(MethodGetOptions, func(s ChartServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.GetOptions(ctx, in)
			}),
		},
		{
			MethodName: "GetChart",
			Handler: unaryHandler(MethodGetChart, func(s ChartServiceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.GetChart(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "worldchart/v1/chart.proto",
}

// NewGRPCServer creates a gRPC server with standard interceptors,
// registers the chart service and reflection, and returns the server ready
// to serve.
func NewGRPCServer(s *ChartServer, authToken string) *grpc.Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			RecoveryInterceptor,
			LoggingInterceptor,
			AuthInterceptor(authToken),
		),
	)
	srv.RegisterService(&chartServiceDesc, &grpcService{s: s})
	reflection.Register(srv)
	return srv
}

// grpcService adapts ChartServer to ChartServiceServer.
type grpcService struct {
	s *ChartServer
}

func (g *grpcService) Health(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(g.s.Health())
}

// optionsRequest is the body of GetOptions.
type optionsRequest struct {
	Statistic model.Statistic `json:"statistic"`
	Type      model.ChartType `json:"type,omitempty"`
	Lang      string          `json:"lang,omitempty"`
}

func (g *grpcService) GetOptions(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req optionsRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(inputError(err.Error()))
	}
	if req.Statistic == "" {
		resp, err := g.s.Statistics(req.Lang)
		if err != nil {
			return nil, grpcError(err)
		}
		return toStruct(resp)
	}
	resp, err := g.s.Options(req.Statistic, req.Type, req.Lang)
	if err != nil {
		return nil, grpcError(err)
	}
	return toStruct(resp)
}

func (g *grpcService) GetChart(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.ChartRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, grpcError(inputError(err.Error()))
	}
	resp, err := g.s.Chart(ctx, &req)
	if err != nil {
		return nil, grpcError(err)
	}
	return toStruct(resp)
}
