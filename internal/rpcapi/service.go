package rpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// PipelineServiceServer is the server-side contract a pipeline server
// implements. The executor only ever plays the client role; this interface
// and UnimplementedPipelineServiceServer exist so tests can stand up an
// in-memory fake server against the real gRPC wire format.
type PipelineServiceServer interface {
	RegisterClient(context.Context, *RegisterClientRequest) (*RegisterClientResponse, error)
	UnregisterClient(context.Context, *UnregisterClientRequest) (*UnregisterClientResponse, error)
	UpdateClientTimestamp(context.Context, *UpdateClientTimestampRequest) (*UpdateClientTimestampResponse, error)
	GetCommand(context.Context, *GetCommandRequest) (*GetCommandResponse, error)
	GetStageCommand(context.Context, *GetStageCommandRequest) (*GetStageCommandResponse, error)
	GetStageLogfile(context.Context, *GetStageLogfileRequest) (*GetStageLogfileResponse, error)
	GetStageMem(context.Context, *GetStageMemRequest) (*GetStageMemResponse, error)
	GetStageProcs(context.Context, *GetStageProcsRequest) (*GetStageProcsResponse, error)
	SetStageStarted(context.Context, *SetStageStartedRequest) (*SetStageStartedResponse, error)
	SetStageFinished(context.Context, *SetStageFinishedRequest) (*SetStageFinishedResponse, error)
	SetStageFailed(context.Context, *SetStageFailedRequest) (*SetStageFailedResponse, error)
}

// UnimplementedPipelineServiceServer must be embedded by server
// implementations for forward compatibility, mirroring the generated
// UnimplementedXServer pattern used throughout the pack.
type UnimplementedPipelineServiceServer struct{}

func (UnimplementedPipelineServiceServer) RegisterClient(context.Context, *RegisterClientRequest) (*RegisterClientResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RegisterClient not implemented")
}
func (UnimplementedPipelineServiceServer) UnregisterClient(context.Context, *UnregisterClientRequest) (*UnregisterClientResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UnregisterClient not implemented")
}
func (UnimplementedPipelineServiceServer) UpdateClientTimestamp(context.Context, *UpdateClientTimestampRequest) (*UpdateClientTimestampResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateClientTimestamp not implemented")
}
func (UnimplementedPipelineServiceServer) GetCommand(context.Context, *GetCommandRequest) (*GetCommandResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetCommand not implemented")
}
func (UnimplementedPipelineServiceServer) GetStageCommand(context.Context, *GetStageCommandRequest) (*GetStageCommandResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStageCommand not implemented")
}
func (UnimplementedPipelineServiceServer) GetStageLogfile(context.Context, *GetStageLogfileRequest) (*GetStageLogfileResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStageLogfile not implemented")
}
func (UnimplementedPipelineServiceServer) GetStageMem(context.Context, *GetStageMemRequest) (*GetStageMemResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStageMem not implemented")
}
func (UnimplementedPipelineServiceServer) GetStageProcs(context.Context, *GetStageProcsRequest) (*GetStageProcsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStageProcs not implemented")
}
func (UnimplementedPipelineServiceServer) SetStageStarted(context.Context, *SetStageStartedRequest) (*SetStageStartedResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetStageStarted not implemented")
}
func (UnimplementedPipelineServiceServer) SetStageFinished(context.Context, *SetStageFinishedRequest) (*SetStageFinishedResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetStageFinished not implemented")
}
func (UnimplementedPipelineServiceServer) SetStageFailed(context.Context, *SetStageFailedRequest) (*SetStageFailedResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SetStageFailed not implemented")
}

const serviceName = "pipelineexecutor.PipelineService"

func unaryHandler[Req, Resp any](method func(PipelineServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return method(srv.(PipelineServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: serviceName}
		handler := func(ctx context.Context, req any) (any, error) {
			return method(srv.(PipelineServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc is the hand-built equivalent of a protoc-gen-go-grpc service
// descriptor: it tells grpc.Server how to route each method name to a
// PipelineServiceServer implementation.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*PipelineServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterClient", Handler: unaryHandler(PipelineServiceServer.RegisterClient)},
		{MethodName: "UnregisterClient", Handler: unaryHandler(PipelineServiceServer.UnregisterClient)},
		{MethodName: "UpdateClientTimestamp", Handler: unaryHandler(PipelineServiceServer.UpdateClientTimestamp)},
		{MethodName: "GetCommand", Handler: unaryHandler(PipelineServiceServer.GetCommand)},
		{MethodName: "GetStageCommand", Handler: unaryHandler(PipelineServiceServer.GetStageCommand)},
		{MethodName: "GetStageLogfile", Handler: unaryHandler(PipelineServiceServer.GetStageLogfile)},
		{MethodName: "GetStageMem", Handler: unaryHandler(PipelineServiceServer.GetStageMem)},
		{MethodName: "GetStageProcs", Handler: unaryHandler(PipelineServiceServer.GetStageProcs)},
		{MethodName: "SetStageStarted", Handler: unaryHandler(PipelineServiceServer.SetStageStarted)},
		{MethodName: "SetStageFinished", Handler: unaryHandler(PipelineServiceServer.SetStageFinished)},
		{MethodName: "SetStageFailed", Handler: unaryHandler(PipelineServiceServer.SetStageFailed)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pipelineexecutor.proto",
}

// RegisterPipelineServiceServer registers srv with a grpc.Server.
func RegisterPipelineServiceServer(s grpc.ServiceRegistrar, srv PipelineServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}
