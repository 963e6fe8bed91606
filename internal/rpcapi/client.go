package rpcapi

import (
	"context"

	"google.golang.org/grpc"
)

// PipelineServiceClient is the client-side stub, hand-written against
// grpc.ClientConnInterface exactly as protoc-gen-go-grpc would generate it.
type PipelineServiceClient interface {
	RegisterClient(ctx context.Context, in *RegisterClientRequest, opts ...grpc.CallOption) (*RegisterClientResponse, error)
	UnregisterClient(ctx context.Context, in *UnregisterClientRequest, opts ...grpc.CallOption) (*UnregisterClientResponse, error)
	UpdateClientTimestamp(ctx context.Context, in *UpdateClientTimestampRequest, opts ...grpc.CallOption) (*UpdateClientTimestampResponse, error)
	GetCommand(ctx context.Context, in *GetCommandRequest, opts ...grpc.CallOption) (*GetCommandResponse, error)
	GetStageCommand(ctx context.Context, in *GetStageCommandRequest, opts ...grpc.CallOption) (*GetStageCommandResponse, error)
	GetStageLogfile(ctx context.Context, in *GetStageLogfileRequest, opts ...grpc.CallOption) (*GetStageLogfileResponse, error)
	GetStageMem(ctx context.Context, in *GetStageMemRequest, opts ...grpc.CallOption) (*GetStageMemResponse, error)
	GetStageProcs(ctx context.Context, in *GetStageProcsRequest, opts ...grpc.CallOption) (*GetStageProcsResponse, error)
	SetStageStarted(ctx context.Context, in *SetStageStartedRequest, opts ...grpc.CallOption) (*SetStageStartedResponse, error)
	SetStageFinished(ctx context.Context, in *SetStageFinishedRequest, opts ...grpc.CallOption) (*SetStageFinishedResponse, error)
	SetStageFailed(ctx context.Context, in *SetStageFailedRequest, opts ...grpc.CallOption) (*SetStageFailedResponse, error)
}

type pipelineServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPipelineServiceClient wraps a ClientConn in the typed client stub.
func NewPipelineServiceClient(cc grpc.ClientConnInterface) PipelineServiceClient {
	return &pipelineServiceClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pipelineServiceClient) RegisterClient(ctx context.Context, in *RegisterClientRequest, opts ...grpc.CallOption) (*RegisterClientResponse, error) {
	return invoke[RegisterClientRequest, RegisterClientResponse](ctx, c.cc, "RegisterClient", in, opts...)
}

func (c *pipelineServiceClient) UnregisterClient(ctx context.Context, in *UnregisterClientRequest, opts ...grpc.CallOption) (*UnregisterClientResponse, error) {
	return invoke[UnregisterClientRequest, UnregisterClientResponse](ctx, c.cc, "UnregisterClient", in, opts...)
}

func (c *pipelineServiceClient) UpdateClientTimestamp(ctx context.Context, in *UpdateClientTimestampRequest, opts ...grpc.CallOption) (*UpdateClientTimestampResponse, error) {
	return invoke[UpdateClientTimestampRequest, UpdateClientTimestampResponse](ctx, c.cc, "UpdateClientTimestamp", in, opts...)
}

func (c *pipelineServiceClient) GetCommand(ctx context.Context, in *GetCommandRequest, opts ...grpc.CallOption) (*GetCommandResponse, error) {
	return invoke[GetCommandRequest, GetCommandResponse](ctx, c.cc, "GetCommand", in, opts...)
}

func (c *pipelineServiceClient) GetStageCommand(ctx context.Context, in *GetStageCommandRequest, opts ...grpc.CallOption) (*GetStageCommandResponse, error) {
	return invoke[GetStageCommandRequest, GetStageCommandResponse](ctx, c.cc, "GetStageCommand", in, opts...)
}

func (c *pipelineServiceClient) GetStageLogfile(ctx context.Context, in *GetStageLogfileRequest, opts ...grpc.CallOption) (*GetStageLogfileResponse, error) {
	return invoke[GetStageLogfileRequest, GetStageLogfileResponse](ctx, c.cc, "GetStageLogfile", in, opts...)
}

func (c *pipelineServiceClient) GetStageMem(ctx context.Context, in *GetStageMemRequest, opts ...grpc.CallOption) (*GetStageMemResponse, error) {
	return invoke[GetStageMemRequest, GetStageMemResponse](ctx, c.cc, "GetStageMem", in, opts...)
}

func (c *pipelineServiceClient) GetStageProcs(ctx context.Context, in *GetStageProcsRequest, opts ...grpc.CallOption) (*GetStageProcsResponse, error) {
	return invoke[GetStageProcsRequest, GetStageProcsResponse](ctx, c.cc, "GetStageProcs", in, opts...)
}

func (c *pipelineServiceClient) SetStageStarted(ctx context.Context, in *SetStageStartedRequest, opts ...grpc.CallOption) (*SetStageStartedResponse, error) {
	return invoke[SetStageStartedRequest, SetStageStartedResponse](ctx, c.cc, "SetStageStarted", in, opts...)
}

func (c *pipelineServiceClient) SetStageFinished(ctx context.Context, in *SetStageFinishedRequest, opts ...grpc.CallOption) (*SetStageFinishedResponse, error) {
	return invoke[SetStageFinishedRequest, SetStageFinishedResponse](ctx, c.cc, "SetStageFinished", in, opts...)
}

func (c *pipelineServiceClient) SetStageFailed(ctx context.Context, in *SetStageFailedRequest, opts ...grpc.CallOption) (*SetStageFailedResponse, error) {
	return invoke[SetStageFailedRequest, SetStageFailedResponse](ctx, c.cc, "SetStageFailed", in, opts...)
}
