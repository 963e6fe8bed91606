// Package serverproxy is the Server Proxy (C1): a thin, typed wrapper around
// the generated-by-hand rpcapi.PipelineServiceClient that every other
// component talks to instead of touching gRPC directly. Dialing follows the
// connection-manager pattern from the teacher repo this module was adapted
// from; calls are not retried here.
package serverproxy

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/arkeep-io/pipeline-executor/internal/rpcapi"
)

// Command is the decoded result of GetCommand: what the Main Loop should do
// next (§4.6 step 5).
type Command struct {
	Verb    rpcapi.Verb
	StageID int64
}

// Proxy talks to the pipeline server on behalf of the executor.
type Proxy struct {
	conn   *grpc.ClientConn
	client rpcapi.PipelineServiceClient
}

// Dial opens a gRPC connection to serverURI and wraps it in a Proxy.
// The connection is insecure transport credentials, matching the teacher's
// intra-cluster assumption that the pipeline server and its executors share
// a trusted network.
func Dial(ctx context.Context, serverURI string) (*Proxy, error) {
	conn, err := grpc.NewClient(serverURI, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("serverproxy: dial %s: %w", serverURI, err)
	}
	return &Proxy{conn: conn, client: rpcapi.NewPipelineServiceClient(conn)}, nil
}

// Close releases the underlying gRPC connection.
func (p *Proxy) Close() error {
	return p.conn.Close()
}

// RegisterClient tells the server this executor is available for work
// (§4.6 step 1, invariant: registered ⇒ RegisterClient succeeded).
func (p *Proxy) RegisterClient(ctx context.Context, clientURI string, memTotal float64, procTotal int) error {
	_, err := p.client.RegisterClient(ctx, &rpcapi.RegisterClientRequest{
		ClientURI: clientURI,
		MemTotal:  memTotal,
		ProcTotal: int32(procTotal),
	})
	if err != nil {
		return fmt.Errorf("serverproxy: RegisterClient: %w", err)
	}
	return nil
}

// UnregisterClient tells the server this executor is retiring. Callers
// should treat a failure here as non-fatal (§9): the process is shutting
// down either way, and the server's own liveness timeout will eventually
// reclaim a client that never managed to unregister.
func (p *Proxy) UnregisterClient(ctx context.Context, clientURI string) error {
	_, err := p.client.UnregisterClient(ctx, &rpcapi.UnregisterClientRequest{ClientURI: clientURI})
	if err != nil {
		return fmt.Errorf("serverproxy: UnregisterClient: %w", err)
	}
	return nil
}

// UpdateClientTimestamp is the heartbeat call (§4.5): it both keeps the
// server's liveness clock fresh and reports a current resource snapshot.
func (p *Proxy) UpdateClientTimestamp(ctx context.Context, clientURI string, metrics *rpcapi.SystemMetrics) error {
	_, err := p.client.UpdateClientTimestamp(ctx, &rpcapi.UpdateClientTimestampRequest{
		ClientURI: clientURI,
		Metrics:   metrics,
	})
	if err != nil {
		return fmt.Errorf("serverproxy: UpdateClientTimestamp: %w", err)
	}
	return nil
}

// GetCommand asks the server what to do next, reporting currently free
// resources so the server can decide whether to hand out a stage (§4.6
// step 5).
func (p *Proxy) GetCommand(ctx context.Context, clientURI string, memFree float64, procsFree int) (Command, error) {
	resp, err := p.client.GetCommand(ctx, &rpcapi.GetCommandRequest{
		ClientURI: clientURI,
		MemFree:   memFree,
		ProcsFree: int32(procsFree),
	})
	if err != nil {
		return Command{}, fmt.Errorf("serverproxy: GetCommand: %w", err)
	}
	return Command{Verb: resp.Verb, StageID: resp.StageID}, nil
}

func (p *Proxy) GetStageCommand(ctx context.Context, stageID int64) (string, error) {
	resp, err := p.client.GetStageCommand(ctx, &rpcapi.GetStageCommandRequest{StageID: stageID})
	if err != nil {
		return "", fmt.Errorf("serverproxy: GetStageCommand(%d): %w", stageID, err)
	}
	return resp.Command, nil
}

func (p *Proxy) GetStageLogfile(ctx context.Context, stageID int64) (string, error) {
	resp, err := p.client.GetStageLogfile(ctx, &rpcapi.GetStageLogfileRequest{StageID: stageID})
	if err != nil {
		return "", fmt.Errorf("serverproxy: GetStageLogfile(%d): %w", stageID, err)
	}
	return resp.Logfile, nil
}

func (p *Proxy) GetStageMem(ctx context.Context, stageID int64) (float64, error) {
	resp, err := p.client.GetStageMem(ctx, &rpcapi.GetStageMemRequest{StageID: stageID})
	if err != nil {
		return 0, fmt.Errorf("serverproxy: GetStageMem(%d): %w", stageID, err)
	}
	return resp.Mem, nil
}

func (p *Proxy) GetStageProcs(ctx context.Context, stageID int64) (int, error) {
	resp, err := p.client.GetStageProcs(ctx, &rpcapi.GetStageProcsRequest{StageID: stageID})
	if err != nil {
		return 0, fmt.Errorf("serverproxy: GetStageProcs(%d): %w", stageID, err)
	}
	return int(resp.Procs), nil
}

func (p *Proxy) SetStageStarted(ctx context.Context, stageID int64, clientURI string) error {
	_, err := p.client.SetStageStarted(ctx, &rpcapi.SetStageStartedRequest{
		StageID:   stageID,
		ClientURI: clientURI,
		Timestamp: now(),
	})
	if err != nil {
		return fmt.Errorf("serverproxy: SetStageStarted(%d): %w", stageID, err)
	}
	return nil
}

func (p *Proxy) SetStageFinished(ctx context.Context, stageID int64, clientURI string) error {
	_, err := p.client.SetStageFinished(ctx, &rpcapi.SetStageFinishedRequest{
		StageID:   stageID,
		ClientURI: clientURI,
		Timestamp: now(),
	})
	if err != nil {
		return fmt.Errorf("serverproxy: SetStageFinished(%d): %w", stageID, err)
	}
	return nil
}

func (p *Proxy) SetStageFailed(ctx context.Context, stageID int64, clientURI string) error {
	_, err := p.client.SetStageFailed(ctx, &rpcapi.SetStageFailedRequest{
		StageID:   stageID,
		ClientURI: clientURI,
		Timestamp: now(),
	})
	if err != nil {
		return fmt.Errorf("serverproxy: SetStageFailed(%d): %w", stageID, err)
	}
	return nil
}

func now() *timestamppb.Timestamp {
	return timestamppb.New(time.Now())
}
