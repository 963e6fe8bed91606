// Package rpcapi defines the wire contract between an executor and the
// pipeline server: the PipelineService gRPC service and its request/response
// messages (§4.1, §6 of the design).
//
// No .proto file is compiled here — the service descriptor is hand-built
// against the public google.golang.org/grpc API (the same technique
// protoc-gen-go-grpc uses under the hood), and messages are plain structs
// encoded with the JSON codec registered in codec.go. This keeps the real
// gRPC transport (framing, multiplexing, deadlines, metadata) while avoiding
// a protoc invocation. timestamppb is still used for wire timestamps since
// it works standalone without code generation.
package rpcapi

import "google.golang.org/protobuf/types/known/timestamppb"

// Verb is the action returned by GetCommand.
type Verb string

const (
	VerbRunStage         Verb = "run_stage"
	VerbWait             Verb = "wait"
	VerbShutdownNormally Verb = "shutdown_normally"
)

// SystemMetrics mirrors the host resource snapshot sent with heartbeats.
type SystemMetrics struct {
	CPUPercent  float64 `json:"cpu_percent"`
	MemPercent  float64 `json:"mem_percent"`
	DiskPercent float64 `json:"disk_percent"`
}

type RegisterClientRequest struct {
	ClientURI string  `json:"client_uri"`
	MemTotal  float64 `json:"mem_total"`
	ProcTotal int32   `json:"proc_total"`
}

type RegisterClientResponse struct{}

type UnregisterClientRequest struct {
	ClientURI string `json:"client_uri"`
}

type UnregisterClientResponse struct{}

type UpdateClientTimestampRequest struct {
	ClientURI string         `json:"client_uri"`
	Metrics   *SystemMetrics `json:"metrics,omitempty"`
}

type UpdateClientTimestampResponse struct{}

type GetCommandRequest struct {
	ClientURI string  `json:"client_uri"`
	MemFree   float64 `json:"mem_free"`
	ProcsFree int32   `json:"procs_free"`
}

type GetCommandResponse struct {
	Verb    Verb  `json:"verb"`
	StageID int64 `json:"stage_id,omitempty"`
}

type GetStageCommandRequest struct {
	StageID int64 `json:"stage_id"`
}

type GetStageCommandResponse struct {
	Command string `json:"command"`
}

type GetStageLogfileRequest struct {
	StageID int64 `json:"stage_id"`
}

type GetStageLogfileResponse struct {
	Logfile string `json:"logfile"`
}

type GetStageMemRequest struct {
	StageID int64 `json:"stage_id"`
}

type GetStageMemResponse struct {
	Mem float64 `json:"mem"`
}

type GetStageProcsRequest struct {
	StageID int64 `json:"stage_id"`
}

type GetStageProcsResponse struct {
	Procs int32 `json:"procs"`
}

type SetStageStartedRequest struct {
	StageID   int64                  `json:"stage_id"`
	ClientURI string                 `json:"client_uri"`
	Timestamp *timestamppb.Timestamp `json:"timestamp,omitempty"`
}

type SetStageStartedResponse struct{}

type SetStageFinishedRequest struct {
	StageID   int64                  `json:"stage_id"`
	ClientURI string                 `json:"client_uri"`
	Timestamp *timestamppb.Timestamp `json:"timestamp,omitempty"`
}

type SetStageFinishedResponse struct{}

type SetStageFailedRequest struct {
	StageID   int64                  `json:"stage_id"`
	ClientURI string                 `json:"client_uri"`
	Timestamp *timestamppb.Timestamp `json:"timestamp,omitempty"`
}

type SetStageFailedResponse struct{}
