package wire

import (
	"context"

	"google.golang.org/grpc"
)

const (
	projServiceName  = "/event_store.client.projections.Projections/"
	methodProjCreate = projServiceName + "Create"
	methodProjUpdate = projServiceName + "Update"
	methodProjDelete = projServiceName + "Delete"
	methodProjEnable = projServiceName + "Enable"
	methodProjDisable = projServiceName + "Disable"
	methodProjState  = projServiceName + "State"
	methodProjResult = projServiceName + "Result"
	methodProjStatus = projServiceName + "Statistics"
)

type ProjectionCreateReq struct {
	Name         string `json:"name"`
	Query        string `json:"query"`
	Mode         string `json:"mode"`
	TrackEmitted bool   `json:"trackEmittedStreams"`
}

type ProjectionUpdateReq struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

type ProjectionNameReq struct {
	Name string `json:"name"`
}

type ProjectionStateReq struct {
	Name      string `json:"name"`
	Partition string `json:"partition,omitempty"`
}

type ProjectionState struct {
	Value []byte `json:"value"`
}

type ProjectionResultReq struct {
	Name      string `json:"name"`
	Partition string `json:"partition,omitempty"`
}

type ProjectionResult struct {
	Value []byte `json:"value"`
}

type ProjectionStatus struct {
	Name             string  `json:"name"`
	Status           string  `json:"status"`
	Mode             string  `json:"mode"`
	Progress         float32 `json:"progress"`
	CheckpointStatus string  `json:"checkpointStatus"`
}

type ProjectionsClient interface {
	Create(ctx context.Context, req *ProjectionCreateReq, opts ...grpc.CallOption) (*Empty, error)
	Update(ctx context.Context, req *ProjectionUpdateReq, opts ...grpc.CallOption) (*Empty, error)
	Delete(ctx context.Context, req *ProjectionNameReq, opts ...grpc.CallOption) (*Empty, error)
	Enable(ctx context.Context, req *ProjectionNameReq, opts ...grpc.CallOption) (*Empty, error)
	Disable(ctx context.Context, req *ProjectionNameReq, opts ...grpc.CallOption) (*Empty, error)
	State(ctx context.Context, req *ProjectionStateReq, opts ...grpc.CallOption) (*ProjectionState, error)
	Result(ctx context.Context, req *ProjectionResultReq, opts ...grpc.CallOption) (*ProjectionResult, error)
	Status(ctx context.Context, req *ProjectionNameReq, opts ...grpc.CallOption) (*ProjectionStatus, error)
}

func NewProjectionsClient(cc grpc.ClientConnInterface) ProjectionsClient {
	return &projectionsClient{cc: cc}
}

type projectionsClient struct {
	cc grpc.ClientConnInterface
}

func (c *projectionsClient) Create(ctx context.Context, req *ProjectionCreateReq, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.cc.Invoke(ctx, methodProjCreate, req, out, opts...)
}

func (c *projectionsClient) Update(ctx context.Context, req *ProjectionUpdateReq, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.cc.Invoke(ctx, methodProjUpdate, req, out, opts...)
}

func (c *projectionsClient) Delete(ctx context.Context, req *ProjectionNameReq, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.cc.Invoke(ctx, methodProjDelete, req, out, opts...)
}

func (c *projectionsClient) Enable(ctx context.Context, req *ProjectionNameReq, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.cc.Invoke(ctx, methodProjEnable, req, out, opts...)
}

func (c *projectionsClient) Disable(ctx context.Context, req *ProjectionNameReq, opts ...grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	return out, c.cc.Invoke(ctx, methodProjDisable, req, out, opts...)
}

func (c *projectionsClient) State(ctx context.Context, req *ProjectionStateReq, opts ...grpc.CallOption) (*ProjectionState, error) {
	out := new(ProjectionState)
	return out, c.cc.Invoke(ctx, methodProjState, req, out, opts...)
}

func (c *projectionsClient) Result(ctx context.Context, req *ProjectionResultReq, opts ...grpc.CallOption) (*ProjectionResult, error) {
	out := new(ProjectionResult)
	return out, c.cc.Invoke(ctx, methodProjResult, req, out, opts...)
}

func (c *projectionsClient) Status(ctx context.Context, req *ProjectionNameReq, opts ...grpc.CallOption) (*ProjectionStatus, error) {
	out := new(ProjectionStatus)
	return out, c.cc.Invoke(ctx, methodProjStatus, req, out, opts...)
}
