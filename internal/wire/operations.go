package wire

import (
	"context"

	"google.golang.org/grpc"
)

const (
	opsServiceName        = "/event_store.client.operations.Operations/"
	methodShutdown        = opsServiceName + "Shutdown"
	methodMergeIndexes    = opsServiceName + "MergeIndexes"
	methodResignNode      = opsServiceName + "ResignNode"
	methodRestartSubsys   = opsServiceName + "RestartPersistentSubscriptions"
	methodStartScavenge   = opsServiceName + "StartScavenge"
	methodStopScavenge    = opsServiceName + "StopScavenge"
)

type Empty struct{}

type StartScavengeReq struct {
	ThreadCount  int32 `json:"threadCount"`
	StartInOrder int32 `json:"startFromChunk"`
}

type ScavengeResp struct {
	ScavengeID string `json:"scavengeId"`
}

type StopScavengeReq struct {
	ScavengeID string `json:"scavengeId"`
}

// OperationsClient is the administrative surface of spec.md §6:
// "operations (shutdown, scavenge, merge indexes, resign node, restart
// subsystems, stats stream)". The stats stream itself is a
// server-streaming read handled the same way Streams.Read is, and is
// intentionally omitted here as it adds no new core behavior.
type OperationsClient interface {
	Shutdown(ctx context.Context, opts ...grpc.CallOption) (*Empty, error)
	MergeIndexes(ctx context.Context, opts ...grpc.CallOption) (*Empty, error)
	ResignNode(ctx context.Context, opts ...grpc.CallOption) (*Empty, error)
	RestartPersistentSubscriptions(ctx context.Context, opts ...grpc.CallOption) (*Empty, error)
	StartScavenge(ctx context.Context, req *StartScavengeReq, opts ...grpc.CallOption) (*ScavengeResp, error)
	StopScavenge(ctx context.Context, req *StopScavengeReq, opts ...grpc.CallOption) (*Empty, error)
}

func NewOperationsClient(cc grpc.ClientConnInterface) OperationsClient {
	return &operationsClient{cc: cc}
}

type operationsClient struct {
	cc grpc.ClientConnInterface
}

func (c *operationsClient) invoke(ctx context.Context, method string, req any, opts []grpc.CallOption) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, method, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *operationsClient) Shutdown(ctx context.Context, opts ...grpc.CallOption) (*Empty, error) {
	return c.invoke(ctx, methodShutdown, &struct{}{}, opts)
}

func (c *operationsClient) MergeIndexes(ctx context.Context, opts ...grpc.CallOption) (*Empty, error) {
	return c.invoke(ctx, methodMergeIndexes, &struct{}{}, opts)
}

func (c *operationsClient) ResignNode(ctx context.Context, opts ...grpc.CallOption) (*Empty, error) {
	return c.invoke(ctx, methodResignNode, &struct{}{}, opts)
}

func (c *operationsClient) RestartPersistentSubscriptions(ctx context.Context, opts ...grpc.CallOption) (*Empty, error) {
	return c.invoke(ctx, methodRestartSubsys, &struct{}{}, opts)
}

func (c *operationsClient) StartScavenge(ctx context.Context, req *StartScavengeReq, opts ...grpc.CallOption) (*ScavengeResp, error) {
	out := new(ScavengeResp)
	if err := c.cc.Invoke(ctx, methodStartScavenge, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *operationsClient) StopScavenge(ctx context.Context, req *StopScavengeReq, opts ...grpc.CallOption) (*Empty, error) {
	return c.invoke(ctx, methodStopScavenge, req, opts)
}
