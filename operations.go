package kurrentdb

import (
	"context"

	"github.com/mcastellin/kurrentdb-client-go/internal/transport"
	"github.com/mcastellin/kurrentdb-client-go/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Operations is the administrative facade over the server's Operations
// RPCs: shutdown, index maintenance, leader resignation, and scavenge.
type Operations struct {
	client *Client
}

func (c *Client) Operations() *Operations { return &Operations{client: c} }

func (o *Operations) empty(ctx context.Context, callOpts []CallOption, fn func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error)) error {
	opts := o.client.callOptions(callOpts)
	_, err := transport.Unary(ctx, o.client.executor, opts, fn)
	return err
}

func (o *Operations) Shutdown(ctx context.Context, callOpts ...CallOption) error {
	return o.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewOperationsClient(cc).Shutdown(ctx, grpc.Trailer(trailer))
	})
}

func (o *Operations) MergeIndexes(ctx context.Context, callOpts ...CallOption) error {
	return o.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewOperationsClient(cc).MergeIndexes(ctx, grpc.Trailer(trailer))
	})
}

func (o *Operations) ResignNode(ctx context.Context, callOpts ...CallOption) error {
	return o.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewOperationsClient(cc).ResignNode(ctx, grpc.Trailer(trailer))
	})
}

func (o *Operations) RestartPersistentSubscriptions(ctx context.Context, callOpts ...CallOption) error {
	return o.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewOperationsClient(cc).RestartPersistentSubscriptions(ctx, grpc.Trailer(trailer))
	})
}

// StartScavenge begins a scavenge with threadCount worker threads and
// returns the server-assigned scavenge ID.
func (o *Operations) StartScavenge(ctx context.Context, threadCount, startFromChunk int32, callOpts ...CallOption) (string, error) {
	opts := o.client.callOptions(callOpts)
	req := &wire.StartScavengeReq{ThreadCount: threadCount, StartInOrder: startFromChunk}
	resp, err := transport.Unary(ctx, o.client.executor, opts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.ScavengeResp, error) {
		return wire.NewOperationsClient(cc).StartScavenge(ctx, req, grpc.Trailer(trailer))
	})
	if err != nil {
		return "", err
	}
	return resp.ScavengeID, nil
}

func (o *Operations) StopScavenge(ctx context.Context, scavengeID string, callOpts ...CallOption) error {
	req := &wire.StopScavengeReq{ScavengeID: scavengeID}
	return o.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewOperationsClient(cc).StopScavenge(ctx, req, grpc.Trailer(trailer))
	})
}
