package kurrentdb

import (
	"context"

	"github.com/mcastellin/kurrentdb-client-go/internal/transport"
	"github.com/mcastellin/kurrentdb-client-go/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// ProjectionStatus reports a projection's runtime state.
type ProjectionStatus struct {
	Name             string
	Status           string
	Mode             string
	Progress         float32
	CheckpointStatus string
}

// Projections is the administrative facade over server-side projections.
type Projections struct {
	client *Client
}

func (c *Client) Projections() *Projections { return &Projections{client: c} }

func (p *Projections) empty(ctx context.Context, callOpts []CallOption, fn func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error)) error {
	opts := p.client.callOptions(callOpts)
	_, err := transport.Unary(ctx, p.client.executor, opts, fn)
	return err
}

func (p *Projections) Create(ctx context.Context, name, query, mode string, trackEmitted bool, callOpts ...CallOption) error {
	req := &wire.ProjectionCreateReq{Name: name, Query: query, Mode: mode, TrackEmitted: trackEmitted}
	return p.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewProjectionsClient(cc).Create(ctx, req, grpc.Trailer(trailer))
	})
}

func (p *Projections) Update(ctx context.Context, name, query string, callOpts ...CallOption) error {
	req := &wire.ProjectionUpdateReq{Name: name, Query: query}
	return p.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewProjectionsClient(cc).Update(ctx, req, grpc.Trailer(trailer))
	})
}

func (p *Projections) Delete(ctx context.Context, name string, callOpts ...CallOption) error {
	req := &wire.ProjectionNameReq{Name: name}
	return p.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewProjectionsClient(cc).Delete(ctx, req, grpc.Trailer(trailer))
	})
}

func (p *Projections) Enable(ctx context.Context, name string, callOpts ...CallOption) error {
	req := &wire.ProjectionNameReq{Name: name}
	return p.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewProjectionsClient(cc).Enable(ctx, req, grpc.Trailer(trailer))
	})
}

func (p *Projections) Disable(ctx context.Context, name string, callOpts ...CallOption) error {
	req := &wire.ProjectionNameReq{Name: name}
	return p.empty(ctx, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.Empty, error) {
		return wire.NewProjectionsClient(cc).Disable(ctx, req, grpc.Trailer(trailer))
	})
}

func (p *Projections) State(ctx context.Context, name, partition string, callOpts ...CallOption) ([]byte, error) {
	req := &wire.ProjectionStateReq{Name: name, Partition: partition}
	opts := p.client.callOptions(append(callOpts, withIdempotentRetry()))
	resp, err := transport.Unary(ctx, p.client.executor, opts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.ProjectionState, error) {
		return wire.NewProjectionsClient(cc).State(ctx, req, grpc.Trailer(trailer))
	})
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

func (p *Projections) Result(ctx context.Context, name, partition string, callOpts ...CallOption) ([]byte, error) {
	req := &wire.ProjectionResultReq{Name: name, Partition: partition}
	opts := p.client.callOptions(append(callOpts, withIdempotentRetry()))
	resp, err := transport.Unary(ctx, p.client.executor, opts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.ProjectionResult, error) {
		return wire.NewProjectionsClient(cc).Result(ctx, req, grpc.Trailer(trailer))
	})
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

func (p *Projections) Status(ctx context.Context, name string, callOpts ...CallOption) (*ProjectionStatus, error) {
	req := &wire.ProjectionNameReq{Name: name}
	opts := p.client.callOptions(append(callOpts, withIdempotentRetry()))
	resp, err := transport.Unary(ctx, p.client.executor, opts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.ProjectionStatus, error) {
		return wire.NewProjectionsClient(cc).Status(ctx, req, grpc.Trailer(trailer))
	})
	if err != nil {
		return nil, err
	}
	return &ProjectionStatus{
		Name: resp.Name, Status: resp.Status, Mode: resp.Mode,
		Progress: resp.Progress, CheckpointStatus: resp.CheckpointStatus,
	}, nil
}
