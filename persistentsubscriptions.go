package kurrentdb

import (
	"context"

	"github.com/mcastellin/kurrentdb-client-go/internal/subscription"
	"github.com/mcastellin/kurrentdb-client-go/internal/transport"
	"github.com/mcastellin/kurrentdb-client-go/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// PersistentSubscriptionSettings controls a persistent subscription
// group's server-managed checkpointing and buffering.
type PersistentSubscriptionSettings struct {
	ResolveLinkTos        bool
	ExtraStatistics       bool
	MaxRetryCount         int32
	MaxSubscriberCount    int32
	LiveBufferSize        int32
	ReadBatchSize         int32
	HistoryBufferSize     int32
	CheckpointAfterMillis int32
	NamedConsumerStrategy string
}

func (s PersistentSubscriptionSettings) toWire() wire.PersistentSubSettings {
	return wire.PersistentSubSettings{
		ResolveLinkTos:        s.ResolveLinkTos,
		ExtraStatistics:       s.ExtraStatistics,
		MaxRetryCount:         s.MaxRetryCount,
		MaxSubscriberCount:    s.MaxSubscriberCount,
		LiveBufferSize:        s.LiveBufferSize,
		ReadBatchSize:         s.ReadBatchSize,
		HistoryBufferSize:     s.HistoryBufferSize,
		CheckpointAfterMillis: s.CheckpointAfterMillis,
		NamedConsumerStrategy: s.NamedConsumerStrategy,
	}
}

// PersistentSubscriptionInfo summarizes a group's observed state.
type PersistentSubscriptionInfo struct {
	GroupName        string
	StreamName       string
	Status           string
	ConnectionCount  int32
	InFlightMessages int64
}

// PersistentSubscriptions is the administrative and streaming facade
// for server-managed ("competing consumer") subscription groups.
type PersistentSubscriptions struct {
	client *Client
}

// PersistentSubscriptions returns the facade bound to this Client.
func (c *Client) PersistentSubscriptions() *PersistentSubscriptions {
	return &PersistentSubscriptions{client: c}
}

func (p *PersistentSubscriptions) psClient(ctx context.Context, opts transport.CallOptions, fn func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) error) error {
	_, err := transport.Unary(ctx, p.client.executor, opts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (struct{}, error) {
		return struct{}{}, fn(ctx, cc, trailer)
	})
	return err
}

func (p *PersistentSubscriptions) Create(ctx context.Context, streamName, groupName string, settings PersistentSubscriptionSettings, callOpts ...CallOption) error {
	req := &wire.PSCreateReq{StreamName: streamName, GroupName: groupName, Settings: settings.toWire()}
	opts := p.client.callOptions(callOpts)
	return p.psClient(ctx, opts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) error {
		_, err := wire.NewPersistentSubscriptionsClient(cc).Create(ctx, req, grpc.Trailer(trailer))
		return err
	})
}

func (p *PersistentSubscriptions) Update(ctx context.Context, streamName, groupName string, settings PersistentSubscriptionSettings, callOpts ...CallOption) error {
	req := &wire.PSUpdateReq{StreamName: streamName, GroupName: groupName, Settings: settings.toWire()}
	opts := p.client.callOptions(callOpts)
	return p.psClient(ctx, opts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) error {
		_, err := wire.NewPersistentSubscriptionsClient(cc).Update(ctx, req, grpc.Trailer(trailer))
		return err
	})
}

func (p *PersistentSubscriptions) Delete(ctx context.Context, streamName, groupName string, callOpts ...CallOption) error {
	req := &wire.PSDeleteReq{StreamName: streamName, GroupName: groupName}
	opts := p.client.callOptions(callOpts)
	return p.psClient(ctx, opts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) error {
		_, err := wire.NewPersistentSubscriptionsClient(cc).Delete(ctx, req, grpc.Trailer(trailer))
		return err
	})
}

func (p *PersistentSubscriptions) ReplayParked(ctx context.Context, streamName, groupName string, callOpts ...CallOption) error {
	req := &wire.PSReplayParkedReq{StreamName: streamName, GroupName: groupName}
	opts := p.client.callOptions(callOpts)
	return p.psClient(ctx, opts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) error {
		_, err := wire.NewPersistentSubscriptionsClient(cc).ReplayParked(ctx, req, grpc.Trailer(trailer))
		return err
	})
}

func (p *PersistentSubscriptions) GetInfo(ctx context.Context, streamName, groupName string, callOpts ...CallOption) (*PersistentSubscriptionInfo, error) {
	req := &wire.PSInfoReq{StreamName: streamName, GroupName: groupName}
	opts := p.client.callOptions(append(callOpts, withIdempotentRetry()))
	resp, err := transport.Unary(ctx, p.client.executor, opts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.PSInfo, error) {
		return wire.NewPersistentSubscriptionsClient(cc).GetInfo(ctx, req, grpc.Trailer(trailer))
	})
	if err != nil {
		return nil, err
	}
	return &PersistentSubscriptionInfo{
		GroupName: resp.GroupName, StreamName: resp.StreamName, Status: resp.Status,
		ConnectionCount: resp.ConnectionCount, InFlightMessages: resp.InFlightMessages,
	}, nil
}

func (p *PersistentSubscriptions) List(ctx context.Context, streamName string, callOpts ...CallOption) ([]PersistentSubscriptionInfo, error) {
	req := &wire.PSListReq{StreamName: streamName}
	opts := p.client.callOptions(append(callOpts, withIdempotentRetry()))
	resp, err := transport.Unary(ctx, p.client.executor, opts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.PSListResp, error) {
		return wire.NewPersistentSubscriptionsClient(cc).List(ctx, req, grpc.Trailer(trailer))
	})
	if err != nil {
		return nil, err
	}
	out := make([]PersistentSubscriptionInfo, len(resp.Subscriptions))
	for i, s := range resp.Subscriptions {
		out[i] = PersistentSubscriptionInfo{
			GroupName: s.GroupName, StreamName: s.StreamName, Status: s.Status,
			ConnectionCount: s.ConnectionCount, InFlightMessages: s.InFlightMessages,
		}
	}
	return out, nil
}

// Subscribe joins the named persistent subscription group and returns
// a driver the caller reads events from and Acks/Naks against. The
// server tracks checkpoint position, so reconnects rejoin the group
// rather than replaying from a client-tracked revision.
func (p *PersistentSubscriptions) Subscribe(ctx context.Context, streamName, groupName string, bufferSize int32, callOpts ...CallOption) *subscription.Persistent {
	opts := p.client.callOptions(callOpts)
	readOpts := wire.PSReadOptions{StreamName: streamName, GroupName: groupName, BufferSize: bufferSize}

	open := func(ctx context.Context, readOpts wire.PSReadOptions) (wire.PSReadClient, func(), error) {
		return transport.Stream(ctx, p.client.executor, opts, func(ctx context.Context, cc grpc.ClientConnInterface) (wire.PSReadClient, error) {
			stream, err := wire.NewPersistentSubscriptionsClient(cc).Read(ctx)
			if err != nil {
				return nil, err
			}
			if err := stream.Send(&wire.PSReadReq{Options: &readOpts}); err != nil {
				return nil, err
			}
			return stream, nil
		})
	}

	return subscription.NewPersistent(ctx, open, p.client.settings.Logger, p.client.newBackoff(), readOpts)
}
