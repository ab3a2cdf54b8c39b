package kurrentdb

import (
	"context"
	"io"

	"github.com/mcastellin/kurrentdb-client-go/internal/core"
	"github.com/mcastellin/kurrentdb-client-go/internal/subscription"
	"github.com/mcastellin/kurrentdb-client-go/internal/transport"
	"github.com/mcastellin/kurrentdb-client-go/internal/wire"
	"github.com/rs/xid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// EventData is a single event proposed for append to a stream. EventID
// is generated with xid when left empty, matching the teacher's
// xid-based identifier convention (distributed-queue/domain.go).
type EventData struct {
	EventID     string
	EventType   string
	ContentType string
	Data        []byte
	Metadata    []byte
}

func (e EventData) toWire() wire.ProposedEvent {
	id := e.EventID
	if id == "" {
		id = xid.New().String()
	}
	contentType := e.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return wire.ProposedEvent{
		EventID:     id,
		EventType:   e.EventType,
		ContentType: contentType,
		Data:        e.Data,
		Metadata:    e.Metadata,
	}
}

// ExpectedRevision asserts the stream's last event number before an
// append, delete, or tombstone. Build one with Revision, Any,
// NoStream, or StreamExists.
type ExpectedRevision struct {
	exact        *uint64
	any          bool
	noStream     bool
	streamExists bool
}

func Revision(n uint64) ExpectedRevision     { return ExpectedRevision{exact: &n} }
func AnyRevision() ExpectedRevision          { return ExpectedRevision{any: true} }
func NoStream() ExpectedRevision             { return ExpectedRevision{noStream: true} }
func StreamExists() ExpectedRevision         { return ExpectedRevision{streamExists: true} }

func (r ExpectedRevision) toWire() wire.ExpectedRevision {
	return wire.ExpectedRevision{Exact: r.exact, Any: r.any, NoStream: r.noStream, StreamExists: r.streamExists}
}

// AppendResult is the outcome of a successful Append RPC. Err is set,
// instead of the call returning a Go error, when the server reported a
// wrong-expected-version conflict and settings.ThrowOnAppendFailure is
// false (§9 Open Question, resolved in DESIGN.md).
type AppendResult struct {
	NextExpectedRevision uint64
	CommitPosition       uint64
	PreparePosition      uint64
	Err                  error
}

// AppendToStream appends events to streamName, asserting expected as
// the stream's current revision.
func (c *Client) AppendToStream(ctx context.Context, streamName string, expected ExpectedRevision, events []EventData, opts ...CallOption) (*AppendResult, error) {
	proposed := make([]wire.ProposedEvent, len(events))
	for i, e := range events {
		proposed[i] = e.toWire()
	}
	req := &wire.AppendReq{StreamName: streamName, ExpectedRevision: expected.toWire(), Events: proposed}

	callOpts := c.callOptions(opts)
	resp, err := transport.Unary(ctx, c.executor, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.AppendResp, error) {
		return wire.NewStreamsClient(cc).Append(ctx, req, grpc.Trailer(trailer))
	})
	if err != nil {
		return nil, err
	}

	if resp.WrongExpectedRevision != nil {
		werr := &core.Error{
			Code:     core.CodeWrongExpectedVersion,
			Expected: resp.WrongExpectedRevision.ExpectedRevision,
			Current:  resp.WrongExpectedRevision.CurrentRevision,
		}
		if c.settings.ThrowOnAppendFailure {
			return nil, werr
		}
		return &AppendResult{Err: werr}, nil
	}

	return &AppendResult{
		NextExpectedRevision: resp.Success.CurrentRevision,
		CommitPosition:       resp.Success.CommitPosition,
		PreparePosition:      resp.Success.PreparePosition,
	}, nil
}

// DeleteResult is the outcome of a stream delete or tombstone.
type DeleteResult struct {
	CommitPosition  uint64
	PreparePosition uint64
}

// DeleteStream soft-deletes streamName: it may be recreated later.
func (c *Client) DeleteStream(ctx context.Context, streamName string, expected ExpectedRevision, opts ...CallOption) (*DeleteResult, error) {
	req := &wire.DeleteReq{StreamName: streamName, ExpectedRevision: expected.toWire()}
	callOpts := c.callOptions(opts)
	resp, err := transport.Unary(ctx, c.executor, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.DeleteResp, error) {
		return wire.NewStreamsClient(cc).Delete(ctx, req, grpc.Trailer(trailer))
	})
	if err != nil {
		return nil, err
	}
	return &DeleteResult{CommitPosition: resp.Position.Commit, PreparePosition: resp.Position.Prepare}, nil
}

// TombstoneStream permanently deletes streamName: the name can never
// be reused (spec.md CodeStreamDeleted is returned on any later write).
func (c *Client) TombstoneStream(ctx context.Context, streamName string, expected ExpectedRevision, opts ...CallOption) (*DeleteResult, error) {
	req := &wire.TombstoneReq{StreamName: streamName, ExpectedRevision: expected.toWire()}
	callOpts := c.callOptions(opts)
	resp, err := transport.Unary(ctx, c.executor, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (*wire.TombstoneResp, error) {
		return wire.NewStreamsClient(cc).Tombstone(ctx, req, grpc.Trailer(trailer))
	})
	if err != nil {
		return nil, err
	}
	return &DeleteResult{CommitPosition: resp.Position.Commit, PreparePosition: resp.Position.Prepare}, nil
}

// BatchAppendRequest is one stream's worth of events proposed within a
// larger AppendToStreamBatch call; CorrelationID is assigned by the
// caller and echoed back on the matching BatchAppendResult.
type BatchAppendRequest struct {
	CorrelationID    string
	StreamName       string
	ExpectedRevision ExpectedRevision
	Events           []EventData
}

// BatchAppendResult is one request's outcome, matched back to its
// BatchAppendRequest by CorrelationID. Err follows the same
// ThrowOnAppendFailure convention as AppendResult.Err.
type BatchAppendResult struct {
	CorrelationID        string
	NextExpectedRevision uint64
	CommitPosition       uint64
	PreparePosition      uint64
	Err                  error
}

// AppendToStreamBatch streams a batch of per-stream append requests
// over a single bidirectional call (spec.md §8 S6), gated by the
// connected server's advertised "batch_append" feature. The gate reads
// the feature set detected when the current channel was built, so it
// issues no probe RPC per call.
func (c *Client) AppendToStreamBatch(ctx context.Context, requests []BatchAppendRequest, opts ...CallOption) ([]BatchAppendResult, error) {
	features, err := c.executor.Features(ctx)
	if err != nil {
		return nil, err
	}
	if !features.Supports("streams", "batch_append") {
		return nil, &core.Error{Code: core.CodeUnsupportedFeature}
	}

	callOpts := c.callOptions(opts)
	stream, release, err := transport.Stream(ctx, c.executor, callOpts, func(ctx context.Context, cc grpc.ClientConnInterface) (wire.BatchAppendClient, error) {
		return wire.NewStreamsClient(cc).BatchAppend(ctx)
	})
	if err != nil {
		return nil, err
	}
	defer release()

	for i, r := range requests {
		proposed := make([]wire.ProposedEvent, len(r.Events))
		for j, e := range r.Events {
			proposed[j] = e.toWire()
		}
		req := &wire.BatchAppendReq{
			CorrelationID:    r.CorrelationID,
			StreamName:       r.StreamName,
			ExpectedRevision: r.ExpectedRevision.toWire(),
			Events:           proposed,
			IsFinal:          i == len(requests)-1,
		}
		if sendErr := stream.Send(req); sendErr != nil {
			return nil, transport.MapCallError(sendErr)
		}
	}
	if sendErr := stream.CloseSend(); sendErr != nil {
		return nil, transport.MapCallError(sendErr)
	}

	results := make([]BatchAppendResult, 0, len(requests))
	for {
		resp, recvErr := stream.Recv()
		if recvErr != nil {
			if recvErr == io.EOF {
				break
			}
			return results, transport.MapCallError(recvErr)
		}

		result := BatchAppendResult{CorrelationID: resp.CorrelationID}
		if resp.WrongExpectedRevision != nil {
			werr := &core.Error{
				Code:     core.CodeWrongExpectedVersion,
				Expected: resp.WrongExpectedRevision.ExpectedRevision,
				Current:  resp.WrongExpectedRevision.CurrentRevision,
			}
			if c.settings.ThrowOnAppendFailure {
				return results, werr
			}
			result.Err = werr
		} else if resp.Success != nil {
			result.NextExpectedRevision = resp.Success.CurrentRevision
			result.CommitPosition = resp.Success.CommitPosition
			result.PreparePosition = resp.Success.PreparePosition
		}
		results = append(results, result)
	}
	return results, nil
}

// ReadDirection mirrors wire.Direction at the public surface.
type ReadDirection int

const (
	ReadForward ReadDirection = iota
	ReadBackward
)

// ReadOptions configures a bounded stream read.
type ReadOptions struct {
	Direction      ReadDirection
	FromRevision   *uint64
	Count          uint64
	ResolveLinkTos bool
}

// ReadStream performs a bounded, non-subscribing read of one stream
// and returns the full result set. For unbounded/live reads use
// SubscribeToStream instead.
func (c *Client) ReadStream(ctx context.Context, streamName string, opts ReadOptions, callOpts ...CallOption) ([]*wire.RecordedEvent, error) {
	req := &wire.ReadReq{
		StreamName:     streamName,
		Direction:      wire.Direction(opts.Direction),
		FromRevision:   opts.FromRevision,
		Count:          opts.Count,
		ResolveLinkTos: opts.ResolveLinkTos,
	}

	options := c.callOptions(callOpts)
	readClient, release, err := transport.Stream(ctx, c.executor, options, func(ctx context.Context, cc grpc.ClientConnInterface) (wire.ReadStreamClient, error) {
		return wire.NewStreamsClient(cc).Read(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	defer release()

	var events []*wire.RecordedEvent
	for {
		resp, err := readClient.Recv()
		if err != nil {
			if err == io.EOF {
				break
			}
			return events, transport.MapCallError(err)
		}
		if resp.Event != nil {
			events = append(events, resp.Event)
		}
	}
	return events, nil
}

// ReadAllOptions configures a bounded read of the $all stream.
type ReadAllOptions struct {
	Direction      ReadDirection
	FromPosition   *Position
	Count          uint64
	ResolveLinkTos bool
	Filter         *StreamFilter
}

// ReadAll performs a bounded, non-subscribing read of the $all stream,
// optionally restricted by Filter. For a live feed use SubscribeToAll.
func (c *Client) ReadAll(ctx context.Context, opts ReadAllOptions, callOpts ...CallOption) ([]*wire.RecordedEvent, error) {
	req := &wire.ReadReq{
		All:            true,
		Direction:      wire.Direction(opts.Direction),
		Count:          opts.Count,
		ResolveLinkTos: opts.ResolveLinkTos,
		Filter:         opts.Filter.toWire(),
	}
	if opts.FromPosition != nil {
		wp := opts.FromPosition.toWire()
		req.FromPosition = &wp
	}

	options := c.callOptions(callOpts)
	readClient, release, err := transport.Stream(ctx, c.executor, options, func(ctx context.Context, cc grpc.ClientConnInterface) (wire.ReadStreamClient, error) {
		return wire.NewStreamsClient(cc).Read(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	defer release()

	var events []*wire.RecordedEvent
	for {
		resp, err := readClient.Recv()
		if err != nil {
			if err == io.EOF {
				break
			}
			return events, transport.MapCallError(err)
		}
		if resp.Event != nil {
			events = append(events, resp.Event)
		}
	}
	return events, nil
}

// SubscribeToStream opens a catch-up subscription (C8) to streamName
// delivering the events after fromRevision, which is exclusive (nil
// means the beginning of the stream). The
// returned driver reconnects on its own after a transient drop.
func (c *Client) SubscribeToStream(ctx context.Context, streamName string, fromRevision *uint64, resolveLinkTos bool, callOpts ...CallOption) *subscription.CatchUp {
	options := c.callOptions(callOpts)
	req := wire.ReadReq{
		StreamName:     streamName,
		Direction:      wire.DirectionForward,
		FromRevision:   fromRevision,
		ResolveLinkTos: resolveLinkTos,
		Subscription:   true,
	}
	return subscription.NewCatchUp(ctx, c.streamOpener(options), c.settings.Logger, c.newBackoff(), req)
}

// SubscribeToAll opens a catch-up subscription to the $all stream,
// optionally restricted by filter.
func (c *Client) SubscribeToAll(ctx context.Context, fromPosition *Position, filter *StreamFilter, resolveLinkTos bool, callOpts ...CallOption) *subscription.CatchUp {
	options := c.callOptions(callOpts)
	req := wire.ReadReq{
		All:            true,
		Direction:      wire.DirectionForward,
		ResolveLinkTos: resolveLinkTos,
		Subscription:   true,
		Filter:         filter.toWire(),
	}
	if fromPosition != nil {
		wp := fromPosition.toWire()
		req.FromPosition = &wp
	}
	return subscription.NewCatchUp(ctx, c.streamOpener(options), c.settings.Logger, c.newBackoff(), req)
}

func (c *Client) streamOpener(options transport.CallOptions) subscription.Opener {
	return func(ctx context.Context, req wire.ReadReq) (wire.ReadStreamClient, func(), error) {
		return transport.Stream(ctx, c.executor, options, func(ctx context.Context, cc grpc.ClientConnInterface) (wire.ReadStreamClient, error) {
			return wire.NewStreamsClient(cc).Read(ctx, &req)
		})
	}
}

// Position identifies a place in the $all stream.
type Position struct {
	Commit  uint64
	Prepare uint64
}

func (p Position) toWire() wire.Position { return wire.Position{Commit: p.Commit, Prepare: p.Prepare} }

// StreamFilter restricts a $all read/subscription by stream-name or
// event-type prefix, or a regular expression.
type StreamFilter struct {
	StreamIdentifierPrefix []string
	EventTypePrefix        []string
	Regex                  string
}

func (f *StreamFilter) toWire() *wire.StreamFilter {
	if f == nil {
		return nil
	}
	return &wire.StreamFilter{
		StreamIdentifierPrefix: f.StreamIdentifierPrefix,
		EventTypePrefix:        f.EventTypePrefix,
		Regex:                  f.Regex,
	}
}
