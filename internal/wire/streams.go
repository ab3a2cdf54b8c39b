package wire

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/timestamppb"
)

const (
	streamsServiceName  = "/event_store.client.streams.Streams/"
	methodAppend        = streamsServiceName + "Append"
	methodBatchAppend   = streamsServiceName + "BatchAppend"
	methodRead          = streamsServiceName + "Read"
	methodDelete        = streamsServiceName + "Delete"
	methodTombstone     = streamsServiceName + "Tombstone"
)

// ExpectedRevision encodes the caller-asserted last event number, or
// one of the sentinel relations (Any, NoStream, StreamExists).
type ExpectedRevision struct {
	Exact        *uint64 `json:"exact,omitempty"`
	Any          bool    `json:"any,omitempty"`
	NoStream     bool    `json:"noStream,omitempty"`
	StreamExists bool    `json:"streamExists,omitempty"`
}

// ProposedEvent is a single event proposed for append.
type ProposedEvent struct {
	EventID     string            `json:"eventId"`
	EventType   string            `json:"eventType"`
	ContentType string            `json:"contentType"`
	Data        []byte            `json:"data"`
	Metadata    []byte            `json:"metadata"`
	CustomMeta  map[string]string `json:"customMetadata,omitempty"`
}

// AppendReq is the request for a single Streams.Append call.
type AppendReq struct {
	StreamName       string           `json:"streamName"`
	ExpectedRevision ExpectedRevision `json:"expectedRevision"`
	Events           []ProposedEvent  `json:"events"`
}

// AppendResp carries either the resulting position/revision, or a
// WrongExpectedVersion payload (§9 Open Question: throw_on_append_failure
// governs whether the facade surfaces this as an error or as data).
type AppendResp struct {
	Success               *AppendSuccess         `json:"success,omitempty"`
	WrongExpectedRevision *WrongExpectedRevision `json:"wrongExpectedVersion,omitempty"`
}

type AppendSuccess struct {
	CurrentRevision uint64 `json:"currentRevision"`
	CommitPosition  uint64 `json:"commitPosition"`
	PreparePosition uint64 `json:"preparePosition"`
}

type WrongExpectedRevision struct {
	ExpectedRevision string `json:"expectedRevision"`
	CurrentRevision  string `json:"currentRevision"`
}

// BatchAppendReq carries a (potentially large) batch of proposed
// events in one bidirectional BatchAppend call, gated by the "batch_append"
// server feature (spec.md §8 S6).
type BatchAppendReq struct {
	CorrelationID    string           `json:"correlationId"`
	StreamName       string           `json:"streamName"`
	ExpectedRevision ExpectedRevision `json:"expectedRevision"`
	Events           []ProposedEvent  `json:"events"`
	IsFinal          bool             `json:"isFinal"`
}

type BatchAppendResp struct {
	CorrelationID         string                 `json:"correlationId"`
	Success               *AppendSuccess         `json:"success,omitempty"`
	WrongExpectedRevision *WrongExpectedRevision `json:"wrongExpectedVersion,omitempty"`
}

// Direction is the read order for ReadReq.
type Direction int

const (
	DirectionForward Direction = iota
	DirectionBackward
)

// StreamFilter restricts a $all read/subscription to matching stream or
// event-type prefixes/regexes, per spec.md §6.
type StreamFilter struct {
	StreamIdentifierPrefix []string `json:"streamIdentifierPrefix,omitempty"`
	EventTypePrefix        []string `json:"eventTypePrefix,omitempty"`
	Regex                  string   `json:"regex,omitempty"`
}

// ReadReq is the request to open a Streams.Read server-streaming call,
// used for both bounded reads and catch-up subscriptions
// (Subscription == true).
type ReadReq struct {
	StreamName string `json:"streamName,omitempty"`
	All        bool   `json:"all,omitempty"`
	// FromRevision/FromPosition are exclusive: the server resumes
	// strictly after the given value and never redelivers it. A
	// reconnecting catch-up subscription relies on this to avoid
	// duplicate delivery (internal/subscription/catchup.go).
	FromRevision   *uint64       `json:"fromRevision,omitempty"`
	FromPosition   *Position     `json:"fromPosition,omitempty"`
	Direction      Direction     `json:"direction"`
	ResolveLinkTos bool          `json:"resolveLinkTos"`
	Filter         *StreamFilter `json:"filter,omitempty"`
	Subscription   bool          `json:"subscription"`
	Count          uint64        `json:"count,omitempty"`
}

// Position is a commit/prepare pair identifying a place in $all.
type Position struct {
	Commit  uint64 `json:"commit"`
	Prepare uint64 `json:"prepare"`
}

// RecordedEvent is one event as delivered by a Read call. Created uses
// the protobuf well-known Timestamp type, matching the wire format
// real EventStore/KurrentDB server responses use for this field.
type RecordedEvent struct {
	StreamName  string                 `json:"streamName"`
	EventNumber uint64                 `json:"eventNumber"`
	Position    Position               `json:"position"`
	EventID     string                 `json:"eventId"`
	EventType   string                 `json:"eventType"`
	ContentType string                 `json:"contentType"`
	Data        []byte                 `json:"data"`
	Metadata    []byte                 `json:"metadata"`
	CustomMeta  map[string]string      `json:"customMetadata,omitempty"`
	Created     *timestamppb.Timestamp `json:"created,omitempty"`
}

// ReadResp is one frame of a Streams.Read stream: either a delivered
// event, a subscription lifecycle marker, or a terminal condition.
type ReadResp struct {
	Event          *RecordedEvent            `json:"event,omitempty"`
	Confirmation   *SubscriptionConfirmation `json:"confirmation,omitempty"`
	CaughtUp       bool                      `json:"caughtUp,omitempty"`
	StreamNotFound *string                   `json:"streamNotFound,omitempty"`
}

type SubscriptionConfirmation struct {
	SubscriptionID string `json:"subscriptionId"`
}

// DeleteReq/TombstoneReq request stream removal.
type DeleteReq struct {
	StreamName       string           `json:"streamName"`
	ExpectedRevision ExpectedRevision `json:"expectedRevision"`
}

type DeleteResp struct {
	Position Position `json:"position"`
}

type TombstoneReq struct {
	StreamName       string           `json:"streamName"`
	ExpectedRevision ExpectedRevision `json:"expectedRevision"`
}

type TombstoneResp struct {
	Position Position `json:"position"`
}

// ReadStreamClient is the server-streaming lane the subscription
// driver (C8) and bounded-read facades consume. It mirrors the shape
// grpc.ClientStream gives protoc-gen-go-grpc's generated XxxClient
// types.
type ReadStreamClient interface {
	Recv() (*ReadResp, error)
	CloseSend() error
}

// BatchAppendClient is the bidirectional lane for BatchAppend.
type BatchAppendClient interface {
	Send(*BatchAppendReq) error
	Recv() (*BatchAppendResp, error)
	CloseSend() error
}

// StreamsClient is the minimal client surface facades build on.
type StreamsClient interface {
	Append(ctx context.Context, req *AppendReq, opts ...grpc.CallOption) (*AppendResp, error)
	BatchAppend(ctx context.Context, opts ...grpc.CallOption) (BatchAppendClient, error)
	Read(ctx context.Context, req *ReadReq, opts ...grpc.CallOption) (ReadStreamClient, error)
	Delete(ctx context.Context, req *DeleteReq, opts ...grpc.CallOption) (*DeleteResp, error)
	Tombstone(ctx context.Context, req *TombstoneReq, opts ...grpc.CallOption) (*TombstoneResp, error)
}

func NewStreamsClient(cc grpc.ClientConnInterface) StreamsClient {
	return &streamsClient{cc: cc}
}

type streamsClient struct {
	cc grpc.ClientConnInterface
}

func (c *streamsClient) Append(ctx context.Context, req *AppendReq, opts ...grpc.CallOption) (*AppendResp, error) {
	out := new(AppendResp)
	if err := c.cc.Invoke(ctx, methodAppend, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *streamsClient) BatchAppend(ctx context.Context, opts ...grpc.CallOption) (BatchAppendClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{StreamName: "BatchAppend", ClientStreams: true, ServerStreams: true}, methodBatchAppend, opts...)
	if err != nil {
		return nil, err
	}
	return &batchAppendClient{stream}, nil
}

func (c *streamsClient) Read(ctx context.Context, req *ReadReq, opts ...grpc.CallOption) (ReadStreamClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{StreamName: "Read", ServerStreams: true}, methodRead, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(req); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &readStreamClient{stream}, nil
}

func (c *streamsClient) Delete(ctx context.Context, req *DeleteReq, opts ...grpc.CallOption) (*DeleteResp, error) {
	out := new(DeleteResp)
	if err := c.cc.Invoke(ctx, methodDelete, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *streamsClient) Tombstone(ctx context.Context, req *TombstoneReq, opts ...grpc.CallOption) (*TombstoneResp, error) {
	out := new(TombstoneResp)
	if err := c.cc.Invoke(ctx, methodTombstone, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type readStreamClient struct {
	stream grpc.ClientStream
}

func (r *readStreamClient) Recv() (*ReadResp, error) {
	out := new(ReadResp)
	if err := r.stream.RecvMsg(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *readStreamClient) CloseSend() error { return r.stream.CloseSend() }

type batchAppendClient struct {
	stream grpc.ClientStream
}

func (b *batchAppendClient) Send(req *BatchAppendReq) error { return b.stream.SendMsg(req) }

func (b *batchAppendClient) Recv() (*BatchAppendResp, error) {
	out := new(BatchAppendResp)
	if err := b.stream.RecvMsg(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *batchAppendClient) CloseSend() error { return b.stream.CloseSend() }
