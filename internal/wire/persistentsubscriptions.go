package wire

import (
	"context"

	"google.golang.org/grpc"
)

const (
	psServiceName  = "/event_store.client.persistent_subscriptions.PersistentSubscriptions/"
	methodPSCreate = psServiceName + "Create"
	methodPSUpdate = psServiceName + "Update"
	methodPSDelete = psServiceName + "Delete"
	methodPSInfo   = psServiceName + "GetInfo"
	methodPSList   = psServiceName + "List"
	methodPSReplay = psServiceName + "ReplayParked"
	methodPSRead   = psServiceName + "Read"
)

// NakAction is the caller's disposition for a negatively-acknowledged event.
type NakAction int

const (
	NakUnknown NakAction = iota
	NakPark
	NakRetry
	NakSkip
	NakStop
)

// PersistentSubSettings controls a persistent subscription group's
// server-side behavior (checkpointing, buffer sizes, live-buffer size).
type PersistentSubSettings struct {
	ResolveLinkTos        bool   `json:"resolveLinkTos"`
	ExtraStatistics       bool   `json:"extraStatistics"`
	MaxRetryCount         int32  `json:"maxRetryCount"`
	MaxSubscriberCount    int32  `json:"maxSubscriberCount"`
	LiveBufferSize        int32  `json:"liveBufferSize"`
	ReadBatchSize         int32  `json:"readBatchSize"`
	HistoryBufferSize     int32  `json:"historyBufferSize"`
	CheckpointAfterMillis int32  `json:"checkpointAfterMillis"`
	NamedConsumerStrategy string `json:"namedConsumerStrategy"`
}

type PSCreateReq struct {
	StreamName string                `json:"streamName"`
	All        bool                  `json:"all"`
	GroupName  string                `json:"groupName"`
	Settings   PersistentSubSettings `json:"settings"`
}
type PSCreateResp struct{}

type PSUpdateReq struct {
	StreamName string                `json:"streamName"`
	All        bool                  `json:"all"`
	GroupName  string                `json:"groupName"`
	Settings   PersistentSubSettings `json:"settings"`
}
type PSUpdateResp struct{}

type PSDeleteReq struct {
	StreamName string `json:"streamName"`
	All        bool   `json:"all"`
	GroupName  string `json:"groupName"`
}
type PSDeleteResp struct{}

type PSReplayParkedReq struct {
	StreamName string `json:"streamName"`
	All        bool   `json:"all"`
	GroupName  string `json:"groupName"`
	StopAt     int32  `json:"stopAt,omitempty"`
}
type PSReplayParkedResp struct{}

type PSInfoReq struct {
	StreamName string `json:"streamName"`
	All        bool   `json:"all"`
	GroupName  string `json:"groupName"`
}

// PSInfo summarizes a persistent subscription group's observed state.
type PSInfo struct {
	GroupName        string `json:"groupName"`
	StreamName       string `json:"streamName"`
	Status           string `json:"status"`
	ConnectionCount  int32  `json:"connectionCount"`
	InFlightMessages int64  `json:"inFlightMessages"`
}

type PSListReq struct {
	StreamName string `json:"streamName,omitempty"`
	All        bool   `json:"all,omitempty"`
}
type PSListResp struct {
	Subscriptions []PSInfo `json:"subscriptions"`
}

// PSReadReq opens the bidirectional Read lane: the first frame selects
// the group to join, subsequent outgoing frames carry Ack/Nak.
type PSReadReq struct {
	Options *PSReadOptions `json:"options,omitempty"`
	Ack     *PSAck         `json:"ack,omitempty"`
	Nak     *PSNak         `json:"nak,omitempty"`
}

type PSReadOptions struct {
	StreamName string `json:"streamName"`
	All        bool   `json:"all"`
	GroupName  string `json:"groupName"`
	BufferSize int32  `json:"bufferSize"`
}

type PSAck struct {
	EventIDs []string `json:"eventIds"`
}

type PSNak struct {
	EventIDs []string  `json:"eventIds"`
	Action   NakAction `json:"action"`
	Reason   string    `json:"reason,omitempty"`
}

// PSReadResp is one incoming frame: a confirmation, an event, or a drop.
type PSReadResp struct {
	Confirmation *SubscriptionConfirmation `json:"confirmation,omitempty"`
	Event        *RecordedEvent            `json:"event,omitempty"`
	Dropped      *PSDropped                `json:"dropped,omitempty"`
}

type PSDropped struct {
	Reason string `json:"reason"`
}

// PSReadClient is the bidirectional lane for a persistent subscription.
type PSReadClient interface {
	Send(*PSReadReq) error
	Recv() (*PSReadResp, error)
	CloseSend() error
}

type PersistentSubscriptionsClient interface {
	Create(ctx context.Context, req *PSCreateReq, opts ...grpc.CallOption) (*PSCreateResp, error)
	Update(ctx context.Context, req *PSUpdateReq, opts ...grpc.CallOption) (*PSUpdateResp, error)
	Delete(ctx context.Context, req *PSDeleteReq, opts ...grpc.CallOption) (*PSDeleteResp, error)
	GetInfo(ctx context.Context, req *PSInfoReq, opts ...grpc.CallOption) (*PSInfo, error)
	List(ctx context.Context, req *PSListReq, opts ...grpc.CallOption) (*PSListResp, error)
	ReplayParked(ctx context.Context, req *PSReplayParkedReq, opts ...grpc.CallOption) (*PSReplayParkedResp, error)
	Read(ctx context.Context, opts ...grpc.CallOption) (PSReadClient, error)
}

func NewPersistentSubscriptionsClient(cc grpc.ClientConnInterface) PersistentSubscriptionsClient {
	return &psClient{cc: cc}
}

type psClient struct {
	cc grpc.ClientConnInterface
}

func (c *psClient) Create(ctx context.Context, req *PSCreateReq, opts ...grpc.CallOption) (*PSCreateResp, error) {
	out := new(PSCreateResp)
	if err := c.cc.Invoke(ctx, methodPSCreate, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *psClient) Update(ctx context.Context, req *PSUpdateReq, opts ...grpc.CallOption) (*PSUpdateResp, error) {
	out := new(PSUpdateResp)
	if err := c.cc.Invoke(ctx, methodPSUpdate, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *psClient) Delete(ctx context.Context, req *PSDeleteReq, opts ...grpc.CallOption) (*PSDeleteResp, error) {
	out := new(PSDeleteResp)
	if err := c.cc.Invoke(ctx, methodPSDelete, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *psClient) GetInfo(ctx context.Context, req *PSInfoReq, opts ...grpc.CallOption) (*PSInfo, error) {
	out := new(PSInfo)
	if err := c.cc.Invoke(ctx, methodPSInfo, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *psClient) List(ctx context.Context, req *PSListReq, opts ...grpc.CallOption) (*PSListResp, error) {
	out := new(PSListResp)
	if err := c.cc.Invoke(ctx, methodPSList, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *psClient) ReplayParked(ctx context.Context, req *PSReplayParkedReq, opts ...grpc.CallOption) (*PSReplayParkedResp, error) {
	out := new(PSReplayParkedResp)
	if err := c.cc.Invoke(ctx, methodPSReplay, req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *psClient) Read(ctx context.Context, opts ...grpc.CallOption) (PSReadClient, error) {
	stream, err := c.cc.NewStream(ctx, &grpc.StreamDesc{StreamName: "Read", ClientStreams: true, ServerStreams: true}, methodPSRead, opts...)
	if err != nil {
		return nil, err
	}
	return &psReadClient{stream}, nil
}

type psReadClient struct {
	stream grpc.ClientStream
}

func (p *psReadClient) Send(req *PSReadReq) error { return p.stream.SendMsg(req) }

func (p *psReadClient) Recv() (*PSReadResp, error) {
	out := new(PSReadResp)
	if err := p.stream.RecvMsg(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *psReadClient) CloseSend() error { return p.stream.CloseSend() }
