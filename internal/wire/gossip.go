package wire

import (
	"context"

	"google.golang.org/grpc"
)

const gossipServiceMethod = "/event_store.client.gossip.Gossip/Read"

// HTTPEndpoint mirrors a MemberInfo's advertised address.
type HTTPEndpoint struct {
	Address string `json:"address"`
	Port    uint32 `json:"port"`
}

// Member is one entry in a ClusterInfo, shaped after the server's
// gossip.MemberInfo message.
type Member struct {
	InstanceID   string       `json:"instanceId"`
	State        string       `json:"state"`
	IsAlive      bool         `json:"isAlive"`
	HTTPEndpoint HTTPEndpoint `json:"httpEndPoint"`
}

// ClusterInfo is the reply to Gossip.Read.
type ClusterInfo struct {
	Members []Member `json:"members"`
}

// GossipClient is the minimal client surface the discovery engine (C4)
// and gossip client (C3) consume.
type GossipClient interface {
	Read(ctx context.Context, opts ...grpc.CallOption) (*ClusterInfo, error)
}

// NewGossipClient builds a GossipClient bound to cc, the channel
// selected by the caller (C5).
func NewGossipClient(cc grpc.ClientConnInterface) GossipClient {
	return &gossipClient{cc: cc}
}

type gossipClient struct {
	cc grpc.ClientConnInterface
}

func (c *gossipClient) Read(ctx context.Context, opts ...grpc.CallOption) (*ClusterInfo, error) {
	out := new(ClusterInfo)
	if err := c.cc.Invoke(ctx, gossipServiceMethod, &struct{}{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
