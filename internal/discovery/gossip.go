package discovery

import (
	"context"

	"github.com/mcastellin/kurrentdb-client-go/internal/core"
	"github.com/mcastellin/kurrentdb-client-go/internal/wire"
)

// GossipDialer opens a short-lived channel to candidate purely to
// probe its gossip view during a discovery pass (C3). It is distinct
// from the long-lived ChannelHandle the call executor uses, matching
// spec.md §4.3: "Unary RPC Read against a candidate's HTTP endpoint".
type GossipDialer func(ctx context.Context, candidate core.Endpoint) (wire.GossipClient, func(), error)

// fetchGossip probes one candidate, bounded by gossip_timeout, and
// converts its reply into MemberInfo. A timeout or transport failure
// simply returns an error; the caller marks the candidate failed for
// the current pass, per spec.md §4.3.
func fetchGossip(ctx context.Context, dial GossipDialer, candidate core.Endpoint) ([]core.MemberInfo, error) {
	client, closer, err := dial(ctx, candidate)
	if err != nil {
		return nil, err
	}
	defer closer()

	info, err := client.Read(ctx)
	if err != nil {
		return nil, err
	}

	members := make([]core.MemberInfo, 0, len(info.Members))
	for _, m := range info.Members {
		members = append(members, core.MemberInfo{
			InstanceID: m.InstanceID,
			State:      parseVNodeState(m.State),
			IsAlive:    m.IsAlive,
			HTTPEndpoint: core.Endpoint{
				Host: m.HTTPEndpoint.Address,
				Port: uint16(m.HTTPEndpoint.Port),
			},
		})
	}
	return members, nil
}

func parseVNodeState(s string) core.VNodeState {
	switch s {
	case "Leader":
		return core.VNodeLeader
	case "Follower":
		return core.VNodeFollower
	case "ReadOnlyReplica":
		return core.VNodeReadOnlyReplica
	case "Manager":
		return core.VNodeManager
	case "PreReplica":
		return core.VNodePreReplica
	case "PreReadOnlyReplica":
		return core.VNodePreReadOnlyReplica
	case "Clone":
		return core.VNodeClone
	case "ResigningLeader":
		return core.VNodeResigningLeader
	case "ShuttingDown":
		return core.VNodeShuttingDown
	case "Shutdown":
		return core.VNodeShutdown
	case "PreLeader":
		return core.VNodePreLeader
	case "CatchingUp":
		return core.VNodeCatchingUp
	case "DiscoverLeader":
		return core.VNodeDiscoverLeader
	default:
		return core.VNodeUnknown
	}
}
