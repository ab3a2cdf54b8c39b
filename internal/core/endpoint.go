package core

import (
	"fmt"
	"math/rand"
)

// Endpoint is a (host, port) pair. Equality is structural, matching
// spec.md's data model: two Endpoints with the same host and port are
// interchangeable regardless of how they were discovered.
type Endpoint struct {
	Host string
	Port uint16
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// VNodeState is the role a node reports for itself in gossip.
type VNodeState int

const (
	VNodeUnknown VNodeState = iota
	VNodeLeader
	VNodeFollower
	VNodeReadOnlyReplica
	VNodeManager
	VNodePreReplica
	VNodePreReadOnlyReplica
	VNodeClone
	VNodeResigningLeader
	VNodeShuttingDown
	VNodeShutdown
	VNodeUnknotified
	VNodePreLeader
	VNodeCatchingUp
	VNodeDiscoverLeader
)

func (s VNodeState) String() string {
	switch s {
	case VNodeLeader:
		return "Leader"
	case VNodeFollower:
		return "Follower"
	case VNodeReadOnlyReplica:
		return "ReadOnlyReplica"
	case VNodeManager:
		return "Manager"
	case VNodePreReplica:
		return "PreReplica"
	case VNodePreReadOnlyReplica:
		return "PreReadOnlyReplica"
	case VNodeClone:
		return "Clone"
	case VNodeResigningLeader:
		return "ResigningLeader"
	case VNodeShuttingDown:
		return "ShuttingDown"
	case VNodeShutdown:
		return "Shutdown"
	case VNodePreLeader:
		return "PreLeader"
	case VNodeCatchingUp:
		return "CatchingUp"
	case VNodeDiscoverLeader:
		return "DiscoverLeader"
	default:
		return "Unknown"
	}
}

// joiningStates are excluded from selection even if a preference would
// otherwise match them, per spec.md §4.2: "Members in joining/preparing
// states are excluded even if the preference would match."
var joiningStates = map[VNodeState]bool{
	VNodePreReplica:         true,
	VNodePreReadOnlyReplica: true,
	VNodePreLeader:          true,
	VNodeUnknotified:        true,
	VNodeCatchingUp:         true,
	VNodeDiscoverLeader:     true,
}

// readOnlyReplicaStates are the variants that satisfy NodePreferenceReadOnlyReplica.
var readOnlyReplicaStates = map[VNodeState]bool{
	VNodeReadOnlyReplica: true,
}

// MemberInfo is one entry of a gossip cluster view.
type MemberInfo struct {
	InstanceID   string
	State        VNodeState
	IsAlive      bool
	HTTPEndpoint Endpoint
}

// Candidate pairs an Endpoint with an optional known VNodeState.
// Candidates with no known state (single-node or DNS-seed mode) match
// any NodePreference, per spec.md §3.
type Candidate struct {
	Endpoint Endpoint
	State    VNodeState
	HasState bool
}

// NodePreference is the caller-declared preferred role when selecting a node.
type NodePreference int

const (
	NodePreferenceLeader NodePreference = iota
	NodePreferenceFollower
	NodePreferenceReadOnlyReplica
	NodePreferenceRandom
)

func (p NodePreference) String() string {
	switch p {
	case NodePreferenceLeader:
		return "Leader"
	case NodePreferenceFollower:
		return "Follower"
	case NodePreferenceReadOnlyReplica:
		return "ReadOnlyReplica"
	case NodePreferenceRandom:
		return "Random"
	default:
		return "Unknown"
	}
}

// RequiresLeader reports whether calls made while resolved under this
// preference must carry requires-leader: true, per invariant (c) in
// spec.md §3.
func (p NodePreference) RequiresLeader() bool { return p == NodePreferenceLeader }

// MembersToCandidates converts a gossip member list into Candidates,
// dropping members that are not alive. Non-alive members are always
// excluded per spec.md §4.2, regardless of preference.
func MembersToCandidates(members []MemberInfo) []Candidate {
	out := make([]Candidate, 0, len(members))
	for _, m := range members {
		if !m.IsAlive {
			continue
		}
		out = append(out, Candidate{Endpoint: m.HTTPEndpoint, State: m.State, HasState: true})
	}
	return out
}

// Select picks one Candidate according to pref, choosing uniformly at
// random among the eligible set so repeated selections diversify
// across nodes for the same preference (spec.md §4.2 "Tie-breaking").
//
// Candidates with HasState == false (single-node or DNS-seed mode)
// match any preference. A nil/empty return means no eligible candidate
// was found; for NodePreferenceLeader the caller should surface
// CodeNotLeaderAvailable.
func Select(candidates []Candidate, pref NodePreference, rnd *rand.Rand) (Candidate, bool) {
	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.HasState {
			eligible = append(eligible, c)
			continue
		}
		if joiningStates[c.State] {
			continue
		}
		switch pref {
		case NodePreferenceLeader:
			if c.State == VNodeLeader {
				eligible = append(eligible, c)
			}
		case NodePreferenceFollower:
			if c.State == VNodeFollower {
				eligible = append(eligible, c)
			}
		case NodePreferenceReadOnlyReplica:
			if readOnlyReplicaStates[c.State] {
				eligible = append(eligible, c)
			}
		case NodePreferenceRandom:
			eligible = append(eligible, c)
		}
	}

	if len(eligible) == 0 {
		return Candidate{}, false
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	return eligible[rnd.Intn(len(eligible))], true
}
