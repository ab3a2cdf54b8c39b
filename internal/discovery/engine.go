// Package discovery implements the node discovery and selection engine
// (C4) and the gossip client it drives (C3): resolving a set of
// candidate endpoints (seeded or via DNS), probing them for cluster
// membership, and picking one winner by NodePreference.
//
// The engine generalizes the teacher's gossip/pkg.Gossiper membership
// loop (randomized peer selection, heartbeat-driven liveness) and
// pd_service_discovery.go's quorum-aware service discovery (leader
// tracking, single-flight member refresh) to spec.md's discovery pass
// algorithm (§4.4).
package discovery

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/mcastellin/kurrentdb-client-go/internal/core"
	"go.uber.org/zap"
)

// Engine drives discovery passes and exposes the current selected
// Candidate. It is safe for concurrent use: Discover serializes
// concurrent callers onto a single in-flight pass (spec.md §4.4
// "Concurrency", testable property #3).
type Engine struct {
	settings core.ClientSettings
	resolver Resolver
	dial     GossipDialer
	logger   *zap.Logger

	mu       sync.Mutex
	state    State
	inflight *inflightPass
	hint     *core.Endpoint
}

type inflightPass struct {
	done   chan struct{}
	result core.Candidate
	err    error
}

// New builds an Engine. dial is used to open short-lived gossip probe
// connections; it is nil-safe only in single-node mode, where no
// gossip call is ever made.
func New(settings core.ClientSettings, resolver Resolver, dial GossipDialer) *Engine {
	if resolver == nil {
		resolver = DefaultResolver()
	}
	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{settings: settings, resolver: resolver, dial: dial, logger: logger, state: StateInit}
}

// State returns the engine's current state-machine value.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// PreferNext records an endpoint (typically a not-leader redirect hint)
// to try first on the next discovery pass, per spec.md §4.4
// "Re-discovery is triggered by ... Call executor signaling
// NotLeader(endpoint) — the provided hint endpoint is preferred as the
// next gossip target."
func (e *Engine) PreferNext(ep core.Endpoint) {
	e.mu.Lock()
	e.hint = &ep
	e.mu.Unlock()
}

// Discover runs (or joins an in-flight) discovery pass and returns the
// selected Candidate. Concurrent callers made while a pass is running
// share its result instead of launching their own (testable property #3).
func (e *Engine) Discover(ctx context.Context) (core.Candidate, error) {
	e.mu.Lock()
	if e.inflight != nil {
		call := e.inflight
		e.mu.Unlock()
		select {
		case <-call.done:
			return call.result, call.err
		case <-ctx.Done():
			return core.Candidate{}, ctx.Err()
		}
	}
	call := &inflightPass{done: make(chan struct{})}
	e.inflight = call
	wasReconnecting := e.state == StateConnected
	if wasReconnecting {
		e.state = StateReconnecting
	} else {
		e.state = StateDiscovering
	}
	hint := e.hint
	e.hint = nil
	e.mu.Unlock()

	result, err := e.runPasses(ctx, hint)

	e.mu.Lock()
	e.inflight = nil
	if err != nil {
		e.state = StateFailed
	} else {
		e.state = StateConnected
	}
	e.mu.Unlock()

	call.result, call.err = result, err
	close(call.done)
	return result, err
}

// runPasses implements the discovery pass algorithm of spec.md §4.4.
func (e *Engine) runPasses(ctx context.Context, hint *core.Endpoint) (core.Candidate, error) {
	clusterMode := e.settings.ClusterMode()

	var attempts uint32
	maxAttempts := e.settings.MaxDiscoverAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	for {
		attempts++

		candidates, err := e.buildCandidateSet(ctx)
		if err != nil {
			return core.Candidate{}, err
		}

		if !clusterMode {
			// Single-node (or single static host, no discover): no
			// gossip call is made, the endpoint is returned directly
			// with no known state (spec.md §4.4 step 3).
			if len(candidates) == 0 {
				return core.Candidate{}, &core.Error{Code: core.CodeConnection, Msg: "no host configured"}
			}
			return candidates[0], nil
		}

		winner, ok, unsatisfiable := e.tryClusterDiscovery(ctx, candidates, hint)
		if ok {
			return winner, nil
		}
		if unsatisfiable {
			// A gossip seed answered with a valid member view, so the
			// cluster itself was reachable; the view just has no member
			// matching the requested NodePreference (spec.md §4.2,
			// scenario S3). That is terminal, unlike a dead gossip seed,
			// so it is not retried across further passes.
			return core.Candidate{}, &core.Error{Code: core.CodeNotLeaderAvailable, Msg: "no alive leader in gossip view"}
		}

		if attempts >= maxAttempts {
			return core.Candidate{}, &core.Error{Code: core.CodeGossipSeedError, Msg: "discovery exhausted all attempts"}
		}

		select {
		case <-time.After(e.settings.DiscoveryInterval):
		case <-ctx.Done():
			return core.Candidate{}, ctx.Err()
		}
	}
}

// buildCandidateSet resolves the configured hosts into a flat list of
// Endpoints with no known state, per spec.md §4.4 step 1.
func (e *Engine) buildCandidateSet(ctx context.Context) ([]core.Candidate, error) {
	if e.settings.DNSDiscover {
		if len(e.settings.Hosts) == 0 {
			return nil, &core.Error{Code: core.CodeConnection, Msg: "dns discovery requires a host"}
		}
		seed := e.settings.Hosts[0]
		addrs, err := e.resolver.LookupHost(ctx, seed.Host)
		if err != nil {
			return nil, &core.Error{Code: core.CodeConnection, Msg: "dns lookup failed: " + err.Error()}
		}
		out := make([]core.Candidate, 0, len(addrs))
		for _, addr := range addrs {
			out = append(out, core.Candidate{Endpoint: core.Endpoint{Host: addr, Port: seed.Port}})
		}
		return out, nil
	}

	out := make([]core.Candidate, 0, len(e.settings.Hosts))
	for _, h := range e.settings.Hosts {
		out = append(out, core.Candidate{Endpoint: h})
	}
	return out, nil
}

// tryClusterDiscovery randomizes candidate order (preferring hint
// first, if given), gossips each candidate in turn, and applies the
// preference filter to the first successful reply (spec.md §4.4 step 2).
//
// The third return distinguishes "no gossip seed answered at all" (the
// normal false/false case, worth retrying) from "a gossip seed
// answered, but its member view has no candidate matching the
// requested NodePreference" (false/true: unsatisfiable, terminal —
// spec.md §4.2, scenario S3 "preference Leader but no alive leader").
func (e *Engine) tryClusterDiscovery(ctx context.Context, candidates []core.Candidate, hint *core.Endpoint) (winner core.Candidate, ok bool, unsatisfiable bool) {
	if e.dial == nil {
		e.logger.Error("discovery misconfigured", zap.Error(ErrNoDialer))
		return core.Candidate{}, false, false
	}

	ordered := shuffle(candidates)
	if hint != nil {
		ordered = prependHint(ordered, *hint)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, c := range ordered {
		gossipCtx, cancel := context.WithTimeout(ctx, e.settings.GossipTimeout)
		members, err := fetchGossip(gossipCtx, e.dial, c.Endpoint)
		cancel()
		if err != nil {
			e.logger.Debug("gossip probe failed", zap.String("endpoint", c.Endpoint.String()), zap.Error(err))
			continue
		}

		memberCandidates := core.MembersToCandidates(members)
		selected, selectOk := core.Select(memberCandidates, e.settings.NodePreference, rnd)
		if !selectOk {
			return core.Candidate{}, false, true
		}
		return selected, true, false
	}
	return core.Candidate{}, false, false
}

func shuffle(in []core.Candidate) []core.Candidate {
	out := make([]core.Candidate, len(in))
	copy(out, in)
	rand.New(rand.NewSource(time.Now().UnixNano())).Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func prependHint(candidates []core.Candidate, hint core.Endpoint) []core.Candidate {
	out := make([]core.Candidate, 0, len(candidates))
	out = append(out, core.Candidate{Endpoint: hint})
	for _, c := range candidates {
		if c.Endpoint == hint {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ErrNoDialer is logged by tryClusterDiscovery when cluster mode is
// selected but no GossipDialer was configured; the pass then counts as
// one where no gossip seed answered. This is an internal programming
// error, not a runtime condition.
var ErrNoDialer = errors.New("discovery: cluster mode requires a gossip dialer")
