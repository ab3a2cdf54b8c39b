package transport

import (
	"context"
	"sync"

	"github.com/mcastellin/kurrentdb-client-go/internal/core"
	"github.com/mcastellin/kurrentdb-client-go/internal/discovery"
	"github.com/mcastellin/kurrentdb-client-go/internal/wire"
	"go.uber.org/zap"
)

// Manager owns the single currently-selected Handle (C5). Rebuild is
// atomic: a new Handle is constructed (new HTTP/2 connection, feature
// detection), then swapped in; the Manager's own standing reference on
// the old Handle is released only after the swap, so an in-flight
// caller that already acquired the old Handle keeps it alive until its
// own release (spec.md §3 invariant (a)).
type Manager struct {
	engine   *discovery.Engine
	dial     Dialer
	settings core.ClientSettings
	logger   *zap.Logger

	mu      sync.Mutex
	current *Handle
}

// NewManager builds a Manager. The discovery engine is wired with a
// GossipDialer built from the same Dialer, so gossip probes and the
// long-lived data channel share TLS/keep-alive policy.
func NewManager(settings core.ClientSettings, resolver discovery.Resolver, dial Dialer) *Manager {
	logger := settings.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{dial: dial, settings: settings, logger: logger}
	gossipDial := func(ctx context.Context, candidate core.Endpoint) (wire.GossipClient, func(), error) {
		conn, err := dial(ctx, candidate, settings)
		if err != nil {
			return nil, func() {}, err
		}
		return wire.NewGossipClient(conn), func() { _ = conn.Close() }, nil
	}
	m.engine = discovery.New(settings, resolver, gossipDial)
	return m
}

// Current returns the active Handle, rebuilding if none exists yet.
// The returned Handle has been acquired on the caller's behalf; the
// caller must call Release when done with it.
func (m *Manager) Current(ctx context.Context) (*Handle, error) {
	m.mu.Lock()
	h := m.current
	m.mu.Unlock()

	if h == nil {
		return m.Rebuild(ctx)
	}
	h.acquire()
	return h, nil
}

// Release drops the caller's reference on h, acquired via Current or Rebuild.
func (m *Manager) Release(h *Handle) {
	if h != nil {
		h.release()
	}
}

// PreferNext hints the discovery engine toward endpoint on the next
// Rebuild, used when the call executor observes a not-leader redirect.
func (m *Manager) PreferNext(endpoint core.Endpoint) {
	m.engine.PreferNext(endpoint)
}

// Rebuild forces a fresh discovery pass and channel construction,
// atomically swapping it in as the current Handle.
func (m *Manager) Rebuild(ctx context.Context) (*Handle, error) {
	candidate, err := m.engine.Discover(ctx)
	if err != nil {
		return nil, err
	}

	conn, err := m.dial(ctx, candidate.Endpoint, m.settings)
	if err != nil {
		return nil, err
	}

	features := detectFeatures(ctx, conn)
	newHandle := newHandle(candidate.Endpoint, conn, features)
	// The caller's reference, on top of the Manager's own standing one.
	newHandle.acquire()

	m.mu.Lock()
	old := m.current
	m.current = newHandle
	m.mu.Unlock()

	if old != nil {
		old.release()
	}

	m.logger.Info("channel rebuilt",
		zap.String("endpoint", candidate.Endpoint.String()),
		zap.String("server_version", features.ServerVersion.String()))

	return newHandle, nil
}

// Close releases the Manager's standing reference on the current Handle.
func (m *Manager) Close() {
	m.mu.Lock()
	h := m.current
	m.current = nil
	m.mu.Unlock()
	if h != nil {
		h.release()
	}
}
