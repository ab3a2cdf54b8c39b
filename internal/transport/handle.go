// Package transport implements the channel handle (C5), the call
// executor (C6), and the feature detector (C7): the machinery that
// turns a selected Candidate into a live gRPC channel, dispatches
// calls through it with credentials/deadline/requires-leader policy,
// and fails over exactly once on a not-leader or transport error for
// unary calls marked idempotent.
package transport

import (
	"sync"
	"sync/atomic"

	"github.com/mcastellin/kurrentdb-client-go/internal/core"
	"google.golang.org/grpc"
)

// Handle is a currently-selected Endpoint plus its HTTP/2 transport and
// the result of the last feature detection (spec.md §4.5). It is
// reference-counted so a rebuild can swap in a new Handle while
// in-flight calls on the old one drain to completion before its
// connection is closed (invariant (a) in spec.md §3).
type Handle struct {
	Endpoint core.Endpoint
	Conn     *grpc.ClientConn
	Features *FeatureSet

	refCount  int32
	closeOnce sync.Once
}

func newHandle(endpoint core.Endpoint, conn *grpc.ClientConn, features *FeatureSet) *Handle {
	return &Handle{Endpoint: endpoint, Conn: conn, Features: features, refCount: 1}
}

// acquire adds a reference; callers must call release exactly once
// per acquire.
func (h *Handle) acquire() { atomic.AddInt32(&h.refCount, 1) }

// release drops a reference, closing the underlying connection once
// the last holder (including the Manager's own standing reference)
// lets go.
func (h *Handle) release() {
	if atomic.AddInt32(&h.refCount, -1) == 0 {
		h.closeOnce.Do(func() {
			_ = h.Conn.Close()
		})
	}
}
