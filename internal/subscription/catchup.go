package subscription

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/mcastellin/kurrentdb-client-go/internal/backoff"
	"github.com/mcastellin/kurrentdb-client-go/internal/core"
	"github.com/mcastellin/kurrentdb-client-go/internal/transport"
	"github.com/mcastellin/kurrentdb-client-go/internal/wire"
	"go.uber.org/zap"
)

// Opener opens one Streams.Read server-streaming call starting from the
// position baked into req, returning the stream and a release func that
// must be called once the stream is done with (spec.md §3 invariant
// (b): catch-up reads never carry a default deadline).
type Opener func(ctx context.Context, req wire.ReadReq) (wire.ReadStreamClient, func(), error)

// CatchUp drives a catch-up subscription (C8): it opens a Read stream,
// forwards delivered events, and on a transient drop reopens the stream
// from the last confirmed position with capped backoff, until the
// caller closes it or a non-retryable error occurs.
type CatchUp struct {
	open    Opener
	logger  *zap.Logger
	backoff *backoff.Strategy
	req     wire.ReadReq

	mu           sync.Mutex
	state        State
	lastRevision *uint64
	lastPosition *wire.Position

	updates chan Update
	closing chan chan error
}

// NewCatchUp starts the driver's loop in the background and returns
// immediately; the caller consumes Updates() until the channel closes
// (after a non-retryable KindDropped) or it calls Close().
func NewCatchUp(ctx context.Context, open Opener, logger *zap.Logger, bk *backoff.Strategy, req wire.ReadReq) *CatchUp {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &CatchUp{
		open:         open,
		logger:       logger,
		backoff:      bk,
		req:          req,
		state:        StateIdle,
		lastRevision: req.FromRevision,
		lastPosition: req.FromPosition,
		updates:      make(chan Update),
		closing:      make(chan chan error),
	}
	go c.run(ctx)
	return c
}

// Updates returns the channel of lifecycle notifications and delivered
// events. It closes once the driver has terminated.
func (c *CatchUp) Updates() <-chan Update { return c.updates }

func (c *CatchUp) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close requests graceful termination and waits for the driver's loop
// to acknowledge it.
func (c *CatchUp) Close() error {
	errc := make(chan error)
	c.closing <- errc
	return <-errc
}

func (c *CatchUp) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *CatchUp) run(ctx context.Context) {
	defer close(c.updates)

	for {
		c.setState(StateConnecting)

		err := c.runOnce(ctx)
		if err == errClosedByCaller {
			return
		}
		if err == nil {
			err = io.EOF
		}

		if isFatal(err) {
			if !c.emit(Update{Kind: KindDropped, Err: err}) {
				return
			}
			c.setState(StateTerminated)
			return
		}

		c.setState(StateTransient)
		if !c.emit(Update{Kind: KindDropped, Err: err}) {
			return
		}

		select {
		case errc := <-c.closing:
			c.setState(StateTerminated)
			errc <- nil
			return
		case <-ctx.Done():
			c.setState(StateTerminated)
			return
		case <-c.backoff.Next():
		}
	}
}

var errClosedByCaller = errors.New("subscription: closed by caller")

type frame struct {
	resp *wire.ReadResp
	err  error
}

// runOnce opens a single Read stream from the last known position and
// forwards frames until the stream ends, errors, or the caller closes
// the driver. A nil return means the server ended the stream cleanly,
// which for a live catch-up subscription is itself a condition to
// reconnect from.
func (c *CatchUp) runOnce(ctx context.Context) error {
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// FromRevision/FromPosition are treated as exclusive starting points
	// by this wire layer's Read contract: the server resumes strictly
	// after the given revision/position, never re-delivering it. Since
	// lastRevision/lastPosition are set to the last event actually
	// handed to handleFrame, reusing them verbatim here (with no +1) on
	// reconnect is what keeps property #5 (no duplicate delivery across
	// a reconnect) true.
	req := c.req
	c.mu.Lock()
	req.FromRevision = c.lastRevision
	req.FromPosition = c.lastPosition
	c.mu.Unlock()

	stream, release, err := c.open(streamCtx, req)
	if err != nil {
		return err
	}
	defer release()

	frames := make(chan frame)
	go func() {
		for {
			resp, recvErr := stream.Recv()
			frames <- frame{resp, recvErr}
			if recvErr != nil {
				close(frames)
				return
			}
		}
	}()

	for {
		select {
		case errc := <-c.closing:
			errc <- nil
			return errClosedByCaller
		case f, ok := <-frames:
			if !ok {
				return io.EOF
			}
			if f.err != nil {
				if f.err == io.EOF {
					return nil
				}
				return transport.MapCallError(f.err)
			}
			if done := c.handleFrame(f.resp); done {
				return errClosedByCaller
			}
		}
	}
}

// handleFrame applies one ReadResp to driver state and forwards it as
// an Update. It returns true if the caller closed the driver while the
// forward was blocked.
func (c *CatchUp) handleFrame(resp *wire.ReadResp) (closedByCaller bool) {
	switch {
	case resp.Confirmation != nil:
		c.backoff.Reset()
		c.setState(StateSubscribed)
		return !c.emit(Update{Kind: KindConfirmed, SubscriptionID: resp.Confirmation.SubscriptionID})
	case resp.CaughtUp:
		return !c.emit(Update{Kind: KindCaughtUp})
	case resp.Event != nil:
		c.mu.Lock()
		rev := resp.Event.EventNumber
		pos := resp.Event.Position
		c.lastRevision = &rev
		c.lastPosition = &pos
		c.mu.Unlock()
		return !c.emit(Update{Kind: KindEvent, Event: resp.Event})
	default:
		return false
	}
}

// emit forwards u to the Updates channel, or responds to a concurrent
// Close() request if the caller stopped draining it. It returns false
// if the driver was closed.
func (c *CatchUp) emit(u Update) bool {
	select {
	case c.updates <- u:
		return true
	case errc := <-c.closing:
		errc <- nil
		return false
	}
}

// isFatal reports whether err should terminate the driver outright
// rather than trigger a reconnect: authentication and access failures,
// missing resources, deleted streams, unsupported features, and
// client-side errors. Any other error, including one that is not a *core.Error, is
// treated as transient.
func isFatal(err error) bool {
	var ce *core.Error
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Code {
	case core.CodeAccessDenied, core.CodeUnauthenticated, core.CodeResourceNotFound,
		core.CodeStreamDeleted, core.CodeUnsupportedFeature, core.CodeInternalClientError,
		core.CodeConnectionStringParseError:
		return true
	default:
		return false
	}
}
