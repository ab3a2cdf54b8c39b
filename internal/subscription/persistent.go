package subscription

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/mcastellin/kurrentdb-client-go/internal/backoff"
	"github.com/mcastellin/kurrentdb-client-go/internal/transport"
	"github.com/mcastellin/kurrentdb-client-go/internal/wire"
	"go.uber.org/zap"
)

// PSOpener opens one persistent-subscription Read bidi call and sends
// the initial PSReadOptions frame that selects the group to join.
type PSOpener func(ctx context.Context, opts wire.PSReadOptions) (wire.PSReadClient, func(), error)

// ackOrNak is either an Ack or a Nak queued by the caller for the
// server-managed checkpoint; exactly one of the two is non-nil.
type ackOrNak struct {
	ack *wire.PSAck
	nak *wire.PSNak
}

// Persistent drives a persistent subscription (C8): the server owns
// checkpoint position, so on a transient drop the driver simply rejoins
// the same group rather than replaying from a client-tracked position.
type Persistent struct {
	open    PSOpener
	logger  *zap.Logger
	backoff *backoff.Strategy
	options wire.PSReadOptions

	mu    sync.Mutex
	state State

	updates chan Update
	acks    chan ackOrNak
	closing chan chan error
}

func NewPersistent(ctx context.Context, open PSOpener, logger *zap.Logger, bk *backoff.Strategy, opts wire.PSReadOptions) *Persistent {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Persistent{
		open:    open,
		logger:  logger,
		backoff: bk,
		options: opts,
		state:   StateIdle,
		updates: make(chan Update),
		acks:    make(chan ackOrNak),
		closing: make(chan chan error),
	}
	go p.run(ctx)
	return p
}

func (p *Persistent) Updates() <-chan Update { return p.updates }

func (p *Persistent) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Ack acknowledges processed event IDs to the server.
func (p *Persistent) Ack(eventIDs []string) {
	p.acks <- ackOrNak{ack: &wire.PSAck{EventIDs: eventIDs}}
}

// Nak negatively acknowledges event IDs with the given disposition.
func (p *Persistent) Nak(eventIDs []string, action wire.NakAction, reason string) {
	p.acks <- ackOrNak{nak: &wire.PSNak{EventIDs: eventIDs, Action: action, Reason: reason}}
}

func (p *Persistent) Close() error {
	errc := make(chan error)
	p.closing <- errc
	return <-errc
}

func (p *Persistent) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (p *Persistent) run(ctx context.Context) {
	defer close(p.updates)

	for {
		p.setState(StateConnecting)

		err := p.runOnce(ctx)
		if err == errClosedByCaller {
			return
		}
		if err == nil {
			err = io.EOF
		}

		if isFatal(err) {
			if !p.emit(Update{Kind: KindDropped, Err: err}) {
				return
			}
			p.setState(StateTerminated)
			return
		}

		p.setState(StateTransient)
		if !p.emit(Update{Kind: KindDropped, Err: err}) {
			return
		}

		select {
		case errc := <-p.closing:
			p.setState(StateTerminated)
			errc <- nil
			return
		case <-ctx.Done():
			p.setState(StateTerminated)
			return
		case <-p.backoff.Next():
		}
	}
}

type psFrame struct {
	resp *wire.PSReadResp
	err  error
}

func (p *Persistent) runOnce(ctx context.Context) error {
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream, release, err := p.open(streamCtx, p.options)
	if err != nil {
		return err
	}
	defer release()

	frames := make(chan psFrame)
	go func() {
		for {
			resp, recvErr := stream.Recv()
			frames <- psFrame{resp, recvErr}
			if recvErr != nil {
				close(frames)
				return
			}
		}
	}()

	for {
		select {
		case errc := <-p.closing:
			errc <- nil
			return errClosedByCaller
		case aon := <-p.acks:
			req := &wire.PSReadReq{Ack: aon.ack, Nak: aon.nak}
			if sendErr := stream.Send(req); sendErr != nil {
				return transport.MapCallError(sendErr)
			}
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
			if done := p.handleFrame(f.resp); done {
				return errClosedByCaller
			}
		}
	}
}

func (p *Persistent) handleFrame(resp *wire.PSReadResp) (closedByCaller bool) {
	switch {
	case resp.Confirmation != nil:
		p.backoff.Reset()
		p.setState(StateSubscribed)
		return !p.emit(Update{Kind: KindConfirmed, SubscriptionID: resp.Confirmation.SubscriptionID})
	case resp.Event != nil:
		return !p.emit(Update{Kind: KindEvent, Event: resp.Event})
	case resp.Dropped != nil:
		return !p.emit(Update{Kind: KindDropped, Err: errors.New(resp.Dropped.Reason)})
	default:
		return false
	}
}

func (p *Persistent) emit(u Update) bool {
	select {
	case p.updates <- u:
		return true
	case errc := <-p.closing:
		errc <- nil
		return false
	}
}
