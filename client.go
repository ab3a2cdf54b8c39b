package kurrentdb

import (
	"time"

	"github.com/mcastellin/kurrentdb-client-go/internal/backoff"
	"github.com/mcastellin/kurrentdb-client-go/internal/core"
	"github.com/mcastellin/kurrentdb-client-go/internal/discovery"
	"github.com/mcastellin/kurrentdb-client-go/internal/transport"
)

const (
	subscriptionBackoffBase   = 100 * time.Millisecond
	subscriptionBackoffFactor = 2.0
	subscriptionBackoffCap    = 5 * time.Second
)

// Client is the top-level handle a caller builds once per application
// and shares across goroutines. It owns the discovery/channel manager
// (C4/C5) and the call executor (C6); every facade method below is a
// thin wrapper translating domain arguments into a wire request and
// dispatching it through the executor.
type Client struct {
	settings core.ClientSettings
	manager  *transport.Manager
	executor *transport.Executor
}

// NewClient builds a Client from parsed settings. It does not dial
// eagerly: the first call triggers discovery and channel construction
// (spec.md §4.4), matching the lazy-connect posture of the reference
// clients this package's ergonomics are modeled on.
func NewClient(settings ClientSettings) (*Client, error) {
	dial := transport.DefaultDialer(settings.Logger)
	resolver := discovery.DefaultResolver()
	manager := transport.NewManager(settings, resolver, dial)
	executor := transport.NewExecutor(manager, settings)
	return &Client{settings: settings, manager: manager, executor: executor}, nil
}

// Close releases the Client's standing reference on its current
// channel handle. In-flight calls that already acquired the handle
// keep it alive until they finish (spec.md §3 invariant (a)).
func (c *Client) Close() {
	c.manager.Close()
}

func (c *Client) newBackoff() *backoff.Strategy {
	return backoff.New(subscriptionBackoffBase, subscriptionBackoffFactor, subscriptionBackoffCap)
}

// CallOption customizes the policy (deadline, credentials, node
// preference) of a single facade call, generalizing the teacher's
// functional-option (OptsFn) pattern to per-call dispatch.
type CallOption func(*transport.CallOptions)

// WithCallDeadline overrides settings.DefaultDeadline for one call.
func WithCallDeadline(d time.Duration) CallOption {
	return func(o *transport.CallOptions) { o.Deadline = &d }
}

// WithCallCredentials overrides settings.DefaultUserCredentials for one call.
func WithCallCredentials(creds Credentials) CallOption {
	return func(o *transport.CallOptions) { o.Credentials = &creds }
}

// WithCallNodePreference overrides settings.NodePreference for one call.
func WithCallNodePreference(p NodePreference) CallOption {
	return func(o *transport.CallOptions) { o.Preference = p }
}

// withIdempotentRetry marks a call eligible for the executor's one-shot
// failover retry on NotLeader/Unavailable. Facades set this themselves
// for calls safe to resend; it is unexported because blanket retry
// eligibility is a property of the operation, not something a caller
// should override per call.
func withIdempotentRetry() CallOption {
	return func(o *transport.CallOptions) { o.Idempotent = true }
}

func (c *Client) callOptions(opts []CallOption) transport.CallOptions {
	co := transport.CallOptions{Preference: c.settings.NodePreference}
	for _, opt := range opts {
		opt(&co)
	}
	return co
}
