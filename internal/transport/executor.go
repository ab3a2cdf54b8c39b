package transport

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/mcastellin/kurrentdb-client-go/internal/core"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// CallOptions carries the per-call policy the executor (C6) derives
// into headers and deadlines: spec.md §3's CallContext.
type CallOptions struct {
	// Deadline, if set, overrides settings.DefaultDeadline for this
	// call. Only meaningful for unary calls; Stream never applies one.
	Deadline *time.Duration
	// Credentials overrides settings.DefaultUserCredentials for this call.
	Credentials *core.Credentials
	Preference  core.NodePreference
	// Idempotent marks a unary call safe to retry once on a
	// not-leader/unavailable response (spec.md §4.6).
	Idempotent bool
}

// Executor is the call executor (C6): it acquires a Handle, injects
// credentials/deadline/requires-leader, invokes the call, maps errors,
// and performs the single-retry failover rule for unary calls.
type Executor struct {
	manager  *Manager
	settings core.ClientSettings
}

func NewExecutor(manager *Manager, settings core.ClientSettings) *Executor {
	return &Executor{manager: manager, settings: settings}
}

// Unary runs fn once against the current Handle's connection, and
// retries it exactly once—after forcing re-discovery toward any
// not-leader hint—iff the first attempt fails with NotLeader or
// transport Unavailable and opts.Idempotent is true (spec.md §4.6,
// testable property #6).
func Unary[T any](ctx context.Context, e *Executor, opts CallOptions, fn func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (T, error)) (T, error) {
	var zero T

	result, leaderHint, retryable, err := tryUnary(ctx, e, opts, fn)
	if err == nil {
		return result, nil
	}
	if !opts.Idempotent || !retryable {
		return zero, err
	}

	if leaderHint != nil {
		e.manager.PreferNext(*leaderHint)
	}
	if _, rerr := e.manager.Rebuild(ctx); rerr != nil {
		return zero, err
	}

	result, _, _, err = tryUnary(ctx, e, opts, fn)
	if err != nil {
		return zero, err
	}
	return result, nil
}

func tryUnary[T any](ctx context.Context, e *Executor, opts CallOptions, fn func(ctx context.Context, cc grpc.ClientConnInterface, trailer *metadata.MD) (T, error)) (result T, leaderHint *core.Endpoint, retryable bool, err error) {
	handle, herr := e.manager.Current(ctx)
	if herr != nil {
		return result, nil, false, herr
	}
	defer e.manager.Release(handle)

	callCtx, cancel := e.prepareContext(ctx, opts)
	defer cancel()

	var trailer metadata.MD
	raw, callErr := fn(callCtx, handle.Conn, &trailer)
	if callErr == nil {
		return raw, nil, false, nil
	}

	mapped := mapStatus(callErr, trailer)
	return result, mapped.LeaderEndpoint, isRetryableUnary(callErr, trailer), mapped
}

// Stream acquires the current Handle and invokes fn, which is expected
// to open a server-streaming or bidirectional call and return
// immediately; it never applies settings.DefaultDeadline (spec.md §3
// invariant (b), testable property #8). The returned release func must
// be called once the stream has been fully drained or cancelled so the
// Handle's connection can be recycled on the next rebuild.
func Stream[T any](ctx context.Context, e *Executor, opts CallOptions, fn func(ctx context.Context, cc grpc.ClientConnInterface) (T, error)) (T, func(), error) {
	var zero T

	handle, err := e.manager.Current(ctx)
	if err != nil {
		return zero, func() {}, err
	}

	callCtx := e.attachHeaders(ctx, opts)
	result, err := fn(callCtx, handle.Conn)
	if err != nil {
		e.manager.Release(handle)
		return zero, func() {}, mapStatus(err, nil)
	}
	return result, func() { e.manager.Release(handle) }, nil
}

// Features returns the FeatureSet detected on the current channel,
// acquiring and releasing a Handle reference to read it. Facades use
// this to gate optional RPCs (e.g. batch_append) per spec.md §4.7.
func (e *Executor) Features(ctx context.Context) (*FeatureSet, error) {
	handle, err := e.manager.Current(ctx)
	if err != nil {
		return nil, err
	}
	defer e.manager.Release(handle)
	return handle.Features, nil
}

func (e *Executor) prepareContext(ctx context.Context, opts CallOptions) (context.Context, context.CancelFunc) {
	ctx = e.attachHeaders(ctx, opts)

	deadline := opts.Deadline
	if deadline == nil {
		deadline = e.settings.DefaultDeadline
	}
	if deadline == nil {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, *deadline)
}

func (e *Executor) attachHeaders(ctx context.Context, opts CallOptions) context.Context {
	pairs := []string{"requires-leader", boolHeader(opts.Preference.RequiresLeader())}

	creds := opts.Credentials
	if creds == nil {
		creds = e.settings.DefaultUserCredentials
	}
	if creds != nil {
		pairs = append(pairs, "authorization", basicAuth(creds))
	}
	if e.settings.ConnectionName != "" {
		pairs = append(pairs, "connection-name", e.settings.ConnectionName)
	}

	return metadata.AppendToOutgoingContext(ctx, pairs...)
}

func boolHeader(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func basicAuth(c *core.Credentials) string {
	raw := fmt.Sprintf("%s:%s", c.Username, c.Password)
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw))
}
