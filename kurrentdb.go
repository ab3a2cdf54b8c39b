// Package kurrentdb is the public surface of the KurrentDB Go client.
// It re-exports the connection/dispatch core (internal/core,
// internal/discovery, internal/transport, internal/subscription) as a
// small set of types and a Client, and adds the thin per-operation
// facades (append, read, tombstone/delete, subscriptions, persistent
// subscriptions, projections, users, operations) that call into the
// core rather than reimplementing any of it.
package kurrentdb

import (
	"github.com/mcastellin/kurrentdb-client-go/internal/core"
)

// Data model types (spec.md §3) live in internal/core so the core
// packages (discovery, transport, subscription) can share them without
// importing the public package and creating an import cycle. They are
// re-exported here as aliases so callers only ever see one set of
// types.
type (
	Endpoint       = core.Endpoint
	VNodeState     = core.VNodeState
	MemberInfo     = core.MemberInfo
	Candidate      = core.Candidate
	NodePreference = core.NodePreference
	Credentials    = core.Credentials
	ClientSettings = core.ClientSettings
	Option         = core.Option
	Code           = core.Code
	Error          = core.Error
)

const (
	VNodeUnknown            = core.VNodeUnknown
	VNodeLeader             = core.VNodeLeader
	VNodeFollower           = core.VNodeFollower
	VNodeReadOnlyReplica    = core.VNodeReadOnlyReplica
	VNodeManager            = core.VNodeManager
	VNodePreReplica         = core.VNodePreReplica
	VNodePreReadOnlyReplica = core.VNodePreReadOnlyReplica
	VNodeClone              = core.VNodeClone
	VNodeResigningLeader    = core.VNodeResigningLeader
	VNodeShuttingDown       = core.VNodeShuttingDown
	VNodeShutdown           = core.VNodeShutdown
	VNodePreLeader          = core.VNodePreLeader
	VNodeCatchingUp         = core.VNodeCatchingUp
	VNodeDiscoverLeader     = core.VNodeDiscoverLeader

	NodePreferenceLeader          = core.NodePreferenceLeader
	NodePreferenceFollower        = core.NodePreferenceFollower
	NodePreferenceReadOnlyReplica = core.NodePreferenceReadOnlyReplica
	NodePreferenceRandom          = core.NodePreferenceRandom
)

const (
	CodeConnection                 = core.CodeConnection
	CodeGossipSeedError            = core.CodeGossipSeedError
	CodeNotLeaderAvailable         = core.CodeNotLeaderAvailable
	CodeNotLeaderRedirect          = core.CodeNotLeaderRedirect
	CodeGrpc                       = core.CodeGrpc
	CodeAccessDenied               = core.CodeAccessDenied
	CodeUnauthenticated            = core.CodeUnauthenticated
	CodeResourceNotFound           = core.CodeResourceNotFound
	CodeResourceAlreadyExists      = core.CodeResourceAlreadyExists
	CodeResourceDeleted            = core.CodeResourceDeleted
	CodeWrongExpectedVersion       = core.CodeWrongExpectedVersion
	CodeMaximumAppendSizeExceeded  = core.CodeMaximumAppendSizeExceeded
	CodeStreamDeleted              = core.CodeStreamDeleted
	CodeUnsupportedFeature         = core.CodeUnsupportedFeature
	CodeInternalClientError        = core.CodeInternalClientError
	CodeDeadlineExceeded           = core.CodeDeadlineExceeded
	CodeCancelled                  = core.CodeCancelled
	CodeConnectionStringParseError = core.CodeConnectionStringParseError
)

// ParseConnectionString parses a KurrentDB/EventStoreDB connection
// string into a ClientSettings. See spec.md §4.1 and §6.
func ParseConnectionString(s string, opts ...Option) (ClientSettings, error) {
	return core.ParseConnectionString(s, opts...)
}

// WithLogger overrides the zap.Logger used for ambient logging.
var WithLogger = core.WithLogger

// WithConnectionName overrides ConnectionName post-parse.
var WithConnectionName = core.WithConnectionName

// IsNotFound reports whether err is a CodeResourceNotFound client error.
func IsNotFound(err error) bool { return core.IsNotFound(err) }

// IsWrongExpectedVersion reports whether err is a CodeWrongExpectedVersion client error.
func IsWrongExpectedVersion(err error) bool { return core.IsWrongExpectedVersion(err) }

// IsUnsupportedFeature reports whether err is a CodeUnsupportedFeature client error.
func IsUnsupportedFeature(err error) bool { return core.IsUnsupportedFeature(err) }
