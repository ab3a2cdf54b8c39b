package core

import "fmt"

// Code identifies a member of the client's closed error taxonomy.
// The taxonomy is flat and exhaustive: every failure mode the core can
// surface to a caller has exactly one Code, and new server-side
// conditions are mapped onto an existing member rather than growing
// the set silently.
type Code int

const (
	// CodeConnection means the transport could not be established.
	CodeConnection Code = iota
	// CodeGossipSeedError means discovery exhausted its configured attempts.
	CodeGossipSeedError
	// CodeNotLeaderAvailable means discovery resolved a gossip view with
	// no member satisfying NodePreferenceLeader: terminal, not retried.
	CodeNotLeaderAvailable
	// CodeNotLeaderRedirect means a call landed on a non-leader node and
	// the server's "not-leader" trailer redirected it elsewhere; the
	// call executor retries once against the redirect hint (spec.md
	// §4.6). Distinct from CodeNotLeaderAvailable: a redirect means a
	// leader exists and the client just asked the wrong node, while
	// CodeNotLeaderAvailable means discovery found no leader at all.
	CodeNotLeaderRedirect
	// CodeGrpc wraps an unmapped server status.
	CodeGrpc
	CodeAccessDenied
	CodeUnauthenticated
	CodeResourceNotFound
	CodeResourceAlreadyExists
	CodeResourceDeleted
	// CodeWrongExpectedVersion means an append's expected revision did not match.
	CodeWrongExpectedVersion
	// CodeMaximumAppendSizeExceeded means the proposed write exceeded the server's limit.
	CodeMaximumAppendSizeExceeded
	// CodeStreamDeleted means the target stream was tombstoned.
	CodeStreamDeleted
	// CodeUnsupportedFeature means the connected server does not advertise the capability.
	CodeUnsupportedFeature
	// CodeInternalClientError marks a programming-error assertion inside the client itself.
	CodeInternalClientError
	CodeDeadlineExceeded
	CodeCancelled
	// CodeConnectionStringParseError means ParseConnectionString rejected the input.
	CodeConnectionStringParseError
)

func (c Code) String() string {
	switch c {
	case CodeConnection:
		return "connection-error"
	case CodeGossipSeedError:
		return "gossip-seed-error"
	case CodeNotLeaderAvailable:
		return "not-leader-available"
	case CodeNotLeaderRedirect:
		return "not-leader-redirect"
	case CodeGrpc:
		return "grpc"
	case CodeAccessDenied:
		return "access-denied"
	case CodeUnauthenticated:
		return "unauthenticated"
	case CodeResourceNotFound:
		return "resource-not-found"
	case CodeResourceAlreadyExists:
		return "resource-already-exists"
	case CodeResourceDeleted:
		return "resource-deleted"
	case CodeWrongExpectedVersion:
		return "wrong-expected-version"
	case CodeMaximumAppendSizeExceeded:
		return "maximum-append-size-exceeded"
	case CodeStreamDeleted:
		return "stream-deleted"
	case CodeUnsupportedFeature:
		return "unsupported-feature"
	case CodeInternalClientError:
		return "internal-client-error"
	case CodeDeadlineExceeded:
		return "deadline-exceeded"
	case CodeCancelled:
		return "cancelled"
	case CodeConnectionStringParseError:
		return "connection-string-parse-error"
	default:
		return "unknown"
	}
}

// Error is the single exported error type the client ever returns to a
// caller. It carries a Code from the closed taxonomy plus contextual
// fields that vary by Code (LeaderEndpoint for CodeNotLeaderRedirect,
// Expected/Current for CodeWrongExpectedVersion, Key for
// CodeConnectionStringParseError).
type Error struct {
	Code Code
	Msg  string

	// LeaderEndpoint is set on a CodeNotLeaderRedirect; the discovery
	// engine prefers it as the next gossip target.
	LeaderEndpoint *Endpoint

	// Expected/Current are populated for CodeWrongExpectedVersion.
	Expected string
	Current  string

	// Key names the offending connection-string field for
	// CodeConnectionStringParseError.
	Key string

	cause error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.cause }

// newErr builds an *Error, optionally wrapping an underlying cause.
func newErr(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), cause: cause}
}

// IsNotFound reports whether err is a CodeResourceNotFound client error.
func IsNotFound(err error) bool { return hasCode(err, CodeResourceNotFound) }

// IsWrongExpectedVersion reports whether err is a CodeWrongExpectedVersion client error.
func IsWrongExpectedVersion(err error) bool { return hasCode(err, CodeWrongExpectedVersion) }

// IsUnsupportedFeature reports whether err is a CodeUnsupportedFeature client error.
func IsUnsupportedFeature(err error) bool { return hasCode(err, CodeUnsupportedFeature) }

func hasCode(err error, code Code) bool {
	var ce *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			ce = e
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return ce != nil && ce.Code == code
}
