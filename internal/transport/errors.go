package transport

import (
	"strconv"

	"github.com/mcastellin/kurrentdb-client-go/internal/core"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// exceptionToCode maps the "exception" trailer value (spec.md §6) onto
// the client's closed error taxonomy. This is the single place that
// mapping happens; no call site duplicates it.
var exceptionToCode = map[string]core.Code{
	"wrong-expected-version":                 core.CodeWrongExpectedVersion,
	"stream-deleted":                         core.CodeStreamDeleted,
	"access-denied":                          core.CodeAccessDenied,
	"not-authenticated":                      core.CodeUnauthenticated,
	"user-not-found":                         core.CodeResourceNotFound,
	"stream-not-found":                       core.CodeResourceNotFound,
	"maximum-append-size-exceeded":           core.CodeMaximumAppendSizeExceeded,
	"missing-required-metadata-property":     core.CodeInternalClientError,
	"not-leader":                             core.CodeNotLeaderRedirect,
	"persistent-subscription-failed":         core.CodeInternalClientError,
	"persistent-subscription-does-not-exist": core.CodeResourceNotFound,
	"persistent-subscription-exists":         core.CodeResourceAlreadyExists,
	"maximum-subscribers-reached":            core.CodeInternalClientError,
	"persistent-subscription-dropped":        core.CodeInternalClientError,
}

// mapStatus maps a gRPC error plus its trailer metadata into the
// client's closed taxonomy (spec.md §7). Unmapped statuses become
// CodeGrpc, preserving the original status for the caller.
func mapStatus(err error, trailer metadata.MD) *core.Error {
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return &core.Error{Code: core.CodeConnection, Msg: err.Error()}
	}

	if exception := firstTrailerValue(trailer, "exception"); exception != "" {
		if code, known := exceptionToCode[exception]; known {
			ce := &core.Error{Code: code, Msg: st.Message()}
			if code == core.CodeNotLeaderRedirect {
				ce.LeaderEndpoint = leaderEndpointFromTrailer(trailer)
			}
			return ce
		}
	}

	switch st.Code() {
	case codes.DeadlineExceeded:
		return &core.Error{Code: core.CodeDeadlineExceeded, Msg: st.Message()}
	case codes.Canceled:
		return &core.Error{Code: core.CodeCancelled, Msg: st.Message()}
	case codes.Unavailable:
		return &core.Error{Code: core.CodeConnection, Msg: st.Message()}
	case codes.PermissionDenied:
		return &core.Error{Code: core.CodeAccessDenied, Msg: st.Message()}
	case codes.Unauthenticated:
		return &core.Error{Code: core.CodeUnauthenticated, Msg: st.Message()}
	case codes.NotFound:
		return &core.Error{Code: core.CodeResourceNotFound, Msg: st.Message()}
	case codes.AlreadyExists:
		return &core.Error{Code: core.CodeResourceAlreadyExists, Msg: st.Message()}
	case codes.Unimplemented:
		return &core.Error{Code: core.CodeUnsupportedFeature, Msg: st.Message()}
	default:
		return &core.Error{Code: core.CodeGrpc, Msg: st.Message()}
	}
}

// MapCallError exposes mapStatus to callers outside this package that
// observe raw gRPC errors off a call opened through Stream, such as the
// subscription drivers reading Recv() errors frame by frame.
func MapCallError(err error) *core.Error {
	return mapStatus(err, nil)
}

// isRetryableUnary reports whether st/trailer describe a condition the
// call executor may retry once for an idempotent unary call (spec.md
// §4.6: a NotLeader response or transport Unavailable).
func isRetryableUnary(err error, trailer metadata.MD) bool {
	if err == nil {
		return false
	}
	if firstTrailerValue(trailer, "exception") == "not-leader" {
		return true
	}
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unavailable
}

func firstTrailerValue(trailer metadata.MD, key string) string {
	if trailer == nil {
		return ""
	}
	vs := trailer.Get(key)
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func leaderEndpointFromTrailer(trailer metadata.MD) *core.Endpoint {
	host := firstTrailerValue(trailer, "leader-endpoint-host")
	portStr := firstTrailerValue(trailer, "leader-endpoint-port")
	if host == "" {
		return nil
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil
	}
	return &core.Endpoint{Host: host, Port: uint16(port)}
}
