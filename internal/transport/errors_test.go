package transport

import (
	"testing"

	"github.com/mcastellin/kurrentdb-client-go/internal/core"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func TestMapStatusExceptionTrailers(t *testing.T) {
	cases := []struct {
		exception string
		wantCode  core.Code
	}{
		{"wrong-expected-version", core.CodeWrongExpectedVersion},
		{"stream-deleted", core.CodeStreamDeleted},
		{"access-denied", core.CodeAccessDenied},
		{"not-authenticated", core.CodeUnauthenticated},
		{"user-not-found", core.CodeResourceNotFound},
		{"stream-not-found", core.CodeResourceNotFound},
		{"maximum-append-size-exceeded", core.CodeMaximumAppendSizeExceeded},
		{"missing-required-metadata-property", core.CodeInternalClientError},
		{"not-leader", core.CodeNotLeaderRedirect},
		{"persistent-subscription-failed", core.CodeInternalClientError},
		{"persistent-subscription-does-not-exist", core.CodeResourceNotFound},
		{"persistent-subscription-exists", core.CodeResourceAlreadyExists},
		{"maximum-subscribers-reached", core.CodeInternalClientError},
		{"persistent-subscription-dropped", core.CodeInternalClientError},
	}

	for _, tc := range cases {
		t.Run(tc.exception, func(t *testing.T) {
			trailer := metadata.Pairs("exception", tc.exception)
			err := status.Error(codes.Unknown, "server said no")
			ce := mapStatus(err, trailer)
			if ce.Code != tc.wantCode {
				t.Errorf("exception %q: expected %v, got %v", tc.exception, tc.wantCode, ce.Code)
			}
		})
	}
}

// TestMapStatusNotLeaderPopulatesLeaderEndpoint exercises the redirect
// path: a "not-leader" trailer carries the next endpoint to retry
// against, and only CodeNotLeaderRedirect should ever populate it.
func TestMapStatusNotLeaderPopulatesLeaderEndpoint(t *testing.T) {
	trailer := metadata.Pairs(
		"exception", "not-leader",
		"leader-endpoint-host", "node2.local",
		"leader-endpoint-port", "2113",
	)
	err := status.Error(codes.Unknown, "not the leader")
	ce := mapStatus(err, trailer)

	if ce.Code != core.CodeNotLeaderRedirect {
		t.Fatalf("expected CodeNotLeaderRedirect, got %v", ce.Code)
	}
	if ce.LeaderEndpoint == nil {
		t.Fatal("expected LeaderEndpoint to be populated")
	}
	if ce.LeaderEndpoint.Host != "node2.local" || ce.LeaderEndpoint.Port != 2113 {
		t.Errorf("unexpected LeaderEndpoint: %+v", ce.LeaderEndpoint)
	}
}

func TestMapStatusOtherCodesDoNotPopulateLeaderEndpoint(t *testing.T) {
	trailer := metadata.Pairs("exception", "stream-deleted")
	err := status.Error(codes.Unknown, "gone")
	ce := mapStatus(err, trailer)
	if ce.LeaderEndpoint != nil {
		t.Errorf("expected no LeaderEndpoint for CodeStreamDeleted, got %+v", ce.LeaderEndpoint)
	}
}

func TestMapStatusGrpcCodeFallback(t *testing.T) {
	cases := []struct {
		name     string
		code     codes.Code
		wantCode core.Code
	}{
		{"deadline-exceeded", codes.DeadlineExceeded, core.CodeDeadlineExceeded},
		{"canceled", codes.Canceled, core.CodeCancelled},
		{"unavailable", codes.Unavailable, core.CodeConnection},
		{"permission-denied", codes.PermissionDenied, core.CodeAccessDenied},
		{"unauthenticated", codes.Unauthenticated, core.CodeUnauthenticated},
		{"not-found", codes.NotFound, core.CodeResourceNotFound},
		{"already-exists", codes.AlreadyExists, core.CodeResourceAlreadyExists},
		{"unimplemented", codes.Unimplemented, core.CodeUnsupportedFeature},
		{"internal-default", codes.Internal, core.CodeGrpc},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := status.Error(tc.code, "boom")
			ce := mapStatus(err, nil)
			if ce.Code != tc.wantCode {
				t.Errorf("grpc code %v: expected %v, got %v", tc.code, tc.wantCode, ce.Code)
			}
		})
	}
}

func TestMapStatusNil(t *testing.T) {
	if got := mapStatus(nil, nil); got != nil {
		t.Errorf("expected nil for a nil error, got %+v", got)
	}
}

func TestMapStatusNonGrpcError(t *testing.T) {
	ce := mapStatus(errPlain("connection refused"), nil)
	if ce.Code != core.CodeConnection {
		t.Errorf("expected CodeConnection for a non-gRPC error, got %v", ce.Code)
	}
}

func TestIsRetryableUnary(t *testing.T) {
	t.Run("not-leader trailer is retryable", func(t *testing.T) {
		trailer := metadata.Pairs("exception", "not-leader")
		err := status.Error(codes.Unknown, "wrong node")
		if !isRetryableUnary(err, trailer) {
			t.Error("expected a not-leader trailer to be retryable")
		}
	})

	t.Run("unavailable status is retryable", func(t *testing.T) {
		err := status.Error(codes.Unavailable, "down")
		if !isRetryableUnary(err, nil) {
			t.Error("expected codes.Unavailable to be retryable")
		}
	})

	t.Run("other statuses are not retryable", func(t *testing.T) {
		err := status.Error(codes.NotFound, "gone")
		if isRetryableUnary(err, nil) {
			t.Error("expected a NotFound status to not be retryable")
		}
	})

	t.Run("nil error is not retryable", func(t *testing.T) {
		if isRetryableUnary(nil, nil) {
			t.Error("expected a nil error to not be retryable")
		}
	})
}

type errPlain string

func (e errPlain) Error() string { return string(e) }
