package transport

import (
	"context"
	"net"
	"testing"

	"github.com/mcastellin/kurrentdb-client-go/internal/wire"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// serverFeaturesStub is a bufconn-backed double for the
// ServerFeatures.GetSupportedMethods RPC (spec.md §4.7 / C7), letting
// detectFeatures be exercised against a real in-memory grpc.Server
// rather than a hand-rolled fake of grpc.ClientConnInterface.
type serverFeaturesStub struct {
	resp *wire.SupportedMethods
	err  error
}

func (s *serverFeaturesStub) serviceDesc() *grpc.ServiceDesc {
	return &grpc.ServiceDesc{
		ServiceName: "event_store.client.server_features.ServerFeatures",
		HandlerType: (*any)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetSupportedMethods",
				Handler: func(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
					req := new(struct{})
					if err := dec(req); err != nil {
						return nil, err
					}
					if s.err != nil {
						return nil, s.err
					}
					return s.resp, nil
				},
			},
		},
		Streams: []grpc.StreamDesc{},
	}
}

// dialBufconn starts srv on an in-memory listener and returns a
// *grpc.ClientConn connected to it, closed automatically at test end.
func dialBufconn(t *testing.T, register func(*grpc.Server)) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	register(srv)
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	cc, err := grpc.DialContext(context.Background(), "bufconn",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(wire.CodecName)),
	)
	if err != nil {
		t.Fatalf("dialing bufconn: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })
	return cc
}

func TestDetectFeaturesParsesAdvertisedMethods(t *testing.T) {
	stub := &serverFeaturesStub{resp: &wire.SupportedMethods{
		ServerVersion: "23.10.0",
		Methods: []wire.SupportedMethod{
			{ServiceName: "streams", MethodName: "append"},
			{ServiceName: "streams", MethodName: "batch_append"},
		},
	}}
	cc := dialBufconn(t, func(s *grpc.Server) { s.RegisterService(stub.serviceDesc(), nil) })

	fs := detectFeatures(context.Background(), cc)

	if !fs.Supports("streams", "append") {
		t.Error("expected streams/append to be supported")
	}
	if !fs.Supports("streams", "batch_append") {
		t.Error("expected streams/batch_append to be supported")
	}
	if fs.Supports("streams", "delete") {
		t.Error("did not expect streams/delete to be supported")
	}
	if fs.ServerVersion == nil || fs.ServerVersion.String() != "23.10.0" {
		t.Errorf("unexpected parsed server version: %v", fs.ServerVersion)
	}
}

// TestDetectFeaturesDegradesOnUnimplemented covers spec.md §4.7: an
// older server with no ServerFeatures service at all must not fail
// channel construction, it should degrade to the minimum-known set.
func TestDetectFeaturesDegradesOnUnimplemented(t *testing.T) {
	stub := &serverFeaturesStub{err: status.Error(codes.Unimplemented, "unknown service")}
	cc := dialBufconn(t, func(s *grpc.Server) { s.RegisterService(stub.serviceDesc(), nil) })

	fs := detectFeatures(context.Background(), cc)

	if !fs.Supports("streams", "append") {
		t.Error("expected the minimum-known set to include streams/append")
	}
	if fs.Supports("streams", "batch_append") {
		t.Error("did not expect the minimum-known set to include batch_append")
	}
	if fs.ServerVersion == nil || fs.ServerVersion.String() != "0.0.0" {
		t.Errorf("expected server_version 0.0.0, got %v", fs.ServerVersion)
	}
}

func TestDetectFeaturesDegradesOnBadVersionString(t *testing.T) {
	stub := &serverFeaturesStub{resp: &wire.SupportedMethods{
		ServerVersion: "not-a-semver",
		Methods:       []wire.SupportedMethod{{ServiceName: "streams", MethodName: "append"}},
	}}
	cc := dialBufconn(t, func(s *grpc.Server) { s.RegisterService(stub.serviceDesc(), nil) })

	fs := detectFeatures(context.Background(), cc)

	if fs.ServerVersion == nil || fs.ServerVersion.String() != "0.0.0" {
		t.Errorf("expected an unparsable version string to fall back to 0.0.0, got %v", fs.ServerVersion)
	}
	if !fs.Supports("streams", "append") {
		t.Error("expected the advertised method to still be recorded despite the bad version string")
	}
}
