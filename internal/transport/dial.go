package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	"github.com/mcastellin/kurrentdb-client-go/internal/core"
	"github.com/mcastellin/kurrentdb-client-go/internal/wire"

	grpcmiddleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpcprometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// Dialer opens a grpc.ClientConn to endpoint, applying settings' TLS
// and keep-alive policy. It is injected so tests can swap in a
// bufconn-backed dialer.
type Dialer func(ctx context.Context, endpoint core.Endpoint, settings core.ClientSettings) (*grpc.ClientConn, error)

// DefaultDialer builds real HTTP/2 gRPC channels. Client-side RPC
// metrics and logging are wired once here via grpc-ecosystem's
// go-grpc-prometheus and go-grpc-middleware interceptor chains, so
// every call issued over the resulting channel is observed uniformly
// without the call executor having to know about either concern.
func DefaultDialer(logger *zap.Logger) Dialer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, endpoint core.Endpoint, settings core.ClientSettings) (*grpc.ClientConn, error) {
		transportCreds, err := buildTransportCredentials(settings)
		if err != nil {
			return nil, err
		}

		opts := []grpc.DialOption{
			grpc.WithTransportCredentials(transportCreds),
			grpc.WithDefaultCallOptions(grpc.CallContentSubtype(wire.CodecName)),
			grpc.WithKeepaliveParams(keepalive.ClientParameters{
				Time:                settings.KeepAliveInterval,
				Timeout:             settings.KeepAliveTimeout,
				PermitWithoutStream: true,
			}),
			grpc.WithChainUnaryInterceptor(
				grpcmiddleware.ChainUnaryClient(
					grpcprometheus.UnaryClientInterceptor,
					loggingUnaryInterceptor(logger),
				),
			),
			grpc.WithChainStreamInterceptor(
				grpcmiddleware.ChainStreamClient(
					grpcprometheus.StreamClientInterceptor,
					loggingStreamInterceptor(logger),
				),
			),
		}

		addr := fmt.Sprintf("%s:%d", endpoint.Host, endpoint.Port)
		conn, err := grpc.DialContext(ctx, addr, opts...)
		if err != nil {
			return nil, &core.Error{Code: core.CodeConnection, Msg: "dial " + addr + ": " + err.Error()}
		}
		return conn, nil
	}
}

func buildTransportCredentials(settings core.ClientSettings) (credentials.TransportCredentials, error) {
	if !settings.TLS {
		return insecure.NewCredentials(), nil
	}

	cfg := &tls.Config{InsecureSkipVerify: !settings.TLSVerifyCert}
	if settings.TLSCAFile != "" {
		pem, err := os.ReadFile(settings.TLSCAFile)
		if err != nil {
			return nil, &core.Error{Code: core.CodeConnection, Msg: "reading tlsCAFile: " + err.Error()}
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, &core.Error{Code: core.CodeConnection, Msg: "tlsCAFile contains no usable certificates"}
		}
		cfg.RootCAs = pool
	}
	return credentials.NewTLS(cfg), nil
}

// loggingUnaryInterceptor logs slow or failing unary calls. Modeled on
// the structured, field-based logging the teacher's distributed-queue
// server.go does with zap, rather than printf-style logging.
func loggingUnaryInterceptor(logger *zap.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		if err != nil {
			logger.Debug("unary call failed",
				zap.String("method", method),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
		}
		return err
	}
}

func loggingStreamInterceptor(logger *zap.Logger) grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		stream, err := streamer(ctx, desc, cc, method, opts...)
		if err != nil {
			logger.Debug("stream open failed", zap.String("method", method), zap.Error(err))
		}
		return stream, err
	}
}
