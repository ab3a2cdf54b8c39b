package kurrentdb

import (
	"net/http"

	"github.com/mcastellin/kurrentdb-client-go/internal/transport"
)

// EnableCallLatencyHistogram turns on per-RPC latency histograms for
// every Client's gRPC metrics (see transport.DefaultDialer).
func EnableCallLatencyHistogram() { transport.EnableCallLatencyHistogram() }

// MetricsHandler returns an http.Handler exposing this process's client
// RPC metrics for a Prometheus scraper to pull.
func MetricsHandler() http.Handler { return transport.MetricsHandler() }
