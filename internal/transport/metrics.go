package transport

import (
	"net/http"
	"sync"

	grpcprometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var enableHistogramOnce sync.Once

// EnableCallLatencyHistogram turns on per-RPC latency buckets on the
// client metrics collector DefaultDialer's interceptor chain feeds.
// Off by default: histograms are far more expensive to scrape than the
// plain counters go-grpc-prometheus otherwise exposes.
func EnableCallLatencyHistogram() {
	enableHistogramOnce.Do(func() {
		grpcprometheus.EnableClientHandlingTimeHistogram()
	})
}

// MetricsHandler returns an http.Handler an embedding application can
// mount to expose the client's RPC metrics (collected on the default
// Prometheus registerer by go-grpc-prometheus's client interceptors) to
// a scraper.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
