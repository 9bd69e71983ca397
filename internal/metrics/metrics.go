// Package metrics exposes the daemon's Prometheus counters and gauges and
// the /metrics and /ready HTTP endpoints that serve them.
package metrics

import (
	"net/http"
	"sync"

	"github.com/keke1008/meshd/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus series.
var (
	SerialRxFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "serial_rx_frames_total",
		Help: "Total frames decoded from the serial link.",
	})
	SerialTxFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "serial_tx_frames_total",
		Help: "Total frames written to the serial link.",
	})
	UHFRxFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uhf_rx_frames_total",
		Help: "Total frames decoded from the UHF radio.",
	})
	UHFTxFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uhf_tx_frames_total",
		Help: "Total frames written to the UHF radio.",
	})
	UHFCSMARetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uhf_csma_retries_total",
		Help: "Total CSMA carrier-sense retries before a UHF send succeeded or gave up.",
	})
	UHFCSMAFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "uhf_csma_failures_total",
		Help: "Total UHF sends abandoned after exhausting CSMA retries.",
	})
	MalformedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "malformed_frames_total",
		Help: "Total rejected malformed frames (protocol violations, invalid length, truncated).",
	})
	FramebufExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framebuf_exhausted_total",
		Help: "Total allocation attempts that found no free buffer in the framebuf pool.",
	})
	FramebufInUse = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "framebuf_in_use",
		Help: "Buffers currently checked out of the framebuf pool, by size class.",
	}, []string{"class"})
	BrokerQueueDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "broker_queue_dropped_total",
		Help: "Total frames dropped because a protocol queue was full.",
	}, []string{"protocol", "direction"})
	NeighborCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "neighbor_count",
		Help: "Current number of entries in the neighbor table.",
	})
	NeighborUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neighbor_updates_total",
		Help: "Total neighbor-updated notifications emitted by the neighbor service.",
	})
	NeighborExpirations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "neighbor_expirations_total",
		Help: "Total neighbor entries removed by the expiration sweep.",
	})
	DiscoveryRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "discovery_requests_total",
		Help: "Total discovery Request frames sent (new searches broadcast by this node).",
	})
	DiscoveryResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "discovery_resolved_total",
		Help: "Total discoveries resolved, partitioned by outcome.",
	}, []string{"outcome"})
	DiscoveryInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "discovery_inflight",
		Help: "Current number of in-flight discovery searches.",
	})
	RouteCacheSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "route_cache_size",
		Help: "Current number of entries in the discovery route cache.",
	})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})

	readinessMu sync.RWMutex
	readinessFn func() bool
)

// Discovery outcome label values (stable, bounds cardinality).
const (
	DiscoveryOutcomeNeighbor = "neighbor"
	DiscoveryOutcomeCached   = "cached"
	DiscoveryOutcomeFound    = "found"
	DiscoveryOutcomeTimeout  = "timeout"
)

// Error label constants (stable label values to bound cardinality).
const (
	ErrSerialRead  = "serial_read"
	ErrSerialWrite = "serial_write"
	ErrUHFRead     = "uhf_read"
	ErrUHFWrite    = "uhf_write"
	ErrCSFailure   = "carrier_sense_failure"
)

// StartHTTP serves Prometheus metrics at /metrics and a readiness probe at
// /ready.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// IncError increments the error counter for a subsystem label.
func IncError(label string) { Errors.WithLabelValues(label).Inc() }

// IncBrokerDrop increments the dropped-frame counter for a protocol/direction.
func IncBrokerDrop(protocol, direction string) {
	BrokerQueueDropped.WithLabelValues(protocol, direction).Inc()
}

// InitBuildInfo sets the build info gauge and pre-registers stable label
// series so the first occurrence of each doesn't pay registration cost.
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
	for _, lbl := range []string{ErrSerialRead, ErrSerialWrite, ErrUHFRead, ErrUHFWrite, ErrCSFailure} {
		Errors.WithLabelValues(lbl).Add(0)
	}
	for _, outcome := range []string{DiscoveryOutcomeNeighbor, DiscoveryOutcomeCached, DiscoveryOutcomeFound, DiscoveryOutcomeTimeout} {
		DiscoveryResolved.WithLabelValues(outcome).Add(0)
	}
}

// SetReadinessFunc registers a function used by /ready and IsReady.
func SetReadinessFunc(fn func() bool) { readinessMu.Lock(); readinessFn = fn; readinessMu.Unlock() }

// IsReady invokes the registered readiness function if present.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()
	if fn == nil { // not set yet: treat as ready so the endpoint doesn't flap
		return true
	}
	return fn()
}
