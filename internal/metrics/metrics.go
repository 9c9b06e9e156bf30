package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wpup/conauth/internal/health"
)

var (
	// Token lifecycle

	TokensIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "conauth",
		Name:      "tokens_issued_total",
		Help:      "Sign-in tokens issued and stored.",
	})

	Redemptions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conauth",
		Name:      "redemptions_total",
		Help:      "Redemption attempts, by outcome.",
	}, []string{"outcome"})

	DeliveryFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "conauth",
		Name:      "delivery_failures_total",
		Help:      "Sign-in emails the mail gateway failed to deliver.",
	})

	// Sweeper

	SweepPurgedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "conauth",
		Name:      "sweep_purged_total",
		Help:      "Expired pending tokens cleared by the sweeper.",
	})

	SweepCycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "conauth",
		Name:      "sweep_cycle_duration_seconds",
		Help:      "Time taken for one sweeper cycle.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTP

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "conauth",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conauth",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		TokensIssued,
		Redemptions,
		DeliveryFailures,
		SweepPurgedTotal,
		SweepCycleDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes on a
// port separate from the public API.
func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, checker.Readiness(r.Context()))
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeHealth(w http.ResponseWriter, result health.HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
