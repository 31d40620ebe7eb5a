package api

import (
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics use only bounded label values; nothing per-player or
// per-enemy ends up as a label.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_tick_duration_seconds",
		Help:    "Time spent in one fixed simulation step",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.016},
	})

	enemyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_enemy_count",
		Help: "Enemies currently in the arena, dead-but-fading included",
	})

	aliveEnemyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sim_enemy_alive_count",
		Help: "Living enemies currently in the arena",
	})

	leaderboardSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "leaderboard_entries",
		Help: "Total leaderboard entries across all game modes",
	})

	eventLogDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_log_dropped_total",
		Help: "Simulation events dropped by rate limiting or buffer overflow",
	})

	connectionRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connection_rejected_total",
		Help: "Connections rejected by rate limiter or origin check",
	}, []string{"reason"}) // bounded: rate_limit, origin, ws_total_limit, ws_ip_limit

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active websocket connections",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "Total websocket messages sent",
	})
)

// ObservabilityConfig configures the internal debug server.
type ObservabilityConfig struct {
	Enabled       bool
	ListenAddr    string // must stay on localhost unless explicitly overridden
	BasicAuthUser string
	BasicAuthPass string
}

// DefaultObservabilityConfig returns localhost-only defaults.
func DefaultObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// StartDebugServer serves pprof, Prometheus metrics and a health check
// on a localhost-only listener. External binding requires the
// ALLOW_DEBUG_EXTERNAL escape hatch.
func StartDebugServer(cfg ObservabilityConfig) error {
	if !cfg.Enabled {
		log.Println("debug server disabled")
		return nil
	}

	if cfg.ListenAddr != "127.0.0.1:6060" && cfg.ListenAddr != "localhost:6060" {
		if os.Getenv("ALLOW_DEBUG_EXTERNAL") != "true" {
			log.Println("debug server forced to localhost")
			cfg.ListenAddr = "127.0.0.1:6060"
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = mux
	if cfg.BasicAuthUser != "" {
		handler = basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass, mux)
	}

	go func() {
		log.Printf("debug server listening on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, handler); err != nil {
			log.Printf("debug server error: %v", err)
		}
	}()

	return nil
}

func basicAuthMiddleware(user, pass string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || u != user || p != pass {
			w.Header().Set("WWW-Authenticate", `Basic realm="debug"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RecordTick observes one simulation step's duration.
func RecordTick(duration time.Duration) {
	tickDuration.Observe(duration.Seconds())
}

// UpdateEnemyCounts updates the enemy gauges.
func UpdateEnemyCounts(total, alive int) {
	enemyCount.Set(float64(total))
	aliveEnemyCount.Set(float64(alive))
}

// UpdateLeaderboardSize updates the leaderboard gauge.
func UpdateLeaderboardSize(n int) {
	leaderboardSize.Set(float64(n))
}

// RecordEventsDropped adds newly dropped event-log entries.
func RecordEventsDropped(n uint64) {
	eventLogDropped.Add(float64(n))
}

// RecordConnectionRejected increments the rejection counter. reason must
// be one of the bounded values documented on the metric.
func RecordConnectionRejected(reason string) {
	connectionRejected.WithLabelValues(reason).Inc()
}

// UpdateWSConnections updates the websocket connection gauge.
func UpdateWSConnections(count int) {
	wsConnectionsActive.Set(float64(count))
}

// IncrementWSMessages counts one broadcast message.
func IncrementWSMessages() {
	wsMessagesTotal.Inc()
}
