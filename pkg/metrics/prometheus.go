// Package metrics provides Prometheus metrics for the courtside stats
// service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Ingest pipeline
	statsProcessed   prometheus.Counter
	statsFailed      prometheus.Counter
	firstReports     prometheus.Counter
	teamGamesCounted prometheus.Counter

	// Game completion
	gamesCompleted  prometheus.Counter
	playersFinished prometheus.Counter

	// Durable sync
	syncRuns      prometheus.Counter
	syncSkipped   prometheus.Counter
	syncDuration  prometheus.Histogram
	flushes       prometheus.Counter
	flushFailures prometheus.Counter
	dirtyKeys     prometheus.Gauge

	// Hot store population
	aggregateLoads prometheus.Counter
	liveSnapshots  prometheus.Gauge

	// Roster directory
	rosterPlayers prometheus.Gauge
	rosterTeams   prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courtside",
		subsystem:        "stats",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.statsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_processed_total",
		Help:      "Total number of live stat reports successfully processed",
	})
	m.statsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_failed_total",
		Help:      "Total number of live stat reports that failed processing",
	})
	m.firstReports = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "first_reports_total",
		Help:      "Total number of first reports for a (game, player) pair",
	})
	m.teamGamesCounted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "team_games_counted_total",
		Help:      "Total number of team games_played increments passed by the dedup gate",
	})
	m.gamesCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "games_completed_total",
		Help:      "Total number of game completion requests processed",
	})
	m.playersFinished = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "players_finished_total",
		Help:      "Total number of player snapshots transitioned to FINISHED",
	})
	m.syncRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_runs_total",
		Help:      "Total number of dirty-key sync cycles executed",
	})
	m.syncSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_skipped_total",
		Help:      "Total number of sync cycles skipped because a cycle was still running",
	})
	m.syncDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sync_duration_seconds",
		Help:      "Histogram of dirty-key sync cycle durations",
		Buckets:   m.histogramBuckets,
	})
	m.flushes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flushes_total",
		Help:      "Total number of aggregates flushed to the durable store",
	})
	m.flushFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "flush_failures_total",
		Help:      "Total number of aggregate flushes that failed and were retained dirty",
	})
	m.dirtyKeys = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dirty_keys",
		Help:      "Number of dirty aggregate keys seen by the last sync cycle",
	})
	m.aggregateLoads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregate_loads_total",
		Help:      "Total number of season aggregates loaded from the durable store into the hot store",
	})
	m.liveSnapshots = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "live_snapshots",
		Help:      "Number of live game snapshot keys at last observation",
	})
	m.rosterPlayers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_players",
		Help:      "Number of player names held by the roster directory",
	})
	m.rosterTeams = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "roster_teams",
		Help:      "Number of team names held by the roster directory",
	})
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of HTTP request durations by endpoint and method",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method"})
}

// GetRegistry returns the registry backing the global manager, for serving
// via promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level record helpers operating on the global manager.

func RecordStatProcessed() { globalManager.statsProcessed.Inc() }

func RecordStatFailed() { globalManager.statsFailed.Inc() }

func RecordFirstReport() { globalManager.firstReports.Inc() }

func RecordTeamGame() { globalManager.teamGamesCounted.Inc() }

func RecordGameCompleted() { globalManager.gamesCompleted.Inc() }

func RecordPlayersFinished(n int) { globalManager.playersFinished.Add(float64(n)) }

func RecordAggregateLoad() { globalManager.aggregateLoads.Inc() }

func UpdateLiveSnapshots(n int) { globalManager.liveSnapshots.Set(float64(n)) }

func UpdateRosterSizes(p, t int) {
	globalManager.rosterPlayers.Set(float64(p))
	globalManager.rosterTeams.Set(float64(t))
}

func RecordSyncRun(d time.Duration) {
	globalManager.syncRuns.Inc()
	globalManager.syncDuration.Observe(d.Seconds())
}

func RecordSyncSkipped() { globalManager.syncSkipped.Inc() }

func RecordFlush() { globalManager.flushes.Inc() }

func RecordFlushFailure() { globalManager.flushFailures.Inc() }

func UpdateDirtyKeys(n int) { globalManager.dirtyKeys.Set(float64(n)) }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method string, d time.Duration) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method).Observe(d.Seconds())
}
