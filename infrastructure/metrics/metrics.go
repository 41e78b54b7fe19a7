package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carlosrabelo/swhealth/internal/logger"
)

const (
	OutcomeReachable = "reachable"

	CheckPing      = "ping"
	CheckSnmp      = "snmp"
	CheckHostname  = "hostname"
	CheckInterface = "interface"
)

var (
	DevicesCounter      *prometheus.CounterVec
	CheckErrorCounter   *prometheus.CounterVec
	RunRuntimeSummary   prometheus.Summary
	LastRunTimestamp    prometheus.Gauge
	LastRunFailedGauge  prometheus.Gauge
	ReportWriteFailures prometheus.Counter
)

func init() {
	DevicesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swhealth_devices_inspected",
			Help: "A counter metric to measure the total count of switches inspected, by outcome",
		},
		[]string{"outcome"}, // reachable, auth, timeout, connect
	)

	CheckErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swhealth_check_errors",
			Help: "A counter metric to measure command failures on open sessions, by check",
		},
		[]string{"check"},
	)

	RunRuntimeSummary = promauto.NewSummary(
		prometheus.SummaryOpts{
			Name: "swhealth_run_duration_seconds",
			Help: "A summary metric to measure the total time spent in each batch run",
		},
	)

	LastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "swhealth_last_run_timestamp_seconds",
			Help: "Unix time the last batch run finished",
		},
	)

	LastRunFailedGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "swhealth_last_run_failed_devices",
			Help: "Number of switches that could not be reached in the last batch run",
		},
	)

	ReportWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swhealth_report_write_failures",
			Help: "A counter metric to measure failures persisting a run report or history",
		},
	)
}

// ObserveRun records the outcome of one finished batch run
func ObserveRun(started, finished time.Time, failed int) {
	RunRuntimeSummary.Observe(finished.Sub(started).Seconds())
	LastRunTimestamp.Set(float64(finished.Unix()))
	LastRunFailedGauge.Set(float64(failed))
}

// Handler returns the /metrics handler
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// ListenAndServe exposes prometheus metrics as /metrics on addr.
// The returned server is already running; shut it down to stop serving.
func ListenAndServe(addr string, log logger.Logger) *http.Server {
	server := &http.Server{
		Addr:              addr,
		Handler:           Handler(),
		ReadHeaderTimeout: 2 * time.Second, // nolint:gomnd // time duration value is clear as is.
	}

	go func() {
		log.Info().Str("addr", addr).Msg("serving metrics")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()

	return server
}
