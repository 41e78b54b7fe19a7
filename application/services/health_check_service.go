package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carlosrabelo/swhealth/domain/entities"
	"github.com/carlosrabelo/swhealth/domain/ports"
	"github.com/carlosrabelo/swhealth/infrastructure/metrics"
	"github.com/carlosrabelo/swhealth/internal/logger"
)

// HealthCheckService runs the inventory through the inspector and persists the outcome
type HealthCheckService struct {
	inspector ports.DeviceInspector
	sink      ports.ReportSink
	history   ports.RunHistory
	log       logger.Logger
	now       func() time.Time
}

// NewHealthCheckService creates a new instance of the health check application service.
// history may be nil when run history is disabled.
func NewHealthCheckService(inspector ports.DeviceInspector, sink ports.ReportSink, history ports.RunHistory, log logger.Logger) *HealthCheckService {
	return &HealthCheckService{
		inspector: inspector,
		sink:      sink,
		history:   history,
		log:       log,
		now:       time.Now,
	}
}

// Run inspects every switch in inventory order and flattens the results into
// report rows. A switch that cannot be reached yields one failure row; a
// reachable switch yields one row per configured interface.
func (h *HealthCheckService) Run(ctx context.Context, inventory entities.Inventory) ([]entities.ReportRow, entities.RunSummary) {
	var summary entities.RunSummary
	rows := make([]entities.ReportRow, 0, len(inventory))

	for _, spec := range inventory {
		result, err := h.inspector.Inspect(ctx, spec)
		if err != nil {
			summary.FailedCount++

			kind, reason := "connect", err
			var failure *entities.ConnectFailure
			if errors.As(err, &failure) {
				kind, reason = failure.Kind(), failure.Reason
			}
			metrics.DevicesCounter.WithLabelValues(kind).Inc()

			h.log.Warn().
				Str("switch", spec.DisplayName()).
				Str("ip", spec.IP).
				Str("kind", kind).
				Msg("switch unreachable, recording failure row")

			rows = append(rows, entities.FailureRow(spec, reason))
			continue
		}

		summary.ReachableCount++
		metrics.DevicesCounter.WithLabelValues(metrics.OutcomeReachable).Inc()
		countCheckErrors(result)

		if len(result.Interfaces) == 0 {
			h.log.Debug().Str("switch", spec.DisplayName()).Msg("no interfaces configured, nothing to report")
		}

		for _, iface := range result.Interfaces {
			if iface.Failed() {
				h.log.Warn().
					Str("switch", spec.DisplayName()).
					Str("interface", iface.Name).
					Err(iface.Err).
					Msg("interface error")
			}
			rows = append(rows, entities.InterfaceRow(spec, result, iface))
		}
	}

	return rows, summary
}

// Execute performs one complete run: inspection, report file and history.
// Only a report that cannot be written fails the run.
func (h *HealthCheckService) Execute(ctx context.Context, inventory entities.Inventory) (entities.RunReport, error) {
	report := entities.RunReport{
		ID:        uuid.NewString(),
		StartedAt: h.now(),
	}

	h.log.Info().Str("run", report.ID).Int("switches", len(inventory)).Msg("starting health check")

	rows, summary := h.Run(ctx, inventory)

	report.FinishedAt = h.now()
	report.Summary = summary
	report.RowCount = len(rows)

	path, err := h.sink.Write(report.StartedAt, rows)
	if err != nil {
		metrics.ReportWriteFailures.Inc()
		return report, fmt.Errorf("failed to write report: %w", err)
	}
	report.ReportPath = path

	metrics.ObserveRun(report.StartedAt, report.FinishedAt, summary.FailedCount)

	if h.history != nil {
		// a run interrupted by a signal is still recorded
		if err := h.history.Save(context.WithoutCancel(ctx), report, rows); err != nil {
			metrics.ReportWriteFailures.Inc()
			h.log.Error().Err(err).Str("run", report.ID).Msg("failed to save run history")
		}
	}

	h.log.Info().
		Str("run", report.ID).
		Int("reachable", summary.ReachableCount).
		Int("failed", summary.FailedCount).
		Str("report", path).
		Msg("health check finished")

	return report, nil
}

func countCheckErrors(result entities.CheckResult) {
	if result.PingErr != nil {
		metrics.CheckErrorCounter.WithLabelValues(metrics.CheckPing).Inc()
	}
	if result.SnmpErr != nil {
		metrics.CheckErrorCounter.WithLabelValues(metrics.CheckSnmp).Inc()
	}
	if result.HostnameErr != nil {
		metrics.CheckErrorCounter.WithLabelValues(metrics.CheckHostname).Inc()
	}
	for _, iface := range result.Interfaces {
		if iface.Failed() {
			metrics.CheckErrorCounter.WithLabelValues(metrics.CheckInterface).Inc()
		}
	}
}
