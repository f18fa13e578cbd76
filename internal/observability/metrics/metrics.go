package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "dogschool_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	sessionCommandTotal   *prometheus.CounterVec
	sessionCommandLatency *prometheus.HistogramVec
	programFinishedTotal  prometheus.Counter

	settlementPreviewTotal   *prometheus.CounterVec
	settlementPreviewLatency *prometheus.HistogramVec
	settlementRecordTotal    *prometheus.CounterVec
	settlementRecordLatency  *prometheus.HistogramVec
	settlementExportTotal    *prometheus.CounterVec
	settlementExportLatency  *prometheus.HistogramVec
	settlementDriftTotal     prometheus.Counter
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		sessionCommandTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "session_commands_total",
				Help: "Total session ledger commands by action and result",
			},
			[]string{"action", "result"},
		)
		sessionCommandLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "session_command_latency_seconds",
				Help:    "Session ledger command latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action", "result"},
		)
		programFinishedTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "programs_finished_total",
				Help: "Total clients that completed their last session",
			},
		)

		settlementPreviewTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlement_preview_total",
				Help: "Total settlement previews by result",
			},
			[]string{"result"},
		)
		settlementPreviewLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "settlement_preview_latency_seconds",
				Help:    "Settlement preview latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		settlementRecordTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlement_record_total",
				Help: "Total settlement record and pay operations by action and result",
			},
			[]string{"action", "result"},
		)
		settlementRecordLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "settlement_record_latency_seconds",
				Help:    "Settlement record and pay latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action", "result"},
		)
		settlementExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlement_export_total",
				Help: "Total settlement export operations by format and result",
			},
			[]string{"format", "result"},
		)
		settlementExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "settlement_export_latency_seconds",
				Help:    "Settlement export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)
		settlementDriftTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "settlement_drift_total",
				Help: "Previews whose live totals differ from the recorded snapshot",
			},
		)

		prometheus.MustRegister(
			sessionCommandTotal,
			sessionCommandLatency,
			programFinishedTotal,
			settlementPreviewTotal,
			settlementPreviewLatency,
			settlementRecordTotal,
			settlementRecordLatency,
			settlementExportTotal,
			settlementExportLatency,
			settlementDriftTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveSessionCommand records a schedule or complete command.
func ObserveSessionCommand(action, result string, duration time.Duration) {
	if action == "" {
		action = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if sessionCommandTotal != nil {
		sessionCommandTotal.WithLabelValues(action, result).Inc()
	}
	if sessionCommandLatency != nil {
		sessionCommandLatency.WithLabelValues(action, result).Observe(duration.Seconds())
	}
}

// IncProgramFinished increments the finished program counter.
func IncProgramFinished() {
	if programFinishedTotal != nil {
		programFinishedTotal.Inc()
	}
}

// ObserveSettlementPreview records preview latency and result.
func ObserveSettlementPreview(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if settlementPreviewTotal != nil {
		settlementPreviewTotal.WithLabelValues(result).Inc()
	}
	if settlementPreviewLatency != nil {
		settlementPreviewLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveSettlementRecord records snapshot writes (record, paid).
func ObserveSettlementRecord(action, result string, duration time.Duration) {
	if action == "" {
		action = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if settlementRecordTotal != nil {
		settlementRecordTotal.WithLabelValues(action, result).Inc()
	}
	if settlementRecordLatency != nil {
		settlementRecordLatency.WithLabelValues(action, result).Observe(duration.Seconds())
	}
}

// ObserveSettlementExport records export latency and result.
func ObserveSettlementExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if settlementExportTotal != nil {
		settlementExportTotal.WithLabelValues(format, result).Inc()
	}
	if settlementExportLatency != nil {
		settlementExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncSettlementDrift counts previews where the snapshot no longer matches.
func IncSettlementDrift() {
	if settlementDriftTotal != nil {
		settlementDriftTotal.Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
