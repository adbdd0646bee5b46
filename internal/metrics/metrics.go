package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	governedWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comunavision_governed_writes_total",
		Help: "Total number of committed governed mutations, by entity and action",
	}, []string{"entity", "action"})
	validationRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comunavision_validation_rejected_total",
		Help: "Total number of payloads rejected by the dynamic field validator",
	})
	integrityConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comunavision_integrity_conflicts_total",
		Help: "Total number of writes rolled back on a storage constraint violation",
	})
	ocrScansTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comunavision_ocr_scans_total",
		Help: "Total number of OCR scan requests processed",
	})
	ocrNormalizeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comunavision_ocr_normalize_failures_total",
		Help: "Total number of LLM normalization attempts that failed after retry",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		governedWritesTotal,
		validationRejectedTotal,
		integrityConflictsTotal,
		ocrScansTotal,
		ocrNormalizeFailures,
	)
}

// IncGovernedWrite increments the committed-mutation counter.
func IncGovernedWrite(entity, action string) {
	governedWritesTotal.WithLabelValues(entity, action).Inc()
}

// IncValidationRejected increments the validator rejection counter.
func IncValidationRejected() { validationRejectedTotal.Inc() }

// IncIntegrityConflict increments the rolled-back write counter.
func IncIntegrityConflict() { integrityConflictsTotal.Inc() }

// IncOCRScan increments the processed scan counter.
func IncOCRScan() { ocrScansTotal.Inc() }

// IncOCRNormalizeFailure increments the failed-normalization counter.
func IncOCRNormalizeFailure() { ocrNormalizeFailures.Inc() }
