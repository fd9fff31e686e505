package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	documentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topicsplitter",
			Name:      "documents_total",
			Help:      "Documents processed by terminal status (ok, partial, failed)",
		},
		[]string{"status"},
	)

	unitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topicsplitter",
			Name:      "units_total",
			Help:      "Units produced by resolved document format",
		},
		[]string{"format"},
	)

	segmentDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "topicsplitter",
			Name:      "segment_duration_seconds",
			Help:      "Duration of one document's segmentation by resolved format",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"format"},
	)

	ocrRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topicsplitter",
			Name:      "ocr_runs_total",
			Help:      "OCR invocations by result (success, timeout, unavailable, error)",
		},
		[]string{"result"},
	)

	failureReasons = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "topicsplitter",
			Name:      "failure_reasons_total",
			Help:      "Per-document failures by reason",
		},
		[]string{"reason"},
	)
)

// Init registers collectors.
func Init() {
	prometheus.MustRegister(documentsTotal, unitsTotal, segmentDuration, ocrRuns, failureReasons)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveDocument(status, format string, units int, dur time.Duration) {
	documentsTotal.WithLabelValues(status).Inc()
	if units > 0 {
		unitsTotal.WithLabelValues(format).Add(float64(units))
	}
	segmentDuration.WithLabelValues(format).Observe(dur.Seconds())
}

func IncOCR(result string)       { ocrRuns.WithLabelValues(result).Inc() }
func IncFailure(reason string)   { failureReasons.WithLabelValues(reason).Inc() }
