package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreCallDuration tracks the latency of data-store calls
	StoreCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "loyalty_store_call_duration_seconds",
			Help: "Duration of data-store calls in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
			},
		},
		[]string{"op", "status"}, // status: success or failed
	)

	// FormSubmissions counts campaign form submits by mode and outcome
	FormSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_campaign_form_submissions_total",
			Help: "Campaign form submissions by mode and result",
		},
		[]string{"mode", "result"},
	)

	// ExcludedRecords counts stored records dropped because they could not be interpreted
	ExcludedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_excluded_records_total",
			Help: "Stored records excluded from results due to integrity errors",
		},
		[]string{"kind"},
	)
)

// RecordStoreCall records the duration of a data-store call
func RecordStoreCall(op, status string, duration float64) {
	StoreCallDuration.WithLabelValues(op, status).Observe(duration)
}

// RecordFormSubmission counts one campaign form submit
func RecordFormSubmission(mode, result string) {
	FormSubmissions.WithLabelValues(mode, result).Inc()
}

// RecordExcluded counts one excluded record of the given kind
func RecordExcluded(kind string) {
	ExcludedRecords.WithLabelValues(kind).Inc()
}
