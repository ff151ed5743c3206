package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclub_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitclub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	AdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclub_admissions_total",
			Help: "Booking admission decisions by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	AdmissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitclub_admission_duration_seconds",
			Help:    "Time spent deciding a booking admission, lock wait included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	LockWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fitclub_lock_wait_seconds",
			Help:    "Time spent waiting for resource locks",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclub_events_published_total",
			Help: "Booking events handed to the broker",
		},
		[]string{"type", "status"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclub_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fitclub_email_queue_length",
			Help: "Current length of email queue",
		},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fitclub_logins_total",
			Help: "Login attempts by role and result",
		},
		[]string{"role", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordAdmission counts one admission decision. outcome is "accepted" or a
// rejection code.
func RecordAdmission(operation, outcome string, duration float64) {
	AdmissionsTotal.WithLabelValues(operation, outcome).Inc()
	AdmissionDuration.WithLabelValues(operation).Observe(duration)
}

func RecordLockWait(operation string, duration float64) {
	LockWaitDuration.WithLabelValues(operation).Observe(duration)
}

func RecordEvent(eventType, status string) {
	EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}

func RecordLogin(role, status string) {
	LoginsTotal.WithLabelValues(role, status).Inc()
}
