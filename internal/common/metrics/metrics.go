package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Total number of submission attempts by outcome",
		},
		[]string{"outcome"}, // success, partial, validation_failed, failed
	)

	SubmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "intake_submission_duration_seconds",
			Help: "Duration of the full submission pipeline in seconds",
		},
	)

	AuthDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_auth_denials_total",
			Help: "Total number of denied authorization checks",
		},
		[]string{"permission"},
	)

	IDGenerationRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intake_id_generation_retries_total",
			Help: "Total number of identifier collision retries",
		},
	)

	LeadsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_leads_extracted_total",
			Help: "Total number of lead records written by interest level",
		},
		[]string{"interest_level"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_notifications_sent_total",
			Help: "Total number of notification dispatches by status",
		},
		[]string{"status"}, // sent, failed
	)
)
