package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	PaymentsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collegebuddy_payments_completed_total",
			Help: "Verified course payments that activated an enrollment",
		},
	)

	PaymentsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegebuddy_payments_rejected_total",
			Help: "Payment callbacks refused, by reason",
		},
		[]string{"reason"},
	)

	EarningsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegebuddy_earnings_emitted_total",
			Help: "Earning ledger entries written, by kind",
		},
		[]string{"kind"},
	)

	ReferralsLinked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collegebuddy_referrals_linked_total",
			Help: "Referrals created from a resolved code",
		},
	)

	PayoutTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegebuddy_payout_transitions_total",
			Help: "Payout requests and admin decisions, by resulting status",
		},
		[]string{"status"},
	)

	CronRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collegebuddy_cron_runs_total",
			Help: "Background job executions, by job and outcome",
		},
		[]string{"job", "status"},
	)
)
