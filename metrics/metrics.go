package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationsTotal counts reservation attempts by result: success, conflict, error.
	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "booking",
			Name:      "reservations_total",
			Help:      "The total number of seat reservation attempts",
		},
		[]string{"result"},
	)

	// PaymentCallbacksTotal counts gateway callbacks by gateway, channel (return, ipn) and outcome.
	PaymentCallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment",
			Name:      "callbacks_total",
			Help:      "The total number of payment gateway callbacks",
		},
		[]string{"gateway", "channel", "outcome"},
	)

	PaymentsReconciledTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment",
			Name:      "reconciled_total",
			Help:      "The total number of payments moved to a terminal status",
		},
		[]string{"status"},
	)

	PointsAwardedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "loyalty",
			Name:      "points_awarded_total",
			Help:      "The total number of loyalty points awarded",
		},
	)

	ExpiredPaymentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "payment",
			Name:      "expired_total",
			Help:      "The total number of pending payments expired by the scheduler",
		},
	)
)
