package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SeatToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_seat_toggles_total",
			Help: "Seat toggle attempts by result",
		},
		[]string{"result"},
	)

	ProofUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_proof_uploads_total",
			Help: "Payment proof uploads by result",
		},
		[]string{"result"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_submissions_total",
			Help: "Booking submissions by result",
		},
		[]string{"result"},
	)

	BookingAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "booking_total_amount",
			Help:    "Total amount of confirmed bookings",
			Buckets: prometheus.LinearBuckets(1100, 1100, 15),
		},
	)

	ProofCleanups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_proof_cleanups_total",
			Help: "Orphaned payment proof deletions by result",
		},
		[]string{"result"},
	)
)
