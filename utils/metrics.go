package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creditcoach_http_requests_total",
		Help: "Total number of HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "creditcoach_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	CartMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creditcoach_cart_mutations_total",
		Help: "Cart mutations by operation",
	}, []string{"op"})

	CartPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "creditcoach_cart_persist_failures_total",
		Help: "Cart mirror writes that failed and were ignored",
	})

	SlotFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creditcoach_slot_fetches_total",
		Help: "Availability fetches by outcome (applied, empty, failed, stale)",
	}, []string{"outcome"})

	BookingSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "creditcoach_booking_submissions_total",
		Help: "Booking submissions by outcome",
	}, []string{"outcome"})

	ActiveSessions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "creditcoach_active_sessions",
		Help: "Session-scoped stores currently held in memory",
	}, []string{"kind"})
)
