package server

import "github.com/prometheus/client_golang/prometheus"

var (
	connectedSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_sessions",
		Help: "Number of currently registered sessions",
	})

	connectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_connections_total",
		Help: "Lifetime accepted client connections",
	})

	nameCollisions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_name_collisions_total",
		Help: "Registrations rejected because the display name was taken",
	})

	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_requests_total",
		Help: "Client requests processed by keyword",
	}, []string{"keyword"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chat_request_processing_seconds",
		Help:    "Time to process each request keyword",
		Buckets: prometheus.DefBuckets,
	}, []string{"keyword"})

	framesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_frames_dropped_total",
		Help: "Outbound frames dropped because a recipient queue was full or closing",
	})
)

func init() {
	prometheus.MustRegister(connectedSessions)
	prometheus.MustRegister(connectionsTotal)
	prometheus.MustRegister(nameCollisions)
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(framesDropped)
}
