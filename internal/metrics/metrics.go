package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_upstream_requests_total",
		Help: "Total number of requests forwarded to the backend API.",
	}, []string{"resource", "method", "status"})

	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_upstream_request_duration_seconds",
		Help:    "Latency of requests forwarded to the backend API.",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource", "method"})

	ContactFormTickets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_contact_form_tickets_total",
		Help: "Contact form submissions by outcome.",
	}, []string{"outcome"})

	Notifications = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gateway_notifications",
		Help: "Current number of notifications held in memory.",
	})
)

// ObserveUpstream - status 0은 응답을 받지 못한 경우 (네트워크 실패)
func ObserveUpstream(resource, method string, status int, seconds float64) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequests.WithLabelValues(resource, method, label).Inc()
	UpstreamLatency.WithLabelValues(resource, method).Observe(seconds)
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
