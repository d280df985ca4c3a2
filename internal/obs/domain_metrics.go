package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// GatewayRequestsTotal counts outbound gateway calls by endpoint and outcome.
	GatewayRequestsTotal *prometheus.CounterVec
	// GatewayRequestDuration records outbound gateway call latency in milliseconds.
	GatewayRequestDuration *prometheus.HistogramVec
	// WebhookNotificationsTotal counts processed webhook notification items by result.
	WebhookNotificationsTotal *prometheus.CounterVec
	// WebhookBatchesTotal counts webhook batches by verdict.
	WebhookBatchesTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		GatewayRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_requests_total",
			Help:      "Count of outbound payment gateway calls by endpoint and outcome.",
		}, []string{"endpoint", "outcome"})
		GatewayRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_request_duration_ms",
			Help:      "Latency of outbound payment gateway calls in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"endpoint"})
		WebhookNotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_notifications_total",
			Help:      "Count of processed webhook notification items by verification result.",
		}, []string{"result"})
		WebhookBatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_batches_total",
			Help:      "Count of webhook notification batches by verdict.",
		}, []string{"verdict"})

		GatewayRequestsTotal = registerCounterVec(reg, GatewayRequestsTotal)
		GatewayRequestDuration = registerHistogramVec(reg, GatewayRequestDuration)
		WebhookNotificationsTotal = registerCounterVec(reg, WebhookNotificationsTotal)
		WebhookBatchesTotal = registerCounterVec(reg, WebhookBatchesTotal)
	})
}
