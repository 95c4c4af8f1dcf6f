// Package metrics holds the service-specific prometheus collectors. Request
// counts and latencies come from the echoprometheus middleware; only the
// webhook outcome tally lives here.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var webhookResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "webhook_requests_total",
	Help: "Total number of webhook processing outcomes",
}, []string{"result"})

// RecordWebhookResult counts one webhook outcome: created, duplicate,
// invalid_signature, validation_error or insert_error.
func RecordWebhookResult(result string) {
	webhookResults.WithLabelValues(result).Inc()
}
