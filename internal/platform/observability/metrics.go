package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskstats_requests_total",
		Help: "The total number of remote API requests",
	}, []string{"service", "method", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taskstats_request_duration_seconds",
		Help:    "Duration of remote API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"service", "method"})

	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskstats_search_pages_total",
		Help: "The total number of search result pages fetched",
	})

	ItemsEnumerated = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "taskstats_items_enumerated",
		Help: "Number of watched items found in the last run",
	})

	SubscriptionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskstats_subscription_events_total",
		Help: "Subscription events extracted, by whether they fell in the target month",
	}, []string{"in_month"})
)

// Request status labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// WriteTextfile writes the default registry in the node exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}

	return nil
}
