// Package metrics exposes the server's Prometheus instrumentation.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Wake result labels.
const (
	ResultOK         = "ok"
	ResultNegative   = "negative" // agent said no, or the deadline fired
	ResultNoSession  = "no_session"
	ResultSendFailed = "send_failed"
)

type Metrics struct {
	ConnectedAgents prometheus.Gauge
	WakeRequests    *prometheus.CounterVec
}

var (
	once     sync.Once
	instance *Metrics
)

// Init registers the metrics once and returns the shared instance. A nil
// registry means the default Prometheus registry.
func Init(registry prometheus.Registerer) *Metrics {
	once.Do(func() {
		if registry == nil {
			registry = prometheus.DefaultRegisterer
		}
		instance = &Metrics{
			ConnectedAgents: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
				Name: "wakemeup_connected_agents",
				Help: "Number of agent sessions currently connected",
			}),
			WakeRequests: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
				Name: "wakemeup_wake_requests_total",
				Help: "Wake calls handled, by outcome",
			}, []string{"result"}),
		}
	})
	return instance
}
