package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	serviceCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "eth_service",
		Name:      "calls_total",
		Help:      "Count of served JSON-RPC calls.",
	}, []string{"method", "network", "status"})
	serviceCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "eth_service",
		Name:      "call_duration_seconds",
		Help:      "Duration of served JSON-RPC calls.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "network", "status"})
)

// Service tracks metrics for the JSON-RPC methods the proxy serves.
type Service struct {
	network string
}

func NewService(network string) *Service {
	if network == "" {
		network = "unknown"
	}
	return &Service{network: network}
}

// ObserveCall records a served call.
func (m Service) ObserveCall(method string, err error, started time.Time) {
	status := statusOf(err)
	serviceCallsTotal.WithLabelValues(method, m.network, status).Inc()
	serviceCallDuration.WithLabelValues(method, m.network, status).Observe(time.Since(started).Seconds())
}
