package metrics

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-evmrpc/internal/evm/convert"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "converter",
		Name:      "conversions_total",
		Help:      "Count of wire conversions by outcome and error kind.",
	}, []string{"operation", "network", "variant", "status", "kind"})
	conversionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "converter",
		Name:      "conversion_duration_seconds",
		Help:      "Duration of wire conversions.",
		Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
	}, []string{"operation", "network", "variant", "status"})
	invariantViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "converter",
		Name:      "invariant_violations_total",
		Help:      "Count of conversions rejected because upstream data was inconsistent.",
	}, []string{"network", "variant", "kind"})
)

// Converter tracks metrics for canonical-to-wire conversions.
type Converter struct {
	network string
	variant string
}

// NewConverter constructs a collector for one network and variant.
func NewConverter(network string, variant convert.Variant) *Converter {
	if network == "" {
		network = "unknown"
	}
	return &Converter{network: network, variant: variant.String()}
}

// Observe records a conversion outcome and duration.
func (m Converter) Observe(operation string, err error, started time.Time) {
	status := statusOf(err)
	kind := string(convert.KindOf(err))
	if err != nil && kind == "" {
		kind = "other"
	}
	conversionsTotal.WithLabelValues(operation, m.network, m.variant, status, kind).Inc()
	conversionDuration.WithLabelValues(operation, m.network, m.variant, status).Observe(time.Since(started).Seconds())
	if convert.IsInvariant(err) {
		invariantViolationsTotal.WithLabelValues(m.network, m.variant, kind).Inc()
	}
}
