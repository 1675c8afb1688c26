// Package metrics exposes application metrics collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	exporterFetchBlockTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "block_exporter",
		Name:      "fetch_block_total",
		Help:      "Count of attempts to fetch a block with its receipts.",
	}, []string{"network", "status"})

	exporterFetchBlockDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "block_exporter",
		Name:      "fetch_block_duration_seconds",
		Help:      "Duration of fetching and converting a single block.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	exporterWriteBatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "blockinsight7000",
		Subsystem: "block_exporter",
		Name:      "write_batch_total",
		Help:      "Count of written batches.",
	}, []string{"network", "status"})

	exporterWriteBatchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "block_exporter",
		Name:      "write_batch_duration_seconds",
		Help:      "Duration of writing a batch of blocks.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "status"})

	exporterWriteBatchSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "blockinsight7000",
		Subsystem: "block_exporter",
		Name:      "write_batch_size",
		Help:      "Number of blocks written per batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1..2048
	}, []string{"network"})

	exporterHeadHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blockinsight7000",
		Subsystem: "block_exporter",
		Name:      "head_height",
		Help:      "Latest block height reported by the upstream node.",
	}, []string{"network"})

	exporterExportedHeight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blockinsight7000",
		Subsystem: "block_exporter",
		Name:      "exported_height",
		Help:      "Highest contiguous block height written.",
	}, []string{"network"})
)

// Exporter tracks metrics for the block exporter pipeline.
type Exporter struct {
	network string
}

// NewExporter constructs an Exporter with sane defaults.
func NewExporter(network string) *Exporter {
	if network == "" {
		network = "unknown"
	}
	return &Exporter{network: network}
}

// ObserveFetchBlock records a single block fetch outcome and duration.
func (m Exporter) ObserveFetchBlock(err error, _ uint64, started time.Time) {
	status := statusOf(err)
	exporterFetchBlockTotal.WithLabelValues(m.network, status).Inc()
	exporterFetchBlockDuration.WithLabelValues(m.network, status).Observe(time.Since(started).Seconds())
}

// ObserveWriteBatch records writing of a batch of blocks.
func (m Exporter) ObserveWriteBatch(err error, blocks int, started time.Time) {
	status := statusOf(err)
	exporterWriteBatchTotal.WithLabelValues(m.network, status).Inc()
	exporterWriteBatchDuration.WithLabelValues(m.network, status).Observe(time.Since(started).Seconds())
	exporterWriteBatchSize.WithLabelValues(m.network).Observe(float64(blocks))
}

// SetHead records the latest upstream height.
func (m Exporter) SetHead(height uint64) {
	exporterHeadHeight.WithLabelValues(m.network).Set(float64(height))
}

// SetExported records the highest contiguous exported height.
func (m Exporter) SetExported(height uint64) {
	exporterExportedHeight.WithLabelValues(m.network).Set(float64(height))
}
