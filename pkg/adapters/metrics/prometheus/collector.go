package prometheus

import (
	"strconv"

	"github.com/aescanero/chaincfg/internal/toolchain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements ports.MetricsCollector using Prometheus
type Collector struct {
	configLoads        prometheus.Counter
	networksConfigured prometheus.Gauge
	secretPresent      *prometheus.GaugeVec
	optimizerRuns      prometheus.Gauge
	snapshotRefresh    *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
}

// NewCollector creates a collector registered with reg.
// Pass prometheus.DefaultRegisterer to expose it on the default /metrics handler.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		configLoads: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "chaincfg_config_loads_total",
				Help: "Total number of toolchain configuration loads",
			},
		),
		networksConfigured: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "chaincfg_networks_configured",
				Help: "Number of networks in the loaded configuration",
			},
		),
		secretPresent: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chaincfg_secret_present",
				Help: "Whether a secret was supplied at load time (1) or is absent (0)",
			},
			[]string{"secret"},
		),
		optimizerRuns: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "chaincfg_optimizer_runs",
				Help: "Configured compiler optimizer runs",
			},
		),
		snapshotRefresh: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaincfg_snapshot_refresh_total",
				Help: "Total number of snapshot TTL refreshes",
			},
			[]string{"status"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chaincfg_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"method", "path", "status"},
		),
	}
}

// RecordConfigLoaded records the shape of a freshly loaded configuration
func (c *Collector) RecordConfigLoaded(cfg *toolchain.ToolchainConfig) {
	c.configLoads.Inc()
	c.networksConfigured.Set(float64(len(cfg.Networks)))
	c.optimizerRuns.Set(float64(cfg.Compiler.Optimizer.Runs))

	signing := false
	for _, n := range cfg.Networks {
		if n.SigningKey.Present() {
			signing = true
			break
		}
	}
	c.secretPresent.WithLabelValues("PRIVATE_KEY").Set(boolToFloat(signing))
	c.secretPresent.WithLabelValues("POLYGONSCAN_API_KEY").Set(boolToFloat(cfg.Verification.APIKey.Present()))
}

// RecordSnapshotRefresh records a keepalive refresh attempt
func (c *Collector) RecordSnapshotRefresh(status string) {
	c.snapshotRefresh.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records a served HTTP request
func (c *Collector) RecordHTTPRequest(method, path string, status int) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
