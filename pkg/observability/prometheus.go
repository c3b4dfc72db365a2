package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/adforge/pkg/errors"
)

// PrometheusHooks implements every hook interface by recording Prometheus
// counters and histograms.
type PrometheusHooks struct {
	composeTotal    *prometheus.CounterVec
	composeDuration *prometheus.HistogramVec
	judgmentTotal   *prometheus.CounterVec
	exportTotal     *prometheus.CounterVec
	exportDuration  *prometheus.HistogramVec
	exportBytes     *prometheus.HistogramVec
	batchItems      *prometheus.CounterVec
	batchDuration   *prometheus.HistogramVec
	cacheTotal      *prometheus.CounterVec
	httpTotal       *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

var (
	_ PipelineHooks = (*PrometheusHooks)(nil)
	_ CacheHooks    = (*PrometheusHooks)(nil)
	_ HTTPHooks     = (*PrometheusHooks)(nil)
)

// NewPrometheusHooks registers the adforge metrics with reg.
// Passing prometheus.DefaultRegisterer exposes them on promhttp.Handler().
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		composeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "adforge_compositions_total",
			Help: "Total number of layout compositions by style, channel and outcome",
		}, []string{"style", "channel", "status"}),
		composeDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adforge_composition_duration_seconds",
			Help:    "Duration of layout composition including scoring",
			Buckets: prometheus.DefBuckets,
		}, []string{"style"}),
		judgmentTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "adforge_judgments_total",
			Help: "Total number of judgment calls by kind and whether fallback scores were used",
		}, []string{"kind", "fallback"}),
		exportTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "adforge_exports_total",
			Help: "Total number of exports by channel, format and error code",
		}, []string{"channel", "format", "error_code"}),
		exportDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adforge_export_duration_seconds",
			Help:    "Duration of a single export render",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
		exportBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adforge_export_bytes",
			Help:    "Size of successfully rendered exports",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}, []string{"format"}),
		batchItems: f.NewCounterVec(prometheus.CounterOpts{
			Name: "adforge_batch_items_total",
			Help: "Items processed by batch exports by mode and outcome",
		}, []string{"mode", "status"}),
		batchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adforge_batch_duration_seconds",
			Help:    "Duration of batch exports",
			Buckets: prometheus.DefBuckets,
		}, []string{"mode"}),
		cacheTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "adforge_cache_operations_total",
			Help: "Cache operations by key type and result",
		}, []string{"key_type", "result"}),
		httpTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "adforge_outbound_requests_total",
			Help: "Outbound HTTP requests by host and status code",
		}, []string{"host", "code"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "adforge_outbound_request_duration_seconds",
			Help:    "Duration of outbound HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"host"}),
	}
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "succeeded"
}

func (p *PrometheusHooks) OnComposeStart(context.Context, string, string) {}

func (p *PrometheusHooks) OnComposeComplete(_ context.Context, style, channel string, d time.Duration, err error) {
	p.composeTotal.WithLabelValues(style, channel, status(err)).Inc()
	p.composeDuration.WithLabelValues(style).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnJudgment(_ context.Context, kind string, fallback bool, _ time.Duration) {
	p.judgmentTotal.WithLabelValues(kind, strconv.FormatBool(fallback)).Inc()
}

func (p *PrometheusHooks) OnExportStart(context.Context, string, string) {}

func (p *PrometheusHooks) OnExportComplete(_ context.Context, channel, format string, size int, d time.Duration, err error) {
	p.exportTotal.WithLabelValues(channel, format, string(errors.GetCode(err))).Inc()
	p.exportDuration.WithLabelValues(format).Observe(d.Seconds())
	if err == nil {
		p.exportBytes.WithLabelValues(format).Observe(float64(size))
	}
}

func (p *PrometheusHooks) OnBatchComplete(_ context.Context, mode string, succeeded, failed int, d time.Duration) {
	p.batchItems.WithLabelValues(mode, "succeeded").Add(float64(succeeded))
	p.batchItems.WithLabelValues(mode, "failed").Add(float64(failed))
	p.batchDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	p.cacheTotal.WithLabelValues(keyType, "hit").Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheTotal.WithLabelValues(keyType, "miss").Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	p.cacheTotal.WithLabelValues(keyType, "set").Inc()
}

func (p *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (p *PrometheusHooks) OnResponse(_ context.Context, _, host, _ string, code int, d time.Duration) {
	p.httpTotal.WithLabelValues(host, strconv.Itoa(code)).Inc()
	p.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	p.httpTotal.WithLabelValues(host, "error").Inc()
}
