package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hookpress"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	documents      *prom.GaugeVec
	invalidFiles   *prom.CounterVec
	lookups        *prom.CounterVec
	renderDuration *prom.HistogramVec
	pageDuration   *prom.HistogramVec
	buildDuration  *prom.HistogramVec
	reloads        prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		documents: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "documents",
			Help:      "Aggregated content documents per route",
		}, []string{"route"}),
		invalidFiles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "invalid_files_total",
			Help:      "Content files skipped or rejected during aggregation",
		}, []string{"route"}),
		lookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "document_lookups_total",
			Help:      "Per-request document lookups by result",
		}, []string{"result"}),
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "markdown_render_duration_seconds",
			Help:      "Markdown to HTML conversion time",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		pageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_duration_seconds",
			Help:      "Time to produce one page",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "result"}),
		buildDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total static build duration",
			Buckets:   prom.DefBuckets,
		}, []string{"outcome"}),
		reloads: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Live reloads triggered by content changes",
		}),
	}
	reg.MustRegister(pr.documents, pr.invalidFiles, pr.lookups, pr.renderDuration, pr.pageDuration, pr.buildDuration, pr.reloads)
	return pr
}

func (p *PrometheusRecorder) SetDocuments(route string, n int) {
	p.documents.WithLabelValues(route).Set(float64(n))
}

func (p *PrometheusRecorder) IncInvalidFile(route string) {
	p.invalidFiles.WithLabelValues(route).Inc()
}

func (p *PrometheusRecorder) IncLookup(result string) {
	p.lookups.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) ObserveRender(d time.Duration, success bool) {
	p.renderDuration.WithLabelValues(resultLabel(success)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePage(route string, d time.Duration, success bool) {
	p.pageDuration.WithLabelValues(route, resultLabel(success)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuild(d time.Duration, outcome string) {
	p.buildDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncReload() {
	p.reloads.Inc()
}

// HTTPHandler serves the metrics gathered by reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
