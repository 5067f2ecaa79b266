package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gitingest"

// PrometheusRecorder implements Recorder using Prometheus metrics
type PrometheusRecorder struct {
	ingestRequests *prom.CounterVec
	ingestDuration prom.Histogram
	sweepRemoved   prom.Counter
	sweepErrors    prom.Counter
	rateLimited    prom.Counter
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		ingestRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_requests_total",
			Help:      "Ingestion requests by outcome",
		}, []string{"status"}),
		ingestDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Duration of ingestion requests",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		sweepRemoved: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_removed_total",
			Help:      "Stale clone directories removed",
		}),
		sweepErrors: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_errors_total",
			Help:      "Failures while removing stale clone directories",
		}),
		rateLimited: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
	reg.MustRegister(pr.ingestRequests, pr.ingestDuration, pr.sweepRemoved, pr.sweepErrors, pr.rateLimited)
	return pr
}

func (p *PrometheusRecorder) ObserveIngest(result ResultLabel, d time.Duration) {
	if p == nil {
		return
	}
	p.ingestRequests.WithLabelValues(string(result)).Inc()
	p.ingestDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddSweepRemoved(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.sweepRemoved.Add(float64(n))
}

func (p *PrometheusRecorder) IncSweepError() {
	if p == nil {
		return
	}
	p.sweepErrors.Inc()
}

func (p *PrometheusRecorder) IncRateLimited() {
	if p == nil {
		return
	}
	p.rateLimited.Inc()
}

// HTTPHandler returns an http.Handler that serves the metrics of reg
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
