// Package metrics records conversion metrics with Prometheus.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Conversion outcomes.
const (
	OutcomeSuccess             = "success"
	OutcomeStyleNotFound       = "style_not_found"
	OutcomeUnsupportedMarkup   = "unsupported_markup"
	OutcomeStructuralViolation = "structural_violation"
	OutcomeInvalidFrontMatter  = "invalid_front_matter"
	OutcomeError               = "error"
)

// StyleUnknown labels conversions whose style was never resolved to a
// registered profile.
const StyleUnknown = "unknown"

// Recorder holds the conversion metrics. A nil Recorder discards everything.
type Recorder struct {
	conversions *prom.CounterVec
	duration    *prom.HistogramVec
	blocks      prom.Histogram
	jobs        *prom.CounterVec
}

// New creates the metrics and registers them with reg. A nil reg gets a
// private registry.
func New(reg prom.Registerer) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		conversions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "md2docx",
			Name:      "conversions_total",
			Help:      "Conversions by style and outcome",
		}, []string{"style", "outcome"}),
		duration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "md2docx",
			Name:      "conversion_duration_seconds",
			Help:      "Duration of markdown to document conversion",
			Buckets:   prom.DefBuckets,
		}, []string{"outcome"}),
		blocks: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "md2docx",
			Name:      "document_blocks",
			Help:      "Headings and paragraphs per converted document",
			Buckets:   prom.ExponentialBuckets(1, 4, 8),
		}),
		jobs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "md2docx",
			Name:      "jobs_total",
			Help:      "Asynchronous conversion jobs by final status",
		}, []string{"status"}),
	}
	reg.MustRegister(r.conversions, r.duration, r.blocks, r.jobs)
	return r
}

// ObserveConversion records one finished conversion.
func (r *Recorder) ObserveConversion(style, outcome string, blocks int, d time.Duration) {
	if r == nil {
		return
	}
	r.conversions.WithLabelValues(style, outcome).Inc()
	r.duration.WithLabelValues(outcome).Observe(d.Seconds())
	if outcome == OutcomeSuccess {
		r.blocks.Observe(float64(blocks))
	}
}

// IncJob counts a job reaching a final status.
func (r *Recorder) IncJob(status string) {
	if r == nil {
		return
	}
	r.jobs.WithLabelValues(status).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prom.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
