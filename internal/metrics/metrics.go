// Package metrics records extraction pipeline metrics in Prometheus.
package metrics

import (
	"fmt"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spends"

// Recorder holds the pipeline collectors. A nil *Recorder records nothing,
// so components can take one optionally.
type Recorder struct {
	reg                  prometheus.Registerer
	gatherer             prometheus.Gatherer
	runs                 *prometheus.CounterVec
	runDuration          prometheus.Histogram
	messagesProcessed    prometheus.Counter
	transactionsDetected *prometheus.CounterVec
	fallbacks            *prometheus.CounterVec
	generationDuration   *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on reg; gatherer is used for export.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Recorder {
	r := &Recorder{
		reg:      reg,
		gatherer: gatherer,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Batch runs by tier and outcome.",
		}, []string{"tier", "outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of batch runs in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		messagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_processed_total",
			Help:      "Messages attempted by the orchestrator.",
		}),
		transactionsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_detected_total",
			Help:      "Transactions extracted and persisted, by tier.",
		}, []string{"tier"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_fallbacks_total",
			Help:      "Messages handed to the rule-based tier after an LLM failure, by reason.",
		}, []string{"reason"}),
		generationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_generation_duration_seconds",
			Help:      "Duration of text generation calls in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		r.runs,
		r.runDuration,
		r.messagesProcessed,
		r.transactionsDetected,
		r.fallbacks,
		r.generationDuration,
	)
	return r
}

// ObserveRun records one finished batch run.
func (r *Recorder) ObserveRun(tier, outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(tier, outcome).Inc()
	r.runDuration.Observe(duration.Seconds())
}

// ObserveChunk records the messages and detections of one completed chunk.
func (r *Recorder) ObserveChunk(tier string, processed, detected int) {
	if r == nil {
		return
	}
	r.messagesProcessed.Add(float64(processed))
	r.transactionsDetected.WithLabelValues(tier).Add(float64(detected))
}

// ObserveFallback counts one LLM-to-rules fallback.
func (r *Recorder) ObserveFallback(reason string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(reason).Inc()
}

// ObserveGeneration records the latency of one generation call.
func (r *Recorder) ObserveGeneration(outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.generationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// Gatherer exposes the registry for export.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.gatherer
}

// RegisterFiber mounts the scrape endpoint at path and returns the request
// instrumentation middleware. Both use the recorder's registry.
func (r *Recorder) RegisterFiber(app *fiber.App, path string) fiber.Handler {
	if r == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	app.Get(path, adaptor.HTTPHandler(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	prom := fiberprometheus.NewWithRegistry(r.reg, namespace, namespace, "http", nil)
	return prom.Middleware
}

// WriteTextfile writes the current metrics in the node-exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.gatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
