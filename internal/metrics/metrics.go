// Package metrics exposes Prometheus metrics for the retrieval pipeline.
//
// Recorder implements driven.Observer so services report cache hits,
// index builds, embedding calls and query outcomes without depending on
// Prometheus directly.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/docuchat/internal/core/ports/driven"
)

const namespace = "docuchat"

// Ensure Recorder implements the interface.
var _ driven.Observer = (*Recorder)(nil)

// Recorder records pipeline metrics into its own registry.
type Recorder struct {
	registry *prometheus.Registry

	cacheHits      prometheus.Counter
	indexBuilds    prometheus.Counter
	indexChunks    prometheus.Histogram
	chunksEmbedded prometheus.Counter
	buildSeconds   prometheus.Histogram
	embedCalls     *prometheus.CounterVec
	embedTexts     prometheus.Counter
	queries        *prometheus.CounterVec
	querySeconds   prometheus.Histogram
}

// NewRecorder creates a recorder with process and Go runtime collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "cache_hits_total",
			Help:      "Index loads served from the in-memory cache.",
		}),
		indexBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "builds_total",
			Help:      "Document indices built from persisted chunks.",
		}),
		indexChunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "chunks",
			Help:      "Chunks per built index.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		chunksEmbedded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "chunks_embedded_total",
			Help:      "Chunks embedded while building indices.",
		}),
		buildSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "index",
			Name:      "build_duration_seconds",
			Help:      "Time spent building an index, including embedding.",
			Buckets:   prometheus.DefBuckets,
		}),
		embedCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "calls_total",
			Help:      "Embedding service calls by result.",
		}, []string{"result"}),
		embedTexts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "texts_total",
			Help:      "Texts sent to the embedding service.",
		}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "total",
			Help:      "Questions answered by outcome.",
		}, []string{"outcome"}),
		querySeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Time to answer a question.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.cacheHits,
		r.indexBuilds,
		r.indexChunks,
		r.chunksEmbedded,
		r.buildSeconds,
		r.embedCalls,
		r.embedTexts,
		r.queries,
		r.querySeconds,
	)
	return r
}

// IndexCacheHit counts an index served from cache.
func (r *Recorder) IndexCacheHit() {
	r.cacheHits.Inc()
}

// IndexBuilt records a completed index build.
func (r *Recorder) IndexBuilt(chunks, embedded int, took time.Duration) {
	r.indexBuilds.Inc()
	r.indexChunks.Observe(float64(chunks))
	r.chunksEmbedded.Add(float64(embedded))
	r.buildSeconds.Observe(took.Seconds())
}

// EmbeddingCall records one embedding request.
func (r *Recorder) EmbeddingCall(texts int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.embedCalls.WithLabelValues(result).Inc()
	r.embedTexts.Add(float64(texts))
}

// QueryAnswered records the outcome of a question.
func (r *Recorder) QueryAnswered(outcome string, took time.Duration) {
	r.queries.WithLabelValues(outcome).Inc()
	r.querySeconds.Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
