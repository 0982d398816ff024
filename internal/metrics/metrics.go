// Package metrics holds the Prometheus collectors shared by the ingestion
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "corpora"

type Metrics struct {
	FetchAttempts   *prometheus.CounterVec
	Extractions     *prometheus.CounterVec
	ArticlesCreated *prometheus.CounterVec
	FeedErrors      prometheus.Counter
	DumpPages       prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. reg must also be a Gatherer for
// Handler to serve anything.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "HTTP fetch attempts by result (ok, transient, terminal).",
		}, []string{"result"}),
		Extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Content extractions by outcome.",
		}, []string{"outcome"}),
		ArticlesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_created_total",
			Help:      "Articles persisted, by entry point (collect, sample).",
		}, []string{"entry"}),
		FeedErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_errors_total",
			Help:      "Feeds that failed to fetch or parse.",
		}),
		DumpPages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dump_pages_total",
			Help:      "Page records read from dumps.",
		}),
	}

	reg.MustRegister(m.FetchAttempts, m.Extractions, m.ArticlesCreated, m.FeedErrors, m.DumpPages)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// NewNop returns metrics bound to a private registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
