// Package metrics holds the prometheus counters shared by the resolver, the
// thumbnail snapshotter, and the preview server.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reference kinds.
const (
	KindImage      = "img"
	KindBackground = "background"
)

// Thumbnail results.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultTimeout = "timeout"
	ResultSkipped = "skipped"
)

// Metrics is a dedicated registry plus the counters registered on it.
type Metrics struct {
	Registry *prometheus.Registry

	ReferencesRewritten *prometheus.CounterVec
	Thumbnails          *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
}

// New registers every counter on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ReferencesRewritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitesmith_references_rewritten_total",
				Help: "Asset references replaced with inline content.",
			},
			[]string{"kind"},
		),
		Thumbnails: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitesmith_thumbnails_total",
				Help: "Thumbnail attempts by result.",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitesmith_http_requests_total",
				Help: "Preview server requests processed.",
			},
			[]string{"method", "route", "status"},
		),
	}
	for _, c := range []prometheus.Collector{m.ReferencesRewritten, m.Thumbnails, m.HTTPRequests} {
		if err := m.Registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AddReferences counts rewritten references. Safe on a nil receiver.
func (m *Metrics) AddReferences(images, backgrounds int) {
	if m == nil {
		return
	}
	if images > 0 {
		m.ReferencesRewritten.WithLabelValues(KindImage).Add(float64(images))
	}
	if backgrounds > 0 {
		m.ReferencesRewritten.WithLabelValues(KindBackground).Add(float64(backgrounds))
	}
}

// Thumbnail counts one thumbnail attempt. Safe on a nil receiver.
func (m *Metrics) Thumbnail(result string) {
	if m == nil {
		return
	}
	m.Thumbnails.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware counts requests by chi route pattern. /metrics is not counted.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
	})
}
