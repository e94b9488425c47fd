package metrics

import (
	"net/http"
	"strconv"
	"time"

	"fleetxp/game/attribution"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	engagementsTotal  *prometheus.CounterVec
	combatXPTotal     prometheus.Counter
	nonCombatXPTotal  prometheus.Counter
	contributors      prometheus.Histogram
	sessions          prometheus.Gauge
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// New registers every collector on its own registry so several instances can live in one process.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		engagementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetxp_engagements_total",
			Help: "Engagements processed, by whether any XP was awarded.",
		}, []string{"result"}),
		combatXPTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleetxp_combat_xp_total",
			Help: "Combat XP paid to contributing ships.",
		}),
		nonCombatXPTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleetxp_noncombat_xp_total",
			Help: "Flat XP paid to civilian ships.",
		}),
		contributors: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetxp_contributors",
			Help:    "Ships credited with combat XP per engagement.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 40},
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleetxp_sessions",
			Help: "Open session connections.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.engagementsTotal,
		m.combatXPTotal,
		m.nonCombatXPTotal,
		m.contributors,
		m.sessions,
		m.httpRequestsTotal,
		m.httpDuration,
	)
	return m
}

// ObserveAward records one engagement. A nil award counts as skipped.
func (m *Metrics) ObserveAward(award *attribution.Award) {
	if m == nil {
		return
	}
	if award == nil {
		m.engagementsTotal.WithLabelValues("skipped").Inc()
		return
	}
	m.engagementsTotal.WithLabelValues("awarded").Inc()
	m.combatXPTotal.Add(award.TotalCombatXP)
	m.nonCombatXPTotal.Add(award.NonCombatXP * float64(len(award.Civilians)))
	m.contributors.Observe(float64(len(award.CombatXP)))
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
