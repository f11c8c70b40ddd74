package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smart_scheduler"

// Metrics exposes Prometheus collectors for assistant activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	operationDuration *prometheus.HistogramVec
	slotSearches      *prometheus.CounterVec
	slotCache         *prometheus.CounterVec
	predictions       *prometheus.CounterVec
	fallbacks         *prometheus.CounterVec
	reminders         *prometheus.CounterVec
	gatherer          prometheus.Gatherer
}

// New registers the collectors with reg. Collectors already registered are reused.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	m := &Metrics{
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of assistant operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}),
		slotSearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_searches_total",
			Help:      "Slot searches by result reason.",
		}, []string{"reason"}),
		slotCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_cache_lookups_total",
			Help:      "Slot cache lookups by result.",
		}, []string{"result"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_predictions_total",
			Help:      "No-show predictions by risk level and result kind.",
		}, []string{"level", "kind"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_results_total",
			Help:      "Results computed from partial inputs after an upstream failure.",
		}, []string{"component"}),
		reminders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminder_deliveries_total",
			Help:      "Reminder delivery attempts by outcome.",
		}, []string{"outcome"}),
		gatherer: gatherer,
	}

	var err error
	if m.operationDuration, err = register(reg, m.operationDuration); err != nil {
		return nil, err
	}
	for _, c := range []**prometheus.CounterVec{&m.slotSearches, &m.slotCache, &m.predictions, &m.fallbacks, &m.reminders} {
		if *c, err = register(reg, *c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveOperation records an operation's latency
func (m *Metrics) ObserveOperation(operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operationDuration.WithLabelValues(operation, outcome).Observe(d.Seconds())
}

// SlotSearch counts a slot search; an empty reason means slots were found
func (m *Metrics) SlotSearch(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "found"
	}
	m.slotSearches.WithLabelValues(reason).Inc()
}

// SlotCacheLookup counts a cache hit or miss
func (m *Metrics) SlotCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.slotCache.WithLabelValues(result).Inc()
}

// Prediction counts a risk prediction
func (m *Metrics) Prediction(level, kind string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(level, kind).Inc()
}

// Fallback counts a degraded result
func (m *Metrics) Fallback(component string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(component).Inc()
}

// ReminderDelivery counts a delivery attempt outcome: sent, retried, dead_lettered, skipped
func (m *Metrics) ReminderDelivery(outcome string) {
	if m == nil {
		return
	}
	m.reminders.WithLabelValues(outcome).Inc()
}
