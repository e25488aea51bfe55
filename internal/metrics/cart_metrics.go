package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics содержит метрики операций с корзиной.
type CartMetrics struct {
	// Счётчики операций по типам
	cartOps *prometheus.CounterVec

	// Расхождения, замеченные при сверке с каталогом
	priceDrift       prometheus.Counter
	unavailableItems prometheus.Counter

	// Конфликты optimistic locking
	versionConflicts prometheus.Counter

	// Гистограммы времени выполнения
	reconcileDuration prometheus.Histogram
	analyticsDuration prometheus.Histogram

	// Счётчик событий outbox
	outboxEvents prometheus.Counter

	// Gauge для активных корзин
	activeCarts prometheus.Gauge
}

// NewCartMetrics создаёт новый экземпляр метрик корзины.
func NewCartMetrics() *CartMetrics {
	return newCartMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newCartMetricsWithRegisterer(registerer prometheus.Registerer) *CartMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CartMetrics{
		cartOps: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "cartsvc_cart_operations_total",
			Help: "Total number of cart mutations by operation",
		}, []string{"operation"}),
		priceDrift: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cartsvc_price_drift_total",
			Help: "Total number of cart items whose stored price diverged from the catalog",
		}),
		unavailableItems: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cartsvc_unavailable_items_total",
			Help: "Total number of cart items whose product disappeared from the catalog",
		}),
		versionConflicts: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cartsvc_version_conflicts_total",
			Help: "Total number of optimistic locking conflicts on cart writes",
		}),
		reconcileDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "cartsvc_reconcile_duration_seconds",
			Help:    "Duration of cart reconciliation against the catalog in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		analyticsDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "cartsvc_analytics_duration_seconds",
			Help:    "Duration of the analytics aggregation pass in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		outboxEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "cartsvc_outbox_events_total",
			Help: "Total number of outbox events published",
		}),
		activeCarts: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "cartsvc_active_carts",
			Help: "Number of carts currently present in the store",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordCartOperation увеличивает счётчик операций с корзиной.
func (m *CartMetrics) RecordCartOperation(operation string) {
	m.cartOps.WithLabelValues(operation).Inc()
}

// RecordPriceDrift увеличивает счётчик позиций с изменившейся ценой.
func (m *CartMetrics) RecordPriceDrift() {
	m.priceDrift.Inc()
}

// RecordUnavailableItem увеличивает счётчик позиций без товара в каталоге.
func (m *CartMetrics) RecordUnavailableItem() {
	m.unavailableItems.Inc()
}

// RecordVersionConflict увеличивает счётчик конфликтов версий.
func (m *CartMetrics) RecordVersionConflict() {
	m.versionConflicts.Inc()
}

// RecordReconcileDuration записывает время сверки корзины с каталогом.
func (m *CartMetrics) RecordReconcileDuration(duration time.Duration) {
	m.reconcileDuration.Observe(duration.Seconds())
}

// RecordAnalyticsDuration записывает время агрегирующего прохода.
func (m *CartMetrics) RecordAnalyticsDuration(duration time.Duration) {
	m.analyticsDuration.Observe(duration.Seconds())
}

// RecordOutboxEvent увеличивает счётчик событий outbox.
func (m *CartMetrics) RecordOutboxEvent() {
	m.outboxEvents.Inc()
}

// SetActiveCarts выставляет текущее количество корзин.
func (m *CartMetrics) SetActiveCarts(count int) {
	m.activeCarts.Set(float64(count))
}
