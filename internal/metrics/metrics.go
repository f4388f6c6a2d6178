package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// Metrics holds the application collectors. A nil *Metrics records nothing.
type Metrics struct {
	Ticks         prometheus.Counter
	TickDuration  prometheus.Histogram
	LoopHalts     prometheus.Counter
	Celebrations  prometheus.Counter
	FactsAttempts prometheus.Counter
	FactsResults  *prometheus.CounterVec
	FeedUpdates   prometheus.Counter
}

// New registers the collectors on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Ticks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      "loop_ticks_total",
			Help:      "Total number of successful recalculations",
		}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.MetricNamespace,
			Name:      "loop_tick_duration_seconds",
			Help:      "Duration of one recalculation including observers",
			Buckets:   prometheus.ExponentialBuckets(config.MetricTickBucket, 4, 8),
		}),
		LoopHalts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      "loop_halts_total",
			Help:      "Total number of loops halted by a computation error",
		}),
		Celebrations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      "milestone_celebrations_total",
			Help:      "Total number of milestone celebrations fired",
		}),
		FactsAttempts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      "facts_attempts_total",
			Help:      "Total number of HTTP attempts made to the facts generator",
		}),
		FactsResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      "facts_results_total",
			Help:      "Facts retrievals by outcome (success, fallback, error)",
		}, []string{config.MetricLabelOut}),
		FeedUpdates: factory.NewCounter(prometheus.CounterOpts{
			Namespace: config.MetricNamespace,
			Name:      "calendar_feed_updates_total",
			Help:      "Total number of calendar feed regenerations",
		}),
	}
}

func (m *Metrics) ObserveTick(start time.Time) {
	if m == nil {
		return
	}
	m.Ticks.Inc()
	m.TickDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementHalt() {
	if m == nil {
		return
	}
	m.LoopHalts.Inc()
}

func (m *Metrics) IncrementCelebration() {
	if m == nil {
		return
	}
	m.Celebrations.Inc()
}

func (m *Metrics) IncrementFactsAttempt() {
	if m == nil {
		return
	}
	m.FactsAttempts.Inc()
}

func (m *Metrics) ObserveFacts(outcome string) {
	if m == nil {
		return
	}
	m.FactsResults.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementFeedUpdate() {
	if m == nil {
		return
	}
	m.FeedUpdates.Inc()
}
