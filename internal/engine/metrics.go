package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Latency: сколько времени занял полный проход
	PassDuration prometheus.Histogram

	// Traffic: обработанные заявки по итоговому статусу
	LoansProcessed *prometheus.CounterVec

	// Errors: сбои обработки по типу шага
	ProcessingErrors *prometheus.CounterVec

	// Contention: заявки, пропущенные из-за занятого слота Ledger
	LedgerSkips prometheus.Counter

	// Assignment: заявки UNDER_REVIEW, оставшиеся без агента
	UnassignedReviews prometheus.Counter

	// Saturation: заполненность очереди уведомлений (backpressure)
	NotifyBufferFill prometheus.Gauge

	NotifyDropped prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern — без регистра метрики живут в локальном, никуда не подключенном
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		PassDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "los_pass_duration_seconds",
			Help:    "Histogram of full processing pass latencies.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),

		LoansProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "los_loans_processed_total",
			Help: "Total number of loans processed, by resulting status.",
		}, []string{"status"}),

		ProcessingErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "los_processing_errors_total",
			Help: "Total number of per-loan processing failures by step.",
		}, []string{"step"}), // шаги: persist, assign

		LedgerSkips: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "los_ledger_skips_total",
			Help: "Loans skipped because another pass already owns them.",
		}),

		UnassignedReviews: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "los_unassigned_reviews_total",
			Help: "Reviews left without an agent after selection.",
		}),

		NotifyBufferFill: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "los_notify_buffer_utilization",
			Help: "Current number of pending notices in the dispatch queue.",
		}),

		NotifyDropped: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "los_notify_dropped_total",
			Help: "Notices dropped due to a full dispatch queue.",
		}),
	}
}
