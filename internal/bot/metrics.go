package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics структура для метрик Prometheus
type Metrics struct {
	MessagesProcessed    prometheus.Counter
	CallbacksProcessed   prometheus.Counter
	ErrorsTotal          prometheus.Counter
	UpdateProcessingTime prometheus.Histogram
	SessionsStarted      prometheus.Counter
	SessionsEnded        prometheus.Counter
	SessionDuration      prometheus.Histogram
}

// NewMetrics создает новые метрики
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_messages_processed_total",
			Help: "Total number of messages processed",
		}),

		CallbacksProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_callbacks_processed_total",
			Help: "Total number of callback queries processed",
		}),

		ErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_errors_total",
			Help: "Total number of errors",
		}),

		UpdateProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_update_processing_time_seconds",
			Help:    "Time spent processing updates",
			Buckets: prometheus.DefBuckets,
		}),

		SessionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_work_sessions_started_total",
			Help: "Total number of work sessions started",
		}),

		SessionsEnded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "telegram_bot_work_sessions_ended_total",
			Help: "Total number of work sessions ended",
		}),

		SessionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "telegram_bot_work_session_duration_seconds",
			Help:    "Duration of completed work sessions",
			Buckets: []float64{1800, 3600, 14400, 28800, 43200, 86400},
		}),
	}
}
