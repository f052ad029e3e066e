package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements Recorder with Prometheus collectors.
type PrometheusRecorder struct {
	eventsTotal      *prometheus.CounterVec
	turnsTotal       *prometheus.CounterVec
	aiDuration       *prometheus.HistogramVec
	transitionsTotal *prometheus.CounterVec
	backlogRejected  prometheus.Counter
}

// NewPrometheusRecorder registers the collectors with reg. A nil reg uses the
// default registerer.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		eventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "characterai_events_total",
				Help: "Inbound chat events by command",
			},
			[]string{"command"},
		),
		turnsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "characterai_turns_total",
				Help: "Chat turns by outcome",
			},
			[]string{"outcome"},
		),
		aiDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "characterai_ai_request_duration_seconds",
				Help:    "Duration of AI boundary calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider", "operation", "outcome"},
		),
		transitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "characterai_creation_transitions_total",
				Help: "Character creation flow transitions by target state",
			},
			[]string{"state"},
		),
		backlogRejected: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "characterai_dispatch_backlog_rejected_total",
				Help: "Events rejected because the conversation backlog was full",
			},
		),
	}
}

func (p *PrometheusRecorder) ObserveEvent(command string) {
	p.eventsTotal.WithLabelValues(command).Inc()
}

func (p *PrometheusRecorder) ObserveTurn(outcome string) {
	p.turnsTotal.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveAIRequest(provider, operation, outcome string, duration time.Duration) {
	p.aiDuration.WithLabelValues(provider, operation, outcome).Observe(duration.Seconds())
}

func (p *PrometheusRecorder) ObserveTransition(state string) {
	p.transitionsTotal.WithLabelValues(state).Inc()
}

func (p *PrometheusRecorder) IncBacklogRejected() {
	p.backlogRejected.Inc()
}
