package analysis

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus counters for the analysis pipeline.
type Metrics struct {
	// CyclesTotal counts analysis cycles by outcome ("completed", "empty").
	CyclesTotal *prometheus.CounterVec

	// TasksTotal counts task runs by task and status
	// ("committed", "no_result", "skipped", "failed").
	TasksTotal *prometheus.CounterVec

	// LLMCallsTotal counts backend calls by provider and mode
	// ("plain", "grounded").
	LLMCallsTotal *prometheus.CounterVec

	// PersistFailuresTotal counts failed record saves.
	PersistFailuresTotal prometheus.Counter

	// TranscriptEntriesTotal counts ingested transcript entries.
	TranscriptEntriesTotal prometheus.Counter
}

// DefaultMetrics creates metrics on the default Prometheus registerer.
func DefaultMetrics() *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer)
}

// NewMetrics creates a new set of analysis pipeline metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CyclesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analysis_cycles_total",
				Help: "Total analysis cycles by outcome",
			},
			[]string{"outcome"},
		),
		TasksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analysis_tasks_total",
				Help: "Total task executions by task and status",
			},
			[]string{"task", "status"},
		),
		LLMCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analysis_llm_calls_total",
				Help: "Total LLM backend calls by provider and mode",
			},
			[]string{"provider", "mode"},
		),
		PersistFailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "analysis_persist_failures_total",
				Help: "Total failed analysis record saves",
			},
		),
		TranscriptEntriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "analysis_transcript_entries_total",
				Help: "Total transcript entries ingested",
			},
		),
	}
}
