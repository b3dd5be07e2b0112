package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saldo_assistant_requests_total",
		Help: "Assistant requests by resolved intent.",
	}, []string{"intent"})

	llmFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saldo_assistant_llm_failures_total",
		Help: "LLM extraction failures by reason; each one fell back to the rule parser.",
	}, []string{"reason"})

	rangeSourceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "saldo_assistant_range_source_total",
		Help: "Which rung of the range-resolution ladder produced the range.",
	}, []string{"source"})
)
