// Package metrics is the optional Prometheus collaborator for the
// orchestrator (SPEC_FULL.md Ambient Stack). A nil *Collector disables
// metrics entirely — every call site on the orchestrator already guards
// with a nil check, so this package never needs a no-op implementation of
// its own.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds every counter/histogram the orchestrator reports into.
// Safe for concurrent use — the underlying prometheus collectors already
// are.
type Collector struct {
	phaseTransitions  *prometheus.CounterVec
	turnsStarted      prometheus.Counter
	turnsAborted      *prometheus.CounterVec
	toolExecutions    *prometheus.CounterVec
	approvalWaitMS    prometheus.Histogram
}

// NewCollector creates a Collector and registers it with reg. Passing a
// fresh prometheus.NewRegistry() keeps it isolated for tests; passing
// prometheus.DefaultRegisterer wires it into the process-wide /metrics
// endpoint.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		phaseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcore_phase_transitions_total",
			Help: "Count of phase transitions by destination phase kind.",
		}, []string{"phase"}),
		turnsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "agentcore_turns_started_total",
			Help: "Count of orchestrator turns started.",
		}),
		turnsAborted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcore_turns_aborted_total",
			Help: "Count of orchestrator turns aborted, by abort reason.",
		}, []string{"reason"}),
		toolExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "agentcore_tool_executions_total",
			Help: "Count of tool executions by tool name and risk class.",
		}, []string{"tool", "risk"}),
		approvalWaitMS: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "agentcore_approval_wait_ms",
			Help:    "Milliseconds spent blocked on an approval decision.",
			Buckets: prometheus.ExponentialBuckets(10, 2, 12),
		}),
	}
	reg.MustRegister(c.phaseTransitions, c.turnsStarted, c.turnsAborted, c.toolExecutions, c.approvalWaitMS)
	return c
}

// RecordPhaseTransition increments the counter for a phase the orchestrator
// just transitioned into.
func (c *Collector) RecordPhaseTransition(phaseKind string) {
	if c == nil {
		return
	}
	c.phaseTransitions.WithLabelValues(phaseKind).Inc()
}

// RecordTurnStarted increments the turns-started counter.
func (c *Collector) RecordTurnStarted() {
	if c == nil {
		return
	}
	c.turnsStarted.Inc()
}

// RecordTurnAborted increments the turns-aborted counter under reason. The
// orchestrator passes "exceeded_llm_turns" for the turn cap and otherwise
// the kind of the phase whose dispatch failed (e.g. "planning").
func (c *Collector) RecordTurnAborted(reason string) {
	if c == nil {
		return
	}
	c.turnsAborted.WithLabelValues(reason).Inc()
}

// RecordToolExecution increments the tool-execution counter for tool/risk.
func (c *Collector) RecordToolExecution(tool, risk string) {
	if c == nil {
		return
	}
	c.toolExecutions.WithLabelValues(tool, risk).Inc()
}

// RecordApprovalWait records how long a turn blocked on an approval
// decision, regardless of whether it resolved or timed out.
func (c *Collector) RecordApprovalWait(d time.Duration) {
	if c == nil {
		return
	}
	c.approvalWaitMS.Observe(float64(d.Milliseconds()))
}
