package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Collector bundles the pipeline's Prometheus metrics. Metrics are
// registered against an explicit Registerer so tests can use isolated
// registries instead of the process-global default.
type Collector struct {
	// Workflow metrics
	workflowExecutionsTotal *prometheus.CounterVec
	workflowDuration        *prometheus.HistogramVec
	workflowStepsTotal      prometheus.Counter

	// Agent metrics
	agentExecutionsTotal   *prometheus.CounterVec
	agentExecutionDuration *prometheus.HistogramVec

	// Checkpoint metrics
	checkpointSavesTotal *prometheus.CounterVec
	checkpointLoadsTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates a metrics collector registered on reg. Passing
// prometheus.DefaultRegisterer wires it into the process-wide registry.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.workflowExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_executions_total",
			Help:      "Total number of workflow executions by terminal status",
		},
		[]string{"status"},
	)

	c.workflowDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_duration_seconds",
			Help:      "Workflow execution duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
		[]string{"status"},
	)

	c.workflowStepsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_steps_total",
			Help:      "Total number of agent steps executed across all workflows",
		},
	)

	c.agentExecutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "agent_executions_total",
			Help:      "Total number of agent executions",
		},
		[]string{"agent", "status"},
	)

	c.agentExecutionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agent_execution_duration_seconds",
			Help:      "Agent execution duration in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"agent"},
	)

	c.checkpointSavesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoint_saves_total",
			Help:      "Total number of checkpoint saves",
		},
		[]string{"store", "status"},
	)

	c.checkpointLoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkpoint_loads_total",
			Help:      "Total number of checkpoint loads",
		},
		[]string{"store", "status"},
	)

	reg.MustRegister(
		c.workflowExecutionsTotal,
		c.workflowDuration,
		c.workflowStepsTotal,
		c.agentExecutionsTotal,
		c.agentExecutionDuration,
		c.checkpointSavesTotal,
		c.checkpointLoadsTotal,
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordWorkflowExecution records one finished workflow run.
func (c *Collector) RecordWorkflowExecution(status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.workflowExecutionsTotal.WithLabelValues(status).Inc()
	c.workflowDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordWorkflowStep counts a single engine step.
func (c *Collector) RecordWorkflowStep() {
	if c == nil {
		return
	}
	c.workflowStepsTotal.Inc()
}

// RecordAgentExecution records one agent run.
func (c *Collector) RecordAgentExecution(agent, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.agentExecutionsTotal.WithLabelValues(agent, status).Inc()
	c.agentExecutionDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// RecordCheckpointSave records a checkpoint save attempt.
func (c *Collector) RecordCheckpointSave(store, status string) {
	if c == nil {
		return
	}
	c.checkpointSavesTotal.WithLabelValues(store, status).Inc()
}

// RecordCheckpointLoad records a checkpoint load attempt.
func (c *Collector) RecordCheckpointLoad(store, status string) {
	if c == nil {
		return
	}
	c.checkpointLoadsTotal.WithLabelValues(store, status).Inc()
}
