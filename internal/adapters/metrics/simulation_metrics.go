package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andrescamacho/glp-fleet-go/internal/application/planning"
)

const (
	namespace = "glpfleet"
	subsystem = "simulation"
)

// SimulationMetricsCollector handles all simulation loop metrics. It
// satisfies the orchestrator's MetricsRecorder interface.
type SimulationMetricsCollector struct {
	ticksTotal      prometheus.Counter
	simulationTime  prometheus.Gauge
	replansTotal    *prometheus.CounterVec
	replanDuration  prometheus.Histogram
	replanCost      prometheus.Gauge
	deliveredM3     prometheus.Counter
	pendingOrders   prometheus.Gauge
	vehiclesByState *prometheus.GaugeVec
}

// NewSimulationMetricsCollector creates and registers the collector.
func NewSimulationMetricsCollector(registry *prometheus.Registry) *SimulationMetricsCollector {
	c := &SimulationMetricsCollector{
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ticks_total",
			Help:      "Total number of simulation ticks executed",
		}),

		simulationTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "time_seconds",
			Help:      "Current simulated time as a unix timestamp",
		}),

		replansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "replans_total",
				Help:      "Total number of replanning rounds by outcome",
			},
			[]string{"fallback"},
		),

		replanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "replan_duration_seconds",
			Help:      "Replanning round duration distribution",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
		}),

		replanCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "replan_cost",
			Help:      "Objective cost of the latest accepted solution",
		}),

		deliveredM3: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "delivered_m3_total",
			Help:      "Total GLP volume delivered, in cubic metres",
		}),

		pendingOrders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pending_orders",
			Help:      "Number of orders awaiting delivery",
		}),

		vehiclesByState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "vehicles",
				Help:      "Number of vehicles by status",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		c.ticksTotal,
		c.simulationTime,
		c.replansTotal,
		c.replanDuration,
		c.replanCost,
		c.deliveredM3,
		c.pendingOrders,
		c.vehiclesByState,
	)

	return c
}

// RecordTick records one completed tick.
func (c *SimulationMetricsCollector) RecordTick(simTime time.Time, wallDuration time.Duration) {
	c.ticksTotal.Inc()
	c.simulationTime.Set(float64(simTime.Unix()))
}

// RecordReplan records one replanning round.
func (c *SimulationMetricsCollector) RecordReplan(stats planning.SolveStats) {
	fallback := "no"
	if stats.UsedFallback {
		fallback = "yes"
	}
	c.replansTotal.WithLabelValues(fallback).Inc()
	c.replanDuration.Observe(stats.Duration.Seconds())
	c.replanCost.Set(stats.Cost)
}

// RecordDelivery records delivered volume.
func (c *SimulationMetricsCollector) RecordDelivery(amountM3 float64) {
	c.deliveredM3.Add(amountM3)
}

// SetPendingOrders sets the pending order gauge.
func (c *SimulationMetricsCollector) SetPendingOrders(count int) {
	c.pendingOrders.Set(float64(count))
}

// SetVehicleStatus sets the per-status fleet gauge.
func (c *SimulationMetricsCollector) SetVehicleStatus(status string, count int) {
	c.vehiclesByState.WithLabelValues(status).Set(float64(count))
}
