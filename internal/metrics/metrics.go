// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics declares the Prometheus instruments of the planner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UnitsTotal counts finished units of work by kind (article, keyword)
	// and outcome (completed, failed).
	UnitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_units_total",
		Help: "Units of generation work finished, by kind and outcome.",
	}, []string{"kind", "outcome"})

	// GenerationDuration observes calls to the content generator.
	GenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_generation_duration_seconds",
		Help:    "Duration of content generation calls.",
		Buckets: []float64{1, 5, 10, 20, 30, 60, 120},
	}, []string{"kind"})

	// ActiveLoops is the number of dispatch loops currently running.
	ActiveLoops = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "planner_dispatch_loops_active",
		Help: "Dispatch loops currently running, by kind.",
	}, []string{"kind"})

	// Transitions counts pillar lifecycle transitions.
	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_pillar_transitions_total",
		Help: "Pillar lifecycle transitions, by action and resulting status.",
	}, []string{"action", "status"})

	// HTTPRequestsTotal counts HTTP requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_http_requests_total",
		Help: "HTTP requests handled, by method, route pattern and status.",
	}, []string{"method", "route", "status"})
)

// ObserveUnit records one finished unit of work.
func ObserveUnit(kind string, ok bool, seconds float64) {
	outcome := "completed"
	if !ok {
		outcome = "failed"
	}
	UnitsTotal.WithLabelValues(kind, outcome).Inc()
	GenerationDuration.WithLabelValues(kind).Observe(seconds)
}
