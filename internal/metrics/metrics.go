// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package metrics holds the Prometheus collectors shared by the preview
// components and the handler that exposes them in serve mode.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "railway_preview"

// Outcome labels for StrategyAttempts.
const (
	OutcomeSucceeded     = "succeeded"
	OutcomeFailed        = "failed"
	OutcomeNotApplicable = "not_applicable"
)

// Registry is the registry every collector in this package is registered with.
var Registry = prometheus.NewRegistry()

var (
	// StrategyAttempts counts attempts of named fallback strategies, both the
	// environment list shapes and the deploy chain.
	StrategyAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "strategy_attempts_total",
		Help:      "Attempts of named fallback strategies by outcome",
	}, []string{"component", "strategy", "outcome"})

	// URLPolls counts environment fetches made while waiting for URLs.
	URLPolls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "url_polls_total",
		Help:      "Environment polls made while waiting for deployment URLs",
	}, []string{"result"})

	// URLWaitSeconds observes how long URL discovery took.
	URLWaitSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "url_wait_duration_seconds",
		Help:      "Time spent waiting for deployment URLs",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	// Runs counts orchestrator invocations.
	Runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Orchestrator runs by plan and outcome",
	}, []string{"plan", "outcome"})

	// WebhookEvents counts webhook deliveries received in serve mode.
	WebhookEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Webhook deliveries by event type and result",
	}, []string{"event", "result"})

	// SweptEnvironments counts environments removed by the sweeper.
	SweptEnvironments = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "swept_environments_total",
		Help:      "Preview environments removed because their pull request was closed",
	})
)

func init() {
	Registry.MustRegister(
		StrategyAttempts,
		URLPolls,
		URLWaitSeconds,
		Runs,
		WebhookEvents,
		SweptEnvironments,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the contents of Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordStrategy increments StrategyAttempts.
func RecordStrategy(component, strategy, outcome string) {
	StrategyAttempts.WithLabelValues(component, strategy, outcome).Inc()
}
