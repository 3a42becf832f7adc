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

package deploy

import (
	"context"
	"errors"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/railway-preview/internal/metrics"
	"github.com/mikelane/railway-preview/internal/railway"
)

// Attempt records how one strategy went.
type Attempt struct {
	Strategy string
	// Outcome is one of the metrics.Outcome* values
	Outcome string
	Err     error
}

// Report summarises a Trigger call.
type Report struct {
	// Deployed is true when a strategy succeeded
	Deployed bool
	// Strategy names the strategy that succeeded
	Strategy string
	Attempts []Attempt
}

// LastError returns the error of the last failed attempt, if any.
func (r Report) LastError() error {
	for i := len(r.Attempts) - 1; i >= 0; i-- {
		if r.Attempts[i].Err != nil {
			return r.Attempts[i].Err
		}
	}
	return nil
}

// Trigger deploys environments through an ordered strategy chain.
type Trigger struct {
	platform   Platform
	strategies []Strategy
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithStrategies replaces DefaultStrategies.
func WithStrategies(strategies ...Strategy) Option {
	return func(t *Trigger) { t.strategies = strategies }
}

// NewTrigger creates a Trigger backed by platform.
func NewTrigger(platform Platform, opts ...Option) *Trigger {
	t := &Trigger{
		platform:   platform,
		strategies: DefaultStrategies,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Trigger starts a deployment of env. It never fails: a Report with Deployed
// false means every strategy failed or was not applicable.
func (t *Trigger) Trigger(ctx context.Context, env *railway.Environment) Report {
	logger := log.FromContext(ctx).WithValues("environmentID", env.ID)

	// list and create responses may omit the service topology
	if !env.HasServices() {
		fresh, err := t.platform.GetEnvironment(ctx, env.ID)
		if err != nil {
			logger.V(1).Info("Could not refresh environment before deploy", "error", err.Error())
		} else {
			env = fresh
		}
	}

	var report Report
	for _, s := range t.strategies {
		err := s.Run(ctx, t.platform, env)
		switch {
		case err == nil:
			logger.Info("Deployment triggered", "strategy", s.Name)
			metrics.RecordStrategy("deploy", s.Name, metrics.OutcomeSucceeded)
			report.Attempts = append(report.Attempts, Attempt{Strategy: s.Name, Outcome: metrics.OutcomeSucceeded})
			report.Deployed = true
			report.Strategy = s.Name
			return report
		case errors.Is(err, ErrNotApplicable):
			logger.V(1).Info("Deploy strategy not applicable", "strategy", s.Name)
			metrics.RecordStrategy("deploy", s.Name, metrics.OutcomeNotApplicable)
			report.Attempts = append(report.Attempts, Attempt{Strategy: s.Name, Outcome: metrics.OutcomeNotApplicable})
		default:
			logger.Info("Deploy strategy failed", "strategy", s.Name, "error", err.Error())
			metrics.RecordStrategy("deploy", s.Name, metrics.OutcomeFailed)
			report.Attempts = append(report.Attempts, Attempt{Strategy: s.Name, Outcome: metrics.OutcomeFailed, Err: err})
		}
		if ctx.Err() != nil {
			break
		}
	}
	return report
}
