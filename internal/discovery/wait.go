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

package discovery

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/railway-preview/internal/metrics"
	"github.com/mikelane/railway-preview/internal/railway"
)

// DefaultInterval is the pause between polls.
const DefaultInterval = 10 * time.Second

// Fetcher loads the current state of an environment.
type Fetcher interface {
	GetEnvironment(ctx context.Context, id string) (*railway.Environment, error)
}

// Waiter polls an environment until it exposes at least one URL.
type Waiter struct {
	fetcher  Fetcher
	interval time.Duration
}

// NewWaiter creates a Waiter. A non-positive interval means DefaultInterval.
func NewWaiter(fetcher Fetcher, interval time.Duration) *Waiter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Waiter{fetcher: fetcher, interval: interval}
}

// WaitFor polls environment id until Extract returns URLs or maxWait has
// elapsed. The first poll happens immediately. Running out of time is not an
// error: the last fetched environment is returned with no URLs. Fetch errors
// are retried on the next tick, except NotFound which ends the wait.
func (w *Waiter) WaitFor(ctx context.Context, id string, maxWait time.Duration) (*railway.Environment, []railway.DeploymentURL, error) {
	logger := log.FromContext(ctx).WithValues("environmentID", id)
	start := time.Now()
	defer func() { metrics.URLWaitSeconds.Observe(time.Since(start).Seconds()) }()

	if maxWait <= 0 {
		env, err := w.fetch(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		return env, Extract(ctx, env), nil
	}

	var (
		last  *railway.Environment
		found []railway.DeploymentURL
		polls int
	)
	err := wait.PollUntilContextTimeout(ctx, w.interval, maxWait, true, func(ctx context.Context) (bool, error) {
		polls++
		env, err := w.fetch(ctx, id)
		if err != nil {
			if railway.IsNotFound(err) {
				return false, err
			}
			if ctx.Err() == nil {
				logger.Info("Failed to fetch environment while waiting for URLs", "poll", polls, "error", err.Error())
			}
			return false, nil
		}
		last = env
		urls := Extract(ctx, env)
		if len(urls) == 0 {
			metrics.URLPolls.WithLabelValues("empty").Inc()
			logger.V(1).Info("No deployment URLs yet", "poll", polls)
			return false, nil
		}
		metrics.URLPolls.WithLabelValues("found").Inc()
		found = urls
		return true, nil
	})

	switch {
	case err == nil:
		logger.Info("Deployment URLs discovered", "count", len(found), "polls", polls)
		return last, found, nil
	case !wait.Interrupted(err):
		return nil, nil, err
	case ctx.Err() != nil:
		return last, nil, ctx.Err()
	}

	logger.Info("Timed out waiting for deployment URLs", "timeout", maxWait.String(), "polls", polls)
	if last == nil {
		env, err := w.fetch(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to fetch environment after waiting for URLs: %w", err)
		}
		last = env
	}
	return last, []railway.DeploymentURL{}, nil
}

func (w *Waiter) fetch(ctx context.Context, id string) (*railway.Environment, error) {
	env, err := w.fetcher.GetEnvironment(ctx, id)
	if err != nil {
		metrics.URLPolls.WithLabelValues("error").Inc()
		return nil, err
	}
	return env, nil
}
