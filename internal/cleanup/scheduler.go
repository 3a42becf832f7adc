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

package cleanup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/sets"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/railway-preview/internal/environment"
	"github.com/mikelane/railway-preview/internal/event"
	"github.com/mikelane/railway-preview/internal/github"
	"github.com/mikelane/railway-preview/internal/metrics"
	"github.com/mikelane/railway-preview/internal/orchestrator"
	"github.com/mikelane/railway-preview/internal/railway"
)

// Lister lists the environments of a project.
type Lister interface {
	ListByProject(ctx context.Context, projectID string) ([]railway.Environment, error)
}

// PullRequests fetches pull requests.
type PullRequests interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
}

// TearDowner resolves the project and removes previews.
type TearDowner interface {
	ProjectID(ctx context.Context) (string, error)
	TearDown(ctx context.Context, projectID string, pr event.PRContext) *orchestrator.Outcome
}

// Options configures a Scheduler.
type Options struct {
	Owner    string
	Repo     string
	Prefix   string
	Interval time.Duration
	// Lock, when set, is held while a pull request's state is read and its
	// preview torn down. Share it with whatever else mutates previews.
	Lock sync.Locker
}

// Result summarises one sweep.
type Result struct {
	// Checked counts environments carrying a pull request number
	Checked int
	Kept    int
	Skipped int
	Failed  int
	Deleted []string
}

// Scheduler periodically removes previews of closed pull requests.
type Scheduler struct {
	lister   Lister
	prs      PullRequests
	teardown TearDowner
	opts     Options
}

// NewScheduler creates a Scheduler. An empty prefix means
// environment.DefaultPrefix.
func NewScheduler(lister Lister, prs PullRequests, teardown TearDowner, opts Options) *Scheduler {
	if opts.Prefix == "" {
		opts.Prefix = environment.DefaultPrefix
	}
	return &Scheduler{lister: lister, prs: prs, teardown: teardown, opts: opts}
}

// Start sweeps once immediately and then every interval until ctx is
// canceled. A failed sweep is logged and retried on the next tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.opts.Interval <= 0 {
		return fmt.Errorf("invalid sweep interval %s", s.opts.Interval)
	}
	logger := log.FromContext(ctx)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
			logger.Error(err, "Sweep failed")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Sweep performs a single pass.
func (s *Scheduler) Sweep(ctx context.Context) (Result, error) {
	logger := log.FromContext(ctx).WithValues("repository", s.opts.Owner+"/"+s.opts.Repo)
	var res Result

	projectID, err := s.teardown.ProjectID(ctx)
	if err != nil {
		return res, err
	}
	envs, err := s.lister.ListByProject(ctx, projectID)
	if err != nil {
		return res, fmt.Errorf("failed to list environments: %w", err)
	}

	seen := sets.New[int]()
	for i := range envs {
		env := &envs[i]
		number, ok := environment.PRNumber(s.opts.Prefix, env.Name)
		if !ok || seen.Has(number) {
			continue
		}
		if env.IsEphemeral != nil && !*env.IsEphemeral {
			logger.V(1).Info("Skipping non-ephemeral environment", "environment", env.Name)
			continue
		}
		seen.Insert(number)
		res.Checked++

		if err := s.sweepOne(ctx, projectID, env.Name, number, &res); err != nil {
			return res, err
		}
	}

	logger.Info("Sweep finished", "checked", res.Checked, "deleted", len(res.Deleted), "kept", res.Kept, "skipped", res.Skipped, "failed", res.Failed)
	return res, nil
}

// sweepOne decides the fate of a single preview. The pull request is read
// under the lock so a reopen handled meanwhile is observed.
func (s *Scheduler) sweepOne(ctx context.Context, projectID, name string, number int, res *Result) error {
	logger := log.FromContext(ctx).WithValues("environment", name, "pr", number)

	if s.opts.Lock != nil {
		s.opts.Lock.Lock()
		defer s.opts.Lock.Unlock()
	}

	pr, err := s.prs.GetPullRequest(ctx, s.opts.Owner, s.opts.Repo, number)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Info("Skipping environment, pull request unavailable", "error", err.Error(), "notFound", github.IsNotFound(err))
		res.Skipped++
		return nil
	}
	if pr.IsOpen() {
		res.Kept++
		return nil
	}

	out := s.teardown.TearDown(ctx, projectID, event.PRContext{
		Number:     number,
		Branch:     pr.HeadBranch,
		Owner:      s.opts.Owner,
		Repository: s.opts.Repo,
	})
	if out.Action != orchestrator.ActionDeleted {
		res.Failed++
		return nil
	}
	metrics.SweptEnvironments.Inc()
	res.Deleted = append(res.Deleted, name)
	return nil
}
