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

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/railway-preview/internal/comment"
	"github.com/mikelane/railway-preview/internal/deploy"
	"github.com/mikelane/railway-preview/internal/environment"
	"github.com/mikelane/railway-preview/internal/event"
	"github.com/mikelane/railway-preview/internal/github"
	"github.com/mikelane/railway-preview/internal/metrics"
	"github.com/mikelane/railway-preview/internal/railway"
)

// Registry finds, creates and deletes environments.
type Registry interface {
	Ensure(ctx context.Context, projectID, sourceEnvironmentID, name string) (*railway.Environment, bool, error)
	Get(ctx context.Context, id string) (*railway.Environment, error)
	Delete(ctx context.Context, id string) error
	FindByName(ctx context.Context, projectID, name string) (*railway.Environment, error)
}

// Deployer starts deployments.
type Deployer interface {
	Trigger(ctx context.Context, env *railway.Environment) deploy.Report
}

// Waiter discovers deployment URLs.
type Waiter interface {
	WaitFor(ctx context.Context, id string, maxWait time.Duration) (*railway.Environment, []railway.DeploymentURL, error)
}

// Commenter keeps the status comment of a pull request up to date.
type Commenter interface {
	Upsert(ctx context.Context, prNumber int, body string) (comment.Action, error)
}

// PullRequestFinder resolves a branch to its open pull request.
type PullRequestFinder interface {
	FindOpenPullRequest(ctx context.Context, owner, repo, branch string) (*github.PullRequest, error)
}

// Dependencies are the collaborators of an Orchestrator. Commenter and
// Finder are optional.
type Dependencies struct {
	Registry  Registry
	Deployer  Deployer
	Waiter    Waiter
	Commenter Commenter
	Finder    PullRequestFinder
}

// Options configures a run.
type Options struct {
	SourceEnvironmentID string
	NamePrefix          string
	CommentOnPR         bool
	DeployOnCreate      bool
	WaitForURLs         bool
	URLWaitTimeout      time.Duration
}

// Orchestrator runs one event at a time against the platform.
type Orchestrator struct {
	deps Dependencies
	opts Options
}

// New creates an Orchestrator.
func New(deps Dependencies, opts Options) *Orchestrator {
	if opts.NamePrefix == "" {
		opts.NamePrefix = environment.DefaultPrefix
	}
	return &Orchestrator{deps: deps, opts: opts}
}

// Run handles ev. The returned error is only set for failures that must
// fail the run; everything else is reported through Outcome.Warnings.
func (o *Orchestrator) Run(ctx context.Context, ev *event.Event) (*Outcome, error) {
	logger := log.FromContext(ctx).WithValues("event", ev.Name, "action", ev.Action)

	plan, err := o.Resolve(ctx, ev)
	if err != nil {
		metrics.Runs.WithLabelValues("unresolved", metrics.OutcomeFailed).Inc()
		return nil, err
	}
	logger = logger.WithValues("plan", plan.Kind, "pr", plan.PR.Number)
	ctx = log.IntoContext(ctx, logger)

	if plan.Kind == PlanNoOp {
		logger.Info("Nothing to do", "reason", plan.Reason)
		metrics.Runs.WithLabelValues(string(plan.Kind), metrics.OutcomeSucceeded).Inc()
		return &Outcome{Plan: PlanNoOp, Reason: plan.Reason, Action: ActionNoop}, nil
	}

	projectID, err := o.ProjectID(ctx)
	if err != nil {
		metrics.Runs.WithLabelValues(string(plan.Kind), metrics.OutcomeFailed).Inc()
		return nil, err
	}

	var out *Outcome
	switch plan.Kind {
	case PlanEnsureAndDeploy:
		out, err = o.ensureAndDeploy(ctx, projectID, plan.PR)
	case PlanTearDown:
		out = o.TearDown(ctx, projectID, plan.PR)
	}
	if err != nil {
		metrics.Runs.WithLabelValues(string(plan.Kind), metrics.OutcomeFailed).Inc()
		return nil, err
	}

	metrics.Runs.WithLabelValues(string(plan.Kind), metrics.OutcomeSucceeded).Inc()
	logger.Info("Run finished", "outcome", out.Action, "environment", out.EnvironmentName, "warnings", len(out.Warnings))
	return out, nil
}

// ProjectID resolves the project of the source environment.
func (o *Orchestrator) ProjectID(ctx context.Context) (string, error) {
	if o.opts.SourceEnvironmentID == "" {
		return "", &railway.ValidationError{Field: "source_environment_id", Reason: "must not be empty"}
	}
	src, err := o.deps.Registry.Get(ctx, o.opts.SourceEnvironmentID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve source environment %s: %w", o.opts.SourceEnvironmentID, err)
	}
	if src.ProjectID == "" {
		return "", fmt.Errorf("failed to resolve source environment %s: no project id", o.opts.SourceEnvironmentID)
	}
	return src.ProjectID, nil
}

func (o *Orchestrator) ensureAndDeploy(ctx context.Context, projectID string, pr event.PRContext) (*Outcome, error) {
	logger := log.FromContext(ctx)
	name := environment.Name(o.opts.NamePrefix, pr.Number)

	env, created, err := o.deps.Registry.Ensure(ctx, projectID, o.opts.SourceEnvironmentID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure environment %s: %w", name, err)
	}
	logger = logger.WithValues("environment", env.Name, "environmentID", env.ID)
	logger.Info("Environment ready", "created", created)

	out := &Outcome{
		Plan:            PlanEnsureAndDeploy,
		Action:          ActionUpdated,
		EnvironmentID:   env.ID,
		EnvironmentName: env.Name,
	}
	phase := comment.PhaseUpdated
	if created {
		out.Action = ActionCreated
		phase = comment.PhaseCreated
		o.comment(ctx, out, pr.Number, comment.View{Phase: comment.PhaseCreating, EnvironmentName: env.Name})
	}

	out.DeployStatus = DeployStatusSkipped
	if o.opts.DeployOnCreate {
		report := o.deps.Deployer.Trigger(ctx, env)
		if report.Deployed {
			out.DeployStatus = DeployStatusDeployed
			out.DeployStrategy = report.Strategy
		} else {
			out.DeployStatus = DeployStatusFailed
			logger.Error(report.LastError(), "Deployment could not be triggered")
			out.warn("Deployment could not be triggered automatically; trigger it manually in Railway")
		}
	}

	if o.opts.WaitForURLs {
		final, urls, err := o.deps.Waiter.WaitFor(ctx, env.ID, o.opts.URLWaitTimeout)
		switch {
		case err != nil:
			logger.Error(err, "Failed to wait for deployment URLs")
			out.warn(fmt.Sprintf("Failed to discover deployment URLs: %v", err))
		case len(urls) == 0:
			out.warn(fmt.Sprintf("No deployment URLs found within %s; the deployment may still be building", o.opts.URLWaitTimeout))
		}
		if final != nil {
			env = final
		}
		out.URLs = urls
	}
	if len(out.URLs) > 0 {
		logger.Info("Deployment URLs discovered", "count", len(out.URLs), "first", out.DeploymentURL())
	}

	o.comment(ctx, out, pr.Number, comment.View{
		Phase:           phase,
		EnvironmentName: env.Name,
		URLs:            out.URLs,
		DeployFailed:    out.DeployStatus == DeployStatusFailed,
	})
	return out, nil
}

// TearDown deletes the preview environment of pr. It never fails: problems
// are logged and reported as warnings.
func (o *Orchestrator) TearDown(ctx context.Context, projectID string, pr event.PRContext) *Outcome {
	name := environment.Name(o.opts.NamePrefix, pr.Number)
	logger := log.FromContext(ctx).WithValues("environment", name)
	out := &Outcome{Plan: PlanTearDown, Action: ActionNoop, EnvironmentName: name}

	env, err := o.deps.Registry.FindByName(ctx, projectID, name)
	if err != nil {
		logger.Error(err, "Failed to look up environment for deletion")
		out.Reason = "lookup failed"
		out.warn(fmt.Sprintf("Failed to look up environment %s: %v", name, err))
		return out
	}
	if env == nil {
		logger.Info("No environment to delete")
		out.Reason = "environment not found"
		return out
	}
	out.EnvironmentID = env.ID

	if err := o.deps.Registry.Delete(ctx, env.ID); err != nil {
		var nf *railway.NotFoundError
		if !errors.As(err, &nf) {
			logger.Error(err, "Failed to delete environment", "environmentID", env.ID)
			out.Reason = "delete failed"
			out.warn(fmt.Sprintf("Failed to delete environment %s: %v", name, err))
			return out
		}
		logger.Info("Environment already gone", "environmentID", env.ID)
	}
	out.Action = ActionDeleted
	logger.Info("Environment deleted", "environmentID", env.ID)

	// the deleted notice goes out even when comment_on_pr is off
	o.postComment(ctx, out, pr.Number, comment.View{Phase: comment.PhaseDeleted, EnvironmentName: name})
	return out
}

func (o *Orchestrator) comment(ctx context.Context, out *Outcome, prNumber int, view comment.View) {
	if !o.opts.CommentOnPR {
		return
	}
	o.postComment(ctx, out, prNumber, view)
}

func (o *Orchestrator) postComment(ctx context.Context, out *Outcome, prNumber int, view comment.View) {
	if o.deps.Commenter == nil || prNumber <= 0 {
		return
	}
	action, err := o.deps.Commenter.Upsert(ctx, prNumber, comment.Render(view))
	if err != nil {
		log.FromContext(ctx).Error(err, "Failed to post status comment", "phase", view.Phase)
		out.warn(fmt.Sprintf("Status comment not posted: %v", err))
		return
	}
	log.FromContext(ctx).V(1).Info("Status comment posted", "phase", view.Phase, "action", action)
}
