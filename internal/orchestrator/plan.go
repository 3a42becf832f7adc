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
	"fmt"

	"github.com/mikelane/railway-preview/internal/event"
)

// PlanKind is what a run will do.
type PlanKind string

const (
	// PlanEnsureAndDeploy creates or reuses the preview and deploys it
	PlanEnsureAndDeploy PlanKind = "ensure_and_deploy"
	// PlanTearDown deletes the preview
	PlanTearDown PlanKind = "tear_down"
	// PlanNoOp does nothing
	PlanNoOp PlanKind = "noop"
)

// Plan is the resolved intent of a run.
type Plan struct {
	Kind PlanKind
	// Reason explains a PlanNoOp
	Reason string
	PR     event.PRContext
}

func noop(pr event.PRContext, format string, args ...any) Plan {
	return Plan{Kind: PlanNoOp, Reason: fmt.Sprintf(format, args...), PR: pr}
}

// Resolve decides the plan for ev. A push is resolved to the open pull
// request of its branch through the configured finder.
func (o *Orchestrator) Resolve(ctx context.Context, ev *event.Event) (Plan, error) {
	pr := ev.PR

	switch {
	case ev.IsPullRequest():
		if pr.Number <= 0 {
			return noop(pr, "%s event without a pull request number", ev.Name), nil
		}
		switch ev.Action {
		case "opened", "synchronize", "reopened":
			return Plan{Kind: PlanEnsureAndDeploy, PR: pr}, nil
		case "closed":
			return Plan{Kind: PlanTearDown, PR: pr}, nil
		default:
			return noop(pr, "ignoring pull request action %q", ev.Action), nil
		}

	case ev.IsPush():
		if pr.Branch == "" {
			return noop(pr, "push to %s is not for a branch", ev.Ref), nil
		}
		if ev.Deleted {
			return noop(pr, "push deleted branch %s", pr.Branch), nil
		}
		if o.deps.Finder == nil {
			return noop(pr, "no GitHub client to resolve the pull request for branch %s", pr.Branch), nil
		}
		found, err := o.deps.Finder.FindOpenPullRequest(ctx, pr.Owner, pr.Repository, pr.Branch)
		if err != nil {
			return Plan{}, fmt.Errorf("failed to find pull request for branch %s: %w", pr.Branch, err)
		}
		if found == nil {
			return noop(pr, "no open pull request for branch %s", pr.Branch), nil
		}
		pr.Number = found.Number
		return Plan{Kind: PlanEnsureAndDeploy, PR: pr}, nil

	default:
		return noop(pr, "unsupported event %q", ev.Name), nil
	}
}
