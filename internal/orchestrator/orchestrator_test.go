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
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mikelane/railway-preview/internal/comment"
	"github.com/mikelane/railway-preview/internal/deploy"
	"github.com/mikelane/railway-preview/internal/discovery"
	"github.com/mikelane/railway-preview/internal/environment"
	"github.com/mikelane/railway-preview/internal/event"
	"github.com/mikelane/railway-preview/internal/railway"
)

func prEvent(action string, number int) *event.Event {
	return &event.Event{
		Name:   event.PullRequest,
		Action: action,
		PR:     event.PRContext{Number: number, Branch: "feature/checkout", Owner: "acme", Repository: "shop"},
	}
}

func pushEvent(branch string) *event.Event {
	return &event.Event{
		Name: event.Push,
		Ref:  "refs/heads/" + branch,
		PR:   event.PRContext{Branch: branch, Owner: "acme", Repository: "shop"},
	}
}

var _ = Describe("Orchestrator", func() {
	var (
		ctx      context.Context
		platform *fakePlatform
		issues   *fakeIssues
		finder   *fakeFinder
		opts     Options
	)

	newOrchestrator := func() *Orchestrator {
		return New(Dependencies{
			Registry:  environment.NewRegistry(platform),
			Deployer:  deploy.NewTrigger(platform),
			Waiter:    discovery.NewWaiter(platform, 5*time.Millisecond),
			Commenter: comment.NewReconciler(issues, "acme", "shop", ""),
			Finder:    finder,
		}, opts)
	}

	BeforeEach(func() {
		ctx = context.Background()
		platform = newFakePlatform()
		issues = &fakeIssues{}
		finder = &fakeFinder{prs: map[string]int{}}
		opts = Options{
			SourceEnvironmentID: testSourceID,
			NamePrefix:          "pr-",
			CommentOnPR:         true,
			DeployOnCreate:      true,
			WaitForURLs:         true,
			URLWaitTimeout:      time.Second,
		}
	})

	Context("when PR #42 is opened without an existing environment", func() {
		It("creates, deploys, discovers URLs and reports them", func() {
			platform.domains["pr-42"] = "svc-42.example.app"
			platform.readyAfter = 2

			out, err := newOrchestrator().Run(ctx, prEvent("opened", 42))
			Expect(err).NotTo(HaveOccurred())

			Expect(platform.createCalls).To(Equal(1))
			Expect(platform.redeployCalls).To(Equal(1))
			Expect(platform.triggerCalls).To(BeZero())

			Expect(out.Action).To(Equal(ActionCreated))
			Expect(out.DeployStatus).To(Equal(DeployStatusDeployed))
			Expect(out.DeployStrategy).To(Equal(deploy.ServiceInstanceRedeploy))
			Expect(out.Warnings).To(BeEmpty())

			outputs := out.Outputs()
			Expect(outputs).To(HaveKeyWithValue("environment_id", out.EnvironmentID))
			Expect(outputs["environment_id"]).NotTo(BeEmpty())
			Expect(outputs).To(HaveKeyWithValue("environment_name", "pr-42"))
			Expect(outputs).To(HaveKeyWithValue("deployment_url", "https://svc-42.example.app"))
			Expect(outputs).To(HaveKeyWithValue("deploy_status", "deployed"))
			Expect(outputs).To(HaveKeyWithValue("url_count", "1"))
			Expect(outputs).NotTo(HaveKey("skipped"))

			Expect(issues.createCalls).To(Equal(1))
			Expect(issues.updateCalls).To(Equal(1))
			Expect(issues.bodies[0]).To(ContainSubstring("Creating"))
			Expect(issues.last()).To(ContainSubstring("Railway Preview Environment Ready"))
			Expect(issues.last()).To(ContainSubstring("✅ Ready"))
			Expect(issues.last()).To(ContainSubstring("(https://svc-42.example.app)"))
		})
	})

	Context("when the environment already exists", func() {
		It("reuses it and only updates the comment", func() {
			id := platform.addPreview("pr-42")
			platform.domains["pr-42"] = "svc-42.example.app"

			out, err := newOrchestrator().Run(ctx, prEvent("synchronize", 42))
			Expect(err).NotTo(HaveOccurred())

			Expect(platform.createCalls).To(BeZero())
			Expect(out.Action).To(Equal(ActionUpdated))
			Expect(out.EnvironmentID).To(Equal(id))
			Expect(issues.createCalls).To(Equal(1))
			Expect(issues.last()).To(ContainSubstring("Railway Preview Environment Updated"))
			Expect(issues.last()).NotTo(ContainSubstring("Creating"))
		})

		It("keeps one comment across repeated runs", func() {
			platform.domains["pr-42"] = "svc-42.example.app"
			o := newOrchestrator()

			_, err := o.Run(ctx, prEvent("opened", 42))
			Expect(err).NotTo(HaveOccurred())
			_, err = o.Run(ctx, prEvent("synchronize", 42))
			Expect(err).NotTo(HaveOccurred())

			Expect(platform.createCalls).To(Equal(1))
			Expect(issues.comments).To(HaveLen(1))
			Expect(issues.createCalls).To(Equal(1))
		})
	})

	Context("when every deploy strategy fails", func() {
		It("reports a failed deploy as a warning", func() {
			platform.redeployErr = errors.New("unknown mutation")
			platform.triggerErr = errors.New("unknown mutation")
			opts.WaitForURLs = false

			out, err := newOrchestrator().Run(ctx, prEvent("opened", 7))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.DeployStatus).To(Equal(DeployStatusFailed))
			Expect(out.Warnings).To(ContainElement(ContainSubstring("trigger it manually")))
			Expect(out.Outputs()).To(HaveKeyWithValue("url_count", "0"))
			Expect(out.Outputs()).NotTo(HaveKey("deployment_url"))
			Expect(issues.last()).To(ContainSubstring("⚠️"))
			Expect(issues.last()).To(ContainSubstring("🔄 Deploying..."))
		})
	})

	Context("when deploy on create is disabled", func() {
		It("skips the deployment", func() {
			opts.DeployOnCreate = false
			opts.WaitForURLs = false

			out, err := newOrchestrator().Run(ctx, prEvent("opened", 7))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.DeployStatus).To(Equal(DeployStatusSkipped))
			Expect(platform.redeployCalls + platform.triggerCalls + platform.restartCalls).To(BeZero())
		})
	})

	Context("when no URL appears in time", func() {
		It("finishes without URLs and warns", func() {
			opts.URLWaitTimeout = 30 * time.Millisecond

			out, err := newOrchestrator().Run(ctx, prEvent("opened", 7))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.URLs).To(BeEmpty())
			Expect(out.Warnings).To(ContainElement(ContainSubstring("No deployment URLs")))
			Expect(issues.last()).To(ContainSubstring("Deployment URLs will appear here"))
		})
	})

	Context("when commenting is disabled", func() {
		It("does not touch comments while ensuring", func() {
			opts.CommentOnPR = false
			opts.WaitForURLs = false

			_, err := newOrchestrator().Run(ctx, prEvent("opened", 7))
			Expect(err).NotTo(HaveOccurred())
			Expect(issues.bodies).To(BeEmpty())
		})
	})

	Context("when posting the comment fails", func() {
		It("still succeeds with a warning", func() {
			issues.err = errors.New("403 Resource not accessible by integration")
			opts.WaitForURLs = false

			out, err := newOrchestrator().Run(ctx, prEvent("opened", 7))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Action).To(Equal(ActionCreated))
			Expect(out.Warnings).To(ContainElement(ContainSubstring("Status comment not posted")))
		})
	})

	Context("when the source environment cannot be resolved", func() {
		It("fails the run before touching anything", func() {
			platform.sourceErr = &railway.NotFoundError{Kind: "environment", ID: testSourceID}

			out, err := newOrchestrator().Run(ctx, prEvent("opened", 42))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to resolve source environment"))
			Expect(railway.IsNotFound(err)).To(BeTrue())
			Expect(out).To(BeNil())
			Expect(platform.createCalls).To(BeZero())
			Expect(issues.bodies).To(BeEmpty())
		})

		It("fails without a source environment id", func() {
			opts.SourceEnvironmentID = ""

			_, err := newOrchestrator().Run(ctx, prEvent("opened", 42))
			Expect(railway.IsValidation(err)).To(BeTrue())
		})
	})

	Context("when PR #42 is closed", func() {
		It("deletes the environment and marks the comment deleted", func() {
			id := platform.addPreview("pr-42")

			out, err := newOrchestrator().Run(ctx, prEvent("closed", 42))
			Expect(err).NotTo(HaveOccurred())
			Expect(platform.has(id)).To(BeFalse())
			Expect(out.Action).To(Equal(ActionDeleted))
			Expect(out.Outputs()).To(HaveKeyWithValue("environment_name", "pr-42"))
			Expect(issues.last()).To(ContainSubstring("Deleted"))
			Expect(issues.last()).To(ContainSubstring("**pr-42** has been deleted"))
		})

		It("treats an environment that is already gone as deleted", func() {
			platform.addPreview("pr-42")
			platform.deleteErr = &railway.NotFoundError{Kind: "environment", ID: "env-1"}

			out, err := newOrchestrator().Run(ctx, prEvent("closed", 42))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Action).To(Equal(ActionDeleted))
			Expect(issues.last()).To(ContainSubstring("Deleted"))
		})

		It("swallows other delete failures", func() {
			platform.addPreview("pr-42")
			platform.deleteErr = errors.New("internal error")

			out, err := newOrchestrator().Run(ctx, prEvent("closed", 42))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Action).To(Equal(ActionNoop))
			Expect(out.Warnings).To(HaveLen(1))
			Expect(issues.bodies).To(BeEmpty())
		})

		It("is a no-op when there is no environment", func() {
			out, err := newOrchestrator().Run(ctx, prEvent("closed", 42))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Action).To(Equal(ActionNoop))
			Expect(platform.deleteCalls).To(BeZero())
			Expect(issues.bodies).To(BeEmpty())
		})

		It("posts the deleted notice even when commenting is disabled", func() {
			platform.addPreview("pr-42")
			opts.CommentOnPR = false

			_, err := newOrchestrator().Run(ctx, prEvent("closed", 42))
			Expect(err).NotTo(HaveOccurred())
			Expect(issues.last()).To(ContainSubstring("Deleted"))
		})
	})

	Context("when a branch is pushed", func() {
		It("treats a push to an open pull request like synchronize", func() {
			finder.prs["feature/checkout"] = 42
			opts.WaitForURLs = false

			out, err := newOrchestrator().Run(ctx, pushEvent("feature/checkout"))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Plan).To(Equal(PlanEnsureAndDeploy))
			Expect(out.EnvironmentName).To(Equal("pr-42"))
		})

		It("does nothing without an open pull request", func() {
			out, err := newOrchestrator().Run(ctx, pushEvent("main"))
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Action).To(Equal(ActionNoop))
			Expect(finder.calls).To(Equal(1))
			Expect(platform.createCalls).To(BeZero())
		})

		It("fails when the pull request lookup fails", func() {
			finder.err = errors.New("bad credentials")

			_, err := newOrchestrator().Run(ctx, pushEvent("feature/checkout"))
			Expect(err).To(MatchError(ContainSubstring("failed to find pull request")))
		})
	})

	DescribeTable("resolving plans",
		func(ev *event.Event, want PlanKind) {
			plan, err := newOrchestrator().Resolve(ctx, ev)
			Expect(err).NotTo(HaveOccurred())
			Expect(plan.Kind).To(Equal(want))
		},
		Entry("opened", prEvent("opened", 1), PlanEnsureAndDeploy),
		Entry("synchronize", prEvent("synchronize", 1), PlanEnsureAndDeploy),
		Entry("reopened", prEvent("reopened", 1), PlanEnsureAndDeploy),
		Entry("closed", prEvent("closed", 1), PlanTearDown),
		Entry("labeled", prEvent("labeled", 1), PlanNoOp),
		Entry("missing number", prEvent("opened", 0), PlanNoOp),
		Entry("tag push", &event.Event{Name: event.Push, Ref: "refs/tags/v1.0.0"}, PlanNoOp),
		Entry("deleted branch", &event.Event{Name: event.Push, Deleted: true, PR: event.PRContext{Branch: "gone"}}, PlanNoOp),
		Entry("issues event", &event.Event{Name: "issues"}, PlanNoOp),
	)
})
