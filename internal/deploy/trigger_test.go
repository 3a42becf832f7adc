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

package deploy_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mikelane/railway-preview/internal/deploy"
	"github.com/mikelane/railway-preview/internal/railway"
)

type fakePlatform struct {
	env         *railway.Environment
	getCalls    int
	redeployed  []string
	triggered   []string
	restarted   []string
	redeployErr map[string]error
	triggerErr  error
	restartErr  error
}

func (f *fakePlatform) GetEnvironment(_ context.Context, id string) (*railway.Environment, error) {
	f.getCalls++
	if f.env == nil {
		return nil, &railway.NotFoundError{Kind: "environment", ID: id}
	}
	return f.env, nil
}

func (f *fakePlatform) RedeployServiceInstance(_ context.Context, _, serviceID string) error {
	f.redeployed = append(f.redeployed, serviceID)
	return f.redeployErr[serviceID]
}

func (f *fakePlatform) TriggerEnvironmentDeploy(_ context.Context, environmentID string) error {
	f.triggered = append(f.triggered, environmentID)
	return f.triggerErr
}

func (f *fakePlatform) RestartDeployment(_ context.Context, deploymentID string) error {
	f.restarted = append(f.restarted, deploymentID)
	return f.restartErr
}

func twoServiceEnvironment() *railway.Environment {
	return &railway.Environment{
		ID:   "env-42",
		Name: "pr-42",
		ServiceInstances: []railway.ServiceInstance{
			{ServiceID: "svc-web", ServiceName: "web", LatestDeployment: &railway.Deployment{ID: "dep-web"}},
			{ServiceID: "svc-api", ServiceName: "api"},
		},
	}
}

var _ = Describe("Trigger", func() {
	var (
		ctx      context.Context
		platform *fakePlatform
	)

	BeforeEach(func() {
		ctx = context.Background()
		platform = &fakePlatform{redeployErr: map[string]error{}}
	})

	It("stops at the first successful strategy", func() {
		report := deploy.NewTrigger(platform).Trigger(ctx, twoServiceEnvironment())

		Expect(report.Deployed).To(BeTrue())
		Expect(report.Strategy).To(Equal(deploy.ServiceInstanceRedeploy))
		Expect(platform.redeployed).To(Equal([]string{"svc-web", "svc-api"}))
		Expect(platform.triggered).To(BeEmpty())
		Expect(platform.restarted).To(BeEmpty())
	})

	It("falls back to the environment trigger when a service redeploy fails and never restarts", func() {
		platform.redeployErr["svc-api"] = &railway.QueryError{Operation: "serviceInstanceRedeploy", Messages: []string{"Problem processing request"}}

		report := deploy.NewTrigger(platform).Trigger(ctx, twoServiceEnvironment())

		Expect(report.Deployed).To(BeTrue())
		Expect(report.Strategy).To(Equal(deploy.EnvironmentTriggersDeploy))
		Expect(platform.triggered).To(Equal([]string{"env-42"}))
		Expect(platform.restarted).To(BeEmpty())
		Expect(report.Attempts).To(HaveLen(2))
		Expect(report.Attempts[0].Err).To(HaveOccurred())
	})

	It("restarts the latest deployments when both mutations fail", func() {
		platform.redeployErr["svc-web"] = errors.New("redeploy unsupported")
		platform.triggerErr = errors.New("trigger unsupported")

		report := deploy.NewTrigger(platform).Trigger(ctx, twoServiceEnvironment())

		Expect(report.Deployed).To(BeTrue())
		Expect(report.Strategy).To(Equal(deploy.DeploymentRestart))
		Expect(platform.restarted).To(Equal([]string{"dep-web"}))
	})

	It("reports failure without error when every strategy fails", func() {
		platform.redeployErr["svc-web"] = errors.New("redeploy unsupported")
		platform.triggerErr = errors.New("trigger unsupported")
		platform.restartErr = errors.New("restart unsupported")

		report := deploy.NewTrigger(platform).Trigger(ctx, twoServiceEnvironment())

		Expect(report.Deployed).To(BeFalse())
		Expect(report.Strategy).To(BeEmpty())
		Expect(report.Attempts).To(HaveLen(3))
		Expect(report.LastError()).To(MatchError("restart unsupported"))
	})

	It("skips strategies with nothing to act on", func() {
		platform.triggerErr = errors.New("trigger unsupported")
		env := &railway.Environment{ID: "env-empty"}
		platform.env = env

		report := deploy.NewTrigger(platform).Trigger(ctx, env)

		Expect(report.Deployed).To(BeFalse())
		Expect(report.Attempts).To(HaveLen(3))
		Expect(report.Attempts[0].Err).NotTo(HaveOccurred())
		Expect(report.Attempts[2].Err).NotTo(HaveOccurred())
		Expect(platform.redeployed).To(BeEmpty())
		Expect(platform.restarted).To(BeEmpty())
	})

	It("refreshes a snapshot that has no services", func() {
		platform.env = twoServiceEnvironment()

		report := deploy.NewTrigger(platform).Trigger(ctx, &railway.Environment{ID: "env-42", Name: "pr-42"})

		Expect(platform.getCalls).To(Equal(1))
		Expect(report.Strategy).To(Equal(deploy.ServiceInstanceRedeploy))
		Expect(platform.redeployed).To(HaveLen(2))
	})

	It("runs a custom chain in order", func() {
		var order []string
		step := func(name string, err error) deploy.Strategy {
			return deploy.Strategy{Name: name, Run: func(context.Context, deploy.Platform, *railway.Environment) error {
				order = append(order, name)
				return err
			}}
		}

		report := deploy.NewTrigger(platform, deploy.WithStrategies(
			step("one", errors.New("no")),
			step("two", nil),
			step("three", nil),
		)).Trigger(ctx, twoServiceEnvironment())

		Expect(report.Strategy).To(Equal("two"))
		Expect(order).To(Equal([]string{"one", "two"}))
	})
})
