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

	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/mikelane/railway-preview/internal/railway"
)

// ErrNotApplicable is returned by a strategy that has no target in the
// environment, such as a service redeploy for an environment without
// services.
var ErrNotApplicable = errors.New("strategy not applicable")

// Platform is the subset of the Railway API used to deploy.
type Platform interface {
	GetEnvironment(ctx context.Context, id string) (*railway.Environment, error)
	RedeployServiceInstance(ctx context.Context, environmentID, serviceID string) error
	TriggerEnvironmentDeploy(ctx context.Context, environmentID string) error
	RestartDeployment(ctx context.Context, deploymentID string) error
}

// Strategy is one way of starting a deployment.
type Strategy struct {
	Name string
	Run  func(ctx context.Context, p Platform, env *railway.Environment) error
}

// Strategy names of the default chain.
const (
	ServiceInstanceRedeploy   = "service-instance-redeploy"
	EnvironmentTriggersDeploy = "environment-triggers-deploy"
	DeploymentRestart         = "deployment-restart"
)

// DefaultStrategies is the chain used when none is configured.
var DefaultStrategies = []Strategy{
	{Name: ServiceInstanceRedeploy, Run: redeployServices},
	{Name: EnvironmentTriggersDeploy, Run: triggerEnvironment},
	{Name: DeploymentRestart, Run: restartDeployments},
}

// redeployServices redeploys every service instance and succeeds only if all
// of them do.
func redeployServices(ctx context.Context, p Platform, env *railway.Environment) error {
	if !env.HasServices() {
		return ErrNotApplicable
	}
	var errs []error
	for _, si := range env.ServiceInstances {
		if err := p.RedeployServiceInstance(ctx, env.ID, si.ServiceID); err != nil {
			errs = append(errs, err)
		}
	}
	return utilerrors.NewAggregate(errs)
}

func triggerEnvironment(ctx context.Context, p Platform, env *railway.Environment) error {
	return p.TriggerEnvironmentDeploy(ctx, env.ID)
}

// restartDeployments restarts the latest deployment of each service that has
// one.
func restartDeployments(ctx context.Context, p Platform, env *railway.Environment) error {
	var errs []error
	restarted := 0
	for _, si := range env.ServiceInstances {
		if si.LatestDeployment == nil || si.LatestDeployment.ID == "" {
			continue
		}
		restarted++
		if err := p.RestartDeployment(ctx, si.LatestDeployment.ID); err != nil {
			errs = append(errs, err)
		}
	}
	if restarted == 0 {
		return ErrNotApplicable
	}
	return utilerrors.NewAggregate(errs)
}
