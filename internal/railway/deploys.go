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

package railway

import (
	"context"
	"fmt"
)

// RedeployServiceInstance redeploys one service inside an environment.
func (c *Client) RedeployServiceInstance(ctx context.Context, environmentID, serviceID string) error {
	var data struct {
		ServiceInstanceRedeploy bool `json:"serviceInstanceRedeploy"`
	}
	vars := map[string]any{
		"environmentId": environmentID,
		"serviceId":     serviceID,
	}
	if err := c.Do(ctx, serviceInstanceRedeployOp, vars, &data); err != nil {
		return fmt.Errorf("failed to redeploy service %s: %w", serviceID, err)
	}
	return rejected(serviceInstanceRedeployOp, data.ServiceInstanceRedeploy)
}

// TriggerEnvironmentDeploy asks the platform to deploy every service in the
// environment.
func (c *Client) TriggerEnvironmentDeploy(ctx context.Context, environmentID string) error {
	var data struct {
		EnvironmentTriggersDeploy bool `json:"environmentTriggersDeploy"`
	}
	vars := map[string]any{
		"input": map[string]any{"environmentId": environmentID},
	}
	if err := c.Do(ctx, environmentTriggersDeployOp, vars, &data); err != nil {
		return fmt.Errorf("failed to trigger environment deploy: %w", err)
	}
	return rejected(environmentTriggersDeployOp, data.EnvironmentTriggersDeploy)
}

// RestartDeployment restarts an existing deployment.
func (c *Client) RestartDeployment(ctx context.Context, deploymentID string) error {
	var data struct {
		DeploymentRestart bool `json:"deploymentRestart"`
	}
	if err := c.Do(ctx, deploymentRestartOp, map[string]any{"id": deploymentID}, &data); err != nil {
		return fmt.Errorf("failed to restart deployment %s: %w", deploymentID, err)
	}
	return rejected(deploymentRestartOp, data.DeploymentRestart)
}

// rejected reports a mutation that answered false.
func rejected(op *Operation, ok bool) error {
	if ok {
		return nil
	}
	return &QueryError{Operation: op.Name, Messages: []string{"mutation was not accepted"}}
}
