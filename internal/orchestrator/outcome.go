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
	"strconv"

	"github.com/mikelane/railway-preview/internal/railway"
)

// DeployStatus tells apart the ways a deployment can end up.
type DeployStatus string

const (
	// DeployStatusDeployed means a deploy strategy succeeded
	DeployStatusDeployed DeployStatus = "deployed"
	// DeployStatusSkipped means deploy on create was disabled
	DeployStatusSkipped DeployStatus = "skipped"
	// DeployStatusFailed means every strategy failed; deploy manually
	DeployStatusFailed DeployStatus = "failed"
)

// Action values reported in outputs.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionNoop    = "noop"
	ActionSkipped = "skipped"
)

// Outcome is the result of a run.
type Outcome struct {
	Plan   PlanKind
	Reason string
	Action string

	EnvironmentID   string
	EnvironmentName string

	DeployStatus   DeployStatus
	DeployStrategy string
	URLs           []railway.DeploymentURL

	// Warnings lists non-fatal failures
	Warnings []string
}

// Skipped is the outcome of a run without platform credentials.
func Skipped(reason string) *Outcome {
	return &Outcome{Plan: PlanNoOp, Reason: reason, Action: ActionSkipped}
}

// DeploymentURL returns the first discovered URL, if any.
func (o *Outcome) DeploymentURL() string {
	if len(o.URLs) == 0 {
		return ""
	}
	return o.URLs[0].URL
}

// Outputs returns the step outputs for the outcome. Empty values are left
// out.
func (o *Outcome) Outputs() map[string]string {
	out := map[string]string{
		"action": o.Action,
	}
	if o.Action == ActionSkipped {
		out["skipped"] = "true"
		return out
	}
	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	set("environment_id", o.EnvironmentID)
	set("environment_name", o.EnvironmentName)
	set("deployment_url", o.DeploymentURL())
	set("deploy_status", string(o.DeployStatus))
	if o.Plan == PlanEnsureAndDeploy {
		out["url_count"] = strconv.Itoa(len(o.URLs))
	}
	return out
}

func (o *Outcome) warn(msg string) {
	o.Warnings = append(o.Warnings, msg)
}
