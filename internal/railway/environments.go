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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// CreateEnvironmentInput describes a clone of an existing environment.
type CreateEnvironmentInput struct {
	ProjectID           string
	SourceEnvironmentID string
	Name                string
}

// GetEnvironment fetches an environment with its service instances, domains
// and latest deployments.
func (c *Client) GetEnvironment(ctx context.Context, id string) (*Environment, error) {
	var data struct {
		Environment *environmentNode `json:"environment"`
	}
	if err := c.Do(ctx, getEnvironmentOp, map[string]any{"id": id}, &data); err != nil {
		return nil, fmt.Errorf("failed to get environment: %w", notFound(err, "environment", id))
	}
	if data.Environment == nil {
		return nil, &NotFoundError{Kind: "environment", ID: id}
	}
	return data.Environment.toEnvironment(), nil
}

// CreateEnvironment clones in.SourceEnvironmentID into a new environment.
func (c *Client) CreateEnvironment(ctx context.Context, in CreateEnvironmentInput) (*Environment, error) {
	vars := map[string]any{
		"input": map[string]any{
			"name":                in.Name,
			"projectId":           in.ProjectID,
			"sourceEnvironmentId": in.SourceEnvironmentID,
		},
	}
	var data struct {
		EnvironmentCreate *environmentNode `json:"environmentCreate"`
	}
	if err := c.Do(ctx, createEnvironmentOp, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to create environment: %w", err)
	}
	if data.EnvironmentCreate == nil {
		return nil, &QueryError{Operation: createEnvironmentOp.Name, Messages: []string{"no environment returned"}}
	}

	env := data.EnvironmentCreate.toEnvironment()
	if env.ProjectID == "" {
		env.ProjectID = in.ProjectID
	}
	return env, nil
}

// DeleteEnvironment deletes the environment with the given id.
func (c *Client) DeleteEnvironment(ctx context.Context, id string) error {
	var data struct {
		EnvironmentDelete bool `json:"environmentDelete"`
	}
	if err := c.Do(ctx, deleteEnvironmentOp, map[string]any{"id": id}, &data); err != nil {
		return fmt.Errorf("failed to delete environment: %w", notFound(err, "environment", id))
	}
	return rejected(deleteEnvironmentOp, data.EnvironmentDelete)
}

// ListProjectEnvironments lists environments through the project connection.
func (c *Client) ListProjectEnvironments(ctx context.Context, projectID string) ([]Environment, error) {
	var data struct {
		Project *struct {
			Environments connection[environmentNode] `json:"environments"`
		} `json:"project"`
	}
	if err := c.Do(ctx, projectEnvironmentsOp, map[string]any{"id": projectID}, &data); err != nil {
		return nil, fmt.Errorf("failed to list project environments: %w", notFound(err, "project", projectID))
	}
	if data.Project == nil {
		return nil, &NotFoundError{Kind: "project", ID: projectID}
	}
	return toEnvironments(data.Project.Environments.nodes(), projectID), nil
}

// ListEnvironmentsConnection lists environments through the top-level
// environments connection.
func (c *Client) ListEnvironmentsConnection(ctx context.Context, projectID string) ([]Environment, error) {
	var data struct {
		Environments connection[environmentNode] `json:"environments"`
	}
	if err := c.Do(ctx, environmentsConnectionOp, map[string]any{"projectId": projectID}, &data); err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	return toEnvironments(data.Environments.nodes(), projectID), nil
}

// ListEnvironmentsFlat lists environments using the oldest schema, where the
// field is a plain list. Some API versions return a single object instead.
func (c *Client) ListEnvironmentsFlat(ctx context.Context, projectID string) ([]Environment, error) {
	var data struct {
		Environments json.RawMessage `json:"environments"`
	}
	if err := c.Do(ctx, environmentsFlatOp, map[string]any{"projectId": projectID}, &data); err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}

	raw := bytes.TrimSpace(data.Environments)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Environment{}, nil
	}

	var nodes []environmentNode
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &nodes); err != nil {
			return nil, &TransportError{StatusCode: 200, Body: string(raw), Err: err}
		}
	} else {
		var single environmentNode
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, &TransportError{StatusCode: 200, Body: string(raw), Err: err}
		}
		nodes = append(nodes, single)
	}
	return toEnvironments(nodes, projectID), nil
}

func toEnvironments(nodes []environmentNode, projectID string) []Environment {
	out := make([]Environment, 0, len(nodes))
	for i := range nodes {
		env := nodes[i].toEnvironment()
		if env.ProjectID == "" {
			env.ProjectID = projectID
		}
		out = append(out, *env)
	}
	return out
}
