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

package environment

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/railway-preview/internal/railway"
)

// Registry manages preview environments within a project.
type Registry struct {
	platform   Platform
	strategies []ListStrategy
}

// Option configures a Registry.
type Option func(*Registry)

// WithListStrategies replaces DefaultListStrategies.
func WithListStrategies(strategies ...ListStrategy) Option {
	return func(r *Registry) { r.strategies = strategies }
}

// NewRegistry creates a Registry backed by platform.
func NewRegistry(platform Platform, opts ...Option) *Registry {
	r := &Registry{
		platform:   platform,
		strategies: DefaultListStrategies,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ensure returns the environment called name in projectID, cloning
// sourceEnvironmentID to create it when it does not exist yet. created is
// true only when this call created the environment.
func (r *Registry) Ensure(ctx context.Context, projectID, sourceEnvironmentID, name string) (env *railway.Environment, created bool, err error) {
	logger := log.FromContext(ctx).WithValues("environment", name)

	if err := ValidateName(name); err != nil {
		return nil, false, err
	}
	if projectID == "" {
		return nil, false, &railway.ValidationError{Field: "project id", Reason: "must not be empty"}
	}
	if sourceEnvironmentID == "" {
		return nil, false, &railway.ValidationError{Field: "source environment id", Reason: "must not be empty"}
	}

	existing, err := r.FindByName(ctx, projectID, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up environment: %w", err)
	}
	if existing != nil {
		logger.Info("Reusing existing environment", "environmentID", existing.ID)
		return existing, false, nil
	}

	logger.Info("Creating environment", "projectID", projectID, "sourceEnvironmentID", sourceEnvironmentID)
	env, err = r.platform.CreateEnvironment(ctx, railway.CreateEnvironmentInput{
		ProjectID:           projectID,
		SourceEnvironmentID: sourceEnvironmentID,
		Name:                name,
	})
	if err != nil {
		// the platform may have applied the create before the failure
		if !railway.IsTransient(err) {
			return nil, false, err
		}
		found, findErr := r.FindByName(ctx, projectID, name)
		if findErr != nil || found == nil {
			return nil, false, err
		}
		logger.Info("Found environment after failed create response", "environmentID", found.ID, "error", err.Error())
		return found, true, nil
	}
	logger.Info("Created environment", "environmentID", env.ID)
	return env, true, nil
}

// Get returns the current state of an environment, including its services.
func (r *Registry) Get(ctx context.Context, id string) (*railway.Environment, error) {
	return r.platform.GetEnvironment(ctx, id)
}

// Delete removes an environment. Callers decide beforehand whether it exists.
func (r *Registry) Delete(ctx context.Context, id string) error {
	log.FromContext(ctx).Info("Deleting environment", "environmentID", id)
	return r.platform.DeleteEnvironment(ctx, id)
}

// ListByProject lists every environment of projectID.
func (r *Registry) ListByProject(ctx context.Context, projectID string) ([]railway.Environment, error) {
	return listWithStrategies(ctx, r.platform, r.strategies, projectID)
}

// FindByName returns the environment called name, or nil if there is none.
func (r *Registry) FindByName(ctx context.Context, projectID, name string) (*railway.Environment, error) {
	envs, err := r.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range envs {
		if envs[i].Name == name {
			return &envs[i], nil
		}
	}
	return nil, nil
}
