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

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/railway-preview/internal/metrics"
	"github.com/mikelane/railway-preview/internal/railway"
)

// ListStrategy is one known way of listing the environments of a project.
type ListStrategy struct {
	Name string
	List func(ctx context.Context, p Platform, projectID string) ([]railway.Environment, error)
}

// DefaultListStrategies are tried in order, newest schema first.
var DefaultListStrategies = []ListStrategy{
	{
		Name: "project-connection",
		List: func(ctx context.Context, p Platform, projectID string) ([]railway.Environment, error) {
			return p.ListProjectEnvironments(ctx, projectID)
		},
	},
	{
		Name: "environments-connection",
		List: func(ctx context.Context, p Platform, projectID string) ([]railway.Environment, error) {
			return p.ListEnvironmentsConnection(ctx, projectID)
		},
	},
	{
		Name: "environments-flat",
		List: func(ctx context.Context, p Platform, projectID string) ([]railway.Environment, error) {
			return p.ListEnvironmentsFlat(ctx, projectID)
		},
	},
}

// listWithStrategies returns the result of the first strategy that succeeds,
// or the error of the last one if none does.
func listWithStrategies(ctx context.Context, p Platform, strategies []ListStrategy, projectID string) ([]railway.Environment, error) {
	logger := log.FromContext(ctx)

	var lastErr error
	for _, s := range strategies {
		envs, err := s.List(ctx, p, projectID)
		if err != nil {
			logger.V(1).Info("Environment list strategy failed", "strategy", s.Name, "error", err.Error())
			metrics.RecordStrategy("list", s.Name, metrics.OutcomeFailed)
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		logger.V(1).Info("Listed environments", "strategy", s.Name, "count", len(envs))
		metrics.RecordStrategy("list", s.Name, metrics.OutcomeSucceeded)
		return envs, nil
	}

	if lastErr == nil {
		lastErr = &railway.ValidationError{Field: "list strategies", Reason: "none configured"}
	}
	return nil, lastErr
}
