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

package cli

import (
	"fmt"

	"github.com/mikelane/railway-preview/internal/comment"
	"github.com/mikelane/railway-preview/internal/config"
	"github.com/mikelane/railway-preview/internal/deploy"
	"github.com/mikelane/railway-preview/internal/discovery"
	"github.com/mikelane/railway-preview/internal/environment"
	"github.com/mikelane/railway-preview/internal/github"
	"github.com/mikelane/railway-preview/internal/orchestrator"
	"github.com/mikelane/railway-preview/internal/railway"
)

// app is the wired object graph for one configuration.
type app struct {
	cfg          *config.Config
	railway      *railway.Client
	registry     *environment.Registry
	github       github.Client
	owner, repo  string
	orchestrator *orchestrator.Orchestrator
}

// newApp builds the clients. The GitHub client is only created when a token
// is configured; comments and push resolution additionally need the
// repository.
func newApp(cfg *config.Config) (*app, error) {
	rw := railway.NewClient(cfg.RailwayToken, railway.WithEndpoint(cfg.RailwayEndpoint))
	a := &app{
		cfg:      cfg,
		railway:  rw,
		registry: environment.NewRegistry(rw),
	}

	deps := orchestrator.Dependencies{
		Registry: a.registry,
		Deployer: deploy.NewTrigger(rw),
		Waiter:   discovery.NewWaiter(rw, cfg.URLPollInterval),
	}

	if cfg.GitHubToken != "" {
		gh, err := github.NewClient(cfg.GitHubToken, github.WithBaseURL(cfg.GitHubAPIURL))
		if err != nil {
			return nil, fmt.Errorf("failed to create GitHub client: %w", err)
		}
		a.github = gh
		if cfg.Repository != "" {
			owner, repo, err := cfg.OwnerRepo()
			if err != nil {
				return nil, err
			}
			a.owner, a.repo = owner, repo
			deps.Commenter = comment.NewReconciler(gh, owner, repo, cfg.CommentMarkerID)
			deps.Finder = gh
		}
	}

	a.orchestrator = orchestrator.New(deps, orchestrator.Options{
		SourceEnvironmentID: cfg.SourceEnvironmentID,
		NamePrefix:          cfg.EnvironmentNamePrefix,
		CommentOnPR:         cfg.CommentOnPR,
		DeployOnCreate:      cfg.DeployOnCreate,
		WaitForURLs:         cfg.WaitForURLs,
		URLWaitTimeout:      cfg.URLWaitTimeout,
	})
	return a, nil
}

// canComment reports whether the GitHub side is fully configured.
func (a *app) canComment() bool {
	return a.github != nil && a.repo != ""
}
