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
	"fmt"
	"sync"

	"github.com/mikelane/railway-preview/internal/github"
	"github.com/mikelane/railway-preview/internal/railway"
)

const (
	testProjectID = "proj-1"
	testSourceID  = "env-source"
)

// fakePlatform is an in-memory Railway project with one source environment.
// Previews get their domain once they have been fetched readyAfter times.
type fakePlatform struct {
	mu sync.Mutex

	envs       map[string]*railway.Environment
	nextID     int
	readyAfter int
	domains    map[string]string
	gets       map[string]int

	createCalls   int
	deleteCalls   int
	redeployCalls int
	triggerCalls  int
	restartCalls  int

	sourceErr   error
	redeployErr error
	triggerErr  error
	deleteErr   error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		envs: map[string]*railway.Environment{
			testSourceID: {
				ID:        testSourceID,
				Name:      "staging",
				ProjectID: testProjectID,
				ServiceInstances: []railway.ServiceInstance{
					{ID: "si-1", ServiceID: "svc-1", ServiceName: "web"},
				},
			},
		},
		domains: map[string]string{},
		gets:    map[string]int{},
	}
}

// addPreview stores an existing preview environment and returns its id.
func (f *fakePlatform) addPreview(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("env-%d", f.nextID)
	f.envs[id] = &railway.Environment{
		ID:        id,
		Name:      name,
		ProjectID: testProjectID,
		ServiceInstances: []railway.ServiceInstance{
			{ID: "si-" + id, ServiceID: "svc-1", ServiceName: "web"},
		},
	}
	return id
}

func (f *fakePlatform) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.envs[id]
	return ok
}

func (f *fakePlatform) GetEnvironment(_ context.Context, id string) (*railway.Environment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == testSourceID && f.sourceErr != nil {
		return nil, f.sourceErr
	}
	env, ok := f.envs[id]
	if !ok {
		return nil, &railway.NotFoundError{Kind: "environment", ID: id}
	}
	f.gets[id]++
	cp := *env
	cp.ServiceInstances = append([]railway.ServiceInstance(nil), env.ServiceInstances...)
	if domain, ok := f.domains[env.Name]; ok && f.gets[id] > f.readyAfter {
		for i := range cp.ServiceInstances {
			cp.ServiceInstances[i].Domains.ServiceDomains = []railway.Domain{{ID: "d-" + id, Domain: domain}}
		}
	}
	return &cp, nil
}

func (f *fakePlatform) CreateEnvironment(_ context.Context, in railway.CreateEnvironmentInput) (*railway.Environment, error) {
	f.mu.Lock()
	f.createCalls++
	f.mu.Unlock()
	id := f.addPreview(in.Name)
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.envs[id]
	return &cp, nil
}

func (f *fakePlatform) DeleteEnvironment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.envs, id)
	return nil
}

func (f *fakePlatform) ListProjectEnvironments(_ context.Context, projectID string) ([]railway.Environment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []railway.Environment
	for _, env := range f.envs {
		if env.ProjectID == projectID {
			out = append(out, *env)
		}
	}
	return out, nil
}

func (f *fakePlatform) ListEnvironmentsConnection(context.Context, string) ([]railway.Environment, error) {
	return nil, errors.New("not used")
}

func (f *fakePlatform) ListEnvironmentsFlat(context.Context, string) ([]railway.Environment, error) {
	return nil, errors.New("not used")
}

func (f *fakePlatform) RedeployServiceInstance(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.redeployCalls++
	return f.redeployErr
}

func (f *fakePlatform) TriggerEnvironmentDeploy(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggerCalls++
	return f.triggerErr
}

func (f *fakePlatform) RestartDeployment(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restartCalls++
	return nil
}

// fakeIssues keeps pull request comments in memory and records every body
// written.
type fakeIssues struct {
	comments    []*github.Comment
	bodies      []string
	createCalls int
	updateCalls int
	err         error
}

func (f *fakeIssues) ListComments(context.Context, string, string, int) ([]*github.Comment, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*github.Comment, 0, len(f.comments))
	for _, c := range f.comments {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeIssues) CreateComment(_ context.Context, _, _ string, _ int, body string) (*github.Comment, error) {
	f.createCalls++
	f.bodies = append(f.bodies, body)
	c := &github.Comment{ID: int64(len(f.comments) + 1), Body: body, AuthorType: "Bot"}
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeIssues) UpdateComment(_ context.Context, _, _ string, id int64, body string) (*github.Comment, error) {
	f.updateCalls++
	f.bodies = append(f.bodies, body)
	for _, c := range f.comments {
		if c.ID == id {
			c.Body = body
			return c, nil
		}
	}
	return nil, errors.New("comment not found")
}

func (f *fakeIssues) last() string {
	if len(f.bodies) == 0 {
		return ""
	}
	return f.bodies[len(f.bodies)-1]
}

// fakeFinder maps branches to open pull requests.
type fakeFinder struct {
	prs   map[string]int
	err   error
	calls int
}

func (f *fakeFinder) FindOpenPullRequest(_ context.Context, _, _, branch string) (*github.PullRequest, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	n, ok := f.prs[branch]
	if !ok {
		return nil, nil
	}
	return &github.PullRequest{Number: n, HeadBranch: branch, State: "open"}, nil
}
