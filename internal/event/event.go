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

package event

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// GitHub event names handled by the orchestrator.
const (
	PullRequest       = "pull_request"
	PullRequestTarget = "pull_request_target"
	Push              = "push"
)

// PRContext identifies the pull request a run is about. Number is zero for a
// push that has not been resolved to a pull request yet.
type PRContext struct {
	Number     int
	Branch     string
	Owner      string
	Repository string
}

// FullName returns owner/repository.
func (p PRContext) FullName() string {
	return p.Owner + "/" + p.Repository
}

// Event is a normalized repository event.
type Event struct {
	// Name is the GitHub event name, e.g. pull_request
	Name string
	// Action is the pull_request action; empty for push
	Action string
	PR     PRContext
	// Ref is the full git ref of a push
	Ref     string
	HeadSHA string
	// Deleted is set for a push that deleted the branch
	Deleted bool
}

// IsPullRequest reports pull_request and pull_request_target events.
func (e *Event) IsPullRequest() bool {
	return e.Name == PullRequest || e.Name == PullRequestTarget
}

// IsPush reports push events.
func (e *Event) IsPush() bool {
	return e.Name == Push
}

// Parse decodes payload for the named event. Events other than pull requests
// and pushes are returned with only Name set.
func Parse(name string, payload []byte) (*Event, error) {
	ev := &Event{Name: name}

	switch name {
	case PullRequest, PullRequestTarget:
		var pr PullRequestEvent
		if err := json.Unmarshal(payload, &pr); err != nil {
			return nil, fmt.Errorf("failed to parse %s payload: %w", name, err)
		}
		number := pr.Number
		if number == 0 {
			number = pr.PullRequest.Number
		}
		ev.Action = pr.Action
		ev.HeadSHA = pr.PullRequest.Head.SHA
		ev.PR = PRContext{
			Number: number,
			Branch: pr.PullRequest.Head.Ref,
		}
		ev.PR.Owner, ev.PR.Repository = splitRepository(pr.Repository)

	case Push:
		var push PushEvent
		if err := json.Unmarshal(payload, &push); err != nil {
			return nil, fmt.Errorf("failed to parse %s payload: %w", name, err)
		}
		ev.Ref = push.Ref
		ev.HeadSHA = push.After
		ev.Deleted = push.Deleted
		if branch, ok := strings.CutPrefix(push.Ref, "refs/heads/"); ok {
			ev.PR.Branch = branch
		}
		ev.PR.Owner, ev.PR.Repository = splitRepository(push.Repository)
	}

	return ev, nil
}

// Load reads and parses the event payload stored at path.
func Load(name, path string) (*Event, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload: %w", err)
	}
	return Parse(name, payload)
}

func splitRepository(repo Repository) (owner, name string) {
	owner, name = repo.Owner.Login, repo.Name
	if full, rest, ok := strings.Cut(repo.FullName, "/"); ok {
		if owner == "" {
			owner = full
		}
		if name == "" {
			name = rest
		}
	}
	return owner, name
}
