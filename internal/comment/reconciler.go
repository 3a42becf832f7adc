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

package comment

import (
	"context"
	"fmt"
	"strings"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/railway-preview/internal/github"
)

// DefaultMarkerID is used when no marker id is configured.
const DefaultMarkerID = "railway-preview"

// LegacyMarker is the visible text that identified status comments before
// hidden markers were introduced.
const LegacyMarker = "Railway Preview Environment"

// Action reports what Upsert did.
type Action string

const (
	// ActionCreated means a new comment was posted
	ActionCreated Action = "created"
	// ActionUpdated means an existing comment was edited
	ActionUpdated Action = "updated"
)

// Commenter is the subset of the GitHub API the Reconciler needs.
type Commenter interface {
	ListComments(ctx context.Context, owner, repo string, number int) ([]*github.Comment, error)
	CreateComment(ctx context.Context, owner, repo string, number int, body string) (*github.Comment, error)
	UpdateComment(ctx context.Context, owner, repo string, id int64, body string) (*github.Comment, error)
}

// Reconciler creates or updates the status comment of a pull request.
type Reconciler struct {
	client Commenter
	owner  string
	repo   string
	marker string
}

// NewReconciler creates a Reconciler for owner/repo. An empty markerID means
// DefaultMarkerID.
func NewReconciler(client Commenter, owner, repo, markerID string) *Reconciler {
	if markerID == "" {
		markerID = DefaultMarkerID
	}
	return &Reconciler{
		client: client,
		owner:  owner,
		repo:   repo,
		marker: fmt.Sprintf("<!-- railway-preview:%s -->", markerID),
	}
}

// Marker returns the hidden token stamped on every body.
func (r *Reconciler) Marker() string {
	return r.marker
}

// Upsert writes body to the pull request's status comment, creating the
// comment if it does not exist. Only the first matching comment is touched.
func (r *Reconciler) Upsert(ctx context.Context, prNumber int, body string) (Action, error) {
	logger := log.FromContext(ctx).WithValues("pr", prNumber)

	if !strings.Contains(body, r.marker) {
		body = strings.TrimRight(body, "\n") + "\n\n" + r.marker
	}

	comments, err := r.client.ListComments(ctx, r.owner, r.repo, prNumber)
	if err != nil {
		return "", err
	}

	if existing := r.find(comments); existing != nil {
		if _, err := r.client.UpdateComment(ctx, r.owner, r.repo, existing.ID, body); err != nil {
			return "", err
		}
		logger.Info("Updated PR comment", "commentID", existing.ID)
		return ActionUpdated, nil
	}

	created, err := r.client.CreateComment(ctx, r.owner, r.repo, prNumber, body)
	if err != nil {
		return "", err
	}
	if created != nil {
		logger.Info("Created PR comment", "commentID", created.ID)
	}
	return ActionCreated, nil
}

// find returns the first bot comment carrying the marker, falling back to
// the first bot comment with the legacy heading. Human comments are never
// candidates, even when they quote the marker.
func (r *Reconciler) find(comments []*github.Comment) *github.Comment {
	var legacy *github.Comment
	for _, c := range comments {
		if !c.IsBot() {
			continue
		}
		if strings.Contains(c.Body, r.marker) {
			return c
		}
		if legacy == nil && strings.Contains(c.Body, LegacyMarker) && !hasAnyMarker(c.Body) {
			legacy = c
		}
	}
	return legacy
}

// hasAnyMarker reports a body stamped with some marker, possibly another
// instance's.
func hasAnyMarker(body string) bool {
	return strings.Contains(body, "<!-- railway-preview:")
}
