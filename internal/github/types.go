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

package github

import (
	"context"
	"time"
)

// Client interface defines the contract for interacting with GitHub API
type Client interface {
	// GetPullRequest retrieves metadata about a pull request
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error)
	// FindOpenPullRequest returns the open pull request whose head is branch,
	// or nil if there is none
	FindOpenPullRequest(ctx context.Context, owner, repo, branch string) (*PullRequest, error)
	// ListComments returns every comment on an issue or pull request
	ListComments(ctx context.Context, owner, repo string, number int) ([]*Comment, error)
	// CreateComment adds a comment to an issue or pull request
	CreateComment(ctx context.Context, owner, repo string, number int, body string) (*Comment, error)
	// UpdateComment replaces the body of an existing comment
	UpdateComment(ctx context.Context, owner, repo string, id int64, body string) (*Comment, error)
}

// PullRequest represents GitHub pull request metadata
type PullRequest struct {
	Number     int
	Title      string
	HeadSHA    string
	BaseBranch string
	HeadBranch string
	Author     string
	State      string // open, closed
	Merged     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsOpen reports whether the pull request is still open.
func (pr *PullRequest) IsOpen() bool {
	return pr != nil && pr.State == "open"
}

// Comment represents an issue or pull request comment
type Comment struct {
	ID         int64
	Body       string
	Author     string
	AuthorType string // User, Bot, Organization
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsBot reports whether the comment was written by an app or bot account.
func (c *Comment) IsBot() bool {
	return c != nil && c.AuthorType == "Bot"
}
