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
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
)

// githubClient implements the Client interface using go-github
type githubClient struct {
	client      *github.Client
	retryConfig *RetryConfig
}

// Option configures the client returned by NewClient
type Option func(*githubClient) error

// WithBaseURL points the client at a GitHub Enterprise Server API
func WithBaseURL(baseURL string) Option {
	return func(c *githubClient) error {
		if baseURL == "" || strings.TrimSuffix(baseURL, "/") == "https://api.github.com" {
			return nil
		}
		gh, err := c.client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return fmt.Errorf("invalid GitHub API URL %q: %w", baseURL, err)
		}
		c.client = gh
		return nil
	}
}

// WithRetryConfig replaces DefaultRetryConfig
func WithRetryConfig(cfg *RetryConfig) Option {
	return func(c *githubClient) error {
		c.retryConfig = cfg
		return nil
	}
}

// NewClient creates a new GitHub client with the provided token
func NewClient(token string, opts ...Option) (Client, error) {
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}

	c := &githubClient{
		client:      gh,
		retryConfig: DefaultRetryConfig(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// IsNotFound reports whether err is a 404 from the GitHub API
func IsNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}

// GetPullRequest retrieves metadata about a pull request
func (c *githubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	var pr *github.PullRequest

	err := c.executeWithRetry(ctx, isRetryableError, func() error {
		var err error
		pr, _, err = c.client.PullRequests.Get(ctx, owner, repo, number)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}

	return convertPullRequest(pr), nil
}

// FindOpenPullRequest returns the open pull request for branch, or nil
func (c *githubClient) FindOpenPullRequest(ctx context.Context, owner, repo, branch string) (*PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "open",
		Head:        owner + ":" + branch,
		ListOptions: github.ListOptions{PerPage: 10},
	}

	var prs []*github.PullRequest
	err := c.executeWithRetry(ctx, isRetryableError, func() error {
		var err error
		prs, _, err = c.client.PullRequests.List(ctx, owner, repo, opts)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}

	if len(prs) == 0 {
		return nil, nil
	}
	return convertPullRequest(prs[0]), nil
}

// ListComments returns every comment on an issue or pull request
func (c *githubClient) ListComments(ctx context.Context, owner, repo string, number int) ([]*Comment, error) {
	allComments := []*Comment{}
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		var comments []*github.IssueComment
		var resp *github.Response

		err := c.executeWithRetry(ctx, isRetryableError, func() error {
			var err error
			comments, resp, err = c.client.Issues.ListComments(ctx, owner, repo, number, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list comments: %w", err)
		}

		for _, comment := range comments {
			allComments = append(allComments, convertComment(comment))
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allComments, nil
}

// CreateComment adds a comment to an issue or pull request
func (c *githubClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) (*Comment, error) {
	var created *github.IssueComment

	err := c.executeWithRetry(ctx, isRateLimitError, func() error {
		var err error
		created, _, err = c.client.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
			Body: github.String(body),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return convertComment(created), nil
}

// UpdateComment replaces the body of an existing comment
func (c *githubClient) UpdateComment(ctx context.Context, owner, repo string, id int64, body string) (*Comment, error) {
	var updated *github.IssueComment

	err := c.executeWithRetry(ctx, isRetryableError, func() error {
		var err error
		updated, _, err = c.client.Issues.EditComment(ctx, owner, repo, id, &github.IssueComment{
			Body: github.String(body),
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return convertComment(updated), nil
}

// convertPullRequest converts a GitHub PR to our domain model
func convertPullRequest(pr *github.PullRequest) *PullRequest {
	if pr == nil {
		return nil
	}

	result := &PullRequest{
		Number:    pr.GetNumber(),
		Title:     pr.GetTitle(),
		State:     pr.GetState(),
		Merged:    pr.GetMerged(),
		CreatedAt: pr.GetCreatedAt().Time,
		UpdatedAt: pr.GetUpdatedAt().Time,
	}

	if pr.Head != nil {
		result.HeadSHA = pr.Head.GetSHA()
		result.HeadBranch = pr.Head.GetRef()
	}
	if pr.Base != nil {
		result.BaseBranch = pr.Base.GetRef()
	}
	if pr.User != nil {
		result.Author = pr.User.GetLogin()
	}

	return result
}

// convertComment converts a GitHub issue comment to our domain model
func convertComment(comment *github.IssueComment) *Comment {
	if comment == nil {
		return nil
	}

	result := &Comment{
		ID:        comment.GetID(),
		Body:      comment.GetBody(),
		CreatedAt: comment.GetCreatedAt().Time,
		UpdatedAt: comment.GetUpdatedAt().Time,
	}
	if comment.User != nil {
		result.Author = comment.User.GetLogin()
		result.AuthorType = comment.User.GetType()
	}
	return result
}
