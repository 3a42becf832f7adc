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

// Package github provides the GitHub API integration used by railway-preview.
//
// The client covers what a preview run needs from GitHub: reading pull
// requests, resolving the open pull request for a pushed branch, and
// listing, creating and editing issue comments for the status comment.
//
// Authentication:
//
// The client takes a token (GITHUB_TOKEN in Actions, or a personal access
// token) with the following permissions:
//   - pull-requests: read (to resolve pull requests)
//   - issues: write (to post and update the status comment)
//
// Example usage:
//
//	client, err := github.NewClient(token)
//	if err != nil {
//	    return err
//	}
//
//	pr, err := client.FindOpenPullRequest(ctx, "owner", "repo", "feature-branch")
//	if err != nil {
//	    return err
//	}
//	if pr == nil {
//	    // no open pull request for the branch
//	}
//
// Retry Logic:
//
// Failed requests are retried with exponential backoff and jitter:
//   - Initial backoff: 100 milliseconds
//   - Maximum backoff: 30 seconds
//   - Maximum retries: 3
//
// Reads are retried for rate limits and 502/503/504 responses. Comment
// creation is not idempotent, so it is only retried when GitHub rejected the
// request outright because of a rate limit.
package github
