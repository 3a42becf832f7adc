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

// PullRequestEvent represents a GitHub pull_request webhook event
type PullRequestEvent struct {
	PullRequest PullRequestPayload `json:"pull_request"`
	Repository  Repository         `json:"repository"`
	Action      string             `json:"action"`
	Number      int                `json:"number"`
}

// PushEvent represents a GitHub push webhook event
type PushEvent struct {
	Repository Repository `json:"repository"`
	Ref        string     `json:"ref"`
	After      string     `json:"after"`
	Deleted    bool       `json:"deleted"`
}

// PullRequestPayload contains PR metadata
type PullRequestPayload struct {
	Head   Ref    `json:"head"`
	Base   Ref    `json:"base"`
	Title  string `json:"title"`
	State  string `json:"state"`
	Number int    `json:"number"`
	Merged bool   `json:"merged"`
}

// Ref represents a git reference (branch)
type Ref struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// Repository contains repository metadata
type Repository struct {
	FullName string `json:"full_name"`
	Name     string `json:"name"`
	Owner    Owner  `json:"owner"`
}

// Owner represents the repository owner
type Owner struct {
	Login string `json:"login"`
}
