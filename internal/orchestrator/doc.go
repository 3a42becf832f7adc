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

// Package orchestrator maps repository events onto preview environment
// lifecycle operations.
//
// Every run starts from scratch: the event decides the Plan, the source
// environment decides the project, and the state of the platform decides
// whether the preview is created or reused. Nothing is kept between runs.
//
// Plans:
//   - EnsureAndDeploy (pull request opened, synchronize, reopened, or a push
//     to the branch of an open pull request): find or create the preview,
//     trigger a deployment, optionally wait for URLs, then update the status
//     comment.
//   - TearDown (pull request closed): delete the preview and mark the status
//     comment as deleted.
//   - NoOp: anything else.
//
// Only a source environment that cannot be resolved, or a preview that cannot
// be found or created, fails a run. Deploy, URL discovery and comment
// failures become warnings on the Outcome, and tear-down never fails.
package orchestrator
