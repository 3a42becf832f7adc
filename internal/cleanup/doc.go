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

// Package cleanup removes preview environments that outlived their pull
// request.
//
// A workflow run on PR close normally tears the preview down, but runs can be
// skipped or fail. The Scheduler catches those leftovers: it lists the
// environments of the project, picks the ones named <prefix><number>, asks
// GitHub whether pull request <number> is still open, and tears down the
// environments whose pull request is closed or merged.
//
// Rules:
//   - Environments not matching <prefix><number> are never touched
//   - Environments the platform reports as non-ephemeral are never touched
//   - If the pull request cannot be fetched the environment is skipped
//   - Tear-down goes through the orchestrator, so the status comment is
//     marked deleted as well
//
// Example usage:
//
//	scheduler := cleanup.NewScheduler(registry, githubClient, orch, cleanup.Options{
//		Owner:    "acme",
//		Repo:     "shop",
//		Prefix:   "pr-",
//		Interval: time.Hour,
//	})
//	if err := scheduler.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
package cleanup
