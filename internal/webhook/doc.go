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

// Package webhook implements the serve mode: a GitHub webhook receiver that
// feeds repository events to the orchestrator.
//
// Endpoints:
//   - POST /webhook: signed GitHub deliveries
//   - GET /healthz: liveness
//   - GET /metrics: Prometheus metrics
//
// Webhook Security:
//
// Every delivery must carry an X-Hub-Signature-256 header with the
// HMAC-SHA256 of the body under the webhook secret. Deliveries with a missing
// or wrong signature are rejected with HTTP 401.
//
// Processing:
//
// pull_request, pull_request_target and push deliveries are parsed, checked
// against the configured repository and queued; the handler answers 202
// without waiting. A single worker drains the queue so events are processed
// one after another, exactly like consecutive workflow runs. A full queue
// answers 503 so GitHub records the delivery as failed and it can be
// redelivered.
//
// Rate Limiting:
//
// Deliveries are rate-limited per repository with a token bucket, 10 per
// second by default. Deliveries over the limit receive HTTP 429.
package webhook
