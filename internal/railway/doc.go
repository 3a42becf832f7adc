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

// Package railway is a small client for the Railway GraphQL API.
//
// It covers the handful of operations a preview environment needs: reading an
// environment with its service topology, listing, cloning and deleting
// environments, and the three deploy mutations the platform has accepted over
// time.
//
// Requests go through genqlient's graphql.Client with a bearer token. Every
// failure is reported as one of four error kinds:
//
//   - *TransportError: non-2xx status, network failure or an unparsable body.
//     The raw status code and body are kept for troubleshooting.
//   - *QueryError: the API answered a well-formed request with GraphQL errors.
//   - *ValidationError: input rejected locally; nothing was sent.
//   - *NotFoundError: the referenced environment does not exist.
//
// Transient transport failures (429, 502, 503, 504 and network errors) are
// retried with exponential backoff. Query errors are never retried.
//
// Example usage:
//
//	client := railway.NewClient(token)
//
//	env, err := client.GetEnvironment(ctx, "env-id")
//	if railway.IsNotFound(err) {
//	    // handle missing environment
//	}
package railway
