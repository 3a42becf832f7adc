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

package railway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Khan/genqlient/graphql"
	"golang.org/x/oauth2"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/util/retry"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// DefaultEndpoint is the public Railway GraphQL endpoint.
const DefaultEndpoint = "https://backboard.railway.com/graphql/v2"

// maxErrorBody bounds how much of a failed response is kept on a TransportError.
const maxErrorBody = 64 << 10

// DefaultBackoff is used for transient transport failures.
var DefaultBackoff = wait.Backoff{
	Steps:    3,
	Duration: 500 * time.Millisecond,
	Factor:   2.0,
	Jitter:   0.2,
	Cap:      10 * time.Second,
}

// Client talks to the Railway GraphQL API.
type Client struct {
	gql      graphql.Client
	endpoint string
	backoff  wait.Backoff
}

type options struct {
	endpoint   string
	httpClient *http.Client
	backoff    wait.Backoff
}

// Option configures a Client.
type Option func(*options)

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		if endpoint != "" {
			o.endpoint = endpoint
		}
	}
}

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped to
// add the bearer token.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithBackoff replaces DefaultBackoff.
func WithBackoff(b wait.Backoff) Option {
	return func(o *options) { o.backoff = b }
}

// NewClient creates a Client authenticating with token.
func NewClient(token string, opts ...Option) *Client {
	o := options{
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(&o)
	}

	authed := &http.Client{
		Timeout: o.httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: token,
				TokenType:   "Bearer",
			}),
			Base: o.httpClient.Transport,
		},
	}

	return &Client{
		gql:      graphql.NewClient(o.endpoint, &statusDoer{client: authed}),
		endpoint: o.endpoint,
		backoff:  o.backoff,
	}
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Do executes op with vars and decodes the data member of the response into
// out. Transient transport failures are retried for queries. Mutations are
// only resent after a 429, which the platform answers without applying them.
func (c *Client) Do(ctx context.Context, op *Operation, vars map[string]any, out any) error {
	logger := log.FromContext(ctx).WithValues("operation", op.Name)

	req := &graphql.Request{
		Query:     op.Query,
		Variables: vars,
		OpName:    op.Name,
	}

	retriable := IsTransient
	if op.Mutation {
		retriable = isRateLimited
	}

	attempt := 0
	return retry.OnError(c.backoff, retriable, func() error {
		attempt++
		err := classify(op.Name, c.gql.MakeRequest(ctx, req, &graphql.Response{Data: out}))
		if IsTransient(err) {
			logger.V(1).Info("Transient Railway API failure", "attempt", attempt, "error", err.Error())
		}
		return err
	})
}

func isRateLimited(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.StatusCode == http.StatusTooManyRequests
}

// statusDoer turns non-2xx responses and network failures into
// TransportErrors before the GraphQL client sees them, so the raw status and
// body survive.
type statusDoer struct {
	client *http.Client
}

func (d *statusDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	return resp, nil
}
