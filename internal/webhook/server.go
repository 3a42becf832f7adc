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

package webhook

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/railway-preview/internal/event"
	"github.com/mikelane/railway-preview/internal/metrics"
)

const (
	// DefaultQueueSize bounds the deliveries waiting for the worker
	DefaultQueueSize = 64

	maxPayloadBytes = 25 << 20
)

// Delivery results recorded in metrics.WebhookEvents.
const (
	resultAccepted         = "accepted"
	resultIgnored          = "ignored"
	resultInvalidSignature = "invalid_signature"
	resultBadPayload       = "bad_payload"
	resultRateLimited      = "rate_limited"
	resultQueueFull        = "queue_full"
)

// Processor handles one event. Errors are logged by the worker.
type Processor interface {
	Process(ctx context.Context, ev *event.Event) error
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, ev *event.Event) error

// Process calls f.
func (f ProcessorFunc) Process(ctx context.Context, ev *event.Event) error {
	return f(ctx, ev)
}

type job struct {
	delivery string
	event    *event.Event
}

// Server handles GitHub webhook requests
type Server struct {
	addr          string
	webhookSecret string
	repository    string
	processor     Processor
	rateLimiter   *RateLimiter
	server        *http.Server

	mu     sync.Mutex
	jobs   chan job
	closed bool
	wg     sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithRepository only accepts deliveries for owner/name.
func WithRepository(fullName string) Option {
	return func(s *Server) { s.repository = fullName }
}

// WithQueueSize overrides DefaultQueueSize.
func WithQueueSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.jobs = make(chan job, n)
		}
	}
}

// WithRateLimiter replaces the default limiter of 10 deliveries per second.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) { s.rateLimiter = rl }
}

// NewServer creates a new webhook server
func NewServer(addr, webhookSecret string, processor Processor, opts ...Option) *Server {
	s := &Server{
		addr:          addr,
		webhookSecret: webhookSecret,
		processor:     processor,
		rateLimiter:   NewRateLimiter(10, time.Second),
		jobs:          make(chan job, DefaultQueueSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.handleWebhook)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// Start serves until ctx is cancelled, then stops accepting deliveries and
// waits for the worker to finish the event in progress.
func (s *Server) Start(ctx context.Context) error {
	logger := log.FromContext(ctx)

	s.startWorker(ctx)
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting webhook server", "addr", s.addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var err error
	select {
	case <-ctx.Done():
		err = s.Shutdown(context.Background())
	case err = <-errChan:
	}
	s.stopWorker()
	return err
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	log.FromContext(ctx).Info("Shutting down webhook server")
	return s.server.Shutdown(ctx)
}

func (s *Server) startWorker(ctx context.Context) {
	s.wg.Add(1)
	go s.worker(ctx)
}

// stopWorker closes the queue and waits for the worker to exit.
func (s *Server) stopWorker() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.jobs)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Server) enqueue(j job) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.jobs <- j:
		return true
	default:
		return false
	}
}

// worker processes queued events one at a time
func (s *Server) worker(ctx context.Context) {
	defer s.wg.Done()
	logger := log.FromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.V(1).Info("Worker exiting: context done")
			return
		case j, ok := <-s.jobs:
			if !ok {
				logger.V(1).Info("Worker exiting: queue closed")
				return
			}
			jobLogger := logger.WithValues("delivery", j.delivery, "event", j.event.Name, "repository", j.event.PR.FullName())
			jobLogger.Info("Processing event")
			if err := s.processor.Process(log.IntoContext(ctx, jobLogger), j.event); err != nil {
				jobLogger.Error(err, "Failed to process event")
				continue
			}
			jobLogger.Info("Processed event")
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventType := r.Header.Get("X-GitHub-Event")
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		logger.Error(err, "Failed to read request body")
		s.count(eventType, resultBadPayload)
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !ValidateSignature(payload, r.Header.Get("X-Hub-Signature-256"), s.webhookSecret) {
		logger.Info("Invalid webhook signature")
		s.count(eventType, resultInvalidSignature)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	switch eventType {
	case "ping":
		s.count(eventType, resultIgnored)
		_, _ = w.Write([]byte("pong"))
		return
	case event.PullRequest, event.PullRequestTarget, event.Push:
	default:
		logger.V(1).Info("Ignoring event", "event", eventType)
		s.count(eventType, resultIgnored)
		w.WriteHeader(http.StatusOK)
		return
	}

	ev, err := event.Parse(eventType, payload)
	if err != nil {
		logger.Error(err, "Failed to parse JSON payload")
		s.count(eventType, resultBadPayload)
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	repo := ev.PR.FullName()
	if s.repository != "" && !strings.EqualFold(repo, s.repository) {
		logger.Info("Ignoring event for another repository", "repository", repo)
		s.count(eventType, resultIgnored)
		w.WriteHeader(http.StatusOK)
		return
	}

	if !s.rateLimiter.Allow(repo) {
		logger.Info("Rate limit exceeded", "repository", repo)
		s.count(eventType, resultRateLimited)
		http.Error(w, "Too many requests", http.StatusTooManyRequests)
		return
	}

	delivery := r.Header.Get("X-GitHub-Delivery")
	if delivery == "" {
		delivery = uuid.NewString()
	}
	if !s.enqueue(job{delivery: delivery, event: ev}) {
		logger.Info("Event queue full, rejecting delivery", "delivery", delivery)
		s.count(eventType, resultQueueFull)
		http.Error(w, "Queue full", http.StatusServiceUnavailable)
		return
	}

	logger.V(1).Info("Queued event", "delivery", delivery, "event", eventType, "action", ev.Action)
	s.count(eventType, resultAccepted)
	w.WriteHeader(http.StatusAccepted)
}

// count records a delivery. The event header is unauthenticated, so only
// known names become label values.
func (s *Server) count(eventType, result string) {
	switch eventType {
	case event.PullRequest, event.PullRequestTarget, event.Push, "ping":
	default:
		eventType = "other"
	}
	metrics.WebhookEvents.WithLabelValues(eventType, result).Inc()
}
