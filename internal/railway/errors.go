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
	"fmt"
	"net/http"
	"strings"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// TransportError is a failure to exchange a request with the API: a non-2xx
// status, a network error, or a response body that could not be decoded.
type TransportError struct {
	// StatusCode is zero when no response was received
	StatusCode int
	// Body holds the raw response body, if any
	Body string
	Err  error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("railway api returned status %d: %s", e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("railway api returned status %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("railway api request failed: %v", e.Err)
	default:
		return "railway api request failed"
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// QueryError carries the GraphQL errors returned for a well-formed request.
type QueryError struct {
	Operation string
	Messages  []string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("railway %s: %s", e.Operation, strings.Join(e.Messages, "; "))
}

// ValidationError reports input rejected before any request was made.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsTransient reports whether a request that failed with err may succeed if
// sent again unchanged.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var te *TransportError
	if !errors.As(err, &te) {
		return false
	}
	switch te.StatusCode {
	case 0:
		// no response at all; a decode failure always has a status
		return te.Err != nil
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// classify maps an error returned by the GraphQL client onto the package's
// error kinds.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te
	}

	var list gqlerror.List
	if errors.As(err, &list) {
		qe := &QueryError{Operation: op}
		for _, e := range list {
			if e != nil {
				qe.Messages = append(qe.Messages, e.Message)
			}
		}
		return qe
	}

	var single *gqlerror.Error
	if errors.As(err, &single) {
		return &QueryError{Operation: op, Messages: []string{single.Message}}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// anything else came back on a 2xx response the client could not decode
	return &TransportError{StatusCode: http.StatusOK, Err: err}
}

// notFound converts a QueryError that reports a missing resource into a
// NotFoundError for kind/id. Other errors are returned unchanged.
func notFound(err error, kind, id string) error {
	var qe *QueryError
	if !errors.As(err, &qe) {
		return err
	}
	for _, m := range qe.Messages {
		if strings.Contains(strings.ToLower(m), "not found") {
			return &NotFoundError{Kind: kind, ID: id}
		}
	}
	return err
}
