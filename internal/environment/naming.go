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

package environment

import (
	"context"
	"regexp"
	"strconv"

	"github.com/mikelane/railway-preview/internal/railway"
)

const (
	// MaxNameLength is the longest environment name the platform accepts.
	MaxNameLength = 50
	// DefaultPrefix is prepended to the pull request number.
	DefaultPrefix = "pr-"
)

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Platform is the subset of the Railway API the Registry needs.
type Platform interface {
	GetEnvironment(ctx context.Context, id string) (*railway.Environment, error)
	CreateEnvironment(ctx context.Context, in railway.CreateEnvironmentInput) (*railway.Environment, error)
	DeleteEnvironment(ctx context.Context, id string) error
	ListProjectEnvironments(ctx context.Context, projectID string) ([]railway.Environment, error)
	ListEnvironmentsConnection(ctx context.Context, projectID string) ([]railway.Environment, error)
	ListEnvironmentsFlat(ctx context.Context, projectID string) ([]railway.Environment, error)
}

// ValidateName checks name against the platform's naming rules.
func ValidateName(name string) error {
	switch {
	case name == "":
		return &railway.ValidationError{Field: "environment name", Reason: "must not be empty"}
	case len(name) > MaxNameLength:
		return &railway.ValidationError{
			Field:  "environment name",
			Value:  name,
			Reason: "must be " + strconv.Itoa(MaxNameLength) + " characters or less",
		}
	case !validName.MatchString(name):
		return &railway.ValidationError{
			Field:  "environment name",
			Value:  name,
			Reason: "only alphanumeric characters, hyphens and underscores are allowed",
		}
	}
	return nil
}

// Name returns the environment name for a pull request.
func Name(prefix string, prNumber int) string {
	return prefix + strconv.Itoa(prNumber)
}

// PRNumber extracts the pull request number from an environment name built
// by Name. It reports false for names that do not carry prefix followed by a
// positive number.
func PRNumber(prefix, name string) (int, bool) {
	if prefix == "" || len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return 0, false
	}
	suffix := name[len(prefix):]
	n, err := strconv.Atoi(suffix)
	// only the canonical spelling maps back to the same name
	if err != nil || n <= 0 || strconv.Itoa(n) != suffix {
		return 0, false
	}
	return n, true
}
