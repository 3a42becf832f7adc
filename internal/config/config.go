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

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/mikelane/railway-preview/internal/comment"
	"github.com/mikelane/railway-preview/internal/environment"
	"github.com/mikelane/railway-preview/internal/railway"
)

// Defaults
const (
	DefaultURLWaitTimeout  = 120 * time.Second
	DefaultURLPollInterval = 10 * time.Second
	DefaultSweepInterval   = time.Hour
	DefaultListenAddr      = ":8080"
)

// Config holds every input of a run.
type Config struct {
	// Railway
	RailwayToken        string
	RailwayEndpoint     string
	SourceEnvironmentID string

	// GitHub
	GitHubToken  string
	GitHubAPIURL string
	// Repository is owner/name
	Repository string
	EventName  string
	EventPath  string

	// Behaviour
	EnvironmentNamePrefix string
	CommentOnPR           bool
	DeployOnCreate        bool
	WaitForURLs           bool
	URLWaitTimeout        time.Duration
	URLPollInterval       time.Duration
	CommentMarkerID       string

	// Serve mode
	WebhookSecret string
	ListenAddr    string
	SweepInterval time.Duration
}

// fileConfig is the YAML file layout. Durations are in seconds.
type fileConfig struct {
	RailwayEndpoint       string `yaml:"railway_endpoint"`
	SourceEnvironmentID   string `yaml:"source_environment_id"`
	GitHubAPIURL          string `yaml:"github_api_url"`
	Repository            string `yaml:"repository"`
	EnvironmentNamePrefix string `yaml:"environment_name_prefix"`
	CommentOnPR           *bool  `yaml:"comment_on_pr"`
	DeployOnCreate        *bool  `yaml:"deploy_on_create"`
	WaitForURLs           *bool  `yaml:"wait_for_urls"`
	URLWaitTimeout        *int   `yaml:"url_wait_timeout"`
	URLPollInterval       *int   `yaml:"url_poll_interval"`
	CommentMarkerID       string `yaml:"comment_marker_id"`
	ListenAddr            string `yaml:"listen_addr"`
	SweepInterval         *int   `yaml:"sweep_interval"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		RailwayEndpoint:       railway.DefaultEndpoint,
		GitHubAPIURL:          "https://api.github.com",
		EnvironmentNamePrefix: environment.DefaultPrefix,
		CommentOnPR:           true,
		DeployOnCreate:        true,
		WaitForURLs:           true,
		URLWaitTimeout:        DefaultURLWaitTimeout,
		URLPollInterval:       DefaultURLPollInterval,
		CommentMarkerID:       comment.DefaultMarkerID,
		ListenAddr:            DefaultListenAddr,
		SweepInterval:         DefaultSweepInterval,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// empty) and the environment. A .env file in the working directory is loaded
// first if present; it never overrides variables that are already set.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	var f fileConfig
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.RailwayEndpoint, f.RailwayEndpoint)
	setString(&c.SourceEnvironmentID, f.SourceEnvironmentID)
	setString(&c.GitHubAPIURL, f.GitHubAPIURL)
	setString(&c.Repository, f.Repository)
	setString(&c.EnvironmentNamePrefix, f.EnvironmentNamePrefix)
	setString(&c.CommentMarkerID, f.CommentMarkerID)
	setString(&c.ListenAddr, f.ListenAddr)
	if f.CommentOnPR != nil {
		c.CommentOnPR = *f.CommentOnPR
	}
	if f.DeployOnCreate != nil {
		c.DeployOnCreate = *f.DeployOnCreate
	}
	if f.WaitForURLs != nil {
		c.WaitForURLs = *f.WaitForURLs
	}
	if f.URLWaitTimeout != nil {
		c.URLWaitTimeout = time.Duration(*f.URLWaitTimeout) * time.Second
	}
	if f.URLPollInterval != nil {
		c.URLPollInterval = time.Duration(*f.URLPollInterval) * time.Second
	}
	if f.SweepInterval != nil {
		c.SweepInterval = time.Duration(*f.SweepInterval) * time.Second
	}
	return nil
}

// lookupFunc matches os.LookupEnv
type lookupFunc func(string) (string, bool)

func (c *Config) loadEnv(lookup lookupFunc) error {
	get := func(input string, fallbacks ...string) string {
		keys := append([]string{inputVar(input)}, fallbacks...)
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		return ""
	}

	setString(&c.RailwayToken, get("railway_token", "RAILWAY_TOKEN"))
	setString(&c.RailwayEndpoint, get("railway_endpoint", "RAILWAY_ENDPOINT"))
	setString(&c.SourceEnvironmentID, get("source_environment_id", "RAILWAY_SOURCE_ENV_ID"))
	setString(&c.GitHubToken, get("github_token", "GITHUB_TOKEN"))
	setString(&c.GitHubAPIURL, get("github_api_url", "GITHUB_API_URL"))
	setString(&c.Repository, get("repository", "GITHUB_REPOSITORY"))
	setString(&c.EventName, get("event_name", "GITHUB_EVENT_NAME"))
	setString(&c.EventPath, get("event_path", "GITHUB_EVENT_PATH"))
	setString(&c.EnvironmentNamePrefix, get("environment_name_prefix"))
	setString(&c.CommentMarkerID, get("comment_marker_id"))
	setString(&c.WebhookSecret, get("webhook_secret", "GITHUB_WEBHOOK_SECRET"))
	setString(&c.ListenAddr, get("listen_addr"))

	var errs []error
	for _, b := range []struct {
		name string
		dst  *bool
	}{
		{"comment_on_pr", &c.CommentOnPR},
		{"deploy_on_create", &c.DeployOnCreate},
		{"wait_for_urls", &c.WaitForURLs},
	} {
		if err := setBool(b.dst, b.name, get(b.name)); err != nil {
			errs = append(errs, err)
		}
	}
	for _, d := range []struct {
		name string
		dst  *time.Duration
	}{
		{"url_wait_timeout", &c.URLWaitTimeout},
		{"url_poll_interval", &c.URLPollInterval},
		{"sweep_interval", &c.SweepInterval},
	} {
		if err := setSeconds(d.dst, d.name, get(d.name)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SkipReason explains why a run has nothing to do, or returns "" when it
// can proceed. Fork pull requests run without secrets, so both the token and
// the source environment may be missing.
func (c *Config) SkipReason() string {
	switch {
	case c.RailwayToken == "":
		return "railway_token not provided"
	case c.SourceEnvironmentID == "":
		return "source_environment_id not provided"
	}
	return ""
}

// Skip reports whether the run must be skipped.
func (c *Config) Skip() bool {
	return c.SkipReason() != ""
}

// Validate checks the inputs a run cannot do without.
func (c *Config) Validate() error {
	var errs []error
	if c.SourceEnvironmentID == "" {
		errs = append(errs, &railway.ValidationError{Field: "source_environment_id", Reason: "is required"})
	}
	if c.URLWaitTimeout < 0 {
		errs = append(errs, &railway.ValidationError{Field: "url_wait_timeout", Value: c.URLWaitTimeout.String(), Reason: "must not be negative"})
	}
	if c.URLPollInterval <= 0 {
		errs = append(errs, &railway.ValidationError{Field: "url_poll_interval", Value: c.URLPollInterval.String(), Reason: "must be positive"})
	}
	if c.Repository != "" {
		if _, _, err := c.OwnerRepo(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OwnerRepo splits Repository.
func (c *Config) OwnerRepo() (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(c.Repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", &railway.ValidationError{Field: "repository", Value: c.Repository, Reason: "must be owner/name"}
	}
	return owner, repo, nil
}

// inputVar returns the environment variable GitHub Actions uses for an
// action input.
func inputVar(name string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, name, v string) error {
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return &railway.ValidationError{Field: name, Value: v, Reason: "must be true or false"}
	}
	*dst = b
	return nil
}

func setSeconds(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return &railway.ValidationError{Field: name, Value: v, Reason: "must be a whole number of seconds"}
	}
	*dst = time.Duration(n) * time.Second
	return nil
}
