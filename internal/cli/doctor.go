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

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mikelane/railway-preview/internal/config"
	"github.com/mikelane/railway-preview/internal/environment"
	"github.com/mikelane/railway-preview/internal/railway"
)

func newDoctorCmd(g *globalOptions) *cobra.Command {
	var (
		o     overrides
		probe bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check credentials and Railway API access",
		Long: `Check credentials and Railway API access.

Resolves the source environment, lists the environments of its project and,
with --probe, creates and deletes a throwaway environment to prove the token
may manage environments. Prints a hint for every failed check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g, &o)
			if err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			d := &doctor{out: cmd.OutOrStdout(), cfg: cfg, registry: a.registry, endpoint: a.railway.Endpoint()}
			if a.canComment() {
				d.github = fmt.Sprintf("%s/%s", a.owner, a.repo)
			}
			return d.run(cmd.Context(), probe)
		},
	}

	o.register(cmd)
	cmd.Flags().BoolVar(&probe, "probe", false, "create and delete a throwaway environment")
	return cmd
}

// doctorRegistry is what the checks need from environment.Registry.
type doctorRegistry interface {
	Ensure(ctx context.Context, projectID, sourceEnvironmentID, name string) (*railway.Environment, bool, error)
	Get(ctx context.Context, id string) (*railway.Environment, error)
	Delete(ctx context.Context, id string) error
	ListByProject(ctx context.Context, projectID string) ([]railway.Environment, error)
}

type doctor struct {
	out      io.Writer
	cfg      *config.Config
	registry doctorRegistry
	endpoint string
	github   string
	failed   int
}

func (d *doctor) ok(format string, args ...any) {
	_, _ = fmt.Fprintf(d.out, "✓ "+format+"\n", args...)
}

func (d *doctor) fail(err error, format string, args ...any) {
	d.failed++
	_, _ = fmt.Fprintf(d.out, "✗ "+format+": %v\n", append(args, err)...)
	if h := hint(err); h != "" {
		_, _ = fmt.Fprintf(d.out, "  hint: %s\n", h)
	}
}

func (d *doctor) run(ctx context.Context, probe bool) error {
	_, _ = fmt.Fprintf(d.out, "Railway endpoint: %s\n", d.endpoint)

	if d.cfg.RailwayToken == "" {
		d.fail(errors.New("not set"), "railway_token")
		return d.result()
	}
	d.ok("railway_token is set")

	if d.github != "" {
		d.ok("GitHub comments enabled for %s", d.github)
	} else {
		_, _ = fmt.Fprintln(d.out, "- GitHub comments disabled (github_token or repository not set)")
	}

	if d.cfg.SourceEnvironmentID == "" {
		d.fail(errors.New("not set"), "source_environment_id")
		return d.result()
	}
	src, err := d.registry.Get(ctx, d.cfg.SourceEnvironmentID)
	if err != nil {
		d.fail(err, "resolve source environment %s", d.cfg.SourceEnvironmentID)
		return d.result()
	}
	d.ok("source environment %q (%s) in project %s, %d service(s)", src.Name, src.ID, src.ProjectID, len(src.ServiceInstances))

	envs, err := d.registry.ListByProject(ctx, src.ProjectID)
	if err != nil {
		d.fail(err, "list project environments")
	} else {
		previews := 0
		for _, env := range envs {
			if _, ok := environment.PRNumber(d.cfg.EnvironmentNamePrefix, env.Name); ok {
				previews++
			}
		}
		d.ok("project has %d environment(s), %d preview(s) named %s<number>", len(envs), previews, d.cfg.EnvironmentNamePrefix)
	}

	if probe {
		d.probe(ctx, src)
	}
	return d.result()
}

// probe creates and deletes a throwaway environment.
func (d *doctor) probe(ctx context.Context, src *railway.Environment) {
	name := "probe-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	env, _, err := d.registry.Ensure(ctx, src.ProjectID, src.ID, name)
	if err != nil {
		d.fail(err, "create probe environment %s", name)
		return
	}
	d.ok("created probe environment %s (%s)", env.Name, env.ID)

	if err := d.registry.Delete(ctx, env.ID); err != nil {
		d.fail(err, "delete probe environment %s, delete it by hand", env.ID)
		return
	}
	d.ok("deleted probe environment %s", env.Name)
}

func (d *doctor) result() error {
	if d.failed > 0 {
		return fmt.Errorf("%d check(s) failed", d.failed)
	}
	return nil
}

// hint suggests a fix for a failed check.
func hint(err error) string {
	var te *railway.TransportError
	if errors.As(err, &te) {
		switch te.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "the token was rejected; use an account or team token from railway.com/account/tokens with access to the project"
		case http.StatusNotFound:
			return "the endpoint was not found; check railway_endpoint"
		case http.StatusBadRequest:
			return "the request was rejected; the query shape may not match this API version"
		case 0:
			return "the endpoint could not be reached; check network access and railway_endpoint"
		}
	}
	switch {
	case railway.IsNotFound(err):
		return "the environment does not exist or the token cannot see it; check source_environment_id"
	case railway.IsValidation(err):
		return "fix the input named above"
	}
	var qe *railway.QueryError
	if errors.As(err, &qe) && strings.Contains(strings.ToLower(qe.Error()), "not authorized") {
		return "the token lacks access to this project; a project token cannot create environments"
	}
	return ""
}
