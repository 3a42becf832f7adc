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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mikelane/railway-preview/internal/cleanup"
)

func newSweepCmd(g *globalOptions) *cobra.Command {
	var o overrides

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove previews of closed pull requests",
		Long: `Remove previews of closed pull requests.

Lists the environments of the project, checks the pull request behind every
environment named <prefix><number> and tears down the ones whose pull request
is closed. Needs a GitHub token and the repository.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, g, &o)
			if err != nil {
				return err
			}
			if cfg.RailwayToken == "" {
				return errors.New("railway_token is required to sweep")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			if !a.canComment() {
				return errors.New("github_token and repository are required to sweep")
			}

			scheduler := cleanup.NewScheduler(a.registry, a.github, a.orchestrator, cleanup.Options{
				Owner:  a.owner,
				Repo:   a.repo,
				Prefix: cfg.EnvironmentNamePrefix,
			})
			res, err := scheduler.Sweep(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range res.Deleted {
				_, _ = fmt.Fprintf(out, "deleted %s\n", name)
			}
			_, _ = fmt.Fprintf(out, "checked %d, deleted %d, kept %d, skipped %d, failed %d\n",
				res.Checked, len(res.Deleted), res.Kept, res.Skipped, res.Failed)
			if res.Failed > 0 {
				return fmt.Errorf("%d environment(s) could not be deleted", res.Failed)
			}
			return nil
		},
	}

	o.register(cmd)
	return cmd
}
