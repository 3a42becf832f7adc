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

// Package cli provides the cobra command tree of railway-preview.
//
// Commands:
//   - run: handle the event of the current GitHub Actions job
//   - serve: receive GitHub webhooks and sweep leftovers periodically
//   - sweep: remove previews of closed pull requests once
//   - doctor: check credentials and API access
//   - version: print the version
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/mikelane/railway-preview/internal/config"
	"github.com/mikelane/railway-preview/internal/logging"
)

// Version is set at build time with -ldflags "-X ...cli.Version=v1.2.3".
var Version = "dev"

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCmd creates the root command. Logs go to stderr; stdout is kept for
// workflow commands and command output.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "railway-preview",
		Short: "Per pull request preview environments on Railway",
		Long: `railway-preview - per pull request preview environments on Railway

Creates a Railway environment for every pull request by cloning a source
environment, deploys it, discovers its URLs and keeps a status comment on the
pull request up to date. The environment is deleted when the pull request is
closed.`,
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := logging.Setup(cmd.ErrOrStderr(), g.logLevel, g.logFormat)
			return err
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "optional YAML file with non-secret inputs")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&g.logFormat, "log-format", logging.FormatConsole, "log format: console or json")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newRunCmd(g),
		newServeCmd(g),
		newSweepCmd(g),
		newDoctorCmd(g),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command tree.
func Execute(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	rootCmd := NewRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// overrides are flags that take precedence over every other config source.
type overrides struct {
	sourceEnvironmentID string
	prefix              string
	repository          string
}

func (o *overrides) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.sourceEnvironmentID, "source-environment-id", "", "environment cloned for previews")
	cmd.Flags().StringVar(&o.prefix, "prefix", "", "environment name prefix")
	cmd.Flags().StringVar(&o.repository, "repository", "", "GitHub repository as owner/name")
}

// loadConfig reads the configuration and applies the flags that were set.
func loadConfig(cmd *cobra.Command, g *globalOptions, o *overrides) (*config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return cfg, nil
	}
	flags := cmd.Flags()
	if flags.Changed("source-environment-id") {
		cfg.SourceEnvironmentID = o.sourceEnvironmentID
	}
	if flags.Changed("prefix") {
		cfg.EnvironmentNamePrefix = o.prefix
	}
	if flags.Changed("repository") {
		cfg.Repository = o.repository
	}
	return cfg, nil
}
