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
	"os"

	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/railway-preview/internal/action"
	"github.com/mikelane/railway-preview/internal/event"
	"github.com/mikelane/railway-preview/internal/orchestrator"
)

func newRunCmd(g *globalOptions) *cobra.Command {
	var (
		o          overrides
		eventName  string
		eventPath  string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Handle the event of the current workflow run",
		Long: `Handle the event of the current workflow run.

Reads the event from GITHUB_EVENT_NAME and GITHUB_EVENT_PATH (or --event and
--event-path), creates, updates or deletes the preview environment of the pull
request and writes the step outputs to GITHUB_OUTPUT. Without a Railway token
the run is skipped and only the skipped output is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			if !cmd.Flags().Changed("output-file") {
				outputFile = os.Getenv("GITHUB_OUTPUT")
			}
			w := action.NewWriter(cmd.OutOrStdout(), outputFile)

			cfg, err := loadConfig(cmd, g, &o)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("event") {
				cfg.EventName = eventName
			}
			if cmd.Flags().Changed("event-path") {
				cfg.EventPath = eventPath
			}

			if reason := cfg.SkipReason(); reason != "" {
				logger.Info("Railway credentials not available, skipping", "reason", reason)
				w.Warning(reason + ", skipping preview environment")
				w.Warning("This is expected for pull requests from forks, which run without secrets")
				return w.SetOutputs(orchestrator.Skipped(reason).Outputs())
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.EventName == "" || cfg.EventPath == "" {
				return errors.New("no event to handle: set GITHUB_EVENT_NAME and GITHUB_EVENT_PATH or pass --event and --event-path")
			}

			ev, err := event.Load(cfg.EventName, cfg.EventPath)
			if err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			if cfg.CommentOnPR && !a.canComment() {
				w.Warning("github_token or repository not set, status comments are disabled")
			}

			out, err := a.orchestrator.Run(ctx, ev)
			if err != nil {
				return err
			}
			for _, msg := range out.Warnings {
				w.Warning(msg)
			}
			if out.Action == orchestrator.ActionNoop && out.Reason != "" {
				w.Notice(out.Reason)
			}
			return w.SetOutputs(out.Outputs())
		},
	}

	o.register(cmd)
	cmd.Flags().StringVar(&eventName, "event", "", "event name, overrides GITHUB_EVENT_NAME")
	cmd.Flags().StringVar(&eventPath, "event-path", "", "event payload file, overrides GITHUB_EVENT_PATH")
	cmd.Flags().StringVar(&outputFile, "output-file", "", "step output file, defaults to GITHUB_OUTPUT")

	return cmd
}
