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
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/railway-preview/internal/cleanup"
	"github.com/mikelane/railway-preview/internal/event"
	"github.com/mikelane/railway-preview/internal/webhook"
)

func newServeCmd(g *globalOptions) *cobra.Command {
	var (
		o          overrides
		listenAddr string
		noSweep    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Receive GitHub webhooks and manage previews continuously",
		Long: `Receive GitHub webhooks and manage previews continuously.

Listens for signed pull_request and push deliveries on /webhook and handles
them one at a time. When a GitHub token and repository are configured, a
sweeper removes previews of closed pull requests every sweep_interval. The
sweeper never acts on a pull request while an event is being handled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := log.FromContext(ctx)

			cfg, err := loadConfig(cmd, g, &o)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.ListenAddr = listenAddr
			}
			if cfg.RailwayToken == "" {
				return errors.New("railway_token is required to serve")
			}
			if cfg.WebhookSecret == "" {
				return errors.New("webhook_secret is required to serve")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}

			// serialises the webhook worker with sweeper tear-downs
			var mu sync.Mutex
			processor := webhook.ProcessorFunc(func(ctx context.Context, ev *event.Event) error {
				mu.Lock()
				defer mu.Unlock()
				out, err := a.orchestrator.Run(ctx, ev)
				if err != nil {
					return err
				}
				for _, msg := range out.Warnings {
					log.FromContext(ctx).Info("Warning", "message", msg)
				}
				return nil
			})
			server := webhook.NewServer(cfg.ListenAddr, cfg.WebhookSecret, processor, webhook.WithRepository(cfg.Repository))

			group, ctx := errgroup.WithContext(ctx)
			group.Go(func() error { return server.Start(ctx) })

			if !noSweep && a.canComment() && cfg.SweepInterval > 0 {
				scheduler := cleanup.NewScheduler(a.registry, a.github, a.orchestrator, cleanup.Options{
					Owner:    a.owner,
					Repo:     a.repo,
					Prefix:   cfg.EnvironmentNamePrefix,
					Interval: cfg.SweepInterval,
					Lock:     &mu,
				})
				group.Go(func() error { return scheduler.Start(ctx) })
			} else {
				logger.Info("Sweeper disabled")
			}

			return group.Wait()
		},
	}

	o.register(cmd)
	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address, overrides listen_addr")
	cmd.Flags().BoolVar(&noSweep, "no-sweep", false, "disable the periodic sweeper")

	return cmd
}
