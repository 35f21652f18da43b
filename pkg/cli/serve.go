package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/sitelog/sitelog/pkg/cli/config"
	httpctrl "github.com/sitelog/sitelog/pkg/controller/http"
	"github.com/sitelog/sitelog/pkg/service/worker"
	"github.com/sitelog/sitelog/pkg/usecase"
	"github.com/sitelog/sitelog/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func cmdServe(version string) *cli.Command {
	var addr string
	var sessionTTL time.Duration
	var backendCfg config.Backend
	var repoCfg config.Repository
	var siteCfg config.Site
	var slackCfg config.Slack

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       ":8080",
			Sources:     cli.EnvVars("SITELOG_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "session-ttl",
			Usage:       "How long an idle browser session keeps its view state",
			Value:       httpctrl.DefaultSessionTTL,
			Sources:     cli.EnvVars("SITELOG_SESSION_TTL"),
			Destination: &sessionTTL,
		},
	}
	flags = append(flags, backendCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, siteCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the web console",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Serve configuration",
				"addr", addr,
				"backend", backendCfg,
				"repository", repoCfg,
				"site", siteCfg,
				"slack", slackCfg,
			)

			client, err := backendCfg.Configure("sitelog/" + version)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			opts := []usecase.Option{
				usecase.WithSettingsRepository(repo.Settings()),
				usecase.WithSiteID(siteCfg.ID()),
			}

			notifier, err := slackCfg.Configure()
			if err != nil {
				return err
			}
			if notifier != nil {
				ch, err := notifier.Channel(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to verify Slack channel")
				}
				logger.Info("Safety alerts enabled", "channel", ch.Name)
				opts = append(opts, usecase.WithNotifier(notifier))
			}

			uc := usecase.New(client, opts...)

			defaults, err := siteCfg.LoadDefaults()
			if err != nil {
				return err
			}
			if defaults != nil {
				uc.Settings.SetDefaults(defaults)
			}

			handler, err := httpctrl.New(uc, httpctrl.WithSessionTTL(sessionTTL))
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)

			eg.Go(func() error {
				logger.Info("Starting HTTP server", "addr", addr, "api", backendCfg.BaseURL())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
				return nil
			})

			if path := siteCfg.ConfigPath(); path != "" {
				watcher := worker.NewSiteConfigWatcher(path, func(ctx context.Context) error {
					s, err := config.LoadSiteDefaults(path)
					if err != nil {
						return err
					}
					uc.Settings.SetDefaults(s)
					return nil
				})
				eg.Go(func() error {
					return watcher.Run(ctx)
				})
			}

			eg.Go(func() error {
				<-ctx.Done()
				logger.Info("Shutting down")
				if pending := uc.InFlight(); len(pending) > 0 {
					logger.Warn("Actions still in flight at shutdown", "actions", pending)
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				logger.Info("Server shutdown completed")
				return nil
			})

			return eg.Wait()
		},
	}
}
