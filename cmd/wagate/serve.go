package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/wagatehq/wagate/internal/config"
	"github.com/wagatehq/wagate/internal/email"
	"github.com/wagatehq/wagate/internal/graph"
	"github.com/wagatehq/wagate/internal/handlers"
	"github.com/wagatehq/wagate/internal/ingest"
	"github.com/wagatehq/wagate/internal/logger"
	"github.com/wagatehq/wagate/internal/media"
	"github.com/wagatehq/wagate/internal/server"
	"github.com/wagatehq/wagate/internal/subscribers"
)

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideGraphClient,
			provideMediaStore,
			provideRegistry,
			provideSubscriberService,
			provideNotifier,
			provideEmailSender,
			provideProcessor,
			provideServerHandler(provideWebhookHandler),
			provideServerHandler(provideSendHandler),
			provideServerHandler(provideSubscriptionsHandler),
			provideServerHandler(handlers.NewPingHandler),
			provideServerHandler(handlers.NewMetricsHandler),
			provideServer,
		),
		fx.Invoke(startServer),
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideServerHandler(fn any) any {
	return fx.Annotate(
		fn,
		fx.As(new(server.Handler)),
		fx.ResultTags(`group:"server_handlers"`),
	)
}

func provideConfig() (config.Config, error) {
	cfgPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideGraphClient(log *slog.Logger, cfg config.Config) *graph.Client {
	return graph.NewClient(log, cfg.Graph)
}

func provideMediaStore(log *slog.Logger, cfg config.Config, client *graph.Client) *media.LocalStore {
	timeout := time.Duration(cfg.Graph.TimeoutSeconds) * time.Second
	return media.NewLocalStore(log, cfg.Media.Root, cfg.Media.MaxBytes, timeout, client.AuthHeader())
}

func provideRegistry() *subscribers.Registry {
	return subscribers.NewRegistry()
}

func provideSubscriberService(log *slog.Logger, cfg config.Config, registry *subscribers.Registry) *subscribers.Service {
	timeout := time.Duration(cfg.Notify.TimeoutSeconds) * time.Second
	return subscribers.NewService(log, registry, timeout)
}

func provideNotifier(log *slog.Logger, cfg config.Config, registry *subscribers.Registry) *subscribers.Notifier {
	timeout := time.Duration(cfg.Notify.TimeoutSeconds) * time.Second
	return subscribers.NewNotifier(log, registry, timeout)
}

func provideEmailSender(log *slog.Logger, cfg config.Config) *email.Sender {
	return email.NewSender(log, cfg.Email)
}

func provideProcessor(log *slog.Logger, cfg config.Config, client *graph.Client, store *media.LocalStore, notifier *subscribers.Notifier, mailer *email.Sender) *ingest.Processor {
	processor := ingest.NewProcessor(log, client, store, notifier, cfg.Ingest.MaxConcurrency)
	if mailer.Enabled() {
		processor.SetAlerter(mailer)
	}
	return processor
}

func provideWebhookHandler(log *slog.Logger, processor *ingest.Processor) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(log, processor)
}

func provideSendHandler(log *slog.Logger, client *graph.Client) *handlers.SendHandler {
	return handlers.NewSendHandler(log, client)
}

func provideSubscriptionsHandler(log *slog.Logger, service *subscribers.Service) *handlers.SubscriptionsHandler {
	return handlers.NewSubscriptionsHandler(log, service)
}

type serverParams struct {
	fx.In
	Logger   *slog.Logger
	Config   config.Config
	Handlers []server.Handler `group:"server_handlers"`
}

func provideServer(params serverParams) *server.Server {
	return server.New(params.Logger, params.Config.Server.Addr, params.Handlers...)
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
