package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"hactl/config"
	"hactl/internal/application"
	"hactl/internal/infra/homeassistant"
	"hactl/internal/infra/pushover"
	"hactl/internal/infra/snapshot"
	"hactl/internal/metrics"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "hactl",
		Short:         "Resolve and dispatch Home Assistant text commands",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")

	root.AddCommand(
		newServeCmd(&configPath),
		newRunCmd(&configPath),
		newStateCmd(&configPath),
		newEntitiesCmd(&configPath),
	)
	return root
}

// app holds the wired components shared by every subcommand.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	assistant *application.Assistant
	metrics   *metrics.Metrics
	cached    *snapshot.CachedSource
	closers   []func() error
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("closing resource", "error", err)
		}
	}
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}

	haClient := homeassistant.NewClient(cfg.HomeAssistant.URL, cfg.HomeAssistant.Token, cfg.HomeAssistant.Timeout, cfg.Retry)

	source, err := a.entitySource(haClient)
	if err != nil {
		return nil, err
	}

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.NoopNotifier{}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(registry)

	dispatcher := application.NewDispatcher(source, haClient, cfg.DispatcherConfig(), a.metrics, logger)
	a.assistant = application.NewAssistant(dispatcher, notifier, cfg.Dispatcher.MaxParallel, logger)

	return a, nil
}

func (a *app) entitySource(client *homeassistant.Client) (application.EntitySource, error) {
	switch a.cfg.Cache.Backend {
	case "none":
		return client, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: a.cfg.Cache.RedisAddr, Password: a.cfg.Cache.RedisPassword})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", a.cfg.Cache.RedisAddr, err)
		}
		a.closers = append(a.closers, rdb.Close)
		a.cached = snapshot.NewCachedSource(client, snapshot.NewRedisStore(rdb, a.cfg.Cache.RedisKey, a.cfg.Cache.TTL), a.logger)
		return a.cached, nil
	default:
		a.cached = snapshot.NewCachedSource(client, snapshot.NewMemoryStore(a.cfg.Cache.TTL), a.logger)
		return a.cached, nil
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	// Logs go to stderr so command output on stdout stays clean.
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
