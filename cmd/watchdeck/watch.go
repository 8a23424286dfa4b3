package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"watchdeck/internal/api"
	"watchdeck/internal/config"
	"watchdeck/internal/engine"
	"watchdeck/internal/logger"
	"watchdeck/internal/metrics"
	"watchdeck/internal/notify"
	"watchdeck/internal/stream"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Connect to the signal stream and serve the dashboard views",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	// A malformed endpoint is the one fatal failure mode; everything
	// after startup retries forever.
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	log.Info("starting watchdeck",
		zap.String("endpoint", cfg.Stream.Endpoint),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	m := metrics.NewRegistry()

	notifiers := notify.NewRegistry(log)
	if err := notifiers.Register(notify.NewLogSink(log)); err != nil {
		return fmt.Errorf("registering log notifier: %w", err)
	}
	if wh, ok := cfg.Notifiers["webhook"]; ok && wh.Enabled {
		sink, err := notify.NewWebhook(wh.URL, wh.Headers)
		if err != nil {
			return fmt.Errorf("creating webhook notifier: %w", err)
		}
		if err := notifiers.Register(sink); err != nil {
			return fmt.Errorf("registering webhook notifier: %w", err)
		}
		log.Info("webhook notifier enabled", zap.String("url", wh.URL))
	}

	eng := engine.New(engine.Config{
		TickInterval: cfg.Engine.TickInterval,
		ActiveWindow: cfg.View.ActiveWindow,
		FrameBuffer:  cfg.Engine.FrameBuffer,
	}, notifiers, m, log)

	sc := stream.New(stream.Config{
		Endpoint:       cfg.Stream.Endpoint,
		ReconnectDelay: cfg.Stream.ReconnectDelay,
	}, eng.HandleFrame, log)
	sc.OnStateChange(func(up bool) {
		if !up {
			m.RecordReconnect()
		}
	})

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	server := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		MetricsPath: metricsPath,
	}, eng, sc, m, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go eng.Run(ctx)
	go sc.Run(ctx)
	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down watchdeck")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
