package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/contrib-matrix/internal/adapter/console"
	"github.com/couchcryptid/contrib-matrix/internal/adapter/contrib"
	httpadapter "github.com/couchcryptid/contrib-matrix/internal/adapter/http"
	"github.com/couchcryptid/contrib-matrix/internal/adapter/is31fl3731"
	kafkaadapter "github.com/couchcryptid/contrib-matrix/internal/adapter/kafka"
	"github.com/couchcryptid/contrib-matrix/internal/config"
	"github.com/couchcryptid/contrib-matrix/internal/domain"
	"github.com/couchcryptid/contrib-matrix/internal/observability"
	"github.com/couchcryptid/contrib-matrix/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if cfg.WifiSSID != "" {
		logger.Info("wifi credentials configured; network join is handled by the host", "ssid", cfg.WifiSSID)
	}

	disp, closeDisplay, err := openDisplay(cfg, logger)
	if err != nil {
		logger.Error("failed to open display", "driver", cfg.DisplayDriver, "error", err)
		os.Exit(1)
	}
	defer closeDisplay()

	clock := clockwork.NewRealClock()
	opts := pipeline.Options{
		Username:        cfg.Username,
		PollInterval:    cfg.PollInterval,
		AnimationFrames: cfg.AnimationFrames,
		FrameDelay:      cfg.FrameDelay,
		MaxBrightness:   cfg.MaxBrightness,
		Clock:           clock,
	}

	// Snapshot publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts.Publisher = writer
		logger.Info("snapshot publishing enabled", "topic", cfg.KafkaTopic)
	}

	fetcher := contrib.NewClient(cfg.URL(), cfg.FetchTimeout, metrics, logger)
	transformer := pipeline.NewTransformer(cfg.MatrixWidth, cfg.MatrixHeight, cfg.MaxBrightness, cfg.LeadingTotalColumn)
	hours := domain.NewClockHours(clock, cfg.Location)

	sched := pipeline.New(fetcher, transformer, disp, hours, logger, metrics, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, sched, sched, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	// The poll loop owns the display until the context is cancelled.
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	logger.Info("shutdown complete")
}

// openDisplay returns the configured pixel sink and a func that blanks and
// releases it.
func openDisplay(cfg *config.Config, logger *slog.Logger) (pipeline.Display, func(), error) {
	if cfg.DisplayDriver == config.DriverConsole {
		sink := console.NewSink(os.Stdout, cfg.MatrixWidth, cfg.MatrixHeight, cfg.MaxBrightness)
		return sink, func() {
			if err := sink.Clear(); err != nil {
				logger.Error("display clear error", "error", err)
			}
		}, nil
	}

	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("periph host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, nil, fmt.Errorf("open i2c bus %q: %w", cfg.I2CBus, err)
	}
	dev, err := is31fl3731.New(bus, cfg.I2CAddr, &is31fl3731.Opts{W: cfg.MatrixWidth, H: cfg.MatrixHeight})
	if err != nil {
		bus.Close()
		return nil, nil, err
	}
	logger.Info("display ready", "device", dev.String(), "bus", bus.String(), "addr", fmt.Sprintf("%#x", cfg.I2CAddr))

	release := func() {
		if err := dev.Halt(); err != nil {
			logger.Error("display halt error", "error", err)
		}
		if err := bus.Close(); err != nil {
			logger.Error("i2c bus close error", "error", err)
		}
	}
	return dev, release, nil
}
