package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"artcontest/config"
	"artcontest/core"
	"artcontest/core/events"
	"artcontest/gateway/middleware"
	"artcontest/gateway/routes"
	"artcontest/observability/logging"
	"artcontest/observability/metrics"
	telemetry "artcontest/observability/otel"
	"artcontest/storage"
)

const serviceName = "contestd"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	var cfgPath, envFile string
	flag.StringVar(&cfgPath, "config", "./config.toml", "path to the TOML configuration")
	flag.StringVar(&envFile, "env-file", ".env", "optional dotenv file with CONTEST_* overrides")
	flag.Parse()

	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, logCloser := logging.Setup(serviceName, cfg.Environment, logging.Options{
		Level:      logging.ParseLevel(cfg.Logging.Level),
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	defer logCloser.Close()

	shutdownTelemetry, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Network:     cfg.NetworkName,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open data dir %s: %w", cfg.DataDir, err)
	}
	defer db.Close()

	exec := core.NewExecutor(db,
		core.WithLogger(logger),
		core.WithEmitter(eventLogger{logger: logger.With(slog.String("component", "events"))}),
		core.WithMetrics(metrics.Contest()),
	)
	genesisSpec, err := cfg.GenesisSpec()
	if err != nil {
		return err
	}
	created, err := exec.Bootstrap(genesisSpec)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	logger.Info("state ready", "network", cfg.NetworkName, "data_dir", cfg.DataDir, "genesis_applied", created)

	obs := middleware.NewObservability(middleware.ObservabilityConfig{
		ServiceName: serviceName,
		LogRequests: true,
		Gatherer:    prometheus.DefaultGatherer,
	}, logger)
	router := routes.New(routes.Config{
		Service: exec,
		Authenticator: middleware.NewAuthenticator(middleware.AuthConfig{
			Enabled:    cfg.Auth.Enabled,
			HMACSecret: cfg.Auth.Secret,
			Issuer:     cfg.Auth.Issuer,
			Audience:   cfg.Auth.Audience,
			ClockSkew:  time.Duration(cfg.Auth.ClockSkewSeconds) * time.Second,
		}, logger),
		RateLimiter: middleware.NewRateLimiter(middleware.RateLimit{
			RequestsPerMinute: float64(cfg.RateLimit.RequestsPerMinute),
			Burst:             cfg.RateLimit.Burst,
		}, logger),
		Observability: obs,
		Logger:        logger,
	})

	handler := http.Handler(router)
	if cfg.Telemetry.Traces {
		handler = otelhttp.NewHandler(router, serviceName)
	}
	if !cfg.Auth.Enabled {
		logger.Warn("authentication disabled; callers are identified by the " + middleware.PrincipalHeader + " header")
	}

	server := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "address", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}
	return nil
}

// principalAttributes name event attributes that carry caller addresses.
var principalAttributes = map[string]struct{}{
	"owner": {}, "artist": {}, "voter": {}, "claimant": {},
	"depositor": {}, "from": {}, "to": {},
}

// eventLogger writes committed events to the structured log.
type eventLogger struct {
	logger *slog.Logger
}

func (l eventLogger) Emit(evt events.Event) {
	attrs := []slog.Attr{slog.String("type", evt.EventType())}
	if payload, ok := evt.(events.Payload); ok {
		if e := payload.Event(); e != nil {
			for key, value := range e.Attributes {
				if _, sensitive := principalAttributes[key]; sensitive {
					attrs = append(attrs, logging.MaskField(key, value))
					continue
				}
				attrs = append(attrs, slog.String(key, value))
			}
		}
	}
	l.logger.LogAttrs(context.Background(), slog.LevelInfo, "event committed", attrs...)
}
