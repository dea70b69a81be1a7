package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/fedmesh/fedmesh"
	"github.com/fedmesh/fedmesh/federation"
	"github.com/fedmesh/fedmesh/pkg/prometheus"
	"github.com/fedmesh/fedmesh/pkg/storage"
	"github.com/fedmesh/fedmesh/pkg/tracing"
	"github.com/fedmesh/fedmesh/registry"
	"github.com/fedmesh/fedmesh/registry/api"
	"github.com/fedmesh/fedmesh/registry/middleware"
)

const (
	svcName     = "fedmesh"
	pathEnv     = ".env"
	stopTimeout = 10 * time.Second
)

type envConfig struct {
	LogLevel            string        `env:"FEDMESH_LOG_LEVEL"             envDefault:"info"`
	InstanceID          string        `env:"FEDMESH_INSTANCE_ID"`
	ConfigFile          string        `env:"FEDMESH_CONFIG_FILE"`
	HTTPHost            string        `env:"FEDMESH_HTTP_HOST"             envDefault:"localhost"`
	HTTPPort            string        `env:"FEDMESH_HTTP_PORT"             envDefault:"7000"`
	AdvertiseURL        string        `env:"FEDMESH_ADVERTISE_URL"`
	NodeName            string        `env:"FEDMESH_NODE_NAME"`
	NodeOwner           string        `env:"FEDMESH_NODE_OWNER"            envDefault:"fedmesh-operator"`
	NetworkID           string        `env:"FEDMESH_NETWORK_ID"            envDefault:"fedmesh"`
	BootstrapPeers      []string      `env:"FEDMESH_BOOTSTRAP_PEERS"       envSeparator:","`
	AnnounceEnabled     bool          `env:"FEDMESH_ANNOUNCE_ENABLED"      envDefault:"false"`
	DiscoveryEnabled    bool          `env:"FEDMESH_DISCOVERY_ENABLED"     envDefault:"true"`
	MinTrustScore       int           `env:"FEDMESH_MIN_TRUST_SCORE"       envDefault:"20"`
	NewServerTrust      int           `env:"FEDMESH_NEW_SERVER_TRUST"      envDefault:"30"`
	GossipInterval      time.Duration `env:"FEDMESH_GOSSIP_INTERVAL"       envDefault:"60s"`
	HealthCheckInterval time.Duration `env:"FEDMESH_HEALTH_CHECK_INTERVAL" envDefault:"30s"`
	OTELURL             url.URL       `env:"FEDMESH_OTEL_URL"`
	TraceRatio          float64       `env:"FEDMESH_TRACE_RATIO"           envDefault:"0"`
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)

	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("failed to load configuration : %s", err.Error())
	}

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	if cfg.NodeName == "" {
		cfg.NodeName = svcName + "-" + cfg.InstanceID
	}
	if cfg.AdvertiseURL == "" {
		cfg.AdvertiseURL = fmt.Sprintf("http://%s:%s", cfg.HTTPHost, cfg.HTTPPort)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		log.Fatalf("failed to parse log level: %s", err.Error())
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	var tp trace.TracerProvider
	switch {
	case cfg.OTELURL == (url.URL{}):
		tp = noop.NewTracerProvider()
	default:
		sdktp, err := tracing.NewProvider(ctx, svcName, cfg.OTELURL, cfg.InstanceID, cfg.TraceRatio)
		if err != nil {
			logger.Error("failed to initialize opentelemetry", slog.String("error", err.Error()))

			return
		}
		defer func() {
			if err := sdktp.Shutdown(ctx); err != nil {
				logger.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
		tp = sdktp
	}
	tracer := tp.Tracer(svcName)

	fcfg := federationConfig(cfg, logger)

	now := time.Now()
	self := federation.Server{
		ID:           cfg.InstanceID,
		Name:         cfg.NodeName,
		Endpoint:     cfg.AdvertiseURL,
		Owner:        cfg.NodeOwner,
		TrustScore:   100,
		RegisteredAt: now,
		LastSeenAt:   now,
	}

	svc := registry.NewService(
		fcfg,
		self,
		storage.NewInMemoryRepository(),
		registry.NewPeerClient(fcfg.NetworkID, cfg.InstanceID),
		logger,
	)
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics(svcName, "api")
	svc = middleware.Metrics(counter, latency, svc)

	if fcfg.DiscoveryEnabled {
		if err := svc.Bootstrap(ctx); err != nil {
			logger.Warn("bootstrap finished with errors", slog.Any("error", err))
		}

		gossip := registry.NewGossipLoop(svc, fcfg.GossipInterval, logger)
		g.Go(func() error {
			return gossip.Start(ctx)
		})
	}

	health := registry.NewHealthLoop(svc, fcfg.HealthCheckInterval, logger)
	g.Go(func() error {
		return health.Start(ctx)
	})

	hs := &http.Server{
		Addr:    cfg.HTTPHost + ":" + cfg.HTTPPort,
		Handler: api.MakeHandler(svc, logger, cfg.InstanceID),
	}

	g.Go(func() error {
		logger.Info("http server starting", slog.String("address", hs.Addr))
		if err := hs.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}

		return nil
	})

	g.Go(func() error {
		return stopSignalHandler(ctx, cancel, logger, hs)
	})

	if err := g.Wait(); err != nil {
		logger.Error(fmt.Sprintf("%s service exited with error: %s", svcName, err))
	}
}

// federationConfig builds runtime settings from the environment; a
// TOML config file, when given, takes precedence for network tuning.
func federationConfig(cfg envConfig, logger *slog.Logger) federation.Config {
	if cfg.ConfigFile != "" {
		fileCfg, err := fedmesh.LoadConfig(cfg.ConfigFile)
		if err != nil {
			logger.Warn("failed to load config file, falling back to environment",
				slog.String("path", cfg.ConfigFile),
				slog.Any("error", err),
			)
		} else {
			return fileCfg.Federation()
		}
	}

	fcfg := federation.DefaultConfig()
	fcfg.NetworkID = cfg.NetworkID
	fcfg.BootstrapPeers = cfg.BootstrapPeers
	fcfg.GossipInterval = cfg.GossipInterval
	fcfg.HealthCheckInterval = cfg.HealthCheckInterval
	fcfg.DiscoveryEnabled = cfg.DiscoveryEnabled
	fcfg.AnnounceEnabled = cfg.AnnounceEnabled
	fcfg.MinTrustScore = cfg.MinTrustScore
	fcfg.NewServerTrust = cfg.NewServerTrust

	return fcfg
}

func stopSignalHandler(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, hs *http.Server) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("received stop signal", slog.String("signal", s.String()))
	case <-ctx.Done():
	}
	cancel()

	sctx, scancel := context.WithTimeout(context.Background(), stopTimeout)
	defer scancel()

	if err := hs.Shutdown(sctx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	logger.Info("http server stopped")

	return nil
}
