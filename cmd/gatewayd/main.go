// gatewayd serves the web action gateway's HTTP surface: identity and
// entity lookup, export/auth gating, owner-namespace throttling, parameter
// merge, and blocking invocation with media-extension transcoding.
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ratd/webaction-gateway/internal/api"
	"github.com/ratd/webaction-gateway/internal/authctx"
	"github.com/ratd/webaction-gateway/internal/config"
	"github.com/ratd/webaction-gateway/internal/gateway"
	"github.com/ratd/webaction-gateway/internal/invoker"
	"github.com/ratd/webaction-gateway/internal/store/memory"
	"github.com/ratd/webaction-gateway/internal/store/postgres"
	"github.com/ratd/webaction-gateway/internal/throttle"
)

// validateEnv checks that critical environment variables have valid values.
func validateEnv() []string {
	var errs []string
	if addr := os.Getenv("GATEWAY_LISTEN_ADDR"); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			errs = append(errs, fmt.Sprintf("GATEWAY_LISTEN_ADDR=%q: must be host:port (%v)", addr, err))
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		if _, err := net.LookupPort("tcp", port); err != nil {
			errs = append(errs, fmt.Sprintf("PORT=%q: must be a valid port number", port))
		}
	}
	return errs
}

func main() {
	// Built-in healthcheck for scratch containers (no wget/curl available).
	// Usage: /gatewayd healthcheck
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		resp, err := http.Get("http://localhost:8080/health")
		if err != nil {
			os.Exit(1)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	baseHandler := slog.NewJSONHandler(os.Stdout, nil)
	logger := slog.New(api.NewContextHandler(baseHandler))
	slog.SetDefault(logger)

	if errs := validateEnv(); len(errs) > 0 {
		for _, e := range errs {
			slog.Error("invalid environment variable", "error", e)
		}
		os.Exit(1)
	}

	configPath := config.ResolvePath()
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	if configPath != "" {
		slog.Info("config loaded", "path", configPath)
	}

	ctx := context.Background()
	srv := &api.Server{}

	// Entity and identity stores: Postgres when DatabaseURL is set, an
	// in-process memory store otherwise — the gateway boots with zero
	// config for local development, the same way the rest of this corpus
	// treats its quota/auth slots as optional.
	var identityStore gateway.AuthStore
	var entityStore gateway.EntityStore
	var closePool func()

	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		closePool = func() { pool.Close() }

		if err := postgres.Migrate(ctx, pool); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		identityStore = postgres.NewIdentityStore(pool)
		entityStore = postgres.NewEntityStore(pool)
		srv.AuthHealth = postgres.NewHealthChecker(pool)
		srv.EntityHealth = postgres.NewHealthChecker(pool)
		slog.Info("postgres stores initialized")
	} else {
		slog.Warn("DATABASE_URL not set, running with an empty in-memory store")
		mem := memory.New()
		identityStore = mem
		entityStore = mem
	}

	lookups := gateway.NewLookups(identityStore, entityStore)

	// Invoker transport: h2c by default, TLS (optionally mTLS) when a CA
	// cert is configured — gateway.yaml's invoker_tls section takes
	// precedence over the INVOKER_TLS_* environment variables.
	tlsCfg := invoker.TLSConfigFromEnv()
	if cfg.InvokerTLS.CACertFile != "" {
		tlsCfg = invoker.TLSConfig{
			CACertFile: cfg.InvokerTLS.CACertFile,
			CertFile:   cfg.InvokerTLS.CertFile,
			KeyFile:    cfg.InvokerTLS.KeyFile,
		}
	}
	httpClient, err := invoker.NewClient(tlsCfg)
	if err != nil {
		slog.Error("failed to create invoker client", "error", err)
		os.Exit(1)
	}
	if tlsCfg.CACertFile != "" {
		slog.Info("invoker TLS enabled", "ca", tlsCfg.CACertFile)
	}

	invokerAddr := cfg.InvokerAddr
	scheme := "http"
	if tlsCfg.CACertFile != "" {
		scheme = "https"
	}
	invokerBaseURL := scheme + "://" + invokerAddr
	invokerClient := invoker.New(httpClient, invokerBaseURL, cfg.MaxBlockingWait+5*time.Second)
	srv.InvokerHealth = invoker.NewHealthChecker(invokerBaseURL)

	// Per-owner-namespace throttling (disable with THROTTLE_RPS=0).
	var enforcer throttle.Enforcer
	if os.Getenv("THROTTLE_RPS") == "0" {
		enforcer = throttle.NoopEnforcer{}
		slog.Info("owner throttling disabled (THROTTLE_RPS=0)")
	} else {
		throttleCfg := throttle.DefaultConfig()
		local := throttle.NewLocalEnforcer(throttleCfg)
		enforcer = local
		slog.Info("owner throttling enabled", "rps", throttleCfg.RequestsPerSecond, "burst", throttleCfg.Burst)
	}

	authenticator := authctx.BasicAuthenticator{}

	mainHandler := &gateway.Handler{
		Lookups:            lookups,
		Throttle:           enforcer,
		Invoker:            invokerClient,
		Auth:               authenticator,
		Variant:            gateway.VariantMain,
		MaxBlockingWait:    cfg.MaxBlockingWait,
		MaxEntitySizeBytes: cfg.MaxEntitySizeBytes,
		EnforceExtension:   cfg.Main.EnforceExtension,
	}
	experimentalHandler := &gateway.Handler{
		Lookups:            lookups,
		Throttle:           enforcer,
		Invoker:            invokerClient,
		Auth:               authenticator,
		Variant:            gateway.VariantExperimental,
		MaxBlockingWait:    cfg.MaxBlockingWait,
		MaxEntitySizeBytes: cfg.MaxEntitySizeBytes,
		EnforceExtension:   cfg.Experimental.EnforceExtension,
	}

	srv.Main = mainHandler
	srv.Experimental = experimentalHandler

	if corsEnv := os.Getenv("CORS_ORIGINS"); corsEnv != "" {
		srv.CORSOrigins = strings.Split(corsEnv, ",")
	} else if len(cfg.CORSOrigins) > 0 {
		srv.CORSOrigins = cfg.CORSOrigins
	}

	if rl := os.Getenv("RATE_LIMIT"); rl != "0" {
		rateLimitCfg := api.DefaultRateLimitConfig()
		srv.RateLimit = &rateLimitCfg
		slog.Info("per-IP rate limiting enabled", "rps", rateLimitCfg.RequestsPerSecond, "burst", rateLimitCfg.Burst)
	}

	router := api.NewRouter(srv)

	addr := cfg.Listen
	if listenAddr := os.Getenv("GATEWAY_LISTEN_ADDR"); listenAddr != "" {
		addr = listenAddr
	} else if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.MaxBlockingWait + 30*time.Second,
		IdleTimeout:       120 * time.Second,
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS13,
		},
	}

	runCtx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		slog.Info("starting gatewayd", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("gatewayd exited with error", "error", err)
	}

	if local, ok := enforcer.(*throttle.LocalEnforcer); ok {
		local.Stop()
		slog.Info("owner throttle enforcer stopped")
	}
	if srv.RateLimiterStop != nil {
		srv.RateLimiterStop()
		slog.Info("rate limiter stopped")
	}
	if closePool != nil {
		closePool()
		slog.Info("database pool closed")
	}

	slog.Info("gatewayd shutdown complete")
}
