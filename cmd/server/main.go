package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	grpchealth "google.golang.org/grpc/health"

	"multi-tenant-crm/backend/internal/app"
	"multi-tenant-crm/backend/internal/config"
	"multi-tenant-crm/backend/internal/db"
	"multi-tenant-crm/backend/internal/db/migrate"
	"multi-tenant-crm/backend/internal/health"
	"multi-tenant-crm/backend/internal/logger"
	"multi-tenant-crm/backend/internal/security"
	"multi-tenant-crm/backend/internal/server"
	otelsetup "multi-tenant-crm/backend/internal/telemetry/otel"
)

const (
	shutdownTimeout = 15 * time.Second
	healthInterval  = 10 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
	zl.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	providers, err := otelsetup.NewProviders(ctx, otelsetup.Config{
		Endpoint:    cfg.OTelEndpoint,
		ServiceName: cfg.OTelServiceName,
		Insecure:    cfg.OTelInsecure,
	}, zl)
	if err != nil {
		return err
	}
	providers.SetGlobal()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(sctx); err != nil {
			zl.Warn("otel shutdown", zap.Error(err))
		}
	}()

	rollbackRoles, err := cfg.RollbackRoles()
	if err != nil {
		return err
	}
	tokens, err := security.LoadTokenProvider(cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	if err != nil {
		return err
	}

	opts := app.Options{
		RollbackRoles:  rollbackRoles,
		Logger:         zl,
		TracerProvider: providers.TracerProvider,
		MeterProvider:  providers.MeterProvider,
		LoggerProvider: providers.LoggerProvider,
	}
	var pinger health.Pinger
	if cfg.DatabaseEnabled() {
		if cfg.MigrateOnStart {
			if err := migrate.Run(cfg.DatabaseURL, migrate.Up); err != nil {
				return err
			}
			zl.Info("migrations applied")
		}
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		opts.Pool = pool
		pinger = pool
	} else {
		zl.Warn("DATABASE_URL is not set; using in-memory repositories")
	}

	a, err := app.New(opts)
	if err != nil {
		return err
	}
	checker := health.NewChecker(pinger, a.Policy, 0, zl)

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewRouter(server.Deps{
			Mediator:        a.Mediator,
			Access:          a.Access,
			Tokens:          tokens,
			Health:          checker,
			Logger:          zl,
			ServiceName:     cfg.OTelServiceName,
			DefaultPageSize: cfg.DefaultPageSize,
			MaxPageSize:     cfg.MaxPageSize,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	healthSrv := grpchealth.NewServer()
	grpcSrv := server.NewGRPCServer(healthSrv, zl)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zl.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		zl.Info("gRPC health server listening", zap.String("addr", cfg.GRPCAddr))
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		checker.Watch(gctx, healthSrv, healthInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zl.Info("shutting down")
		healthSrv.Shutdown()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(sctx)
	})
	return g.Wait()
}
