package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/sakura-events/sakura-backend/config"
	httpapi "github.com/sakura-events/sakura-backend/internal/api/http"
	"github.com/sakura-events/sakura-backend/internal/auth"
	authhttp "github.com/sakura-events/sakura-backend/internal/auth/http"
	"github.com/sakura-events/sakura-backend/internal/bootstrap"
	"github.com/sakura-events/sakura-backend/internal/logging"
	"github.com/sakura-events/sakura-backend/internal/storage/postgres"
)

const serviceName = "sakura-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      cfg.DatabaseURL(),
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer pool.Close()

	db := postgres.NewConnection(pool)
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("open redis", zap.Error(err))
	}
	defer rdb.Close()

	tokens, err := newSessionTokens(cfg, logger)
	if err != nil {
		logger.Fatal("session tokens", zap.Error(err))
	}

	var bearer auth.TokenVerifier
	if cfg.Firebase.CredentialsPath != "" {
		fb, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			logger.Fatal("firebase", zap.Error(err))
		}
		bearer = auth.AnyVerifier{auth.NewFirebaseVerifier(fb), tokens}
		logger.Info("bearer tokens verified with Firebase")
	}

	resolver := auth.NewResolver(auth.ResolverOptions{
		CookieName:  cfg.Auth.CookieName,
		Session:     tokens,
		Bearer:      bearer,
		Environment: cfg.App.Environment,
		Logger:      logger,
	})

	clk := clock.New()
	services := bootstrap.NewServices(db, rdb, clk, cfg.Timer.MaxSession)

	authHandler := authhttp.New(authhttp.Options{
		ClientID:      cfg.Slack.ClientID,
		ClientSecret:  cfg.Slack.ClientSecret,
		PublicBaseURL: cfg.App.PublicBaseURL,
		Cookie: authhttp.CookieConfig{
			Name:   cfg.Auth.CookieName,
			TTL:    cfg.Auth.SessionTTL,
			Secure: cfg.IsProduction(),
		},
		Users:  services.Users,
		Tokens: tokens,
		Clock:  clk,
		Logger: logger,
	})
	if cfg.SlackEnabled() && !authHandler.SlackEnabled() {
		logger.Warn("slack sign-in disabled: SESSION_SECRET is required to issue session cookies")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:  serviceName,
		Version:      cfg.App.Version,
		AllowOrigins: []string{cfg.App.PublicBaseURL},
		DB:           pool,
		Redis:        httpapi.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		Tables: func(ctx context.Context) ([]postgres.TableStatus, error) {
			return postgres.CheckTables(ctx, db)
		},
		Resolver:  resolver,
		Services:  services,
		Auth:      authHandler,
		Registry:  reg,
		RateRPS:   cfg.RateLimit.RPS,
		RateBurst: cfg.RateLimit.Burst,
		Logger:    logger,
	})

	scheduler := bootstrap.NewScheduler(logger)
	if err := scheduler.AddReaper(cfg.Timer.ReaperSchedule, services.Timers, time.Minute); err != nil {
		logger.Fatal("schedule timer reaper", zap.String("schedule", cfg.Timer.ReaperSchedule), zap.Error(err))
	}
	scheduler.Start()

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", server.Addr), zap.String("env", cfg.App.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)
}

func newSessionTokens(cfg *config.Config, logger *zap.Logger) (*auth.SessionTokens, error) {
	var jwks *keyfunc.JWKS
	if cfg.Auth.JWKSURL != "" {
		var err error
		jwks, err = auth.LoadJWKS(cfg.Auth.JWKSURL, logger)
		if err != nil {
			return nil, err
		}
	}
	return auth.NewSessionTokens(cfg.Auth.SessionSecret, jwks)
}
