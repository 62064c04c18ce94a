package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"card-token-proxy/config"
	"card-token-proxy/internal/adapter/http/dto"
	httpHandler "card-token-proxy/internal/adapter/http/handler"
	redisStorage "card-token-proxy/internal/adapter/storage/redis"
	"card-token-proxy/internal/adapter/upstream"
	"card-token-proxy/internal/core/domain"
	"card-token-proxy/internal/core/ports"
	"card-token-proxy/internal/service"
	"card-token-proxy/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("endpoint", cfg.Upstream.Endpoint).
		Msg("Starting Card Token Proxy")

	ctx := context.Background()

	sc := domain.SigningContext{
		SecretKey:  cfg.Signing.SecretKey,
		MerchantID: cfg.Signing.MerchantID,
	}

	// Core services
	signer := service.NewHMACRequestSigner(cfg.Signing.NonceBytes, logger.Component(log, "signer"))
	verifier := service.NewHMACResponseVerifier(logger.Component(log, "verifier"))

	gateway, err := upstream.NewClient(upstream.Config{
		Endpoint:        cfg.Upstream.Endpoint,
		MerchantID:      cfg.Signing.MerchantID,
		APIVersion:      cfg.Upstream.APIVersion,
		ResponseCharset: cfg.Upstream.ResponseCharset,
		Timeout:         cfg.Upstream.Timeout,
	}, logger.Component(log, "upstream"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize upstream client")
	}

	tokenSvc := service.NewTokenizationService(
		sc,
		signer,
		verifier,
		gateway,
		cfg.Upstream.RetryAttempts,
		cfg.Upstream.RetryBaseDelay,
		logger.Component(log, "tokenization"),
	)

	// Optional Redis-backed rate limiting
	var rateLimitStore *redisStorage.RateLimitStore
	var healthCheckers []ports.HealthChecker
	if cfg.RateLimit.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		TokenSvc: tokenSvc,
		ConfigEcho: dto.ConfigEcho{
			Endpoint:                  cfg.Upstream.Endpoint,
			MerchantID:                cfg.Signing.MerchantID,
			APIVersion:                cfg.Upstream.APIVersion,
			ResponseCharset:           cfg.Upstream.ResponseCharset,
			NonceHexLength:            cfg.Signing.NonceBytes * 2,
			TimestampToleranceSeconds: cfg.Upstream.ToleranceSeconds,
		},
		RateLimitStore: rateLimitStore,
		RateLimit:      cfg.RateLimit.RequestsPerMinute,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
