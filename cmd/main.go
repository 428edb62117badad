package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-redis/redis_rate/v10"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/app/config"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/app/dto"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/app/endpoints"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/app/service"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/app/transport"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/auth"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/bookingapi"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/flight"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/logger"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/queue"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/workflow"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.MustInitConfig(".env")
	logger.InitStructuredLogger(cfg.LogLevel)

	if cfg.Auth.JWTSecret == "" {
		slog.Error("AUTH_JWT_SECRET is required")
		os.Exit(1)
	}

	if cfg.BookingAPI.BaseURL == "" {
		slog.Error("BOOKING_API_BASE_URL is required")
		os.Exit(1)
	}

	slog.Debug("config loaded successfully",
		slog.String("booking_api", cfg.BookingAPI.BaseURL),
		slog.Int("port", cfg.HTTP.Port))
	runApp(cfg)
}

func runApp(cfg config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.InfoContext(ctx, "starting...", slog.String("log_level", string(cfg.LogLevel)))

	var waitGroup sync.WaitGroup
	// Starts the server in a go routine
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		startHTTPServer(ctx, cfg)
	}()

	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case sig := <-sigChannel:
		cancel()
		slog.InfoContext(ctx, "received OS signal. Exiting...", slog.String("signal", sig.String()))
	case <-ctx.Done():
		slog.ErrorContext(ctx, "failed to start HTTP server")
	}

	waitGroup.Wait()
	slog.InfoContext(ctx, "All service closed...")
}

func startHTTPServer(ctx context.Context, cfg config.Config) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  cfg.Redis.Timeout,
		ReadTimeout:  cfg.Redis.Timeout,
		WriteTimeout: cfg.Redis.Timeout,
	})
	defer redisClient.Close()

	funnelService := makeFunnelService(&cfg, redisClient)
	endpts := makeEndpoints(ctx, funnelService)
	router := transport.MakeHTTPRouter(&cfg, endpts)
	server := &http.Server{
		Handler:      router,
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		WriteTimeout: cfg.HTTP.Timeout,
		ReadTimeout:  cfg.HTTP.Timeout,
	}

	slog.Info("running HTTP server...", slog.Int("port", cfg.HTTP.Port))

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "failed to start HTTP server", slog.String("error", err.Error()))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.Timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "failed to shutdown HTTP server", slog.String("error", err.Error()))
	}

	// background searches write to redis, so they stop before the client closes
	funnelService.Shutdown()

	slog.InfoContext(ctx, "HTTP server shutdown gracefully")
}

func makeEndpoints(ctx context.Context, funnelService *service.FunnelService) endpoints.Endpoints {
	// init validator
	if err := dto.InitValidator(); err != nil {
		slog.ErrorContext(ctx, "failed to init validator", slog.String("error", err.Error()))
		panic(err)
	}

	// init service endpoint
	return endpoints.Endpoints{
		FunnelEndpoint: endpoints.MakeFunnelEndpoint(funnelService),
	}
}

func makeFunnelService(cfg *config.Config, redisClient *redis.Client) *service.FunnelService {
	// booking API client, rate limited through redis and authenticated with the caller's token
	client := bookingapi.NewClient(bookingapi.Config{
		BaseURL:      cfg.BookingAPI.BaseURL,
		Timeout:      cfg.BookingAPI.Timeout,
		MaxRetries:   cfg.BookingAPI.MaxRetries,
		RateLimitRPS: cfg.BookingAPI.RateLimitRPS,
		Limiter:      redis_rate.NewLimiter(redisClient),
	}, auth.ContextAuthenticator{})

	// session state
	store := flight.NewSessionStore(redisClient, cfg.Funnel.SessionTTL, cfg.Funnel.OrderCacheExpiration)

	// booking events
	var publisher queue.Publisher = queue.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		publisher = queue.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.BookingQueue)
	} else {
		slog.Warn("RABBITMQ_URL not set, booking events will not be published")
	}

	return service.NewFunnelService(client, store, publisher, workflow.PollConfig{
		Interval:    cfg.Funnel.PollInterval,
		MaxAttempts: cfg.Funnel.MaxPollAttempts,
	}, cfg.Funnel.BookingLockTimeout)
}
