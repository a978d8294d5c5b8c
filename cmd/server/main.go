package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trustflow-service/config"
	"trustflow-service/internal/api"
	"trustflow-service/internal/audit"
	"trustflow-service/internal/auth"
	"trustflow-service/internal/broker"
	"trustflow-service/internal/redisclient"
	"trustflow-service/internal/scoring"
	"trustflow-service/internal/service"
	"trustflow-service/internal/store"
	"trustflow-service/internal/util"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting trustflow service")

	tp, err := util.InitTracer("trustflow-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	auditProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicAudit)
	defer auditProducer.Close()

	fraudProducer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicFraud)
	defer fraudProducer.Close()
	log.Println("Kafka producers initialized")

	auditPublisher := broker.NewAuditPublisher(auditProducer)
	fraudPublisher := broker.NewFraudPublisher(fraudProducer, cfg.Kafka.FraudEventsEnabled)

	recorder := audit.NewRecorder(db, auditPublisher, logger)
	scorer := scoring.New(cfg.Scoring, logger)
	authenticator := auth.NewAuthenticator(cfg.Auth.JWTSecret)

	listingService := service.NewListingService(db, redisClient, scorer, recorder)
	orderService := service.NewOrderService(db, recorder, fraudPublisher)
	reviewService := service.NewReviewService(db, redisClient, recorder)
	userService := service.NewUserService(db, recorder)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(
		listingService,
		orderService,
		reviewService,
		userService,
		authenticator,
		redisClient,
		cfg.Business.RateLimitPerMinute,
	)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
