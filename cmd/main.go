package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RishiKendai/aegis-text/internal/api"
	"github.com/RishiKendai/aegis-text/internal/config"
	"github.com/RishiKendai/aegis-text/internal/configs/env"
	"github.com/RishiKendai/aegis-text/internal/infra/mongo"
	redisInfra "github.com/RishiKendai/aegis-text/internal/infra/redis"
	"github.com/RishiKendai/aegis-text/internal/logger"
	"github.com/RishiKendai/aegis-text/internal/metrics"
	"github.com/RishiKendai/aegis-text/internal/plagiarism"
	"github.com/RishiKendai/aegis-text/internal/preprocess"
	"github.com/RishiKendai/aegis-text/internal/repository"
	"github.com/RishiKendai/aegis-text/internal/stream"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel)
	log.Info().Msg("Starting AEGIS text similarity server")

	metrics.InitPrometheus()
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.MetricsHandler())
	metricsServer := api.StartServer("metrics", metricsMux, cfg.MetricsPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(context.Background())

	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	reportsRepo := repository.NewReportsRepository(repository.NewMongoRepository(mongoClient))
	if err := reportsRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure report indexes")
	}

	statusTracker := plagiarism.NewStatusTracker(redisClient.Client)
	producer := stream.NewProducer(redisClient.Client, cfg.RedisStreamKey)

	engine := plagiarism.NewEngine(cfg.Thresholds)
	intake := preprocess.NewService(cfg.MaxDocuments, cfg.MaxDocumentBytes)

	workerPool := plagiarism.NewWorkerPool(ctx, cfg.Workers)
	defer workerPool.Close()
	log.Info().Int("workers", workerPool.Size()).Msg("Worker pool started")

	processor := stream.NewProcessor(intake, engine, workerPool, reportsRepo, statusTracker, cfg.ComputationTimeout)

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(redisClient.Client, stream.ConsumerConfig{
		StreamKey:     cfg.RedisStreamKey,
		Group:         cfg.RedisConsumerGroup,
		Name:          consumerName,
		DeadLetterKey: cfg.RedisDeadLetterKey,
		Retention:     cfg.StreamRetentionDuration,
	}, processor)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Str("consumer_name", consumerName).Msg("Redis consumer started")

	handler := api.NewHandler(cfg, engine, workerPool, intake, producer, statusTracker, reportsRepo)
	router := api.SetupRoutes(cfg, handler)
	srv := api.StartServer("api", router, cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down Gin server")
	}

	// stop consuming before the pool and clients are closed by the deferred calls
	cancel()
	select {
	case <-consumerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Consumer did not stop in time")
	}

	if err := api.ShutdownServer(metricsServer, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
