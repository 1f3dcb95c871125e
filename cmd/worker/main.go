package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Karthikeyadusa/Attendly-sub000/internal/aiclient"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/config"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/logger"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/queue"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/syncer"
	"github.com/Karthikeyadusa/Attendly-sub000/internal/worker"
)

// Standalone extraction worker. Only useful with the redis queue backend;
// with the memory backend the API runs the loop in-process and jobs never
// reach a separate binary.
func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutdown signal received")
		cancel()
	}()

	if cfg.QueueBackend != "redis" {
		log.Fatal().Msg("worker requires QUEUE_BACKEND=redis")
	}

	redisClient := syncer.NewRedisClient(cfg.RedisAddr)
	defer redisClient.Close()

	if !syncer.Healthy(ctx, redisClient) {
		log.Warn().Msg("redis not reachable yet, consuming will retry")
	}

	q := queue.NewRedisQueue(redisClient, "")
	results := queue.NewRedisResults(redisClient, "")
	ai := aiclient.New(cfg.AIServiceURL, cfg.AISkip)

	log.Info().Msg("worker started, waiting for jobs")
	if err := worker.Run(ctx, ai, q, results); err != nil {
		log.Fatal().Err(err).Msg("queue consume init failed")
	}
	log.Info().Msg("worker stopped")
}
