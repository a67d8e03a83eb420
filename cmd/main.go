package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"telemetry-bridge/internal/api"
	"telemetry-bridge/internal/config"
	"telemetry-bridge/internal/ingest"
	"telemetry-bridge/internal/kafka"
	"telemetry-bridge/internal/logging"
	"telemetry-bridge/internal/notify"
	"telemetry-bridge/internal/providers"
	"telemetry-bridge/internal/relay"
	"telemetry-bridge/internal/store"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir, cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Close()

	// Connect to the document store
	ctx := context.Background()
	db, err := store.New(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Errorf("Failed to connect to database: %v", err)
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Errorf("Failed to ensure schema: %v", err)
		log.Fatalf("Schema setup failed: %v", err)
	}

	// Notification dispatcher with configured providers
	dispatcher := notify.NewDispatcher(logger)
	push := providers.NewPushSender(cfg.Push.Endpoint, cfg.Push.ServerKey, cfg.Push.RatePerSecond)
	dispatcher.Register("push", push.Send)
	if cfg.Telegram.BotToken != "" && len(cfg.Telegram.ChatIDs) > 0 {
		tg, err := providers.NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.ChatIDs, logger)
		if err != nil {
			logger.Errorf("Telegram provider disabled: %v", err)
		} else {
			dispatcher.Register("telegram", tg.Send)
		}
	}

	// Ingestion service
	svc := ingest.New(ingest.Stores{
		Configs:   db,
		States:    db,
		Telemetry: db,
	}, dispatcher, logger, cfg)
	var wg sync.WaitGroup
	svc.Start(&wg)

	// Readings consumer
	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ReadingsTopic, cfg.Kafka.GroupID, svc)
	consumer.Start(&wg)
	logger.Infof("Kafka consumer initialized with topic: %s", cfg.Kafka.ReadingsTopic)

	// Config-push relay
	producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ConfigPushTopic)
	if err != nil {
		logger.Errorf("Failed to init config-push producer: %v", err)
		log.Fatalf("Kafka producer failed: %v", err)
	}
	defer producer.Close()
	pusher := relay.New(producer, cfg.Device.Project, cfg.Device.Region, cfg.Device.Registry, logger)

	// API server
	handler := api.NewHandler(db, pusher, svc, logger)
	router := api.NewRouter(logger, cfg, handler)
	go func() {
		logger.Infof("Starting API server on %s", cfg.API.Port)
		if err := router.Run(cfg.API.Port); err != nil {
			logger.Errorf("API server failed: %v", err)
		}
	}()

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Info("Shutting down...")
	consumer.Close()
	svc.Stop()
	wg.Wait()
	logger.Info("Service stopped")
}
