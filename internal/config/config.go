package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	Kafka struct {
		Brokers         []string
		ReadingsTopic   string
		GroupID         string
		ConfigPushTopic string
	}
	DB struct {
		DSN string
	}
	Push struct {
		Endpoint      string
		ServerKey     string
		RatePerSecond int
	}
	Telegram struct {
		BotToken string
		ChatIDs  []int64
	}
	Device struct {
		Project  string
		Region   string
		Registry string
	}
	Ingest struct {
		QueueSize  int
		MaxWorkers int
	}
	API struct {
		Port     string
		BasePath string
	}
	Logging struct {
		Dir   string
		Level string
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	// Kafka settings
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	cfg.Kafka.ReadingsTopic = os.Getenv("KAFKA_READINGS_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")
	cfg.Kafka.ConfigPushTopic = os.Getenv("KAFKA_CONFIG_PUSH_TOPIC")

	// Database DSN
	cfg.DB.DSN = os.Getenv("DB_DSN")

	// Push channel settings
	cfg.Push.Endpoint = os.Getenv("PUSH_ENDPOINT")
	cfg.Push.ServerKey = os.Getenv("PUSH_SERVER_KEY")
	if r, err := strconv.Atoi(os.Getenv("PUSH_RATE_PER_SECOND")); err == nil {
		cfg.Push.RatePerSecond = r
	}

	// Telegram settings (optional operator channel)
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	for _, id := range strings.Split(os.Getenv("TELEGRAM_CHAT_IDS"), ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		chatID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid TELEGRAM_CHAT_IDS entry %q: %w", id, err)
		}
		cfg.Telegram.ChatIDs = append(cfg.Telegram.ChatIDs, chatID)
	}

	// Device addressing for config pushes
	cfg.Device.Project = os.Getenv("DEVICE_PROJECT")
	cfg.Device.Region = os.Getenv("DEVICE_REGION")
	cfg.Device.Registry = os.Getenv("DEVICE_REGISTRY")

	// Ingest worker settings
	if qs, err := strconv.Atoi(os.Getenv("QUEUE_SIZE")); err == nil {
		cfg.Ingest.QueueSize = qs
	}
	if mw, err := strconv.Atoi(os.Getenv("MAX_WORKERS")); err == nil {
		cfg.Ingest.MaxWorkers = mw
	}

	// API settings
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")

	// Logging
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	// Validate required settings
	missing := []string{}
	if len(cfg.Kafka.Brokers) == 0 {
		missing = append(missing, "KAFKA_BROKERS")
	}
	if cfg.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.Kafka.ReadingsTopic == "" {
		cfg.Kafka.ReadingsTopic = "device_readings"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "telemetry-bridge"
	}
	if cfg.Kafka.ConfigPushTopic == "" {
		cfg.Kafka.ConfigPushTopic = "device_config_push"
	}
	if cfg.Push.Endpoint == "" {
		cfg.Push.Endpoint = "https://fcm.googleapis.com/fcm/send"
	}
	if cfg.Push.RatePerSecond == 0 {
		cfg.Push.RatePerSecond = 20
	}
	if cfg.Ingest.QueueSize == 0 {
		cfg.Ingest.QueueSize = 500
	}
	if cfg.Ingest.MaxWorkers == 0 {
		cfg.Ingest.MaxWorkers = 10
	}
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api/v0"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}
