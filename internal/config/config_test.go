package config

import "testing"

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("DB_DSN", "postgres://localhost/bridge")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Kafka.ReadingsTopic != "device_readings" {
		t.Errorf("ReadingsTopic = %q", cfg.Kafka.ReadingsTopic)
	}
	if cfg.Ingest.QueueSize != 500 || cfg.Ingest.MaxWorkers != 10 {
		t.Errorf("ingest defaults wrong: %+v", cfg.Ingest)
	}
	if cfg.API.Port != ":8080" || cfg.API.BasePath != "/api/v0" {
		t.Errorf("api defaults wrong: %+v", cfg.API)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("DB_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted missing broker and DSN")
	}
}

func TestLoadParsesChatIDs(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("DB_DSN", "postgres://localhost/bridge")
	t.Setenv("TELEGRAM_CHAT_IDS", "12345, 67890")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Telegram.ChatIDs) != 2 || cfg.Telegram.ChatIDs[0] != 12345 || cfg.Telegram.ChatIDs[1] != 67890 {
		t.Errorf("ChatIDs = %v", cfg.Telegram.ChatIDs)
	}
}
