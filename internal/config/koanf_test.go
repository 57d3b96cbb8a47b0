package config

import (
	"testing"
	"time"
)

func TestLoadWithKoanfDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.MongoDB.DB != "lccn_predictor" {
		t.Errorf("MongoDB.DB = %q, want lccn_predictor", cfg.MongoDB.DB)
	}
	if cfg.Cache.UserRatingTTL != 36*time.Hour {
		t.Errorf("Cache.UserRatingTTL = %v, want 36h", cfg.Cache.UserRatingTTL)
	}
	if cfg.Scheduler.ComposedPredictOffset <= cfg.Scheduler.PreWarmOffsetSecond {
		t.Errorf("composedPredict offset must run after both pre-warm jobs")
	}
}

func TestLoadWithKoanfEnvOverride(t *testing.T) {
	t.Setenv("MONGODB_IP", "10.0.0.5")
	t.Setenv("MONGODB_PORT", "27018")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.MongoDB.IP != "10.0.0.5" {
		t.Errorf("MongoDB.IP = %q, want 10.0.0.5", cfg.MongoDB.IP)
	}
	if cfg.MongoDB.Port != 27018 {
		t.Errorf("MongoDB.Port = %d, want 27018", cfg.MongoDB.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadMongoPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.MongoDB.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Validate() to reject port 0")
	}
}
