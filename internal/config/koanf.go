package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where a config file is searched for,
// in order of priority. The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lccn-predictor/config.yaml",
}

// ConfigPathEnvVar overrides the config file search with an explicit path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config with the service's baseline values,
// applied before the file and environment layers override them.
func defaultConfig() *Config {
	weeklyBase := time.Date(2023, time.April, 30, 2, 30, 0, 0, time.UTC)
	biweeklyBase := time.Date(2023, time.April, 29, 14, 30, 0, 0, time.UTC)

	cfg := &Config{
		MongoDB: MongoDBConfig{
			IP:   "127.0.0.1",
			Port: 27017,
			DB:   "lccn_predictor",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
		Scheduler: SchedulerConfig{
			WeeklyBaseContestNumber:   338,
			WeeklyBaseTime:            weeklyBase,
			WeeklyBaseTimeRFC3339:     weeklyBase.Format(time.RFC3339),
			BiweeklyBaseContestNumber: 98,
			BiweeklyBaseTime:          biweeklyBase,
			BiweeklyBaseTimeRFC3339:   biweeklyBase.Format(time.RFC3339),
			PreWarmOffsetFirst:        25 * time.Minute,
			PreWarmOffsetSecond:       70 * time.Minute,
			ComposedPredictOffset:     95 * time.Minute,
			MaintenanceRecentOffset:   time.Minute,
			MaintenanceRecordsOffset:  10 * time.Minute,
		},
		FetchQueue: FetchQueueConfig{
			MaxRetries: 5,
		},
		Cache: CacheConfig{
			UserRatingTTL:      36 * time.Hour,
			UserRatingCapacity: 200000,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
	}
	cfg.FetchQueue.ConcurrencyRanking.US = 20
	cfg.FetchQueue.ConcurrencyRanking.CN = 1
	cfg.FetchQueue.ConcurrencyUserRating.US = 25
	cfg.FetchQueue.ConcurrencyUserRating.CN = 4
	cfg.FetchQueue.ConcurrencyPastContests.US = 10
	cfg.FetchQueue.ConcurrencyPastContests.CN = 1
	return cfg
}

// LoadWithKoanf loads configuration using koanf v2 with layered sources,
// in order of increasing precedence:
//
//  1. Defaults: built-in sensible defaults (defaultConfig)
//  2. Config file: optional YAML file (config.yaml or CONFIG_PATH)
//  3. Environment variables: override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := resolveTimeFields(cfg); err != nil {
		return nil, fmt.Errorf("failed to resolve scheduler anchor times: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// resolveTimeFields parses the RFC3339 string mirrors of the scheduler's
// anchor times, since koanf/structs cannot round-trip time.Time directly
// through the "-" koanf tag used to keep it out of the provider chain.
func resolveTimeFields(cfg *Config) error {
	weekly, err := time.Parse(time.RFC3339, cfg.Scheduler.WeeklyBaseTimeRFC3339)
	if err != nil {
		return fmt.Errorf("invalid scheduler.weekly_base_time: %w", err)
	}
	cfg.Scheduler.WeeklyBaseTime = weekly

	biweekly, err := time.Parse(time.RFC3339, cfg.Scheduler.BiweeklyBaseTimeRFC3339)
	if err != nil {
		return fmt.Errorf("invalid scheduler.biweekly_base_time: %w", err)
	}
	cfg.Scheduler.BiweeklyBaseTime = biweekly
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists paths that must be parsed as comma-separated
// slices when they arrive from an environment variable as a plain string.
var sliceConfigPaths = []string{
	"cors.allow_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps flat environment variable names to koanf's dotted
// configuration paths, e.g. MONGODB_IP -> mongodb.ip.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		"mongodb_ip":       "mongodb.ip",
		"mongodb_port":     "mongodb.port",
		"mongodb_username": "mongodb.username",
		"mongodb_password": "mongodb.password",
		"mongodb_db":       "mongodb.db",

		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		"cors_allow_origins": "cors.allow_origins",

		"http_host": "server.host",
		"http_port": "server.port",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	return strings.ReplaceAll(key, "_", ".")
}
