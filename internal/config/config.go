// Package config loads and validates the service configuration, layering
// built-in defaults, an optional YAML file, and environment variables, in
// that order of increasing precedence.
package config

import "time"

// Config is the root configuration object, assembled by LoadWithKoanf.
type Config struct {
	MongoDB   MongoDBConfig   `koanf:"mongodb"`
	Logging   LoggingConfig   `koanf:"logging"`
	CORS      CORSConfig      `koanf:"cors"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	FetchQueue FetchQueueConfig `koanf:"fetch_queue"`
	Cache     CacheConfig     `koanf:"cache"`
	Server    ServerConfig    `koanf:"server"`
}

// MongoDBConfig holds the document-store connection settings.
type MongoDBConfig struct {
	IP       string `koanf:"ip"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	DB       string `koanf:"db"`
}

// LoggingConfig controls the zerolog sink.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// CORSConfig configures the read API's cross-origin policy.
type CORSConfig struct {
	AllowOrigins []string `koanf:"allow_origins"`
}

// SchedulerConfig controls the weekly/biweekly contest anchors and the job
// runner's pre-warm/predict offsets. The maintenance window itself is fixed
// in internal/scheduler; MaintenanceRecentOffset and
// MaintenanceRecordsOffset are not read outside this package.
type SchedulerConfig struct {
	WeeklyBaseContestNumber    int           `koanf:"weekly_base_contest_number"`
	WeeklyBaseTime             time.Time     `koanf:"-"`
	WeeklyBaseTimeRFC3339      string        `koanf:"weekly_base_time"`
	BiweeklyBaseContestNumber  int           `koanf:"biweekly_base_contest_number"`
	BiweeklyBaseTime           time.Time     `koanf:"-"`
	BiweeklyBaseTimeRFC3339    string        `koanf:"biweekly_base_time"`
	PreWarmOffsetFirst         time.Duration `koanf:"pre_warm_offset_first"`
	PreWarmOffsetSecond        time.Duration `koanf:"pre_warm_offset_second"`
	ComposedPredictOffset      time.Duration `koanf:"composed_predict_offset"`
	MaintenanceRecentOffset    time.Duration `koanf:"maintenance_recent_offset"`
	MaintenanceRecordsOffset   time.Duration `koanf:"maintenance_records_offset"`
}

// FetchQueueConfig sets per-call-site concurrency and retry bounds.
type FetchQueueConfig struct {
	MaxRetries         int `koanf:"max_retries"`
	ConcurrencyRanking struct {
		US int `koanf:"us"`
		CN int `koanf:"cn"`
	} `koanf:"concurrency_ranking"`
	ConcurrencyUserRating struct {
		US int `koanf:"us"`
		CN int `koanf:"cn"`
	} `koanf:"concurrency_user_rating"`
	ConcurrencyPastContests struct {
		US int `koanf:"us"`
		CN int `koanf:"cn"`
	} `koanf:"concurrency_past_contests"`
}

// CacheConfig controls the 36-hour user-rating staleness cache.
type CacheConfig struct {
	UserRatingTTL      time.Duration `koanf:"user_rating_ttl"`
	UserRatingCapacity int           `koanf:"user_rating_capacity"`
}

// ServerConfig controls the read API's HTTP listener.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// Validate checks the loaded configuration for obviously broken values.
// It does not attempt to reach MongoDB; connectivity is checked at dial time.
func (c *Config) Validate() error {
	if err := c.MongoDB.validate(); err != nil {
		return err
	}
	if err := c.FetchQueue.validate(); err != nil {
		return err
	}
	if err := c.Scheduler.validate(); err != nil {
		return err
	}
	return nil
}

func (m *MongoDBConfig) validate() error {
	if m.IP == "" {
		return errRequired("mongodb.ip")
	}
	if m.Port <= 0 || m.Port > 65535 {
		return errRange("mongodb.port", m.Port)
	}
	if m.DB == "" {
		return errRequired("mongodb.db")
	}
	return nil
}

func (f *FetchQueueConfig) validate() error {
	if f.MaxRetries < 0 {
		return errRange("fetch_queue.max_retries", f.MaxRetries)
	}
	return nil
}

func (s *SchedulerConfig) validate() error {
	if s.PreWarmOffsetFirst <= 0 || s.PreWarmOffsetSecond <= s.PreWarmOffsetFirst {
		return errOrder("scheduler.pre_warm_offset_first", "scheduler.pre_warm_offset_second")
	}
	if s.ComposedPredictOffset <= s.PreWarmOffsetSecond {
		return errOrder("scheduler.pre_warm_offset_second", "scheduler.composed_predict_offset")
	}
	return nil
}
