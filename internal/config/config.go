package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Badger    BadgerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Sweeper   SweeperConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MongoDBConfig selects the primary store when URI is set.
type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// BadgerConfig selects the embedded store when Path is set and Mongo is not.
type BadgerConfig struct {
	Path string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

// SweeperConfig drives the inactivity eviction task. Threshold is the
// maximum silence tolerated since the last heartbeat; Interval is the pause
// between passes. Worst-case staleness is Threshold+Interval.
type SweeperConfig struct {
	Enabled   bool
	Interval  time.Duration
	Threshold time.Duration
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("MONGODB_DATABASE", "tertulia")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("RATE_LIMIT_RPS", 5.0)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	viper.SetDefault("SWEEPER_ENABLED", true)
	viper.SetDefault("SWEEPER_INTERVAL_SECONDS", 15)
	viper.SetDefault("SWEEPER_THRESHOLD_SECONDS", 10)

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetString("SERVER_PORT"),
			Host:         viper.GetString("SERVER_HOST"),
			Environment:  viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Badger: BadgerConfig{
			Path: viper.GetString("BADGER_PATH"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       0,
		},
		RateLimit: RateLimitConfig{
			Enabled:       viper.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      viper.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         viper.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: viper.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Sweeper: SweeperConfig{
			Enabled:   viper.GetBool("SWEEPER_ENABLED"),
			Interval:  time.Duration(viper.GetInt("SWEEPER_INTERVAL_SECONDS")) * time.Second,
			Threshold: time.Duration(viper.GetInt("SWEEPER_THRESHOLD_SECONDS")) * time.Second,
		},
	}

	// Basic validation
	if cfg.Sweeper.Enabled && (cfg.Sweeper.Interval <= 0 || cfg.Sweeper.Threshold <= 0) {
		log.Println("WARNING: sweeper interval/threshold must be positive; falling back to 15s/10s")
		cfg.Sweeper.Interval = 15 * time.Second
		cfg.Sweeper.Threshold = 10 * time.Second
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.RPS <= 0 {
		log.Println("WARNING: RATE_LIMIT_RPS must be positive; disabling rate limiter")
		cfg.RateLimit.Enabled = false
	}

	return cfg, nil
}
