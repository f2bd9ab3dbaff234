package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTP   HTTPConfig
	Store  StoreConfig
	Cache  CacheConfig
	Kafka  KafkaConfig
	Engine EngineConfig
	Env    string // "development" selects the console logger
}

type HTTPConfig struct {
	Addr           string
	RequestTimeout time.Duration
}

type StoreConfig struct {
	Driver      string // "memory", "postgres"
	DatabaseURL string
	Fixture     string // optional YAML fixture used to seed the memory store
}

type CacheConfig struct {
	Driver        string // "memory", "redis", "none"
	RedisAddrs    []string
	RedisPassword string
	RedisCluster  bool
	TTL           time.Duration
}

type KafkaConfig struct {
	Brokers           []string
	InvalidationTopic string
	GroupID           string
}

// Enabled reports whether brokers were configured.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type EngineConfig struct {
	BudgetOrigin      string
	NormalizeFallback bool
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		HTTP: HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Driver:      getEnv("STORE", "memory"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Fixture:     os.Getenv("STORE_FIXTURE"),
		},
		Cache: CacheConfig{
			Driver:        getEnv("CACHE", "memory"),
			RedisAddrs:    getEnvSlice("REDIS_ADDR", []string{"localhost:6379"}),
			RedisPassword: os.Getenv("REDIS_PASS"),
			RedisCluster:  getEnvAsBool("REDIS_CLUSTER", false),
			TTL:           getEnvAsDuration("CACHE_TTL", 60*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:           getEnvSlice("KAFKA_BROKERS", nil),
			InvalidationTopic: getEnv("KAFKA_TOPIC_INVALIDATION", "statement_invalidation"),
			GroupID:           getEnv("KAFKA_GROUP_ID", "statement-engine"),
		},
		Engine: EngineConfig{
			BudgetOrigin:      getEnv("BUDGET_ORIGIN", "ORC"),
			NormalizeFallback: getEnvAsBool("NORMALIZE_FALLBACK", true),
		},
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("STORE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown STORE %q", c.Store.Driver)
	}
	switch c.Cache.Driver {
	case "memory", "none":
	case "redis":
		if len(c.Cache.RedisAddrs) == 0 {
			return fmt.Errorf("CACHE=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown CACHE %q", c.Cache.Driver)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvSlice splits a comma separated value, dropping blanks.
func getEnvSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
