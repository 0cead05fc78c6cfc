package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries all process-lifetime settings. Values are fixed at startup;
// there is no runtime reconfiguration.
type Config struct {
	Addr       string
	AuthSecret string
	Gate       GateConfig
	Login      LoginConfig
	Postgres   PostgresConfig
	SeedUsers  int
}

// GateConfig bounds the number of requests concurrently inside the pipeline.
type GateConfig struct {
	Capacity int64
	Wait     time.Duration
}

// LoginConfig throttles /auth/login per client IP.
type LoginConfig struct {
	PerSecond int
	Burst     int
}

type PostgresConfig struct {
	DSN string
}

// Load reads configuration from the environment. A .env file is honored for
// local development and silently ignored when absent.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Addr:       getEnv("APP_ADDR", ":8080"),
		AuthSecret: getEnv("AUTH_SECRET", "your_long_super_secret_key_that_is_at_least_32_bytes"),
		Gate: GateConfig{
			Capacity: int64(getEnvAsInt("GATE_CAPACITY", 100)),
			Wait:     getEnvAsDuration("GATE_WAIT", 10*time.Second),
		},
		Login: LoginConfig{
			PerSecond: getEnvAsInt("LOGIN_RATE", 1),
			Burst:     getEnvAsInt("LOGIN_BURST", 5),
		},
		Postgres: PostgresConfig{
			DSN: getEnv("PG_DSN", ""),
		},
		SeedUsers: getEnvAsInt("SEED_USERS", 20),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
