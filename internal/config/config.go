package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StockPolicyReject = "reject"
	StockPolicyClamp  = "clamp"
)

type Config struct {
	Port                 string
	AllowedOrigin        string
	DatabaseURL          string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	StatisticsTTLSeconds int
	AuthSecret           string
	Timezone             string
	StockPolicy          string
	LockTTLSeconds       int
	LogLevel             string
}

// Load reads an optional .env file and then the process environment, which
// wins over the file.
func Load() Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	statsTTL, err := strconv.Atoi(getEnv("STATISTICS_TTL_SECONDS", "60"))
	if err != nil || statsTTL < 1 {
		statsTTL = 60
	}
	lockTTL, err := strconv.Atoi(getEnv("LOCK_TTL_SECONDS", "10"))
	if err != nil || lockTTL < 1 {
		lockTTL = 10
	}
	policy := strings.ToLower(strings.TrimSpace(getEnv("STOCK_OVERSELL_POLICY", StockPolicyReject)))
	if policy != StockPolicyClamp {
		policy = StockPolicyReject
	}

	return Config{
		Port:                 getEnv("PORT", "8080"),
		AllowedOrigin:        getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              redisDB,
		StatisticsTTLSeconds: statsTTL,
		AuthSecret:           strings.TrimSpace(os.Getenv("AUTH_SECRET")),
		Timezone:             getEnv("LEDGER_TIMEZONE", "UTC"),
		StockPolicy:          policy,
		LockTTLSeconds:       lockTTL,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
	}
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// Location resolves Timezone, falling back to UTC for unknown names.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
