// Package config loads AnchorPQ's runtime configuration from the process
// environment.
package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	AdminAPIKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KEMParameterSet string
	KEMKeyFilePath  string
	KEMStrict       bool

	MerkleAlgorithm string

	FingerprintOutputDir string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:             addr,
		PostgresDSN:          os.Getenv("POSTGRES_DSN"),
		LogLevel:             envDefault("LOG_LEVEL", "info"),
		AdminAPIKey:          os.Getenv("ADMIN_API_KEY"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              envIntDefault("REDIS_DB", 0),
		KEMParameterSet:      envDefault("KEM_PARAMETER_SET", "ML-KEM-768"),
		KEMKeyFilePath:       envDefault("KEM_KEY_FILE_PATH", "anchorpq_kem.key"),
		KEMStrict:            envBoolDefault("KEM_STRICT", false),
		MerkleAlgorithm:      envDefault("MERKLE_ALGORITHM", "SHA-256"),
		FingerprintOutputDir: envDefault("FINGERPRINT_OUTPUT_DIR", "."),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}
