package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Api    ApiConfig
	Upload UploadConfig
}

type AppConfig struct {
	Environment string
	LogFilePath string
	TokenFile   string
}

type ApiConfig struct {
	BaseURL        string
	RequestTimeout int // seconds
}

type UploadConfig struct {
	// Streamed uploads have no server-side timeout, so the client caps them.
	Timeout int // seconds
}

func (c ApiConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c UploadConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Environment: getEnv("GO_ENV", "development"),
			LogFilePath: getEnv("LOG_FILE_PATH", "edugen.log"),
			TokenFile:   getEnv("EDUGEN_TOKEN_FILE", ".edugen_token"),
		},
		Api: ApiConfig{
			BaseURL:        getEnv("EDUGEN_API_BASE_URL", "http://localhost:8000"),
			RequestTimeout: getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 60),
		},
		Upload: UploadConfig{
			Timeout: getEnvAsInt("UPLOAD_TIMEOUT_SECONDS", 600),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
