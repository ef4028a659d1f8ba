package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	APIKey     string
	ChatModel  string
	VideoModel string

	// VideoPollInterval is how long to wait between polls of a video
	// generation operation.
	VideoPollInterval time.Duration
	// VideoMaxPolls bounds the poll loop; 0 polls until the provider
	// reports done.
	VideoMaxPolls int

	UseMockLLM bool // true = serve scripted replies, no API key needed
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Load reads all env vars and builds the config
func Load() *Config {
	cfg := &Config{
		Port: getEnv("PRISM_PORT", "8080"),

		APIKey:     getEnv("PRISM_API_KEY", ""),
		ChatModel:  getEnv("PRISM_CHAT_MODEL", "gemini-2.5-flash"),
		VideoModel: getEnv("PRISM_VIDEO_MODEL", "veo-2.0-generate-001"),

		VideoPollInterval: time.Duration(getIntEnv("PRISM_VIDEO_POLL_SECONDS", 5)) * time.Second,
		VideoMaxPolls:     getIntEnv("PRISM_VIDEO_MAX_POLLS", 120),

		UseMockLLM: getBoolEnv("PRISM_USE_MOCK_LLM", false),
	}

	if !cfg.UseMockLLM && cfg.APIKey == "" {
		log.Fatal("PRISM_API_KEY must be set unless PRISM_USE_MOCK_LLM is enabled")
	}

	return cfg
}
