package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr string
	DBPath     string

	// AIBackend selects the image analyzer: "claude", "ollama", or "off".
	AIBackend    string
	OllamaHost   string
	OllamaModel  string
	ClaudeAPIKey string
	ClaudeModel  string

	OpenFoodFactsURL string
	TranslateTarget  string

	PhotoPath string

	LogLevel  string
	LogFormat string
	LogFile   string
}

func Load() *Config {
	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	return &Config{
		ListenAddr:       getEnv("LISTEN_ADDR", ":8080"),
		DBPath:           getEnv("DB_PATH", "/data/hmmm.db"),
		AIBackend:        getEnv("AI_BACKEND", "off"),
		OllamaHost:       getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:      getEnv("OLLAMA_MODEL", "moondream"),
		ClaudeAPIKey:     getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:      getEnv("CLAUDE_MODEL", "claude-sonnet-4-20250514"),
		OpenFoodFactsURL: getEnv("OPENFOODFACTS_URL", "https://world.openfoodfacts.org"),
		TranslateTarget:  getEnv("TRANSLATE_TARGET", ""),
		PhotoPath:        getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		LogFile:          getEnv("LOG_FILE", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
