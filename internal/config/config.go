package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"aistats/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database  DatabaseConfig
	AI        AIConfig
	Server    ServerConfig
	Data      DataConfig
	Analysis  AnalysisConfig
	Profiling ProfilingConfig
}

// DatabaseConfig holds the optional turn-log connection. An empty URL disables persistence.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether a database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// AIConfig holds AI/LLM related settings
type AIConfig struct {
	OpenAIKey   string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	PromptsDir  string // optional template overrides
}

// Enabled reports whether a model transport can be built
func (a AIConfig) Enabled() bool {
	return a.OpenAIKey != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig names files preloaded into new sessions
type DataConfig struct {
	DataFile   string
	LabelsFile string
}

// AnalysisConfig tunes the statistics engine
type AnalysisConfig struct {
	CategoricalThreshold int
	CIMethod             string // "normal" or "t"
}

// ProfilingConfig holds the debug listener settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database:  DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		AI:        *loadAIConfig(),
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Analysis:  *loadAnalysisConfig(),
		Profiling: *loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadAIConfig() *AIConfig {
	return &AIConfig{
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		BaseURL:     getEnvOrDefault("OPENAI_BASE_URL", ""),
		Model:       getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
		MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 2000),
		Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.3),
		Timeout:     getEnvDurationOrDefault("LLM_TIMEOUT", 60*time.Second),
		PromptsDir:  getEnvOrDefault("PROMPTS_DIR", ""),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		DataFile:   getEnvOrDefault("DATA_FILE", ""),
		LabelsFile: getEnvOrDefault("LABELS_FILE", ""),
	}
}

func loadAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		CategoricalThreshold: getEnvIntOrDefault("CATEGORICAL_THRESHOLD", 15),
		CIMethod:             strings.ToLower(getEnvOrDefault("CI_METHOD", "normal")),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", true),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT must not be empty")
	}
	if config.Analysis.CategoricalThreshold < 0 {
		return errors.ConfigInvalid("CATEGORICAL_THRESHOLD must be non-negative")
	}
	switch config.Analysis.CIMethod {
	case "normal", "t":
	default:
		return errors.ConfigInvalid("CI_METHOD must be \"normal\" or \"t\"")
	}
	if config.AI.MaxTokens <= 0 {
		return errors.ConfigInvalid("MAX_TOKENS must be positive")
	}
	if config.AI.Timeout <= 0 {
		return errors.ConfigInvalid("LLM_TIMEOUT must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
