package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Record sources and translators selectable through the environment.
const (
	SourceJSON     = "json"
	SourcePostgres = "postgres"

	TranslatorGemini = "gemini"
	TranslatorRules  = "rules"
)

type Config struct {
	StudentsPath string
	AdminsPath   string
	DataSource   string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	Translator   string
	GeminiModel  string
	QueryTimeout time.Duration

	RedisAddr string
	CacheTTL  time.Duration

	HTTPAddr string
	Debug    bool
}

// Load reads .env (when present) and the process environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
		log.Printf("No .env file found, using process environment")
	}

	cfg := &Config{
		StudentsPath: getEnv("STUDENTS_PATH", "data/students.json"),
		AdminsPath:   getEnv("ADMINS_PATH", "data/admins.json"),
		DataSource:   strings.ToLower(getEnv("DATA_SOURCE", SourceJSON)),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBName:       os.Getenv("DB_NAME"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		QueryTimeout: getEnvDuration("QUERY_TIMEOUT", 30*time.Second),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		CacheTTL:     getEnvDuration("CACHE_TTL", time.Hour),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		Debug:        getEnvBool("DEBUG", false),
	}

	cfg.Translator = strings.ToLower(os.Getenv("TRANSLATOR"))
	if cfg.Translator == "" {
		cfg.Translator = TranslatorRules
		if HasGeminiKey() {
			cfg.Translator = TranslatorGemini
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DataSource {
	case SourceJSON, SourcePostgres:
	default:
		return fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", SourceJSON, SourcePostgres, c.DataSource)
	}
	switch c.Translator {
	case TranslatorGemini:
		if !HasGeminiKey() {
			return fmt.Errorf("TRANSLATOR=%s requires GEMINI_API_KEY", TranslatorGemini)
		}
	case TranslatorRules:
	default:
		return fmt.Errorf("TRANSLATOR must be %q or %q, got %q", TranslatorGemini, TranslatorRules, c.Translator)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("QUERY_TIMEOUT must be positive")
	}
	return nil
}

// PostgresDSN builds the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// Debugf logs only when DEBUG is enabled
func (c *Config) Debugf(format string, v ...interface{}) {
	if c.Debug {
		log.Printf("[DEBUG] "+format, v...)
	}
}

// HasGeminiKey reports whether any Gemini API key variable is set.
func HasGeminiKey() bool {
	if os.Getenv("GEMINI_API_KEY") != "" {
		return true
	}
	for i := 1; i <= 4; i++ {
		if os.Getenv(fmt.Sprintf("GEMINI_API_KEY_%d", i)) != "" {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("45s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("Warning: invalid %s=%q, using %s", key, value, defaultValue)
	return defaultValue
}
