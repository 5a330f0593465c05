package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STUDENTS_PATH", "ADMINS_PATH", "DATA_SOURCE", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"GEMINI_API_KEY", "GEMINI_API_KEY_1", "GEMINI_API_KEY_2", "GEMINI_API_KEY_3", "GEMINI_API_KEY_4",
		"GEMINI_MODEL", "TRANSLATOR", "QUERY_TIMEOUT", "REDIS_ADDR", "CACHE_TTL", "DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StudentsPath != "data/students.json" || cfg.AdminsPath != "data/admins.json" {
		t.Errorf("paths = %q, %q", cfg.StudentsPath, cfg.AdminsPath)
	}
	if cfg.DataSource != SourceJSON {
		t.Errorf("DataSource = %q, want %q", cfg.DataSource, SourceJSON)
	}
	if cfg.Translator != TranslatorRules {
		t.Errorf("Translator = %q, want %q without API keys", cfg.Translator, TranslatorRules)
	}
	if cfg.QueryTimeout != 30*time.Second || cfg.CacheTTL != time.Hour {
		t.Errorf("QueryTimeout = %s, CacheTTL = %s", cfg.QueryTimeout, cfg.CacheTTL)
	}
}

func TestLoadPicksGeminiWhenKeyPresent(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY_2", "secret")
	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Translator != TranslatorGemini {
		t.Errorf("Translator = %q, want %q", cfg.Translator, TranslatorGemini)
	}
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown data source", env: map[string]string{"DATA_SOURCE": "mongo"}},
		{name: "unknown translator", env: map[string]string{"TRANSLATOR": "oracle"}},
		{name: "gemini without key", env: map[string]string{"TRANSLATOR": "gemini"}},
		{name: "non-positive timeout", env: map[string]string{"QUERY_TIMEOUT": "-5s"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(missingEnvFile(t)); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	testCases := []struct {
		value string
		want  time.Duration
	}{
		{value: "45s", want: 45 * time.Second},
		{value: "2m", want: 2 * time.Minute},
		{value: "10", want: 10 * time.Second},
		{value: "soon", want: time.Minute},
		{value: "", want: time.Minute},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tc.value)
			if got := getEnvDuration("TEST_DURATION", time.Minute); got != tc.want {
				t.Errorf("getEnvDuration(%q) = %s, want %s", tc.value, got, tc.want)
			}
		})
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("HTTP_ADDR")
	t.Cleanup(func() { os.Unsetenv("HTTP_ADDR") })

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("HTTP_ADDR=:9999\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want :9999", cfg.HTTPAddr)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "school"}
	want := "host=db port=5433 user=u password=p dbname=school sslmode=disable"
	if got := cfg.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN() = %q, want %q", got, want)
	}
}
