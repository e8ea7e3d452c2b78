package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	Env               string
	Port              string
	CORSAllowOrigin   []string
	DatabaseURL       string
	JWTSecret         string
	SessionCookieName string
	SessionTTL        time.Duration

	OpenAIAPIKey  string
	OpenAIBaseURL string
	LLMModel      string
	LLMTimeout    time.Duration

	MarkdownServiceURL string
	MarkdownTimeout    time.Duration
	PreviewServiceURL  string
	PreviewTimeout     time.Duration
	LatexCompileURL    string
	LatexTimeout       time.Duration
	TempDir            string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string

	RateLimitBackend string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience; real env vars win.
	for _, path := range []string{".env", "cmd/.env"} {
		_ = godotenv.Load(path)
	}

	env := normalizeEnv(getEnv("ENV", "dev"))
	return Config{
		Env:               env,
		Port:              getEnv("PORT", "8080"),
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		JWTSecret:         jwtSecret(env),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "rc_session"),
		SessionTTL:        getDuration("SESSION_TTL_HOURS", 24*7, time.Hour),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		LLMModel:      getEnv("LLM_MODEL", "gpt-5-mini"),
		LLMTimeout:    getDuration("LLM_TIMEOUT_SECONDS", 25, time.Second),

		MarkdownServiceURL: strings.TrimRight(os.Getenv("MARKDOWN_SERVICE_URL"), "/"),
		MarkdownTimeout:    getDuration("MARKDOWN_TIMEOUT_SECONDS", 120, time.Second),
		PreviewServiceURL:  strings.TrimRight(os.Getenv("PREVIEW_SERVICE_URL"), "/"),
		PreviewTimeout:     getDuration("PREVIEW_TIMEOUT_SECONDS", 60, time.Second),
		LatexCompileURL:    strings.TrimRight(os.Getenv("LATEX_COMPILE_URL"), "/"),
		LatexTimeout:       getDuration("LATEX_TIMEOUT_SECONDS", 15, time.Second),
		TempDir:            getEnv("TEMP_DIR", os.TempDir()),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		UIRedirectURL:      os.Getenv("UI_REDIRECT_URL"),

		RateLimitBackend: normalizeBackend(getEnv("RATE_LIMIT_BACKEND", "")),
	}
}

// Validate checks that credentials required for the current environment are present.
func (c Config) Validate() error {
	var errs []error
	if c.IsProduction() {
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required in production"))
		}
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
	}
	if c.Env != "dev" && c.Env != "local" && c.OpenAIAPIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required outside dev"))
	}
	if c.RateLimitBackend == "postgres" && c.DatabaseURL == "" {
		errs = append(errs, errors.New("RATE_LIMIT_BACKEND=postgres requires DATABASE_URL"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getDuration(key string, def int, unit time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return time.Duration(def) * unit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return time.Duration(def) * unit
	}
	return time.Duration(n) * unit
}

func jwtSecret(env string) string {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret
	}
	if env == "production" {
		return ""
	}
	return "dev-secret"
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "memory":
		return "memory"
	default:
		return ""
	}
}
