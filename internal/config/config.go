package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string        // ex: ":8080"
	PublicURL       string        // base URL used in e-mailed links
	ShutdownTimeout time.Duration // graceful shutdown deadline

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Identity/storage provider. Both must be set, otherwise the server runs in stub mode.
	DatabaseDSN string
	JWTSecret   string
	DBTimeout   time.Duration

	// Token store. Empty address keeps revoked tokens and reset tokens in memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Metadata API
	GoogleBooksURL    string
	GoogleBooksAPIKey string
	GoogleBooksRPS    int

	SourceCatalogFile string // optional override of the embedded source catalog

	APIURL string // base URL the CLI talks to

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	ContactTo    string

	CORSOrigins    []string
	EnableHSTS     bool
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64
}

// LoadEnvFiles loads .env and .env.local without overriding variables that
// are already present in the environment.
func LoadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

func Load() *Config {
	return &Config{
		Addr:            getenv("APP_ADDR", ":8080"),
		PublicURL:       strings.TrimRight(getenv("PUBLIC_URL", "http://localhost:3000"), "/"),
		ShutdownTimeout: mustDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		PrettyLog: mustBool("PRETTY_LOG", false),

		DatabaseDSN: os.Getenv("DB_DSN"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		DBTimeout:   mustDuration("DB_TIMEOUT", 3*time.Second),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),

		GoogleBooksURL:    getenv("GOOGLE_BOOKS_URL", "https://www.googleapis.com/books/v1"),
		GoogleBooksAPIKey: os.Getenv("GOOGLE_BOOKS_API_KEY"),
		GoogleBooksRPS:    getenvInt("GOOGLE_BOOKS_RPS", 5),

		SourceCatalogFile: os.Getenv("SOURCE_CATALOG_FILE"),

		APIURL: strings.TrimRight(getenv("BOOKFINDER_API", "http://localhost:8080"), "/"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getenvInt("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getenv("MAIL_FROM", "BookFinder <no-reply@bookfinder.local>"),
		ContactTo:    getenv("CONTACT_TO", "contact@bookfinder.local"),

		CORSOrigins:    splitAndTrim(getenv("CORS_ORIGINS", "http://localhost:3000")),
		EnableHSTS:     mustBool("ENABLE_HSTS", false),
		RateLimitRPS:   getenvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getenvInt("RATE_LIMIT_BURST", 20),
		MaxBodyBytes:   int64(getenvInt("MAX_BODY_BYTES", 1<<20)),
	}
}

// StubMode reports whether the identity/storage provider is unconfigured.
func (c *Config) StubMode() bool {
	return c.DatabaseDSN == "" || c.JWTSecret == ""
}

// RedactedDSN hides credentials so the DSN can be logged.
func (c *Config) RedactedDSN() string {
	return redactDSN(c.DatabaseDSN)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.Trim(strings.TrimSpace(part), `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
