package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	AuthJWTSecret   string
	AuthJWTIssuer   string
	AuthTokenTTL    time.Duration
	AuthLoginRate   float64
	AuthLoginBurst  int
	BootstrapAdmin  BootstrapAdminConfig
	CompliancePath  string
	Observability   ObservabilityConfig
	Redis           RedisConfig
	Report          ReportConfig
	Scheduler       SchedulerConfig
	SnowflakeNodeID int64

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBSQLitePath      string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

type BootstrapAdminConfig struct {
	Enabled  bool
	Email    string
	Password string
	Name     string
}

// ObservabilityConfig carries logging and OpenTelemetry settings. A single
// plant usually runs without a collector, so OTel is off by default.
type ObservabilityConfig struct {
	LogLevel           string
	LogFormat          string
	OtelEnabled        bool
	OtelEndpoint       string
	OtelProtocol       string
	OtelSamplingRatio  float64
	SlowQueryThreshold time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ReportConfig points at TrueType files used for printed reports. Without
// them PDFs fall back to a core font that has no Polish letters.
type ReportConfig struct {
	FontRegular string
	FontBold    string
}

// SchedulerConfig controls the background compliance sweeps. An empty Jobs
// list runs every job.
type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
	Jobs     []string
}

// Enabled reports whether a redis address was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:         getenv("APP_SERVICE", "haccp"),
		AppVersion:      getenv("APP_VERSION", "0.1.0"),
		Environment:     getenv("ENVIRONMENT", "development"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		AuthJWTSecret:   strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),
		AuthJWTIssuer:   getenv("AUTH_JWT_ISSUER", "haccp"),
		AuthTokenTTL:    getenvDuration("AUTH_TOKEN_TTL", 12*time.Hour),
		AuthLoginRate:   getenvFloat("AUTH_LOGIN_RATE", 0.2),
		AuthLoginBurst:  int(getenvInt64("AUTH_LOGIN_BURST", 5)),
		CompliancePath:  strings.TrimSpace(getenv("COMPLIANCE_CONFIG_PATH", "")),
		SnowflakeNodeID: getenvInt64("SNOWFLAKE_NODE_ID", 1),
		BootstrapAdmin: BootstrapAdminConfig{
			Enabled:  getenvBool("BOOTSTRAP_ADMIN_ENABLED", true),
			Email:    strings.ToLower(strings.TrimSpace(getenv("BOOTSTRAP_ADMIN_EMAIL", "admin@masarnia.local"))),
			Password: getenv("BOOTSTRAP_ADMIN_PASSWORD", ""),
			Name:     getenv("BOOTSTRAP_ADMIN_NAME", "Administrator"),
		},
		Observability: ObservabilityConfig{
			LogLevel:           strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:          strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OtelEnabled:        getenvBool("OTEL_ENABLED", false),
			OtelEndpoint:       strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")),
			OtelProtocol:       strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			OtelSamplingRatio:  getenvFloat("OTEL_SAMPLING_RATIO", 1),
			SlowQueryThreshold: getenvDuration("DATABASE_SLOW_QUERY_THRESHOLD", 200*time.Millisecond),
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			Password: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			DB:       int(getenvInt64("REDIS_DB", 0)),
		},
		Report: ReportConfig{
			FontRegular: strings.TrimSpace(getenv("REPORT_FONT_REGULAR", "")),
			FontBold:    strings.TrimSpace(getenv("REPORT_FONT_BOLD", "")),
		},
		Scheduler: SchedulerConfig{
			Enabled:  getenvBool("SCHEDULER_ENABLED", true),
			Interval: getenvDuration("SCHEDULER_INTERVAL", 15*time.Minute),
			Jobs:     splitList(getenv("SCHEDULER_JOBS", "")),
		},
		DBType:            strings.ToLower(getenv("DATABASE_TYPE", "postgres")),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "haccp"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBSQLitePath:      getenv("DATABASE_SQLITE_PATH", "haccp.db"),
		DBMaxIdleConn:     int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DATABASE_MAX_OPEN_CONN", 20)),
		DBConnMaxLifetime: int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 1800)),
		DBConnMaxIdleTime: int(getenvInt64("DATABASE_CONN_MAX_IDLE_TIME", 300)),
	}

	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
