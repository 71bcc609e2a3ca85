package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Realtime  RealtimeConfig
	Chat      ChatConfig
	Timesheet TimesheetConfig
	Board     BoardConfig
	Assistant AssistantConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	ServiceRoleKey        string
}

// RealtimeConfig selects the pub/sub transport for change feeds and broadcasts.
type RealtimeConfig struct {
	Broker     string
	BufferSize int
}

// ChatConfig lists the fixed chat rooms.
type ChatConfig struct {
	Rooms []string
}

// TimesheetConfig holds the weekly submission rules.
type TimesheetConfig struct {
	MinWeeklyHours     float64
	OvertimeDailyHours float64
}

// BoardConfig controls backlog classification.
type BoardConfig struct {
	BacklogSweepIntervalSeconds int
}

// AssistantConfig controls the scripted assistant.
type AssistantConfig struct {
	UndoDepth int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	minWeekly, err := strconv.ParseFloat(getEnv("TIMESHEET_MIN_WEEKLY_HOURS", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMESHEET_MIN_WEEKLY_HOURS: %w", err)
	}
	overtimeDaily, err := strconv.ParseFloat(getEnv("TIMESHEET_OVERTIME_DAILY_HOURS", "8"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMESHEET_OVERTIME_DAILY_HOURS: %w", err)
	}

	broker := strings.ToLower(getEnv("REALTIME_BROKER", "memory"))
	if broker != "memory" && broker != "redis" {
		return nil, fmt.Errorf("invalid REALTIME_BROKER %q: want memory or redis", broker)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "aetherboard"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
			ServiceRoleKey:        os.Getenv("AUTH_SERVICE_ROLE_KEY"),
		},
		Realtime: RealtimeConfig{
			Broker:     broker,
			BufferSize: getEnvAsInt("REALTIME_BUFFER_SIZE", 64),
		},
		Chat: ChatConfig{
			Rooms: getEnvAsList("CHAT_ROOMS", []string{"HR", "IT", "Finance"}),
		},
		Timesheet: TimesheetConfig{
			MinWeeklyHours:     minWeekly,
			OvertimeDailyHours: overtimeDaily,
		},
		Board: BoardConfig{
			BacklogSweepIntervalSeconds: getEnvAsInt("BOARD_BACKLOG_SWEEP_INTERVAL_SECONDS", 0),
		},
		Assistant: AssistantConfig{
			UndoDepth: getEnvAsInt("ASSISTANT_UNDO_DEPTH", 10),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SweepInterval returns the backlog sweep period; zero disables the sweeper.
func (b BoardConfig) SweepInterval() time.Duration {
	if b.BacklogSweepIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(b.BacklogSweepIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
