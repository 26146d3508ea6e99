package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Addr                     string
	DatabaseURL              string
	RedisAddr                string
	RedisPassword            string
	RedisDB                  int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	LogLevel                 string
	PublicBaseURL            string
	QuestionCategory         string
	ShutdownTimeout          time.Duration
}

func Default() Config {
	return Config{
		Addr:                     ":8080",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		LogLevel:                 "info",
		PublicBaseURL:            "http://localhost:8080",
		ShutdownTimeout:          5 * time.Second,
	}
}

// NewViper returns a viper instance that reads the environment. Flag names
// map to variables by upper-casing and swapping dashes for underscores, so
// --database-url reads DATABASE_URL.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags registers every setting on fs with its default and binds it to v.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) {
	def := Default()
	fs.String("addr", def.Addr, "address to listen on (env: ADDR)")
	fs.String("database-url", "", "postgres connection string, empty keeps rooms in memory (env: DATABASE_URL)")
	fs.String("redis-addr", "", "redis address for the leaderboard mirror (env: REDIS_ADDR)")
	fs.String("redis-password", "", "redis password (env: REDIS_PASSWORD)")
	fs.Int("redis-db", 0, "redis database number (env: REDIS_DB)")
	fs.Int("db-max-open-conns", def.DBMaxOpenConns, "max open database connections (env: DB_MAX_OPEN_CONNS)")
	fs.Int("db-max-idle-conns", def.DBMaxIdleConns, "max idle database connections (env: DB_MAX_IDLE_CONNS)")
	fs.Int("db-conn-max-lifetime-seconds", def.DBConnMaxLifetimeSeconds, "max connection lifetime (env: DB_CONN_MAX_LIFETIME_SECONDS)")
	fs.Int("db-conn-max-idle-seconds", def.DBConnMaxIdleTimeSeconds, "max connection idle time (env: DB_CONN_MAX_IDLE_SECONDS)")
	fs.String("log-level", def.LogLevel, "debug, info, warn or error (env: LOG_LEVEL)")
	fs.String("public-base-url", def.PublicBaseURL, "base URL encoded in join QR codes (env: PUBLIC_BASE_URL)")
	fs.String("question-category", "", "default question category, empty for any (env: QUESTION_CATEGORY)")
	fs.Duration("shutdown-timeout", def.ShutdownTimeout, "graceful shutdown timeout (env: SHUTDOWN_TIMEOUT)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
	})
}

// Load reads the configuration from the environment only.
func Load() Config {
	v := NewViper()
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	BindFlags(fs, v)
	return FromViper(v)
}

func FromViper(v *viper.Viper) Config {
	cfg := Config{
		Addr:                     v.GetString("addr"),
		DatabaseURL:              v.GetString("database-url"),
		RedisAddr:                v.GetString("redis-addr"),
		RedisPassword:            v.GetString("redis-password"),
		RedisDB:                  v.GetInt("redis-db"),
		DBMaxOpenConns:           v.GetInt("db-max-open-conns"),
		DBMaxIdleConns:           v.GetInt("db-max-idle-conns"),
		DBConnMaxLifetimeSeconds: v.GetInt("db-conn-max-lifetime-seconds"),
		DBConnMaxIdleTimeSeconds: v.GetInt("db-conn-max-idle-seconds"),
		LogLevel:                 strings.ToLower(v.GetString("log-level")),
		PublicBaseURL:            strings.TrimRight(v.GetString("public-base-url"), "/"),
		QuestionCategory:         v.GetString("question-category"),
		ShutdownTimeout:          v.GetDuration("shutdown-timeout"),
	}
	return cfg
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.DBMaxOpenConns <= 0 || c.DBMaxIdleConns <= 0 {
		return fmt.Errorf("database pool sizes must be positive (open=%d idle=%d)", c.DBMaxOpenConns, c.DBMaxIdleConns)
	}
	if c.DBConnMaxLifetimeSeconds <= 0 || c.DBConnMaxIdleTimeSeconds <= 0 {
		return errors.New("database connection lifetimes must be positive")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	return nil
}

// NewLogger builds the colored slog handler used by every command.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		AddSource:  level == slog.LevelDebug,
		TimeFormat: time.DateTime,
	}))
}

func parseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", raw)
	}
}
