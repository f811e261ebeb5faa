package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Timetable TimetableConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TimetableConfig bounds the weekly grid and scoring inputs for the generator.
type TimetableConfig struct {
	Days                 []string
	PeriodsPerDay        int
	MaxPeriodsPerDay     int
	MaxPeriodsPerSubject int
	CoreSubjects         []string
	PatternCacheTTL      time.Duration
	PeriodTimes          []string
}

var validDayNames = map[string]bool{
	"Monday":    true,
	"Tuesday":   true,
	"Wednesday": true,
	"Thursday":  true,
	"Friday":    true,
	"Saturday":  true,
	"Sunday":    true,
}

// Validate checks grid bounds once at generation start.
func (c TimetableConfig) Validate() error {
	if len(c.Days) == 0 {
		return errors.New("timetable days must not be empty")
	}
	for _, day := range c.Days {
		if !validDayNames[day] {
			return fmt.Errorf("unknown timetable day %q", day)
		}
	}
	if c.PeriodsPerDay < 1 || c.PeriodsPerDay > 16 {
		return fmt.Errorf("periodsPerDay must be between 1 and 16, got %d", c.PeriodsPerDay)
	}
	if c.MaxPeriodsPerDay < 1 || c.MaxPeriodsPerDay > c.PeriodsPerDay {
		return fmt.Errorf("maxPeriodsPerDay must be between 1 and %d, got %d", c.PeriodsPerDay, c.MaxPeriodsPerDay)
	}
	if c.MaxPeriodsPerSubject < 1 {
		return fmt.Errorf("maxPeriodsPerSubject must be positive, got %d", c.MaxPeriodsPerSubject)
	}
	return nil
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Timetable = TimetableConfig{
		Days:                 splitAndTrim(v.GetString("TIMETABLE_DAYS")),
		PeriodsPerDay:        v.GetInt("TIMETABLE_PERIODS_PER_DAY"),
		MaxPeriodsPerDay:     v.GetInt("TIMETABLE_MAX_PERIODS_PER_DAY"),
		MaxPeriodsPerSubject: v.GetInt("TIMETABLE_MAX_PERIODS_PER_SUBJECT"),
		CoreSubjects:         splitAndTrim(v.GetString("TIMETABLE_CORE_SUBJECTS")),
		PatternCacheTTL:      parseDuration(v.GetString("PATTERN_CACHE_TTL"), 10*time.Minute),
		PeriodTimes:          splitAndTrim(v.GetString("TIMETABLE_PERIOD_TIMES")),
	}

	if err := cfg.Timetable.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TIMETABLE_DAYS", "Monday,Tuesday,Wednesday,Thursday,Friday")
	v.SetDefault("TIMETABLE_PERIODS_PER_DAY", 8)
	v.SetDefault("TIMETABLE_MAX_PERIODS_PER_DAY", 8)
	v.SetDefault("TIMETABLE_MAX_PERIODS_PER_SUBJECT", 3)
	v.SetDefault("TIMETABLE_CORE_SUBJECTS", "")
	v.SetDefault("PATTERN_CACHE_TTL", "10m")
	v.SetDefault("TIMETABLE_PERIOD_TIMES", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
