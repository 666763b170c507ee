package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/location"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Shift    ShiftConfig
	Leave    LeaveConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

// ShiftConfig is the company-wide shift applied to every employee.
type ShiftConfig struct {
	Start         time.Duration // offset from local midnight
	GraceMinutes  int
	RequiredHours float64
	Timezone      *time.Location
}

type LeaveConfig struct {
	CutoffHours int
}

type CronConfig struct {
	Enabled bool
}

// ClientConfig is what hrisctl needs to reach the API.
type ClientConfig struct {
	APIURL        string
	APIToken      string
	GeoTimeout    time.Duration
	TimerInterval time.Duration
	CacheTTL      time.Duration
}

// loadDotenv reads .env when present. A missing file is not an error.
func loadDotenv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}
}

func Load() (*Config, error) {
	loadDotenv()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris_attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	accessExpiration, err := time.ParseDuration(getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	// Shift configuration
	shift, err := loadShift()
	if err != nil {
		return nil, err
	}
	config.Shift = shift

	cutoff, err := strconv.Atoi(getEnv("LEAVE_CUTOFF_HOURS", "12"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAVE_CUTOFF_HOURS: %w", err)
	}
	config.Leave = LeaveConfig{CutoffHours: cutoff}

	cronEnabled, err := strconv.ParseBool(getEnv("CRON_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_ENABLED: %w", err)
	}
	config.Cron = CronConfig{Enabled: cronEnabled}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadShift() (ShiftConfig, error) {
	start, err := parseClock(getEnv("SHIFT_START", "09:00"))
	if err != nil {
		return ShiftConfig{}, fmt.Errorf("invalid SHIFT_START: %w", err)
	}
	grace, err := strconv.Atoi(getEnv("SHIFT_GRACE_MINUTES", "15"))
	if err != nil {
		return ShiftConfig{}, fmt.Errorf("invalid SHIFT_GRACE_MINUTES: %w", err)
	}
	required, err := strconv.ParseFloat(getEnv("SHIFT_REQUIRED_HOURS", "8"), 64)
	if err != nil {
		return ShiftConfig{}, fmt.Errorf("invalid SHIFT_REQUIRED_HOURS: %w", err)
	}
	tz, err := time.LoadLocation(getEnv("SHIFT_TIMEZONE", "Asia/Jakarta"))
	if err != nil {
		return ShiftConfig{}, fmt.Errorf("invalid SHIFT_TIMEZONE: %w", err)
	}
	return ShiftConfig{Start: start, GraceMinutes: grace, RequiredHours: required, Timezone: tz}, nil
}

// parseClock turns "HH:MM" into an offset from midnight.
func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// LoadClient reads the hrisctl settings. Flags may override them afterwards.
func LoadClient() ClientConfig {
	loadDotenv()

	return ClientConfig{
		APIURL:        getEnv("HRIS_API_URL", "http://localhost:8080"),
		APIToken:      getEnv("HRIS_API_TOKEN", ""),
		GeoTimeout:    getEnvDuration("HRIS_GEO_TIMEOUT", location.DefaultPositionTimeout),
		TimerInterval: getEnvDuration("HRIS_TIMER_INTERVAL", time.Minute),
		CacheTTL:      getEnvDuration("HRIS_CACHE_TTL", 24*time.Hour),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.JWT.AccessExpiration <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME must be positive")
	}
	if c.Leave.CutoffHours <= 0 {
		return fmt.Errorf("LEAVE_CUTOFF_HOURS must be positive")
	}
	if c.Shift.RequiredHours <= 0 {
		return fmt.Errorf("SHIFT_REQUIRED_HOURS must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// AttendanceShift converts the shift settings to the policy the attendance flow uses.
func (c *Config) AttendanceShift() attendance.Shift {
	return attendance.Shift{
		Start:         c.Shift.Start,
		GracePeriod:   time.Duration(c.Shift.GraceMinutes) * time.Minute,
		RequiredHours: c.Shift.RequiredHours,
		Location:      c.Shift.Timezone,
	}
}

// LeaveCutoff is the window before a leave starts in which it can no longer change.
func (c *Config) LeaveCutoff() time.Duration {
	return time.Duration(c.Leave.CutoffHours) * time.Hour
}

// SlogLevel maps LOG_LEVEL to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func getEnvDuration(env string, fallback time.Duration) time.Duration {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("ignoring invalid duration", "key", env, "value", value)
		return fallback
	}
	return d
}
