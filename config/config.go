package config

import (
	"errors"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config files or the environment.
type AppConfig struct {
	BindAddress string
	// Database
	DatabaseURI    string
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBMaxOpenConns int
	DBMaxIdleConns int
	// Request execution
	WorkerCount       int
	RequestTimeoutSec int
	// Startup maintenance
	ClearOnStartup   bool
	MigrateOnStartup bool
	// Gin framework configuration
	GinMode            string
	GinPath            string
	AllowedOrigins     []string
	RateLimitPerMinute int
	// Redis for the shared rate limit window; empty host disables it
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Service token secret; empty disables token checks
	JWTSecret string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// LogSQL turns on per-statement gorm logging
	LogSQL bool
}

// envKeys maps config keys onto the environment variables that may set them, in priority order.
var envKeys = map[string][]string{
	"BindAddress":        {"APP_ADDRESS", "CONTROLLER_ADDRESS"},
	"DatabaseURI":        {"DATABASE_URI", "CONTROLLER_DATABASE_URL"},
	"DBDriver":           {"DB_DRIVER"},
	"DBHost":             {"DB_HOST"},
	"DBPort":             {"DB_PORT"},
	"DBUser":             {"DB_USER"},
	"DBPassword":         {"DB_PASSWORD"},
	"DBName":             {"DB_NAME"},
	"DBMaxOpenConns":     {"DB_MAX_OPEN_CONNS"},
	"DBMaxIdleConns":     {"DB_MAX_IDLE_CONNS"},
	"WorkerCount":        {"WORKER_COUNT"},
	"RequestTimeoutSec":  {"REQUEST_TIMEOUT_SEC"},
	"ClearOnStartup":     {"CLEAR_ON_STARTUP"},
	"MigrateOnStartup":   {"MIGRATE_ON_STARTUP"},
	"GinMode":            {"GIN_MODE"},
	"GinPath":            {"GIN_PATH", "GIN_LOG_PATH"},
	"AllowedOrigins":     {"CORS_ALLOWED_ORIGINS"},
	"RateLimitPerMinute": {"RATE_LIMIT_PER_MINUTE"},
	"RedisHost":          {"REDIS_HOST"},
	"RedisPort":          {"REDIS_PORT"},
	"RedisDB":            {"REDIS_DB"},
	"RedisPassword":      {"REDIS_PASSWORD"},
	"JWTSecret":          {"JWT_SECRET"},
	"LogLevel":           {"LOG_LEVEL"},
	"LogPath":            {"LOG_PATH"},
	"LogMaxSizeMB":       {"LOG_MAX_SIZE_MB"},
	"LogMaxBackups":      {"LOG_MAX_BACKUPS"},
	"LogMaxAgeDays":      {"LOG_MAX_AGE_DAYS"},
	"LogCompress":        {"LOG_COMPRESS"},
	"LogSQL":             {"LOG_SQL"},
}

var (
	cfg    AppConfig
	loaded bool
	mu     sync.Mutex
)

// DefaultPath is where Load looks for the optional JSON config file.
var DefaultPath = filepath.Join("config", "config.json")

// Load loads the application configuration. It should be called once during boot.
// Precedence: defaults -> config/config.json -> environment variables.
func Load() AppConfig {
	mu.Lock()
	defer mu.Unlock()
	if loaded {
		return cfg
	}

	c, err := Read(DefaultPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	cfg = c
	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	mu.Lock()
	ok := loaded
	mu.Unlock()
	if !ok {
		return Load()
	}
	return cfg
}

// Set replaces the cached configuration. Used by the CLI after applying flags.
func Set(c AppConfig) {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
	loaded = true
}

// Read builds a configuration from the file at path (missing file is fine) and the environment.
func Read(path string) (AppConfig, error) {
	v := viper.New()
	applyDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return AppConfig{}, err
			}
		}
	}

	for key, envs := range envKeys {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return AppConfig{}, err
		}
	}

	var out AppConfig
	if err := v.Unmarshal(&out); err != nil {
		return AppConfig{}, err
	}
	out.AllowedOrigins = splitAndTrim(out.AllowedOrigins)
	out.DBDriver = strings.ToLower(strings.TrimSpace(out.DBDriver))
	return out, nil
}

// applyDefaults sets sane defaults for every key that has one.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("BindAddress", "127.0.0.1:10000")
	v.SetDefault("DBDriver", "mysql")
	v.SetDefault("DBHost", "127.0.0.1")
	v.SetDefault("DBPort", "3306")
	v.SetDefault("DBUser", "root")
	v.SetDefault("DBName", "forum")
	v.SetDefault("DBMaxOpenConns", 20)
	v.SetDefault("DBMaxIdleConns", 5)
	v.SetDefault("GinMode", "release")
	v.SetDefault("GinPath", "logs/go_gin.log")
	v.SetDefault("AllowedOrigins", []string{"*"})
	v.SetDefault("RateLimitPerMinute", 600)
	v.SetDefault("RedisPort", 6379)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogMaxSizeMB", 100)
	v.SetDefault("LogMaxBackups", 3)
	v.SetDefault("LogMaxAgeDays", 7)
}

// splitAndTrim flattens comma separated entries and drops blanks.
func splitAndTrim(raw []string) []string {
	items := []string{}
	for _, entry := range raw {
		for _, item := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}
