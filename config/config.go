package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config stores the application configuration.
type Config struct {
	ServerAddr string

	// Catalog provider
	ProviderBaseURL string
	ProviderTimeout int // seconds

	// Recommendation parameters
	TargetPlaylistSize int
	HistoryWindowDays  int
	StartYear          int // 0 = unbounded
	EndYear            int // 0 = unbounded
	TimeZone           string

	// Redis配置（当日歌单与历史窗口的快照）
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MySQL配置（每日歌单归档）
	ArchiveEnabled bool
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string

	// 日志配置
	LogLevel      string
	LogPath       string
	LogMaxSize    int // MB
	LogMaxBackups int
	LogMaxAge     int // days
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool gets an environment variable as bool or returns a default value.
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or defaults.
func Load() *Config {
	// Attempt to load .env file. godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading .env, relying on existing environment variables and defaults.")
	}

	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),

		ProviderBaseURL: getEnv("PROVIDER_BASE_URL", "http://localhost:3000"),
		ProviderTimeout: getEnvInt("PROVIDER_TIMEOUT_SECONDS", 10),

		TargetPlaylistSize: getEnvInt("TARGET_PLAYLIST_SIZE", 50),
		HistoryWindowDays:  getEnvInt("HISTORY_WINDOW_DAYS", 7),
		StartYear:          getEnvInt("START_YEAR", 0),
		EndYear:            getEnvInt("END_YEAR", 0),
		TimeZone:           getEnv("TIME_ZONE", "UTC"),

		RedisEnabled:  getEnvBool("REDIS_ENABLED", true),
		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""), // 默认无密码
		RedisDB:       getEnvInt("REDIS_DB", 0),     // 默认使用0号数据库

		ArchiveEnabled: getEnvBool("ARCHIVE_ENABLED", false),
		DBHost:         getEnv("DB_HOST", "127.0.0.1"),
		DBPort:         getEnv("DB_PORT", "3306"), // Default to standard MySQL port
		DBUser:         getEnv("DB_USER", "root"),
		DBPassword:     os.Getenv("DB_PASSWORD"), // For password, better not to have a hardcoded default
		DBName:         getEnv("DB_NAME", "dailyfm"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       getEnv("LOG_PATH", ""),
		LogMaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvInt("LOG_MAX_AGE", 28),
	}
}
