package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Seating  SeatingConfig
	Checkout CheckoutConfig
	Queue    QueueConfig
	LogLevel string
}

type ServerConfig struct {
	Port          string
	GinMode       string
	PublicBaseURL string
	CORSOrigins   []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
}

// StorageConfig 付款證明檔案的存放位置
type StorageConfig struct {
	Dir          string
	PublicPath   string
	MaxProofSize int64
}

// SeatingConfig 座位圖尺寸與每次最多可選座位數
type SeatingConfig struct {
	Rows         int
	SeatsPerRow  int
	MaxSelection int
}

type CheckoutConfig struct {
	SessionTTL time.Duration
	// 儲存失敗時改用示範用的 placeholder URL，正式環境應關閉
	PlaceholderProof    bool
	PlaceholderProofURL string
	// 送出前以 Redis 原子性地佔用座位，關閉則維持不鎖位的行為
	SeatClaims bool
	// 使用 Redis session store，關閉則使用記憶體版
	RedisSessions bool
}

type QueueConfig struct {
	// memory | redis
	Backend          string
	ClaimMinIdleTime time.Duration
	MaxRetryCount    int
	RetryBaseDelay   time.Duration
	// Redis Stream 約略保留的訊息數
	StreamMaxLen int64
}

var AppConfig *Config

func LoadConfig() *Config {
	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "super-secret-jwt-token"),
		},
		Storage:  GetStorageConfig(),
		Seating:  GetSeatingConfig(),
		Checkout: GetCheckoutConfig(),
		Queue:    GetQueueConfig(),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // 測試 DB 用 5433 port
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // 測試 Redis 用 6380 port
		Password: "",
		DB:       1,
	}

	return &Config{
		Server: ServerConfig{
			Port:          "8080",
			GinMode:       "test",
			PublicBaseURL: "http://localhost:8080",
		},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Auth:     AuthConfig{JWTSecret: "test-secret"},
		Storage: StorageConfig{
			Dir:          os.TempDir(),
			PublicPath:   "/uploads",
			MaxProofSize: 5 << 20,
		},
		Seating: SeatingConfig{Rows: 10, SeatsPerRow: 20, MaxSelection: 10},
		Checkout: CheckoutConfig{
			SessionTTL:          30 * time.Minute,
			PlaceholderProofURL: "https://placehold.co/600x400?text=Payment+Proof",
			SeatClaims:          true,
		},
		Queue:    QueueConfig{Backend: "memory", ClaimMinIdleTime: time.Second, MaxRetryCount: 3, RetryBaseDelay: 100 * time.Millisecond, StreamMaxLen: 1000},
		LogLevel: "info",
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		CORSOrigins:   getStringSliceEnv("CORS_ORIGINS", []string{"http://localhost:5173"}),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "postgres"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Dir:          getEnv("UPLOAD_DIR", "./uploads"),
		PublicPath:   getEnv("UPLOAD_PUBLIC_PATH", "/uploads"),
		MaxProofSize: getInt64Env("MAX_PROOF_SIZE", 5<<20), // 5 MB
	}
}

func GetSeatingConfig() SeatingConfig {
	return SeatingConfig{
		Rows:         getIntEnv("SEATING_ROWS", 10),
		SeatsPerRow:  getIntEnv("SEATING_SEATS_PER_ROW", 20),
		MaxSelection: getIntEnv("SEATING_MAX_SELECTION", 10),
	}
}

func GetCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{
		SessionTTL:          getDurationEnv("CHECKOUT_SESSION_TTL", 30*time.Minute),
		PlaceholderProof:    getBoolEnv("CHECKOUT_PLACEHOLDER_PROOF", false),
		PlaceholderProofURL: getEnv("CHECKOUT_PLACEHOLDER_PROOF_URL", "https://placehold.co/600x400?text=Payment+Proof"),
		SeatClaims:          getBoolEnv("CHECKOUT_SEAT_CLAIMS", true),
		RedisSessions:       getBoolEnv("CHECKOUT_REDIS_SESSIONS", true),
	}
}

func GetQueueConfig() QueueConfig {
	return QueueConfig{
		Backend:          getEnv("QUEUE_BACKEND", "redis"),
		ClaimMinIdleTime: getDurationEnv("QUEUE_CLAIM_MIN_IDLE", 5*time.Second),
		MaxRetryCount:    getIntEnv("QUEUE_MAX_RETRY", 5),
		RetryBaseDelay:   getDurationEnv("QUEUE_RETRY_BASE_DELAY", time.Second),
		StreamMaxLen:     getInt64Env("QUEUE_STREAM_MAXLEN", 10000),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return fallback
}

func getStringSliceEnv(key string, fallback []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
