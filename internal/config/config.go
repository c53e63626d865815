package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// Session tokens
	JWTSecret string
	JWTExpiry time.Duration
	JWTIssuer string

	// Hosted identity provider + object storage (Supabase)
	SupabaseURL            string
	SupabaseAnonKey        string
	SupabaseServiceRoleKey string
	SupabaseBucket         string

	// Local uploads, used when Supabase storage is not configured
	UploadDir     string
	PublicBaseURL string

	// Payments (Razorpay)
	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayBaseURL   string
	PaymentCurrency   string

	ProviderTimeout time.Duration

	// Optional infrastructure
	RedisAddr     string
	RedisPassword string
	AMQPURL       string
	AMQPQueue     string

	// Retention
	RetentionSchedule string
	RetentionDays     int

	// Feeds
	UpdateDeletePolicy string
	AdminUserIDs       string

	// Server
	Port                   string
	CORSOrigins            string
	AppEnv                 string
	SentryDSN              string
	RateLimitPerMinute     int
	AuthRateLimitPerMinute int
}

const (
	DeletePolicyAny   = "any"
	DeletePolicyOwner = "owner"
)

func Load() *Config {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	port := getEnv("PORT", "8080")

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "campusconnect"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpiry: parseDuration(getEnv("JWT_EXPIRY", "168h"), 7*24*time.Hour),
		JWTIssuer: getEnv("JWT_ISSUER", "campusconnect"),

		SupabaseURL:            strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseBucket:         getEnv("SUPABASE_BUCKET", "campusconnect"),

		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),

		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayBaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
		PaymentCurrency:   getEnv("PAYMENT_CURRENCY", "INR"),

		ProviderTimeout: parseDuration(getEnv("PROVIDER_TIMEOUT", "15s"), 15*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		AMQPURL:       getEnv("AMQP_URL", ""),
		AMQPQueue:     getEnv("AMQP_QUEUE", "payment.order_created"),

		RetentionSchedule: getEnv("RETENTION_SCHEDULE", "@daily"),
		RetentionDays:     parseInt(getEnv("RETENTION_DAYS", "30"), 30),

		UpdateDeletePolicy: strings.ToLower(getEnv("UPDATE_DELETE_POLICY", DeletePolicyAny)),
		AdminUserIDs:       getEnv("ADMIN_USER_IDS", ""),

		Port:                   port,
		CORSOrigins:            getEnv("CORS_ORIGINS", "*"),
		AppEnv:                 getEnv("APP_ENV", "development"),
		SentryDSN:              getEnv("SENTRY_DSN", ""),
		RateLimitPerMinute:     parseInt(getEnv("RATE_LIMIT_PER_MINUTE", "60"), 60),
		AuthRateLimitPerMinute: parseInt(getEnv("AUTH_RATE_LIMIT_PER_MINUTE", "10"), 10),
	}
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// SupabaseEnabled reports whether the hosted identity provider is configured.
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != "" && c.SupabaseServiceRoleKey != ""
}

func (c *Config) PaymentsEnabled() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}

// AdminIDs returns the configured admin user ids.
func (c *Config) AdminIDs() []string {
	return parseCSV(c.AdminUserIDs)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
