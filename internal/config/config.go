package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	// VAPID key pair identifying this application to the push service.
	// The public half is handed to clients; the private half never leaves
	// the dispatcher's environment. Both are required at startup.
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubscriber string // contact address sent with each VAPID header

	BroadcastWorkers int           // bounded fan-out parallelism
	DeliveryTimeout  time.Duration // per-attempt cap so one hung endpoint cannot stall the batch
	DeliveryTTL      int           // seconds the push service may hold an undelivered message

	DefaultNotificationURL string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Subscriptions string
	Broadcasts    string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Subscriptions: getEnv("DYNAMO_TABLE_SUBSCRIPTIONS", "push_subscriptions"),
			Broadcasts:    getEnv("DYNAMO_TABLE_BROADCASTS", "broadcasts"),
		},

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_DAYS", 7)) * 24 * time.Hour,

		VAPIDPublicKey:  getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey: getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubscriber: getEnv("VAPID_SUBSCRIBER", "ops@example.com"),

		BroadcastWorkers: getEnvInt("BROADCAST_WORKERS", 8),
		DeliveryTimeout:  time.Duration(getEnvInt("DELIVERY_TIMEOUT_SECONDS", 10)) * time.Second,
		DeliveryTTL:      getEnvInt("DELIVERY_TTL_SECONDS", 86400),

		DefaultNotificationURL: getEnv("DEFAULT_NOTIFICATION_URL", "/"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
