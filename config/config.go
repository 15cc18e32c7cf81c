package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	HTTPAddr string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// PostStore selects the backend of the community feed: mysql, mongo or memory.
	PostStore string
	MongoURI  string
	MongoDB   string

	JWTSecret           string
	OAuthProviderSecret string
	LogLevel            string

	StoreTimeout time.Duration
	FeedPageSize int

	WebhookURL     string
	WebhookTimeout time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string

	FrontendURL string
	BackendURL  string

	StorageBackend     string
	S3Region           string
	S3Bucket           string
	GCSProjectID       string
	GCSBucketName      string
	GCSCredentialsFile string
	LocalStoragePath   string

	RedisAddr string

	KafkaBrokers string
	KafkaTopic   string
	KafkaGroupID string

	OTelEndpoint string

	Debug bool
}

// AppConfig is the process-wide configuration, populated by Init.
var AppConfig Config

// Init loads .env (if present) and the environment into AppConfig.
func Init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	AppConfig = Load()

	validateConfig()

	if AppConfig.Debug {
		gin.SetMode(gin.DebugMode)
		log.Println("running in debug mode")
	} else {
		gin.SetMode(gin.ReleaseMode)
		log.Println("running in release mode")
	}

	log.Printf("config loaded. database: %s:%s, post store: %s", AppConfig.DBHost, AppConfig.DBPort, AppConfig.PostStore)
}

// Load reads the environment without validating it.
func Load() Config {
	return Config{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DBHost:              getEnv("DB_HOST", ""),
		DBPort:              getEnv("DB_PORT", "3306"),
		DBUser:              getEnv("DB_USER", ""),
		DBPassword:          getEnv("DB_PASSWORD", ""),
		DBName:              getEnv("DB_NAME", ""),
		PostStore:           getEnv("POST_STORE", "mysql"),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:             getEnv("MONGO_DB", "startupai"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		OAuthProviderSecret: getEnv("OAUTH_PROVIDER_SECRET", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		StoreTimeout:        getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
		FeedPageSize:        getEnvAsInt("FEED_PAGE_SIZE", 20),
		WebhookURL:          getEnv("WEBHOOK_URL", ""),
		WebhookTimeout:      getEnvAsDuration("WEBHOOK_TIMEOUT", 30*time.Second),
		SMTPHost:            getEnv("SMTP_HOST", ""),
		SMTPPort:            getEnvAsInt("SMTP_PORT", 465),
		SMTPUsername:        getEnv("SMTP_USERNAME", ""),
		SMTPPassword:        getEnv("SMTP_PASSWORD", ""),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),
		BackendURL:          getEnv("BACKEND_URL", "http://localhost:8080"),
		StorageBackend:      getEnv("STORAGE_BACKEND", "local"),
		S3Region:            getEnv("S3_REGION", "us-west-2"),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		GCSProjectID:        getEnv("GCS_PROJECT_ID", ""),
		GCSBucketName:       getEnv("GCS_BUCKET_NAME", ""),
		GCSCredentialsFile:  getEnv("GCS_CREDENTIALS_FILE", ""),
		LocalStoragePath:    getEnv("LOCAL_STORAGE_PATH", "./uploads"),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		KafkaBrokers:        getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "startupai.events"),
		KafkaGroupID:        getEnv("KAFKA_GROUP_ID", "startupai-notifications"),
		OTelEndpoint:        getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Debug:               getEnvAsBool("DEBUG", false),
	}
}

// SMTPEnabled reports whether outgoing email is configured.
func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUsername != "" && c.SMTPPassword != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	valStr := getEnv(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(key, "")
	if val, err := time.ParseDuration(valStr); err == nil && val > 0 {
		return val
	}
	return defaultVal
}

func validateConfig() {
	if AppConfig.DBHost == "" || AppConfig.DBUser == "" || AppConfig.DBPassword == "" || AppConfig.DBName == "" {
		log.Fatal("error: database configuration is incomplete")
	}
	if AppConfig.JWTSecret == "" {
		log.Fatal("error: JWT_SECRET is not set")
	}
	switch AppConfig.PostStore {
	case "mysql", "mongo", "memory":
	default:
		log.Fatalf("error: unknown POST_STORE %q", AppConfig.PostStore)
	}
}
