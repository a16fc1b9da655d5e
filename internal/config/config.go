package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Redis    RedisConfig
	Nats     NatsConfig
	Billing  BillingConfig
	Cron     CronConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	NotifyLogFilePath  string
	CorsAllowedOrigins string
	ItineraryTopic     string
}

type DatabaseConfig struct {
	Connection   string
	MaxIdleConns int
	MaxOpenConns int
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type RedisConfig struct {
	URL string
}

type NatsConfig struct {
	URL     string
	Enabled bool
}

type BillingConfig struct {
	DueDays       int
	HorizonMonths int
	CenterName    string
	Currency      string
	RunRetention  int // days a run summary stays readable
}

type CronConfig struct {
	Enabled      bool
	BillingSpec  string // monthly invoice run
	SessionsSpec string // nightly session expansion and overdue marking
}

// TracingConfig is read by tracer.InitTracer. Tracing is off unless Enabled.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			NotifyLogFilePath:  getEnv("NOTIFY_LOG_FILE_PATH", "logs/notification.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			ItineraryTopic:     getEnv("ITINERARY_TOPIC_NAME", "SEND_ITINERARY"),
		},
		Database: DatabaseConfig{
			Connection:   getEnv("DB_CONNECTION_STRING", ""),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Childcare Center"),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Nats: NatsConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getEnvAsBool("NATS_ENABLED", true),
		},
		Billing: BillingConfig{
			DueDays:       getEnvAsInt("BILLING_DUE_DAYS", 7),
			HorizonMonths: getEnvAsInt("SCHEDULE_HORIZON_MONTHS", 3),
			CenterName:    getEnv("BILLING_CENTER_NAME", "Childcare Center"),
			Currency:      getEnv("BILLING_CURRENCY", "PEN"),
			RunRetention:  getEnvAsInt("BILLING_RUN_RETENTION_DAYS", 90),
		},
		Cron: CronConfig{
			Enabled:      getEnvAsBool("CRON_ENABLED", true),
			BillingSpec:  getEnv("CRON_BILLING_SPEC", "0 6 1 * *"),
			SessionsSpec: getEnv("CRON_SESSIONS_SPEC", "0 2 * * *"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "childcare-portal-backend"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}
