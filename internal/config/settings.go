package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
)

// Settings holds every knob the collector reads from the environment.
// Call Load after godotenv has populated the process env.
type Settings struct {
	Environment string
	LogLevel    string
	HTTPPort    string

	// MongoDB
	MongoURI            string
	MongoDBName         string
	TelemetryCollection string
	RunLogCollection    string
	VehicleCollection   string

	// Provider
	ProviderType           string
	ProviderTimeout        time.Duration
	ProviderMaxRetries     int
	ProviderRetryBackoff   time.Duration
	MockSynthesizeUnknown  bool
	MockSimulateLatency    bool
	VoltageHealthyMinVolts float64

	// Concurrency
	MaxConcurrentRequests int
	BatchSize             int
	RateLimitPerSecond    float64
	RateLimitBurst        int

	// Retention
	TelemetryRetention time.Duration
	RunLogRetention    time.Duration

	// Vehicle cache
	VehicleCacheTTL time.Duration

	// Job cadences, cron expressions keyed by report type.
	JobCrons map[models.ReportType]string

	// Inspection API auth
	JWTSecret            string
	OperatorUsername     string
	OperatorPasswordHash string

	// MQTT publishing (disabled when BrokerURL is empty)
	MQTTBrokerURL string
	MQTTClientID  string
}

// Default cadences match the production configuration table.
var defaultCrons = map[models.ReportType]string{
	models.ReportPosition:     "*/5 * * * *",
	models.ReportSpeed:        "*/5 * * * *",
	models.ReportEngineStatus: "*/10 * * * *",
	models.ReportIgnition:     "*/15 * * * *",
	models.ReportOdometer:     "0 */6 * * *",
	models.ReportTrip:         "0 */6 * * *",
	models.ReportParking:      "0 */6 * * *",
	models.ReportConsumption:  "0 */6 * * *",
	models.ReportVoltage:      "0 0 * * *",
}

// Load reads settings from the environment, applying defaults for anything
// unset. It fails only on values that parse but make no sense.
func Load() (*Settings, error) {
	s := &Settings{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),

		MongoURI:            getEnv("MONGODB_URL", "mongodb://localhost:27017"),
		MongoDBName:         getEnv("MONGODB_DB_NAME", "gps_telemetry"),
		TelemetryCollection: getEnv("TELEMETRY_COLLECTION", "vehicle_telemetry"),
		RunLogCollection:    getEnv("RUN_LOG_COLLECTION", "job_execution_logs"),
		VehicleCollection:   getEnv("VEHICLE_COLLECTION", "vehicles"),

		ProviderType:           getEnv("PROVIDER_TYPE", "mock"),
		ProviderTimeout:        time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 30)) * time.Second,
		ProviderMaxRetries:     getEnvInt("PROVIDER_MAX_RETRIES", 3),
		ProviderRetryBackoff:   time.Duration(getEnvFloat("PROVIDER_RETRY_BACKOFF_SECONDS", 2)*1000) * time.Millisecond,
		MockSynthesizeUnknown:  getEnvBool("MOCK_SYNTHESIZE_UNKNOWN", true),
		MockSimulateLatency:    getEnvBool("MOCK_SIMULATE_LATENCY", false),
		VoltageHealthyMinVolts: getEnvFloat("VOLTAGE_HEALTHY_MIN_VOLTS", 12.0),

		MaxConcurrentRequests: getEnvInt("MAX_CONCURRENT_REQUESTS", 10),
		BatchSize:             getEnvInt("BATCH_SIZE", 50),
		RateLimitPerSecond:    getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst:        getEnvInt("RATE_LIMIT_BURST", 0),

		TelemetryRetention: time.Duration(getEnvInt("TELEMETRY_RETENTION_DAYS", 90)) * 24 * time.Hour,
		RunLogRetention:    time.Duration(getEnvInt("RUN_LOG_RETENTION_DAYS", 30)) * 24 * time.Hour,

		VehicleCacheTTL: time.Duration(getEnvInt("VEHICLE_CACHE_TTL_SECONDS", 300)) * time.Second,

		JWTSecret:            getEnv("JWT_SECRET", "default-secret-key-change-in-production"),
		OperatorUsername:     getEnv("OPERATOR_USERNAME", "operator"),
		OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),

		MQTTBrokerURL: getEnv("MQTT_BROKER_URL", ""),
		MQTTClientID:  getEnv("MQTT_CLIENT_ID", "gps-telemetry-collector"),
	}

	s.JobCrons = make(map[models.ReportType]string, len(defaultCrons))
	for rt, expr := range defaultCrons {
		key := "JOB_" + strings.ToUpper(string(rt)) + "_CRON"
		s.JobCrons[rt] = getEnv(key, expr)
	}

	if s.ProviderType != "mock" && s.ProviderType != "real" {
		return nil, fmt.Errorf("invalid PROVIDER_TYPE %q", s.ProviderType)
	}
	if s.MaxConcurrentRequests < 1 {
		return nil, fmt.Errorf("MAX_CONCURRENT_REQUESTS must be at least 1")
	}
	if s.BatchSize < 1 {
		return nil, fmt.Errorf("BATCH_SIZE must be at least 1")
	}
	if s.RateLimitPerSecond <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be positive")
	}
	// Bucket capacity defaults to one second's worth of tokens, floor 1.
	if s.RateLimitBurst == 0 {
		s.RateLimitBurst = int(s.RateLimitPerSecond)
		if s.RateLimitBurst < 1 {
			s.RateLimitBurst = 1
		}
	}
	if s.RateLimitBurst < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be at least 1")
	}
	if !strings.HasPrefix(s.MongoURI, "mongodb://") && !strings.HasPrefix(s.MongoURI, "mongodb+srv://") {
		return nil, fmt.Errorf("MONGODB_URL must start with mongodb:// or mongodb+srv://")
	}

	return s, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}
