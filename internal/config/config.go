package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port            string
	Origin          string
	Environment     string
	LogLevel        string
	SessionSecret   string
	SessionTTLHours int
	Store           StoreConfig
	Vitals          VitalsConfig
	SOS             SOSConfig
	AI              AIConfig
	MQTT            MQTTConfig
	Simulation      SimulationConfig
}

// StoreConfig selects and configures the local store backend
type StoreConfig struct {
	Driver    string // memory, mysql or postgres
	KeyPrefix string
	Database  DatabaseConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// VitalsConfig configures the synthetic heart-rate sampler
type VitalsConfig struct {
	Interval time.Duration
	Min      int
	Max      int
}

// SOSConfig configures the emergency countdown
type SOSConfig struct {
	Ticks    int
	Interval time.Duration
}

// AIConfig holds the text-generation collaborator settings
type AIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// SimulationConfig holds the delays that stand in for device and network work
type SimulationConfig struct {
	UploadDelay time.Duration
	ScanDelay   time.Duration
	ReplyDelay  time.Duration
}

// MQTTConfig holds the optional vitals fan-out broker settings.
// An empty Broker disables publishing.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	driver := getEnv("STORE_DRIVER", "memory")

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "arogya"),
	}

	switch driver {
	case "memory":
	case "mysql":
		dbConfig.Port = getEnv("DB_PORT", "3306")
		dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)
	case "postgres":
		dbConfig.Port = getEnv("DB_PORT", "5432")
		dbConfig.DSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			dbConfig.Host, dbConfig.Port, dbConfig.Username, dbConfig.Password, dbConfig.Name,
			getEnv("DB_SSLMODE", "disable"))
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q: want memory, mysql or postgres", driver)
	}

	sessionTTL, err := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "720")) // 30 days
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}

	vitalsInterval, err := getEnvMillis("VITALS_INTERVAL_MS", 2000)
	if err != nil {
		return nil, err
	}
	vitalsMin, err := strconv.Atoi(getEnv("VITALS_MIN", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid VITALS_MIN: %w", err)
	}
	vitalsMax, err := strconv.Atoi(getEnv("VITALS_MAX", "99"))
	if err != nil {
		return nil, fmt.Errorf("invalid VITALS_MAX: %w", err)
	}
	if vitalsMax < vitalsMin {
		return nil, fmt.Errorf("VITALS_MAX (%d) is below VITALS_MIN (%d)", vitalsMax, vitalsMin)
	}

	sosTicks, err := strconv.Atoi(getEnv("SOS_TICKS", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid SOS_TICKS: %w", err)
	}
	sosInterval, err := getEnvMillis("SOS_TICK_MS", 1000)
	if err != nil {
		return nil, err
	}

	aiTimeout, err := strconv.Atoi(getEnv("AI_TIMEOUT_SECONDS", "20"))
	if err != nil {
		return nil, fmt.Errorf("invalid AI_TIMEOUT_SECONDS: %w", err)
	}

	uploadDelay, err := getEnvMillis("SIM_UPLOAD_MS", 2000)
	if err != nil {
		return nil, err
	}
	scanDelay, err := getEnvMillis("SIM_SCAN_MS", 3000)
	if err != nil {
		return nil, err
	}
	replyDelay, err := getEnvMillis("SIM_REPLY_MS", 2000)
	if err != nil {
		return nil, err
	}

	mqttQoS, err := strconv.Atoi(getEnv("MQTT_QOS", "0"))
	if err != nil || mqttQoS < 0 || mqttQoS > 2 {
		return nil, fmt.Errorf("invalid MQTT_QOS %q", getEnv("MQTT_QOS", "0"))
	}

	return &Config{
		Port:            getEnv("PORT", "3001"),
		Origin:          getEnv("ORIGIN", "http://localhost:5173"),
		Environment:     getEnv("NODE_ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		SessionSecret:   getEnv("SESSION_SECRET", "default_session_secret"),
		SessionTTLHours: sessionTTL,
		Store: StoreConfig{
			Driver:    driver,
			KeyPrefix: getEnv("STORE_KEY_PREFIX", "arogya_"),
			Database:  dbConfig,
		},
		Vitals: VitalsConfig{
			Interval: vitalsInterval,
			Min:      vitalsMin,
			Max:      vitalsMax,
		},
		SOS: SOSConfig{
			Ticks:    sosTicks,
			Interval: sosInterval,
		},
		AI: AIConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout: time.Duration(aiTimeout) * time.Second,
		},
		MQTT: MQTTConfig{
			Broker:   getEnv("MQTT_BROKER", ""),
			ClientID: getEnv("MQTT_CLIENT_ID", "arogya-vitals"),
			Username: getEnv("MQTT_USERNAME", ""),
			Password: getEnv("MQTT_PASSWORD", ""),
			Topic:    getEnv("MQTT_TOPIC", "arogya/vitals/heart_rate"),
			QoS:      mqttQoS,
		},
		Simulation: SimulationConfig{
			UploadDelay: uploadDelay,
			ScanDelay:   scanDelay,
			ReplyDelay:  replyDelay,
		},
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvMillis(key string, defaultValue int) (time.Duration, error) {
	ms, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if ms <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
