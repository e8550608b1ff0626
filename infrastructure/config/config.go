package config

import (
	"fmt"
	"os"
	"strconv"
)

// Store driver selection
const (
	StoreDriverSupabase = "supabase"
	StoreDriverDynamoDB = "dynamodb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Remote store configuration
	StoreDriver string

	// Supabase configuration
	SupabaseURL string
	SupabaseKey string

	// AWS configuration (dynamodb driver and event publishing)
	AWSRegion     string
	DynamoDBTable string
	EventBusName  string

	// External collaborators
	RecognizerEndpoint string
	RecognizerAPIKey   string
	RecognizerModel    string
	AMapEndpoint       string
	AMapAPIKey         string
	GeocodeRadiusM     int

	// Mark cache behavior
	MarksPerEntry int

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Logging and features
	LogLevel     string
	EnableEvents bool
	EnableCORS   bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		StoreDriver: getEnv("STORE_DRIVER", StoreDriverSupabase),

		SupabaseURL: getEnv("SUPABASE_URL", ""),
		SupabaseKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),

		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("DYNAMODB_TABLE", "fishdex"),
		EventBusName:  getEnv("EVENT_BUS_NAME", "fishdex-events"),

		RecognizerEndpoint: getEnv("RECOGNIZER_ENDPOINT", "https://api.siliconflow.cn/v1/chat/completions"),
		RecognizerAPIKey:   getEnv("RECOGNIZER_API_KEY", ""),
		RecognizerModel:    getEnv("RECOGNIZER_MODEL", "zai-org/GLM-4.5V"),
		AMapEndpoint:       getEnv("AMAP_ENDPOINT", "https://restapi.amap.com/v3/geocode/regeo"),
		AMapAPIKey:         getEnv("AMAP_API_KEY", ""),
		GeocodeRadiusM:     getEnvInt("GEOCODE_RADIUS_M", 1000),

		MarksPerEntry: getEnvInt("MARKS_PER_ENTRY", 3),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "fishdex"),

		LogLevel:     getEnv("LOG_LEVEL", "info"),
		EnableEvents: getEnvBool("ENABLE_EVENTS", false),
		EnableCORS:   getEnvBool("ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.StoreDriver != StoreDriverSupabase && c.StoreDriver != StoreDriverDynamoDB {
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.MarksPerEntry < 1 {
		return fmt.Errorf("MARKS_PER_ENTRY must be at least 1")
	}

	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.StoreDriver == StoreDriverSupabase && (c.SupabaseURL == "" || c.SupabaseKey == "") {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required")
		}
		if c.StoreDriver == StoreDriverDynamoDB && c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
