package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Shopify     ShopifyConfig
	Import      ImportConfig
	API         APIConfig
	Journal     JournalConfig
	LogLevel    string
}

type ShopifyConfig struct {
	ShopDomain     string
	AccessToken    string
	APIVersion     string
	MaxRetries     int
	RetryDelayMS   int
	TimeoutSeconds int
}

type ImportConfig struct {
	DataDir            string
	WebDir             string
	CacheDir           string
	SleepMS            int
	MetafieldNamespace string
}

type APIConfig struct {
	OperatorKeyHash string
}

type JournalConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SHOPIFY_API_VERSION", "2026-01")
	viper.SetDefault("SHOPIFY_MAX_RETRIES", 3)
	viper.SetDefault("SHOPIFY_RETRY_DELAY_MS", 2000)
	viper.SetDefault("SHOPIFY_TIMEOUT_SECONDS", 30)
	viper.SetDefault("DATA_DIR", "./data")
	viper.SetDefault("WEB_DIR", "./web")
	viper.SetDefault("IMPORT_SLEEP_MS", 500)
	viper.SetDefault("METAFIELD_NAMESPACE", "specs")
	viper.SetDefault("JOURNAL_ENABLED", false)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Shopify: ShopifyConfig{
			ShopDomain:     strings.TrimSpace(getEnvOrViper("SHOPIFY_SHOP_DOMAIN", "")),
			AccessToken:    strings.TrimSpace(getEnvOrViper("SHOPIFY_ACCESS_TOKEN", "")),
			APIVersion:     getEnvOrViper("SHOPIFY_API_VERSION", "2026-01"),
			MaxRetries:     getIntEnvOrViper("SHOPIFY_MAX_RETRIES", 3),
			RetryDelayMS:   getIntEnvOrViper("SHOPIFY_RETRY_DELAY_MS", 2000),
			TimeoutSeconds: getIntEnvOrViper("SHOPIFY_TIMEOUT_SECONDS", 30),
		},
		Import: ImportConfig{
			DataDir:            getEnvOrViper("DATA_DIR", "./data"),
			WebDir:             getEnvOrViper("WEB_DIR", "./web"),
			CacheDir:           getEnvOrViper("CACHE_DIR", ""),
			SleepMS:            getIntEnvOrViper("IMPORT_SLEEP_MS", 500),
			MetafieldNamespace: getEnvOrViper("METAFIELD_NAMESPACE", "specs"),
		},
		API: APIConfig{
			OperatorKeyHash: getEnvOrViper("OPERATOR_KEY_HASH", ""),
		},
		Journal: JournalConfig{
			Enabled:  getBoolEnvOrViper("JOURNAL_ENABLED", false),
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "catalogimport"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if cfg.Shopify.ShopDomain == "" {
		return nil, fmt.Errorf("SHOPIFY_SHOP_DOMAIN is required")
	}
	if cfg.Shopify.AccessToken == "" {
		return nil, fmt.Errorf("SHOPIFY_ACCESS_TOKEN is required")
	}
	if cfg.Environment == "production" && cfg.API.OperatorKeyHash == "" {
		return nil, fmt.Errorf("OPERATOR_KEY_HASH is required in production")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getIntEnvOrViper(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return defaultValue
}

func getBoolEnvOrViper(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return defaultValue
}
