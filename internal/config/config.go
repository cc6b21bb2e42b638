package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	Database    DatabaseConfig
	Shopify     ShopifyConfig
	Redis       RedisConfig
	Sync        SyncConfig
	Query       QueryConfig
	// AppProxySecret verifies the signature Shopify appends to app proxy requests (SHOPIFY_APP_PROXY_SECRET)
	AppProxySecret string
	// AdminAPIKeyHash is a bcrypt hash of the operator key for /admin routes (ADMIN_API_KEY_HASH)
	AdminAPIKeyHash string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MappingTable string
	SourceTable  string
}

type ShopifyConfig struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	// Endpoint overrides the derived admin GraphQL URL (local proxies, tests)
	Endpoint          string
	ProductsPageSize  int
	RequestsPerSecond float64
	// GradeMetafield is "namespace.key" of the product field holding grades
	GradeMetafield string
}

type RedisConfig struct {
	URL string // empty disables the response cache and falls back to in-memory checkpoints
}

type SyncConfig struct {
	BatchLimit int
}

type QueryConfig struct {
	CacheTTL time.Duration
}

func readConfigFile() error {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")

	viper.AutomaticEnv()

	// .env is optional
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// LoadDatabase reads only the database settings; tools that never call the catalog use it
func LoadDatabase() (DatabaseConfig, error) {
	if err := readConfigFile(); err != nil {
		return DatabaseConfig{}, err
	}
	return databaseConfig(), nil
}

func databaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:         getEnvOrViper("DB_HOST", "localhost"),
		Port:         getEnvOrViper("DB_PORT", "5432"),
		User:         getEnvOrViper("DB_USER", "postgres"),
		Password:     getEnvOrViper("DB_PASSWORD", "postgres"),
		DBName:       getEnvOrViper("DB_NAME", "gradeoverlay"),
		SSLMode:      getEnvOrViper("DB_SSLMODE", "disable"),
		MappingTable: getEnvOrViper("MAPPING_TABLE", "collection_grade_mappings"),
		SourceTable:  getEnvOrViper("SOURCE_TABLE", "grade_source_rows"),
	}
}

func Load() (*Config, error) {
	if err := readConfigFile(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		Database:    databaseConfig(),
		Shopify: ShopifyConfig{
			ShopDomain:        strings.TrimSpace(getEnvOrViper("SHOPIFY_SHOP_DOMAIN", "")),
			AccessToken:       strings.TrimSpace(getEnvOrViper("SHOPIFY_ACCESS_TOKEN", "")),
			APIVersion:        getEnvOrViper("SHOPIFY_API_VERSION", "2026-01"),
			Endpoint:          strings.TrimSpace(getEnvOrViper("SHOPIFY_GRAPHQL_ENDPOINT", "")),
			ProductsPageSize:  getIntOrDefault("SHOPIFY_PRODUCTS_PAGE_SIZE", 50),
			RequestsPerSecond: getFloatOrDefault("SHOPIFY_REQUESTS_PER_SECOND", 2),
			GradeMetafield:    getEnvOrViper("SHOPIFY_GRADE_METAFIELD", "custom.grade"),
		},
		Redis: RedisConfig{
			URL: strings.TrimSpace(getEnvOrViper("REDIS_URL", "")),
		},
		Sync: SyncConfig{
			BatchLimit: getIntOrDefault("SYNC_BATCH_LIMIT", 200),
		},
		Query: QueryConfig{
			CacheTTL: getDurationOrDefault("QUERY_CACHE_TTL", 30*time.Second),
		},
		AppProxySecret:  strings.TrimSpace(getEnvOrViper("SHOPIFY_APP_PROXY_SECRET", "")),
		AdminAPIKeyHash: strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
	}

	if cfg.Shopify.ShopDomain == "" && cfg.Shopify.Endpoint == "" {
		return nil, fmt.Errorf("SHOPIFY_SHOP_DOMAIN is required")
	}
	if cfg.Shopify.AccessToken == "" {
		return nil, fmt.Errorf("SHOPIFY_ACCESS_TOKEN is required")
	}
	if cfg.Shopify.ProductsPageSize < 1 || cfg.Shopify.ProductsPageSize > 250 {
		return nil, fmt.Errorf("SHOPIFY_PRODUCTS_PAGE_SIZE must be between 1 and 250")
	}
	if cfg.Sync.BatchLimit < 1 {
		return nil, fmt.Errorf("SYNC_BATCH_LIMIT must be positive")
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

func getIntOrDefault(key string, defaultValue int) int {
	raw := strings.TrimSpace(getEnvOrViper(key, ""))
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	raw := strings.TrimSpace(getEnvOrViper(key, ""))
	if raw == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(getEnvOrViper(key, ""))
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return d
}
