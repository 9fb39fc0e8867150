// Package config provides configuration management and environment variable handling for the application
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AiiMS-Group/landbot/utils"
)

// ProductionConfig holds all configuration for the service
type ProductionConfig struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	GoogleAds  GoogleAdsConfig  `json:"google_ads"`
	WildJar    WildJarConfig    `json:"wildjar"`
	FreshSales FreshSalesConfig `json:"freshsales"`
	LandBot    LandBotConfig    `json:"landbot"`
	Scheduler  SchedulerConfig  `json:"scheduler"`
	Cache      CacheConfig      `json:"cache"`
	Logging    LoggingConfig    `json:"logging"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	APIKey          string        `json:"api_key"`
}

type GoogleAdsConfig struct {
	APIDomain       string `json:"api_domain"`
	TokenURL        string `json:"token_url"`
	ClientID        string `json:"client_id"`
	ClientSecret    string `json:"client_secret"`
	RefreshToken    string `json:"refresh_token"`
	DeveloperToken  string `json:"developer_token"`
	LoginCustomerID string `json:"login_customer_id"`
}

type WildJarConfig struct {
	APIDomain    string `json:"api_domain"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type FreshSalesConfig struct {
	APIDomain string `json:"api_domain"`
	APIKey    string `json:"api_key"`
}

type LandBotConfig struct {
	APIDomain         string `json:"api_domain"`
	APIToken          string `json:"api_token"`
	EnquiryTemplateID int    `json:"enquiry_template_id"`
	TemplateLanguage  string `json:"template_language"`
}

type SchedulerConfig struct {
	RevertPollInterval time.Duration `json:"revert_poll_interval"`
	RevertBatchSize    int           `json:"revert_batch_size"`
	RevertMaxAttempts  int           `json:"revert_max_attempts"`
	RevertBackoffBase  time.Duration `json:"revert_backoff_base"`
	NotifierInterval   time.Duration `json:"notifier_interval"`
	Timezone           string        `json:"timezone"`
}

type CacheConfig struct {
	Enabled    bool          `json:"enabled"`
	RedisURL   string        `json:"redis_url"`
	RedisDB    int           `json:"redis_db"`
	AccountTTL time.Duration `json:"account_ttl"`
}

type LoggingConfig struct {
	Dir        string `json:"dir"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// LoadProductionConfig loads configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	loadDotEnv(".env")

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "landbot"),
			User:            getEnv("DB_USER", "landbot"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			APIKey:          getEnv("SERVER_API_KEY", ""),
		},
		GoogleAds: GoogleAdsConfig{
			APIDomain:       getEnv("GOOGLE_ADS_API_DOMAIN", ""),
			TokenURL:        getEnv("GOOGLE_ADS_TOKEN_URL", ""),
			ClientID:        getEnv("GOOGLE_ADS_CLIENT_ID", ""),
			ClientSecret:    getEnv("GOOGLE_ADS_CLIENT_SECRET", ""),
			RefreshToken:    getEnv("GOOGLE_ADS_REFRESH_TOKEN", ""),
			DeveloperToken:  getEnv("GOOGLE_ADS_DEVELOPER_TOKEN", ""),
			LoginCustomerID: getEnv("GOOGLE_ADS_LOGIN_CUSTOMER_ID", ""),
		},
		WildJar: WildJarConfig{
			APIDomain:    getEnv("WILDJAR_API_DOMAIN", ""),
			ClientID:     getEnv("WILDJAR_CLIENT_ID", ""),
			ClientSecret: getEnv("WILDJAR_CLIENT_SECRET", ""),
		},
		FreshSales: FreshSalesConfig{
			APIDomain: getEnv("FRESHSALES_API_DOMAIN", ""),
			APIKey:    getEnv("FRESHSALES_API_KEY", ""),
		},
		LandBot: LandBotConfig{
			APIDomain:         getEnv("LANDBOT_API_DOMAIN", ""),
			APIToken:          getEnv("LANDBOT_API_TOKEN", ""),
			EnquiryTemplateID: getEnvInt("LANDBOT_ENQUIRY_TEMPLATE_ID", 1060),
			TemplateLanguage:  getEnv("LANDBOT_TEMPLATE_LANGUAGE", "en"),
		},
		Scheduler: SchedulerConfig{
			RevertPollInterval: getEnvDuration("SCHEDULER_REVERT_POLL_INTERVAL", time.Minute),
			RevertBatchSize:    getEnvInt("SCHEDULER_REVERT_BATCH_SIZE", 100),
			RevertMaxAttempts:  getEnvInt("SCHEDULER_REVERT_MAX_ATTEMPTS", 8),
			RevertBackoffBase:  getEnvDuration("SCHEDULER_REVERT_BACKOFF_BASE", time.Minute),
			NotifierInterval:   getEnvDuration("SCHEDULER_NOTIFIER_INTERVAL", time.Hour),
			Timezone:           getEnv("SCHEDULER_TIMEZONE", utils.DefaultTimezone),
		},
		Cache: CacheConfig{
			Enabled:    getEnvBool("CACHE_ENABLED", false),
			RedisURL:   getEnv("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:    getEnvInt("CACHE_REDIS_DB", 0),
			AccountTTL: getEnvDuration("CACHE_ACCOUNT_TTL", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Dir:        getEnv("LOG_DIR", "data"),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 30),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements that a misconfigured deploy
// would otherwise only hit at request time.
func (c *ProductionConfig) Validate() error {
	if c.Database.Name == "" || c.Database.User == "" {
		return fmt.Errorf("database name and user are required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Scheduler.RevertMaxAttempts <= 0 {
		return fmt.Errorf("scheduler revert max attempts must be positive")
	}
	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("invalid scheduler timezone %q: %w", c.Scheduler.Timezone, err)
	}
	return nil
}

// loadDotEnv loads KEY=VALUE pairs from a file into the environment
// without overriding variables that are already set.
func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
