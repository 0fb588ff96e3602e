package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    Server    `mapstructure:"server"`
	CoinGecko CoinGecko `mapstructure:"coingecko"`
	Cache     Cache     `mapstructure:"cache"`
	Store     Store     `mapstructure:"store"`
	Refresher Refresher `mapstructure:"refresher"`
	Logger    Logger    `mapstructure:"logger"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// CoinGecko holds the configuration for the upstream market-data API.
type CoinGecko struct {
	BaseURL        string  `mapstructure:"base_url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Cache holds the per-endpoint staleness windows, in seconds. More volatile
// data gets a shorter window.
type Cache struct {
	CoinsTTL      int `mapstructure:"coins_ttl"`
	CoinDetailTTL int `mapstructure:"coin_detail_ttl"`
	ExchangesTTL  int `mapstructure:"exchanges_ttl"`
	GlobalTTL     int `mapstructure:"global_ttl"`
}

// Store holds the configuration for the persisted user-state store.
type Store struct {
	DSN  string `mapstructure:"dsn"`
	Name string `mapstructure:"name"`
}

// Refresher holds the configuration for the background coin refresher.
type Refresher struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
	PerPage         int `mapstructure:"per_page"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("coingecko.base_url", "https://api.coingecko.com/api/v3")
	viper.SetDefault("coingecko.timeout_seconds", 10)
	viper.SetDefault("coingecko.rate_limit", 5) // requests per second
	viper.SetDefault("coingecko.rate_limit_burst", 2)
	viper.SetDefault("cache.coins_ttl", 120)
	viper.SetDefault("cache.coin_detail_ttl", 300)
	viper.SetDefault("cache.exchanges_ttl", 600)
	viper.SetDefault("cache.global_ttl", 300)
	viper.SetDefault("store.dsn", "crypto-tracker.db")
	viper.SetDefault("store.name", "crypto-tracker-store")
	viper.SetDefault("refresher.interval_seconds", 120)
	viper.SetDefault("refresher.per_page", 100)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
