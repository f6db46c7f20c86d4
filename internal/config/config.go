package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	DatabaseURL         string
	RedisURL            string
	EODHDAPIKey         string
	CoinGeckoBaseURL    string // override for tests/self-hosted proxies; empty uses the public API
	EODHDBaseURL        string
	IdentityVerifyURL   string // identity provider verify endpoint; tokens are POSTed here
	AdminKeyHash        string // bcrypt hash of the admin key guarding bootstrap routes
	SnapshotSchedule    string // cron spec for the daily snapshot job; empty disables it
	PriceCacheTTL       int    // seconds; 0 uses the default
	FrontendURLEndsWith string
	DevPassword         string
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = viper.GetString("DATABASE_URL")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	schedule := viper.GetString("SNAPSHOT_SCHEDULE")
	if schedule == "" {
		schedule = "0 0 22 * * *"
	}

	return &Config{
		Env:                 env,
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		EODHDAPIKey:         viper.GetString("EODHD_API_KEY"),
		CoinGeckoBaseURL:    viper.GetString("COINGECKO_BASE_URL"),
		EODHDBaseURL:        viper.GetString("EODHD_BASE_URL"),
		IdentityVerifyURL:   viper.GetString("IDENTITY_VERIFY_URL"),
		AdminKeyHash:        viper.GetString("ADMIN_KEY_HASH"),
		SnapshotSchedule:    schedule,
		PriceCacheTTL:       viper.GetInt("PRICE_CACHE_TTL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
	}, nil
}
