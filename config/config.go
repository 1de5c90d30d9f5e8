package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Upstream car-service API.
	BackendBaseURL    string `mapstructure:"BACKEND_BASE_URL"`
	BackendTimeoutSec int    `mapstructure:"BACKEND_TIMEOUT_SEC"`

	// OAuth2 password-grant client credentials for /o/token/.
	// Held server-side only; never shipped to browsers.
	OAuthClientID     string `mapstructure:"OAUTH_CLIENT_ID"`
	OAuthClientSecret string `mapstructure:"OAUTH_CLIENT_SECRET"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisFormDB    int    `mapstructure:"REDIS_FORM_DB"`

	// Session lifetime in minutes for the server-held bearer token.
	SessionTTLMin int `mapstructure:"SESSION_TTL_MIN"`

	// Conversational NLU endpoint used by the chat widget proxy.
	ChatDetectIntentURL string `mapstructure:"CHAT_DETECT_INTENT_URL"`
	ChatAccessToken     string `mapstructure:"CHAT_ACCESS_TOKEN"`
	ChatLanguageCode    string `mapstructure:"CHAT_LANGUAGE_CODE"`
	ChatTimeZone        string `mapstructure:"CHAT_TIMEZONE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("BACKEND_BASE_URL", "http://127.0.0.1:8000")
	viper.SetDefault("BACKEND_TIMEOUT_SEC", 15)
	viper.SetDefault("OAUTH_CLIENT_ID", "")
	viper.SetDefault("OAUTH_CLIENT_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_FORM_DB", 1)
	viper.SetDefault("SESSION_TTL_MIN", 720)
	viper.SetDefault("CHAT_DETECT_INTENT_URL", "")
	viper.SetDefault("CHAT_ACCESS_TOKEN", "")
	viper.SetDefault("CHAT_LANGUAGE_CODE", "en")
	viper.SetDefault("CHAT_TIMEZONE", "Asia/Karachi")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
