package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	FrontendURL       string `mapstructure:"FRONTEND_URL"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisAuthDB      int    `mapstructure:"REDIS_AUTH_DB"`
	RedisPresenceDB  int    `mapstructure:"REDIS_PRESENCE_DB"`
	RedisSweeperDB   int    `mapstructure:"REDIS_SWEEPER_QUEUE_DB"`
	PresenceChannel  string `mapstructure:"PRESENCE_CHANNEL"`
	SweepIntervalMin int    `mapstructure:"SWEEP_INTERVAL_MIN"`
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
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_PRESENCE_DB", 2)
	viper.SetDefault("REDIS_SWEEPER_QUEUE_DB", 3)
	viper.SetDefault("PRESENCE_CHANNEL", "presence:events")
	viper.SetDefault("SWEEP_INTERVAL_MIN", 15)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "vecindo")

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
