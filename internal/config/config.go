package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Crypto   CryptoConfig   `mapstructure:"crypto"`
	S3       S3Config       `mapstructure:"s3"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// JWTConfig defines JWT specific configuration. Expiration is parsed from a
// duration string ("60m", "1h", ...) straight into time.Duration.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// OpenAIConfig configures the generation provider. APIKey is the optional
// server-wide fallback for users without their own key; BaseURL is
// overridable for API-compatible providers and tests.
type OpenAIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CryptoConfig holds the server-side secret used to encrypt stored
// per-user provider keys.
type CryptoConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variables override the file, with nested keys flattened:
	// server.address -> SERVER_ADDRESS, openai.api_key -> OPENAI_API_KEY.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "workout_app")
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("openai.timeout", "60s")
	viper.SetDefault("s3.use_ssl", true)

	err = viper.ReadInConfig()
	// A missing config file is fine; env vars and defaults can carry the app.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
